package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// timeLayout is ISO-8601 UTC with a literal Z suffix and second precision.
const timeLayout = "2006-01-02T15:04:05Z"

// FormatTime serializes a timestamp for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime parses a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// Decimal returns a DynamoDB number attribute carrying the exact decimal
// form of a float. DynamoDB numbers are decimal, and silent binary-float
// drift is unacceptable for money fields.
func Decimal(f float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Number returns a DynamoDB number attribute for an integer value.
func Number(n int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

// String returns a DynamoDB string attribute.
func String(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}

// Marshal builds the stored representation of an entity: its declared
// attributes, the entity_type discriminator, any secondary index key
// attributes, and the version for Versioned entities. The primary key is
// included only when includeKey is set (needed for raw puts, excluded when
// building update expressions).
func Marshal(e Entity, includeKey bool) (Record, error) {
	item, err := e.Attributes()
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", e.EntityType(), err)
	}
	if e.EntityType() != "" {
		item["entity_type"] = String(e.EntityType())
	}

	if v, ok := e.(Versioned); ok {
		item["version"] = Number(v.Version())
	}
	if ix, ok := e.(Indexed); ok {
		for name, k := range ix.IndexKeys() {
			if k.IsZero() {
				continue
			}
			item[name+"PK"] = String(k.PK)
			item[name+"SK"] = String(k.SK)
		}
	}
	if includeKey {
		key := e.EntityKey()
		item["PK"] = String(key.PK)
		item["SK"] = String(key.SK)
	}
	return item, nil
}

// numberAttr extracts a numeric attribute from a record.
func numberAttr(rec Record, name string) (int64, bool) {
	av, ok := rec[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(av.Value, 10, 64)
	if err != nil {
		// Capacity-like fields are integral; a fractional stored value
		// still matters for "< 1" checks, so fall back to float parsing.
		f, ferr := strconv.ParseFloat(av.Value, 64)
		if ferr != nil {
			return 0, false
		}
		return int64(f), true
	}
	return n, true
}

// stringAttr extracts a string attribute from a record.
func stringAttr(rec Record, name string) (string, bool) {
	av, ok := rec[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return av.Value, true
}

// recordsEqual reports deep structural equality of two serialized rows.
// Used to match unprocessed batch items back to their source entities.
func recordsEqual(a, b Record) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !attrEqual(av, bv) {
			return false
		}
	}
	return true
}

func attrEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberNULL:
		bv, ok := b.(*types.AttributeValueMemberNULL)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberB:
		bv, ok := b.(*types.AttributeValueMemberB)
		return ok && string(av.Value) == string(bv.Value)
	case *types.AttributeValueMemberL:
		bv, ok := b.(*types.AttributeValueMemberL)
		if !ok || len(av.Value) != len(bv.Value) {
			return false
		}
		for i := range av.Value {
			if !attrEqual(av.Value[i], bv.Value[i]) {
				return false
			}
		}
		return true
	case *types.AttributeValueMemberM:
		bv, ok := b.(*types.AttributeValueMemberM)
		return ok && recordsEqual(av.Value, bv.Value)
	case *types.AttributeValueMemberSS:
		bv, ok := b.(*types.AttributeValueMemberSS)
		return ok && stringSlicesEqual(av.Value, bv.Value)
	case *types.AttributeValueMemberNS:
		bv, ok := b.(*types.AttributeValueMemberNS)
		return ok && stringSlicesEqual(av.Value, bv.Value)
	case *types.AttributeValueMemberBS:
		bv, ok := b.(*types.AttributeValueMemberBS)
		if !ok || len(av.Value) != len(bv.Value) {
			return false
		}
		for i := range av.Value {
			if string(av.Value[i]) != string(bv.Value[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
