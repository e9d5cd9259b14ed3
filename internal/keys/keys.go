// Package keys provides slug and identifier derivation for entity keys.
package keys

import (
	"strings"

	"github.com/segmentio/ksuid"
)

// Slugify lowercases the input, collapses every run of non-alphanumeric
// characters into a single hyphen, and trims leading/trailing hyphens.
// Unmappable input (for example an all-symbol string) yields "".
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('-')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NewID generates a fresh KSUID token. KSUIDs are time-sortable, so the
// default sort order of generated identifiers is creation order.
func NewID() string {
	return ksuid.New().String()
}

// ParseID validates a caller-supplied identifier token.
func ParseID(s string) error {
	_, err := ksuid.Parse(s)
	return err
}
