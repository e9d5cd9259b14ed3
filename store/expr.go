package store

import (
	"fmt"
	"sort"
	"strings"
)

// updatePlan is a fully built conditional update for one entity.
type updatePlan struct {
	key              Key
	update           string
	condition        string
	names            map[string]string
	values           Record
	versioned        bool
	attemptedVersion int64
}

// buildUpdatePlan turns an entity into an update expression. Every
// marshaled field is SET, except setOnce fields (set only if absent) and
// addFields (atomic ADD deltas). The primary key is carried separately and
// can never appear in the SET/ADD clause. A versioned entity gets its
// in-memory version bumped here and a version condition unless
// skipVersion is set; the caller-supplied condition is ANDed in verbatim.
func buildUpdatePlan(e Entity, setOnce, addFields []string, condition string, names map[string]string, values Record, skipVersion bool) (*updatePlan, error) {
	item, err := Marshal(e, false)
	if err != nil {
		return nil, err
	}

	plan := &updatePlan{
		key:    e.EntityKey(),
		names:  map[string]string{},
		values: Record{},
	}

	var conditions []string
	if v, ok := e.(Versioned); ok {
		if skipVersion {
			// Version management stays out of the expression entirely: a
			// skip-version write must never SET the writer's stale version
			// over a newer stored one.
			delete(item, "version")
		} else {
			incoming := v.Version()
			plan.versioned = true
			plan.attemptedVersion = incoming
			item["version"] = Number(incoming + 1)
			plan.names["#version"] = "version"
			plan.values[":incoming_version"] = Number(incoming)
			// Parenthesized so ANDing a caller condition keeps the OR intact.
			conditions = append(conditions, "(attribute_not_exists(#version) OR #version <= :incoming_version)")
		}
	}
	if condition != "" {
		conditions = append(conditions, condition)
	}
	plan.condition = strings.Join(conditions, " AND ")

	once := toSet(setOnce)
	adds := toSet(addFields)

	// Deterministic clause order keeps expressions stable and testable.
	fields := make([]string, 0, len(item))
	for f := range item {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var setParts, addParts []string
	for _, f := range fields {
		name := "#" + f
		value := ":" + f
		plan.names[name] = f
		plan.values[value] = item[f]

		switch {
		case adds[f]:
			addParts = append(addParts, fmt.Sprintf("%s %s", name, value))
		case once[f]:
			setParts = append(setParts, fmt.Sprintf("%s = if_not_exists(%s, %s)", name, name, value))
		default:
			setParts = append(setParts, fmt.Sprintf("%s = %s", name, value))
		}
	}
	if len(setParts) == 0 && len(addParts) == 0 {
		return nil, &InvalidConfigurationError{
			Reason: fmt.Sprintf("%s has no updatable fields", e.EntityType()),
		}
	}

	var expr []string
	if len(setParts) > 0 {
		expr = append(expr, "SET "+strings.Join(setParts, ", "))
	}
	if len(addParts) > 0 {
		expr = append(expr, "ADD "+strings.Join(addParts, ", "))
	}
	plan.update = strings.Join(expr, " ")

	// Caller-supplied placeholders for the extra condition.
	for k, v := range names {
		plan.names[k] = v
	}
	for k, v := range values {
		plan.values[k] = v
	}
	return plan, nil
}

func toSet(fields []string) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
