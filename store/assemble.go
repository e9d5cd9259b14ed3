package store

import (
	"fmt"
)

// Assemble merges a family of denormalized rows into the root aggregate.
// Exactly one row must carry the root's entity_type; ErrNotFound is
// returned otherwise (callers must not assume a default aggregate). Rows of
// types absent from the root's related-entity map are skipped, so unknown
// sibling rows written by newer code do not break older readers.
func Assemble(root Assembler, rows []Record) error {
	rootType := root.EntityType()

	var rootRow Record
	for _, row := range rows {
		if etype, ok := stringAttr(row, "entity_type"); ok && etype == rootType {
			rootRow = row
			break
		}
	}
	if rootRow == nil {
		return fmt.Errorf("no %s row in result set: %w", rootType, ErrNotFound)
	}
	if err := root.Hydrate(rootRow); err != nil {
		return fmt.Errorf("hydrate %s root: %w", rootType, err)
	}

	related := root.RelatedEntities()
	for _, row := range rows {
		etype, ok := stringAttr(row, "entity_type")
		if !ok || etype == rootType {
			continue
		}
		spec, mapped := related[etype]
		if !mapped {
			continue
		}

		child := spec.New()
		if err := child.Hydrate(row); err != nil {
			return fmt.Errorf("hydrate %s child: %w", etype, err)
		}

		switch spec.Cardinality {
		case Single, List:
			// Single overwrites and List accumulates; both are the
			// Attach callback's contract, driven by the declared mode.
			spec.Attach(root, child)
		default:
			return &InvalidConfigurationError{
				Reason: fmt.Sprintf("unknown cardinality %q for child type %s", spec.Cardinality, etype),
			}
		}
	}
	return nil
}
