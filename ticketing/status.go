package ticketing

// Status is the lifecycle state of a sellable or schedulable resource.
// Archival is a status transition; rows are never deleted.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusLive     Status = "live"
	StatusArchived Status = "archived"

	// StatusIssued marks a ticket produced by a completed checkout.
	StatusIssued Status = "issued"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusLive, StatusArchived, StatusIssued:
		return true
	}
	return false
}
