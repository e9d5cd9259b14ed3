package lambda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/marquee/ticketing"
)

// checkoutCompletedDetail is the EventBridge detail payload emitted when a
// checkout settles.
type checkoutCompletedDetail struct {
	Organisation string          `json:"organisation"`
	Order        ticketing.Order `json:"order"`
}

// CheckoutOutcome is the handler's report back to the bus. With partial
// failures it carries per-row diagnostics, so downstream consumers see a
// 207-style account rather than a blanket failure.
type CheckoutOutcome struct {
	OrderID   string          `json:"order_id"`
	Issued    int             `json:"issued"`
	Failed    int             `json:"failed"`
	Failures  []FailureDetail `json:"failures,omitempty"`
	TicketIDs []string        `json:"ticket_ids"`
}

// FailureDetail is one failed row of a partially issued order.
type FailureDetail struct {
	Key      string `json:"key"`
	Code     string `json:"code"`
	Inferred string `json:"inferred,omitempty"`
	Message  string `json:"message,omitempty"`
}

// HandleCheckoutCompleted issues tickets for a completed checkout. Retries
// are safe: issuance settles counters through atomic deltas and failed
// rows are reported, not thrown.
func (h *Handler) HandleCheckoutCompleted(ctx context.Context, event events.CloudWatchEvent) (CheckoutOutcome, error) {
	var detail checkoutCompletedDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return CheckoutOutcome{}, fmt.Errorf("decode checkout detail: %w", err)
	}

	st := h.store
	if detail.Organisation != "" {
		st = st.ForOrganisation(detail.Organisation)
	}

	h.logger.Info("issuing tickets",
		"orderID", detail.Order.ID,
		"eventID", detail.Order.EventID,
	)

	result, err := ticketing.IssueTickets(ctx, st, detail.Order)
	if err != nil {
		return CheckoutOutcome{}, fmt.Errorf("issue tickets for order %s: %w", detail.Order.ID, err)
	}

	outcome := CheckoutOutcome{
		OrderID: detail.Order.ID,
		Issued:  len(result.Issued),
		Failed:  len(result.Failed),
	}
	for _, t := range result.Issued {
		outcome.TicketIDs = append(outcome.TicketIDs, t.ID)
	}
	for _, f := range result.Failures {
		outcome.Failures = append(outcome.Failures, FailureDetail{
			Key:      f.Key.PK,
			Code:     string(f.Code),
			Inferred: string(f.Inferred),
			Message:  f.Message,
		})
	}

	if !result.AllIssued() {
		h.logger.Warn("order partially issued",
			"orderID", detail.Order.ID,
			"issued", outcome.Issued,
			"failed", outcome.Failed,
		)
	}

	if _, err := ticketing.AppendHistory(ctx, st, ticketing.NewHistory(
		"EVENT#"+detail.Order.EventID,
		"tickets_issued",
		"checkout",
		fmt.Sprintf("order %s: %d issued, %d failed", detail.Order.ID, outcome.Issued, outcome.Failed),
	)); err != nil {
		// Audit is best-effort; issuance already committed.
		h.logger.Warn("history append failed",
			"orderID", detail.Order.ID,
			"error", err,
		)
	}

	return outcome, nil
}
