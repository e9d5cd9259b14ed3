package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/marquee/internal/keys"
	"github.com/jacentio/marquee/store"
	"github.com/jacentio/marquee/ticketing"
)

// eventPayload is the HTTP representation of an event.
type eventPayload struct {
	ID                string           `json:"id,omitempty"`
	Organisation      string           `json:"organisation"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Status            string           `json:"status,omitempty"`
	StartsAt          string           `json:"starts_at,omitempty"`
	EndsAt            string           `json:"ends_at,omitempty"`
	Capacity          int64            `json:"capacity"`
	RemainingCapacity int64            `json:"remaining_capacity"`
	NumberSold        int64            `json:"number_sold"`
	Location          *locationPayload `json:"location,omitempty"`
	Items             []itemPayload    `json:"items,omitempty"`
}

type locationPayload struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

type itemPayload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	PrimaryPrice float64 `json:"primary_price,omitempty"`
}

// HandleEvents serves the event management HTTP API: GET a single
// assembled event, GET an organisation's listing, POST a new event.
func (h *Handler) HandleEvents(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	org := req.QueryStringParameters["organisation"]
	if org == "" {
		org = req.PathParameters["organisation"]
	}

	st := h.store
	if org != "" {
		st = st.ForOrganisation(org)
	}

	switch req.RequestContext.HTTP.Method {
	case "GET":
		if id := req.PathParameters["id"]; id != "" {
			return h.getEvent(ctx, st, id), nil
		}
		if org == "" {
			return errorResponse(400, "organisation is required"), nil
		}
		return h.listEvents(ctx, st, org), nil
	case "POST":
		return h.createEvent(ctx, st, org, []byte(req.Body)), nil
	}
	return errorResponse(405, "method not allowed"), nil
}

func (h *Handler) getEvent(ctx context.Context, st *store.Store, id string) events.APIGatewayV2HTTPResponse {
	if err := keys.ParseID(id); err != nil {
		return errorResponse(400, "invalid event id")
	}

	e, err := ticketing.GetEvent(ctx, st, id)
	if errors.Is(err, store.ErrNotFound) {
		return errorResponse(404, "event not found")
	}
	if err != nil {
		h.logger.Error("get event failed", "eventID", id, "error", err)
		return errorResponse(500, "internal error")
	}
	return response(200, toPayload(e))
}

func (h *Handler) listEvents(ctx context.Context, st *store.Store, org string) events.APIGatewayV2HTTPResponse {
	list, err := ticketing.ListEvents(ctx, st, org)
	if err != nil {
		h.logger.Error("list events failed", "organisation", org, "error", err)
		return errorResponse(500, "internal error")
	}

	payloads := make([]eventPayload, 0, len(list))
	for _, e := range list {
		payloads = append(payloads, toPayload(e))
	}
	return response(200, map[string]any{"events": payloads})
}

func (h *Handler) createEvent(ctx context.Context, st *store.Store, org string, body []byte) events.APIGatewayV2HTTPResponse {
	var payload eventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return errorResponse(400, "invalid request body")
	}
	if payload.Organisation == "" {
		payload.Organisation = org
	}
	if payload.Organisation == "" {
		return errorResponse(400, "organisation is required")
	}
	if payload.Name == "" {
		return errorResponse(400, "name is required")
	}

	e, err := fromPayload(payload)
	if err != nil {
		return errorResponse(400, err.Error())
	}

	if err := ticketing.CreateEvent(ctx, st, e); err != nil {
		var conflict *store.VersionConflictError
		switch {
		case errors.As(err, &conflict):
			return errorResponse(409, "event was modified concurrently")
		case errors.Is(err, store.ErrThrottled):
			return errorResponse(503, "store is throttling, retry")
		}
		h.logger.Error("create event failed", "organisation", payload.Organisation, "error", err)
		return errorResponse(500, "internal error")
	}

	return response(201, toPayload(e))
}

func toPayload(e *ticketing.Event) eventPayload {
	p := eventPayload{
		ID:                e.ID,
		Organisation:      e.OrganisationSlug,
		Name:              e.Name,
		Description:       e.Description,
		Status:            string(e.Status),
		Capacity:          e.Capacity,
		RemainingCapacity: e.RemainingCapacity,
		NumberSold:        e.NumberSold,
	}
	if !e.StartsAt.IsZero() {
		p.StartsAt = store.FormatTime(e.StartsAt)
	}
	if !e.EndsAt.IsZero() {
		p.EndsAt = store.FormatTime(e.EndsAt)
	}
	if e.Location != nil {
		p.Location = &locationPayload{
			ID:      e.Location.ID,
			Name:    e.Location.Name,
			Address: e.Location.Address,
			City:    e.Location.City,
			Country: e.Location.Country,
		}
	}
	for _, it := range e.Items {
		p.Items = append(p.Items, itemPayload{
			ID:           it.ID,
			Name:         it.Name,
			Status:       string(it.Status),
			PrimaryPrice: it.PrimaryPrice,
		})
	}
	return p
}

func fromPayload(p eventPayload) (*ticketing.Event, error) {
	e := &ticketing.Event{
		ID:               p.ID,
		OrganisationSlug: p.Organisation,
		Name:             p.Name,
		Description:      p.Description,
		Status:           ticketing.Status(p.Status),
		Capacity:         p.Capacity,
	}
	var err error
	if e.StartsAt, err = parseTimeField(p.StartsAt); err != nil {
		return nil, errors.New("starts_at must be ISO-8601 UTC")
	}
	if e.EndsAt, err = parseTimeField(p.EndsAt); err != nil {
		return nil, errors.New("ends_at must be ISO-8601 UTC")
	}
	return e, nil
}

func parseTimeField(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return store.ParseTime(s)
}
