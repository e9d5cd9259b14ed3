// Package lambda wires the ticketing use-cases to AWS Lambda event
// sources: EventBridge for completed checkouts and the HTTP API for event
// management.
package lambda

import (
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/marquee/store"
)

// Handler holds the handlers' shared dependencies.
type Handler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(s *store.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		logger: logger,
	}
}

// response builds an HTTP API response with a JSON body.
func response(status int, body any) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: 500,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"message":"serialization failure"}`,
		}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(payload),
	}
}

// errorResponse builds an HTTP API error response.
func errorResponse(status int, message string) events.APIGatewayV2HTTPResponse {
	return response(status, map[string]string{"message": message})
}
