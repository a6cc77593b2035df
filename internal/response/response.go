// Package response writes the JSON envelopes every endpoint answers with.
package response

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vidtube/backend/internal/logging"
)

// Envelope wraps successful responses.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorEnvelope wraps failed responses.
type ErrorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// Success writes data in a success envelope.
func Success(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	JSON(ctx, w, status, Envelope{StatusCode: status, Data: data, Message: message, Success: true})
}

// Error writes message in an error envelope.
func Error(ctx context.Context, w http.ResponseWriter, status int, message string) {
	JSON(ctx, w, status, ErrorEnvelope{StatusCode: status, Message: message, Success: false})
}

// JSON encodes payload with the given status. Client errors are logged at
// warn level and server errors at error level.
func JSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
