package web

// errors.go provides unified error response handling for the web layer.
//
// Connector operations report their outcome in the embedded core.Result and
// are always answered with 200. Only hard errors reach respondError:
//   - a malformed connection id or request body becomes 400
//   - everything else becomes 500
//
// Both carry the code-tagged user message from core.MapError. The technical
// error is logged with the request id and never sent to the client.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Action    string `json:"action,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// statusFor maps a hard error to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, core.ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes its user message with the mapped status.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	writeErrorJSON(w, r, status, msg)
}

// writeError writes an error produced by the transport itself.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	logging.FromContext(r.Context()).Warn("request rejected",
		"path", r.URL.Path,
		"status", status,
		"code", code,
	)
	writeErrorJSON(w, r, status, core.UserMessage{Message: message, Code: code})
}

func writeErrorJSON(w http.ResponseWriter, r *http.Request, status int, msg core.UserMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:     msg.Message,
		Message:   msg.Message,
		Action:    msg.Action,
		Code:      msg.Code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
