// Package httpx provides the JSON response envelope shared by all handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// envelope is the error response body. Every response carries a success flag;
// error responses add a message and, for validation failures, field errors.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Fail sends an error envelope with the given status and message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, envelope{Success: false, Message: message})
}

// FailFields sends a validation error envelope with per-field messages.
func FailFields(w http.ResponseWriter, status int, message string, fields map[string]string) {
	JSON(w, status, envelope{Success: false, Message: message, Errors: fields})
}

// DecodeJSON decodes the request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
