// Package api holds the JSON response helpers shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// SuccessResponse is the envelope for record and health responses
type SuccessResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error string `json:"error"`
}

var statusByCode = map[string]int{
	domain.ErrCodeValidation:    http.StatusBadRequest,
	domain.ErrCodeUnsupported:   http.StatusBadRequest,
	domain.ErrCodeNotFound:      http.StatusNotFound,
	domain.ErrCodeInternalError: http.StatusInternalServerError,
}

// JSON writes body with status. A nil body writes headers only.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	// The status line is already out; an encode failure can only truncate the body
	_ = json.NewEncoder(w).Encode(body)
}

// Success writes data inside the {"data": ...} envelope
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes {"error": message}
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DomainErrorToHTTP picks the status for err by its domain code. Anything
// without a known code is a 500.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		if status, ok := statusByCode[domainErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// HandleError writes the error response for err. Server errors carry only the
// status text; their cause belongs in the logs.
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)

	message := http.StatusText(status)
	var domainErr *domain.DomainError
	if status < http.StatusInternalServerError && errors.As(err, &domainErr) {
		message = domainErr.Message
	}
	Error(w, status, message)
}
