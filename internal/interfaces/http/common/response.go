package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// PaginationResponse is the JSON form of domain.Pagination.
type PaginationResponse struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

func NewPaginationResponse(p domain.Pagination) PaginationResponse {
	return PaginationResponse{Total: p.Total, Page: p.Page, Pages: p.Pages, Limit: p.Limit}
}

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger logrus.FieldLogger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.WithError(err).Error("failed to encode JSON response")
	}
}

// WriteData writes a successful envelope.
func WriteData(logger logrus.FieldLogger, w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(logger, w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteMessage writes a failed envelope with message.
func WriteMessage(logger logrus.FieldLogger, w http.ResponseWriter, status int, message string) {
	WriteJSON(logger, w, status, Envelope{Success: false, Message: message})
}

// StatusFor maps a domain error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrDuplicateReview),
		errors.Is(err, domain.ErrDuplicateAccount),
		errors.Is(err, domain.ErrStaleRating):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// WriteError renders err. Unexpected errors are logged and replaced by a generic message.
func WriteError(logger logrus.FieldLogger, w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).Error("request failed")
		}
		WriteMessage(logger, w, status, "internal server error")
		return
	}
	WriteMessage(logger, w, status, errorMessage(err))
}

// errorMessage strips the sentinel prefix from wrapped input errors so clients
// see only the detail.
func errorMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrInvalidInput.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return msg
}
