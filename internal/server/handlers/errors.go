package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

type errorPayload struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	Field      string   `json:"field,omitempty"`
	Lot        string   `json:"lot,omitempty"`
	ConflictID int      `json:"conflict_id,omitempty"`
	References []string `json:"references,omitempty"`
}

// errorBody maps the error taxonomy onto a status code and JSON body.
func errorBody(err error) (int, gin.H) {
	var (
		verr *models.ValidationError
		derr *models.DuplicateLotError
		gerr *models.ReferentialGapError
		uerr *models.InUseError
		aerr *models.AuthorizationError
		perr *models.PersistenceError
	)
	status := http.StatusInternalServerError
	payload := errorPayload{Type: "internal_error", Message: "internal server error"}

	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		payload = errorPayload{Type: "validation_error", Message: verr.Error(), Field: verr.Field}
	case errors.Is(err, models.ErrUnauthenticated):
		status = http.StatusUnauthorized
		payload = errorPayload{Type: "unauthenticated", Message: "valid credentials are required"}
	case errors.As(err, &aerr):
		status = http.StatusForbidden
		payload = errorPayload{Type: "forbidden", Message: aerr.Error()}
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
		payload = errorPayload{Type: "not_found", Message: err.Error()}
	case errors.As(err, &derr):
		status = http.StatusConflict
		payload = errorPayload{Type: "duplicate_lot", Message: derr.Error(), Lot: derr.Lot, ConflictID: derr.ConflictID}
	case errors.As(err, &uerr):
		status = http.StatusConflict
		payload = errorPayload{Type: "in_use", Message: uerr.Error(), References: uerr.References}
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
		payload = errorPayload{Type: "conflict", Message: err.Error()}
	case errors.As(err, &gerr):
		status = http.StatusUnprocessableEntity
		payload = errorPayload{Type: "referential_gap", Message: gerr.Error()}
	case errors.As(err, &perr):
		payload = errorPayload{Type: "persistence_error", Message: err.Error()}
	}
	return status, gin.H{"error": payload}
}
