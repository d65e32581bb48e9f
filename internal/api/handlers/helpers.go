package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"rosterly/internal/services"
	"rosterly/internal/store"
	"rosterly/pkg/utils"
)

// CapacityErrorResponse carries the organization id and numeric limit so the
// failure is actionable, and so the membership client can rebuild the typed
// error on its side of the wire.
type CapacityErrorResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	OrganizationID string `json:"organization_id"`
	Limit          int    `json:"limit"`
}

// WriteDomainError maps service/store errors onto HTTP statuses.
func WriteDomainError(w http.ResponseWriter, err error) {
	var invalidArg *services.InvalidArgumentError
	var invalidTransition *services.InvalidTransitionError
	var capacity *services.CapacityError

	switch {
	case errors.As(err, &invalidArg):
		utils.WriteError(w, invalidArg.Reason, http.StatusBadRequest)
	case errors.As(err, &invalidTransition):
		utils.WriteError(w, invalidTransition.Error(), http.StatusConflict)
	case errors.As(err, &capacity):
		utils.WriteJSONStatus(w, CapacityErrorResponse{
			Status:         "error",
			Message:        capacity.Error(),
			OrganizationID: capacity.OrganizationID,
			Limit:          capacity.Limit,
		}, http.StatusConflict)
	case errors.Is(err, services.ErrDuplicatePending):
		utils.WriteError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrDuplicate):
		utils.WriteError(w, "record already exists", http.StatusConflict)
	case errors.Is(err, store.ErrNotFound):
		utils.WriteError(w, "record not found", http.StatusNotFound)
	default:
		utils.Logger.Errorf("internal server error: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}

// DecodeJSONBody decodes a request body with unknown fields rejected, the way
// every write endpoint here expects its payload.
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
