package invitations

import (
	"net/http"

	"rosterly/internal/api/handlers"
	"rosterly/internal/models"
	"rosterly/internal/services"
	"rosterly/pkg/utils"
)

type Handler struct {
	Service *services.InvitationService
}

func NewHandler(service *services.InvitationService) *Handler {
	return &Handler{Service: service}
}

// FUNC TO CREATE AN INVITATION
func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in services.CreateInvitationInput
	if err := handlers.DecodeJSONBody(r, &in); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	inv, err := h.Service.Create(r.Context(), in)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSONStatus(w, map[string]interface{}{
		"status":  "success",
		"message": "Invitation created successfully",
		"data":    inv,
	}, http.StatusCreated)
}

// FUNC TO LIST INVITATIONS, OPTIONALLY BY STATUS
func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	invitations, err := h.Service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(invitations),
		"data":   invitations,
	})
}

// FUNC TO GET ONE INVITATION
func (h *Handler) GetInvitation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	inv, err := h.Service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data":   inv,
	})
}

// FUNC TO TRANSITION AN INVITATION TO A TERMINAL STATUS
func (h *Handler) TransitionInvitation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type request struct {
		Status string `json:"status"`
	}
	var req request
	if err := handlers.DecodeJSONBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := h.Service.Transition(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	response := map[string]interface{}{
		"status": "success",
		"data":   result.Invitation,
	}
	if result.Invitation.Status == models.InvitationAccepted {
		response["membership"] = "created"
	}
	if result.PropagationErr != nil {
		// Degraded success: the invitation is ACCEPTED but the membership is
		// not there yet; the retry queue owns it now.
		response["membership"] = "pending"
		response["warning"] = result.PropagationErr.Error()
	}

	utils.WriteJSON(w, response)
}

// FUNC TO EXPIRE STALE PENDING INVITATIONS ON DEMAND
func (h *Handler) ExpireInvitations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	expired, err := h.Service.ExpireOldInvitations(r.Context())
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"expired": expired,
	})
}
