package organizations

import (
	"net/http"

	"rosterly/internal/api/handlers"
	"rosterly/pkg/utils"
)

// FUNC TO ADD A MEMBER TO AN ORGANIZATION
//
// This is the admission endpoint the acceptance propagator calls; it must stay
// idempotent, so re-adding an existing member answers 200 with the existing
// record rather than a conflict.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type request struct {
		UserID string `json:"user_id"`
	}
	var req request
	if err := handlers.DecodeJSONBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	member, err := h.Members.AddMember(r.Context(), r.PathValue("id"), req.UserID)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "Member added successfully",
		"data":    member,
	})
}

// FUNC TO REMOVE A MEMBER FROM AN ORGANIZATION
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	organizationID := r.PathValue("id")
	userID := r.PathValue("userId")
	if err := h.Members.RemoveMember(r.Context(), organizationID, userID); err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "Member removed successfully",
	})
}

// FUNC TO LIST MEMBERS OF AN ORGANIZATION
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userIDs, err := h.Members.ListMembers(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}
	if userIDs == nil {
		userIDs = []string{}
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(userIDs),
		"data":   userIDs,
	})
}
