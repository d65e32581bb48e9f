package routers

import (
	"net/http"

	"rosterly/internal/api/handlers/invitations"
)

func invitationsRouter(h *invitations.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/invitations/create", h.CreateInvitation)

	mux.HandleFunc("/invitations/", h.ListInvitations)

	mux.HandleFunc("/invitations/expire", h.ExpireInvitations)

	mux.HandleFunc("/invitations/{id}", h.GetInvitation)

	mux.HandleFunc("/invitations/{id}/status", h.TransitionInvitation)

	return mux
}
