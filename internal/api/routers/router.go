package routers

import (
	"net/http"

	"rosterly/internal/api/handlers/invitations"
	"rosterly/internal/api/handlers/organizations"
	"rosterly/internal/api/handlers/users"
)

func MainRouter(
	invitationHandler *invitations.Handler,
	organizationHandler *organizations.Handler,
	userHandler *users.Handler,
) *http.ServeMux {

	mux := http.NewServeMux()

	iRouter := invitationsRouter(invitationHandler)
	mux.Handle("/invitations/", iRouter)

	oRouter := organizationsRouter(organizationHandler)
	mux.Handle("/organizations/", oRouter)

	uRouter := usersRouter(userHandler)
	mux.Handle("/users/", uRouter)

	return mux
}
