package routers

import (
	"net/http"

	"rosterly/internal/api/handlers/organizations"
)

func organizationsRouter(h *organizations.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/organizations/create", h.CreateOrganization)

	mux.HandleFunc("/organizations/", h.ListOrganizations)

	mux.HandleFunc("/organizations/search", h.SearchOrganizations)

	mux.HandleFunc("/organizations/registry/{registryNumber}", h.GetOrganizationByRegistryNumber)

	mux.HandleFunc("/organizations/{id}", h.GetOrganization)

	mux.HandleFunc("/organizations/update/{id}", h.UpdateOrganization)

	mux.HandleFunc("/organizations/delete/{id}", h.DeleteOrganization)

	mux.HandleFunc("/organizations/{id}/members", h.ListMembers)

	mux.HandleFunc("/organizations/{id}/members/add", h.AddMember)

	mux.HandleFunc("/organizations/{id}/members/{userId}/remove", h.RemoveMember)

	return mux
}
