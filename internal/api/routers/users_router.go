package routers

import (
	"net/http"

	"rosterly/internal/api/handlers/users"
)

func usersRouter(h *users.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/users/create", h.CreateUser)

	mux.HandleFunc("/users/", h.ListUsers)

	mux.HandleFunc("/users/search", h.SearchUsers)

	mux.HandleFunc("/users/{id}", h.GetUser)

	mux.HandleFunc("/users/update/{id}", h.UpdateUser)

	mux.HandleFunc("/users/delete/{id}", h.DeleteUser)

	return mux
}
