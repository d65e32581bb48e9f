package users

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rosterly/internal/api/handlers"
	"rosterly/internal/models"
	"rosterly/internal/store"
	"rosterly/pkg/utils"
)

type Handler struct {
	DB *sql.DB
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{DB: db}
}

const userColumns = "id, email, full_name, normalized_name, role, status, created_at, updated_at"

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.NormalizedName, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FUNC TO CREATE A USER
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var user models.User
	if err := handlers.DecodeJSONBody(r, &user); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.FullName = strings.TrimSpace(user.FullName)
	if user.Email == "" || user.FullName == "" {
		utils.WriteError(w, "email and full name are required", http.StatusBadRequest)
		return
	}
	if user.Role == "" {
		user.Role = models.UserRoleUser
	}
	if user.Status == "" {
		user.Status = models.UserStatusPending
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.NormalizedName = models.NormalizeName(user.FullName)
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := h.DB.ExecContext(ctx, query, user.ID, user.Email, user.FullName, user.NormalizedName,
		user.Role, user.Status, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if store.IsDuplicate(err) {
			utils.WriteError(w, fmt.Sprintf("email already exists: %s", user.Email), http.StatusConflict)
			return
		}
		utils.Logger.Errorf("failed to create user: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSONStatus(w, map[string]interface{}{
		"status":  "success",
		"message": "User created successfully",
		"data":    user,
	}, http.StatusCreated)
}

// FUNC TO GET ONE USER
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	row := h.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", r.PathValue("id"))
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "user not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to get user: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{"status": "success", "data": user})
}

// FUNC TO LIST USERS
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.listUsers(w, r, "SELECT "+userColumns+" FROM users ORDER BY created_at")
}

// FUNC TO SEARCH USERS BY NAME OR EMAIL
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	email := r.URL.Query().Get("email")

	switch {
	case name != "":
		h.listUsers(w, r,
			"SELECT "+userColumns+" FROM users WHERE normalized_name LIKE ? ORDER BY created_at",
			"%"+models.NormalizeName(name)+"%")
	case email != "":
		h.listUsers(w, r,
			"SELECT "+userColumns+" FROM users WHERE email = ?",
			strings.ToLower(strings.TrimSpace(email)))
	default:
		h.listUsers(w, r, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request, query string, args ...interface{}) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := h.DB.QueryContext(ctx, query, args...)
	if err != nil {
		utils.Logger.Errorf("failed to list users: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			utils.Logger.Errorf("failed to scan user row: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		users = append(users, *user)
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(users),
		"data":   users,
	})
}

// FUNC TO UPDATE A USER
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type request struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Status   string `json:"status"`
	}
	var req request
	if err := handlers.DecodeJSONBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Build dynamic update query
	fields := []string{}
	args := []interface{}{}
	if req.FullName != "" {
		fields = append(fields, "full_name = ?", "normalized_name = ?")
		args = append(args, strings.TrimSpace(req.FullName), models.NormalizeName(req.FullName))
	}
	if req.Email != "" {
		fields = append(fields, "email = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(req.Email)))
	}
	if req.Role != "" {
		fields = append(fields, "role = ?")
		args = append(args, req.Role)
	}
	if req.Status != "" {
		fields = append(fields, "status = ?")
		args = append(args, req.Status)
	}
	if len(fields) == 0 {
		utils.WriteError(w, "no fields to update", http.StatusBadRequest)
		return
	}
	fields = append(fields, "updated_at = ?")
	args = append(args, time.Now().UTC())

	id := r.PathValue("id")
	args = append(args, id)
	query := "UPDATE users SET " + strings.Join(fields, ", ") + " WHERE id = ?"
	result, err := h.DB.ExecContext(ctx, query, args...)
	if err != nil {
		if store.IsDuplicate(err) {
			utils.WriteError(w, "email already exists", http.StatusConflict)
			return
		}
		utils.Logger.Errorf("failed to update user: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		utils.WriteError(w, "user not found", http.StatusNotFound)
		return
	}

	row := h.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		utils.Logger.Errorf("failed to reload user: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "User updated successfully",
		"data":    user,
	})
}

// FUNC TO DELETE A USER
//
// Soft delete: the row is kept with status DELETED so memberships and
// invitation history stay resolvable.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := h.DB.ExecContext(ctx,
		"UPDATE users SET status = ?, updated_at = ? WHERE id = ? AND status <> ?",
		models.UserStatusDeleted, time.Now().UTC(), r.PathValue("id"), models.UserStatusDeleted)
	if err != nil {
		utils.Logger.Errorf("failed to delete user: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		utils.WriteError(w, "user not found", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "User deleted successfully",
	})
}
