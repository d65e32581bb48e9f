package organizations

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"rosterly/internal/api/handlers"
	"rosterly/internal/models"
	"rosterly/internal/services"
	"rosterly/internal/store"
	"rosterly/pkg/utils"
)

type Handler struct {
	DB      *sql.DB
	Members *services.MembershipService
}

func NewHandler(db *sql.DB, members *services.MembershipService) *Handler {
	return &Handler{DB: db, Members: members}
}

var registryNumberPattern = regexp.MustCompile(`^[A-Za-z0-9\-]+$`)

const orgColumns = "id, registry_number, name, normalized_name, contact_email, company_size, year_founded, created_at, updated_at"

func scanOrganization(row interface {
	Scan(dest ...interface{}) error
}) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(&org.ID, &org.RegistryNumber, &org.Name, &org.NormalizedName,
		&org.ContactEmail, &org.CompanySize, &org.YearFounded, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// FUNC TO CREATE AN ORGANIZATION
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var org models.Organization
	if err := handlers.DecodeJSONBody(r, &org); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	org.Name = strings.TrimSpace(org.Name)
	org.RegistryNumber = strings.TrimSpace(org.RegistryNumber)
	if org.RegistryNumber == "" || !registryNumberPattern.MatchString(org.RegistryNumber) {
		utils.WriteError(w, "registry number must be alphanumeric", http.StatusBadRequest)
		return
	}
	if len(org.Name) < 2 || len(org.Name) > 100 {
		utils.WriteError(w, "organization name must be between 2 and 100 characters", http.StatusBadRequest)
		return
	}
	if org.ContactEmail == "" {
		utils.WriteError(w, "contact email is required", http.StatusBadRequest)
		return
	}
	if org.CompanySize < 1 {
		utils.WriteError(w, "company size must be at least 1", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	org.ID = uuid.NewString()
	org.NormalizedName = models.NormalizeName(org.Name)
	org.CreatedAt = now
	org.UpdatedAt = now

	query := `INSERT INTO organizations (` + orgColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := h.DB.ExecContext(ctx, query, org.ID, org.RegistryNumber, org.Name, org.NormalizedName,
		org.ContactEmail, org.CompanySize, org.YearFounded, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		if store.IsDuplicate(err) {
			utils.WriteError(w, fmt.Sprintf("registry number already exists: %s", org.RegistryNumber), http.StatusConflict)
			return
		}
		utils.Logger.Errorf("failed to create organization: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSONStatus(w, map[string]interface{}{
		"status":  "success",
		"message": "Organization created successfully",
		"data":    org,
	}, http.StatusCreated)
}

// FUNC TO GET ONE ORGANIZATION
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	row := h.DB.QueryRowContext(ctx, "SELECT "+orgColumns+" FROM organizations WHERE id = ?", r.PathValue("id"))
	org, err := scanOrganization(row)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "organization not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to get organization: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{"status": "success", "data": org})
}

// FUNC TO GET AN ORGANIZATION BY REGISTRY NUMBER
func (h *Handler) GetOrganizationByRegistryNumber(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	row := h.DB.QueryRowContext(ctx,
		"SELECT "+orgColumns+" FROM organizations WHERE registry_number = ?", r.PathValue("registryNumber"))
	org, err := scanOrganization(row)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "organization not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to get organization by registry number: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{"status": "success", "data": org})
}

// FUNC TO LIST ORGANIZATIONS
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.listOrganizations(w, r, "SELECT "+orgColumns+" FROM organizations ORDER BY created_at")
}

// FUNC TO SEARCH ORGANIZATIONS BY NAME OR BY (YEAR, SIZE)
func (h *Handler) SearchOrganizations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	yearStr := r.URL.Query().Get("year")
	sizeStr := r.URL.Query().Get("size")

	switch {
	case name != "":
		normalized := models.NormalizeName(name)
		h.listOrganizations(w, r,
			"SELECT "+orgColumns+" FROM organizations WHERE normalized_name LIKE ? ORDER BY created_at",
			"%"+normalized+"%")
	case yearStr != "" && sizeStr != "":
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			utils.WriteError(w, "invalid year", http.StatusBadRequest)
			return
		}
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			utils.WriteError(w, "invalid size", http.StatusBadRequest)
			return
		}
		h.listOrganizations(w, r,
			"SELECT "+orgColumns+" FROM organizations WHERE year_founded = ? AND company_size = ? ORDER BY created_at",
			year, size)
	default:
		h.listOrganizations(w, r, "SELECT "+orgColumns+" FROM organizations ORDER BY created_at")
	}
}

func (h *Handler) listOrganizations(w http.ResponseWriter, r *http.Request, query string, args ...interface{}) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := h.DB.QueryContext(ctx, query, args...)
	if err != nil {
		utils.Logger.Errorf("failed to list organizations: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	organizations := []models.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			utils.Logger.Errorf("failed to scan organization row: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		organizations = append(organizations, *org)
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(organizations),
		"data":   organizations,
	})
}

// FUNC TO UPDATE AN ORGANIZATION
func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type request struct {
		Name         string `json:"name"`
		ContactEmail string `json:"contact_email"`
		CompanySize  int    `json:"company_size"`
		YearFounded  int    `json:"year_founded"`
	}
	var req request
	if err := handlers.DecodeJSONBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Name != "" && (len(strings.TrimSpace(req.Name)) < 2 || len(req.Name) > 100) {
		utils.WriteError(w, "organization name must be between 2 and 100 characters", http.StatusBadRequest)
		return
	}
	if req.CompanySize < 0 {
		utils.WriteError(w, "company size must be at least 1", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Build dynamic update query
	fields := []string{}
	args := []interface{}{}
	if req.Name != "" {
		fields = append(fields, "name = ?", "normalized_name = ?")
		args = append(args, strings.TrimSpace(req.Name), models.NormalizeName(req.Name))
	}
	if req.ContactEmail != "" {
		fields = append(fields, "contact_email = ?")
		args = append(args, req.ContactEmail)
	}
	if req.CompanySize > 0 {
		fields = append(fields, "company_size = ?")
		args = append(args, req.CompanySize)
	}
	if req.YearFounded > 0 {
		fields = append(fields, "year_founded = ?")
		args = append(args, req.YearFounded)
	}
	if len(fields) == 0 {
		utils.WriteError(w, "no fields to update", http.StatusBadRequest)
		return
	}
	fields = append(fields, "updated_at = ?")
	args = append(args, time.Now().UTC())

	id := r.PathValue("id")
	args = append(args, id)
	query := "UPDATE organizations SET " + strings.Join(fields, ", ") + " WHERE id = ?"
	result, err := h.DB.ExecContext(ctx, query, args...)
	if err != nil {
		utils.Logger.Errorf("failed to update organization: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		utils.WriteError(w, "organization not found", http.StatusNotFound)
		return
	}

	row := h.DB.QueryRowContext(ctx, "SELECT "+orgColumns+" FROM organizations WHERE id = ?", id)
	org, err := scanOrganization(row)
	if err != nil {
		utils.Logger.Errorf("failed to reload organization: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "Organization updated successfully",
		"data":    org,
	})
}

// FUNC TO DELETE AN ORGANIZATION
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := h.DB.ExecContext(ctx, "DELETE FROM organizations WHERE id = ?", r.PathValue("id"))
	if err != nil {
		utils.Logger.Errorf("failed to delete organization: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		utils.WriteError(w, "organization not found", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "Organization deleted successfully",
	})
}
