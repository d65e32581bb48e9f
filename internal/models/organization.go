package models

import (
	"strings"
	"time"
)

type Organization struct {
	ID             string    `json:"id,omitempty" db:"id"`
	RegistryNumber string    `json:"registry_number,omitempty" db:"registry_number"`
	Name           string    `json:"name,omitempty" db:"name"`
	NormalizedName string    `json:"normalized_name,omitempty" db:"normalized_name"`
	ContactEmail   string    `json:"contact_email,omitempty" db:"contact_email"`
	CompanySize    int       `json:"company_size,omitempty" db:"company_size"`
	YearFounded    int       `json:"year_founded,omitempty" db:"year_founded"`
	CreatedAt      time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

var turkishFolder = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ı", "i", "İ", "i",
	"ö", "o", "Ö", "o",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
)

// NormalizeName lowercases a display name, folds Turkish characters to their
// ASCII counterparts and strips everything outside [a-z0-9]. Used for the
// search index columns on organizations and users.
func NormalizeName(name string) string {
	folded := strings.ToLower(turkishFolder.Replace(strings.TrimSpace(name)))
	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
