// Package profile stores the business a user is assessing.
package profile

import (
	"strings"
	"time"

	"github.com/mind-engage/bizassess/internal/apperr"
)

type Profile struct {
	ID               string    `json:"id"`
	UserID           string    `json:"-"`
	BusinessName     string    `json:"businessName"`
	Sector           string    `json:"sector"`
	Country          string    `json:"country"`
	City             string    `json:"city"`
	EmployeeCount    int       `json:"employeeCount"`
	RegistrationType *string   `json:"registrationType"`
	ContactEmail     *string   `json:"contactEmail"`
	ContactPhone     *string   `json:"contactPhone"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Input carries the fields of a create or partial update. Nil means "not sent".
type Input struct {
	BusinessName     *string `json:"businessName"`
	Sector           *string `json:"sector"`
	Country          *string `json:"country"`
	City             *string `json:"city"`
	EmployeeCount    *int    `json:"employeeCount"`
	RegistrationType *string `json:"registrationType"`
	ContactEmail     *string `json:"contactEmail"`
	ContactPhone     *string `json:"contactPhone"`
}

func (in Input) empty() bool {
	return in.BusinessName == nil && in.Sector == nil && in.Country == nil && in.City == nil &&
		in.EmployeeCount == nil && in.RegistrationType == nil && in.ContactEmail == nil && in.ContactPhone == nil
}

// apply copies the provided fields onto p and validates the result.
func (in Input) apply(p *Profile) error {
	if in.BusinessName != nil {
		p.BusinessName = strings.TrimSpace(*in.BusinessName)
	}
	if in.Sector != nil {
		p.Sector = strings.TrimSpace(*in.Sector)
	}
	if in.Country != nil {
		p.Country = strings.TrimSpace(*in.Country)
	}
	if in.City != nil {
		p.City = strings.TrimSpace(*in.City)
	}
	if in.EmployeeCount != nil {
		p.EmployeeCount = *in.EmployeeCount
	}
	if in.RegistrationType != nil {
		p.RegistrationType = optional(*in.RegistrationType)
	}
	if in.ContactEmail != nil {
		p.ContactEmail = optional(*in.ContactEmail)
	}
	if in.ContactPhone != nil {
		p.ContactPhone = optional(*in.ContactPhone)
	}

	var details []apperr.FieldError
	if len([]rune(p.BusinessName)) < 2 {
		details = append(details, apperr.FieldError{Field: "businessName", Message: "Business name must be at least 2 characters"})
	}
	if p.Sector == "" {
		details = append(details, apperr.FieldError{Field: "sector", Message: "Sector is required"})
	}
	if p.Country == "" {
		details = append(details, apperr.FieldError{Field: "country", Message: "Country is required"})
	}
	if p.City == "" {
		details = append(details, apperr.FieldError{Field: "city", Message: "City is required"})
	}
	if p.EmployeeCount < 0 {
		details = append(details, apperr.FieldError{Field: "employeeCount", Message: "Employee count must be a non-negative integer"})
	}
	if len(details) > 0 {
		return apperr.Invalid("Validation failed", details...)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
