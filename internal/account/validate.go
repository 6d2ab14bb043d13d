package account

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/mind-engage/bizassess/internal/apperr"
)

const (
	minPasswordLen = 10
	minNameLen     = 2
	// bcrypt ignores input past 72 bytes.
	maxPasswordLen = 72
)

// NormalizeEmail trims and lowercases an address and checks that it parses.
func NormalizeEmail(raw string) (string, bool) {
	e := strings.ToLower(strings.TrimSpace(raw))
	if e == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e || !strings.Contains(e[strings.LastIndexByte(e, '@')+1:], ".") {
		return "", false
	}
	return e, true
}

// ValidatePassword returns a non-empty message when pw is too weak.
func ValidatePassword(pw string) string {
	if len(pw) < minPasswordLen {
		return "Password must be at least 10 characters long"
	}
	if len(pw) > maxPasswordLen {
		return "Password must be at most 72 bytes long"
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	switch {
	case !upper:
		return "Password must contain at least one uppercase letter"
	case !lower:
		return "Password must contain at least one lowercase letter"
	case !digit:
		return "Password must contain at least one number"
	case !special:
		return "Password must contain at least one special character"
	}
	return ""
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (in *RegisterInput) validate() error {
	var details []apperr.FieldError
	email, ok := NormalizeEmail(in.Email)
	if !ok {
		details = append(details, apperr.FieldError{Field: "email", Message: "Invalid email address"})
	}
	in.Email = email
	in.FullName = strings.TrimSpace(in.FullName)
	if len([]rune(in.FullName)) < minNameLen {
		details = append(details, apperr.FieldError{Field: "fullName", Message: "Full name must be at least 2 characters"})
	}
	if msg := ValidatePassword(in.Password); msg != "" {
		details = append(details, apperr.FieldError{Field: "password", Message: msg})
	}
	if len(details) > 0 {
		return apperr.Invalid("Validation failed", details...)
	}
	return nil
}
