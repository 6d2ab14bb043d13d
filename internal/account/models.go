// Package account manages user accounts and credentials.
package account

import "time"

type User struct {
	ID            string
	Email         string
	PasswordHash  []byte
	FullName      string
	Role          string
	IsActive      bool
	EmailVerified bool
	CreatedAt     time.Time
	LastLogin     *time.Time
}

// View is the public shape of a user.
type View struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FullName      string     `json:"fullName"`
	Role          string     `json:"role"`
	IsActive      bool       `json:"isActive"`
	EmailVerified bool       `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLogin     *time.Time `json:"lastLogin"`
}

func (u User) View() View {
	return View{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          u.Role,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		LastLogin:     u.LastLogin,
	}
}

// AccessUpdate is an administrator's change to another account.
type AccessUpdate struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}
