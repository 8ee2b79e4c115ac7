package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// UserType distinguishes administrators from regular site members.
type UserType string

const (
	UserTypeAdmin UserType = "admin"
	UserTypeUser  UserType = "user"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserTypeAdmin || t == UserTypeUser
}

// User is a persisted account record. IDs are creation timestamps in milliseconds.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	UserType     UserType  `json:"userType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin type.
func (u *User) IsAdmin() bool {
	return u != nil && u.UserType == UserTypeAdmin
}

// Initial returns the upper-cased first letter of the full name, falling back to the email.
func (u *User) Initial() string {
	for _, s := range []string{u.FullName, u.Email} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(s)
		return strings.ToUpper(string(r))
	}
	return ""
}
