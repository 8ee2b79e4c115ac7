package dto

import (
	"net/mail"
	"strings"
)

const (
	maxNameLen       = 120
	maxMessageLen    = 5000
	minPasswordLen   = 6
	// bcrypt rejects anything longer.
	maxPasswordBytes = 72
)

// FieldErrors collects per-field validation messages.
type FieldErrors map[string]any

func (f FieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// Normalize trims surrounding whitespace. Email case is preserved because
// accounts are matched on the exact address.
func (r *RegisterRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
}

// Validate performs the signup form checks.
func (r *RegisterRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if r.FullName == "" {
		errs.add("fullName", "required")
	} else if len(r.FullName) > maxNameLen {
		errs.add("fullName", "too long")
	}
	validateEmail(errs, r.Email)
	if r.Password == "" {
		errs.add("password", "required")
	} else if len(r.Password) < minPasswordLen {
		errs.add("password", "must be at least 6 characters")
	} else if len(r.Password) > maxPasswordBytes {
		errs.add("password", "too long")
	}
	if r.ConfirmPassword != r.Password {
		errs.add("confirmPassword", "passwords do not match")
	}
	return errs
}

// Normalize trims surrounding whitespace from the email.
func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// Validate checks required login fields.
func (r *LoginRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if r.Email == "" {
		errs.add("email", "required")
	}
	if r.Password == "" {
		errs.add("password", "required")
	}
	return errs
}

// Validate checks the password change payload.
func (r *PasswordChangeRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if r.CurrentPassword == "" {
		errs.add("currentPassword", "required")
	}
	if r.NewPassword == "" {
		errs.add("newPassword", "required")
	} else if len(r.NewPassword) < minPasswordLen {
		errs.add("newPassword", "must be at least 6 characters")
	} else if len(r.NewPassword) > maxPasswordBytes {
		errs.add("newPassword", "too long")
	}
	return errs
}

// Normalize trims surrounding whitespace.
func (r *ContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Service = strings.TrimSpace(r.Service)
	r.Message = strings.TrimSpace(r.Message)
}

// Validate checks the contact form.
func (r *ContactRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if r.Name == "" {
		errs.add("name", "required")
	} else if len(r.Name) > maxNameLen {
		errs.add("name", "too long")
	}
	validateEmail(errs, r.Email)
	if r.Message == "" {
		errs.add("message", "required")
	} else if len(r.Message) > maxMessageLen {
		errs.add("message", "too long")
	}
	return errs
}

func validateEmail(errs FieldErrors, email string) {
	if email == "" {
		errs.add("email", "required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs.add("email", "invalid email address")
	}
}
