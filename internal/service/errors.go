package service

import (
	"errors"

	"github.com/spec-kit/site-auth/internal/auth"
	"github.com/spec-kit/site-auth/internal/repository"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = repository.ErrEmailTaken
	// ErrPasswordTooLong is returned when a new password cannot be hashed because of its length.
	ErrPasswordTooLong = auth.ErrPasswordTooLong
	// ErrAdminCredentialsMissing is returned when no admin exists and none is configured.
	ErrAdminCredentialsMissing = errors.New("no admin account exists and AUTH_ADMIN_EMAIL/AUTH_ADMIN_PASSWORD are not set")
	// ErrUserNotFound is returned when the target account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfDelete is returned when an admin tries to delete their own account.
	ErrSelfDelete = errors.New("cannot delete the account you are signed in with")
	// ErrProtectedUser is returned when deleting an admin account.
	ErrProtectedUser = errors.New("admin accounts cannot be deleted")
)
