package handlers

import (
	"errors"

	"github.com/spec-kit/site-auth/internal/api/dto"
	"github.com/spec-kit/site-auth/internal/service"
	apperrors "github.com/spec-kit/site-auth/pkg/util/errorutil"
)

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid email or password")
	case errors.Is(err, service.ErrEmailTaken):
		return apperrors.NewConflict("email already registered", map[string]any{"email": "already registered"})
	case errors.Is(err, service.ErrPasswordTooLong):
		return apperrors.NewValidationError("validation failed", map[string]any{"password": "too long"})
	case errors.Is(err, service.ErrUserNotFound):
		return apperrors.NewNotFound("user", nil)
	case errors.Is(err, service.ErrSelfDelete), errors.Is(err, service.ErrProtectedUser):
		return apperrors.NewForbidden(err.Error())
	default:
		return apperrors.NewInternalError(err)
	}
}

func validationError(errs dto.FieldErrors) error {
	if len(errs) == 0 {
		return nil
	}
	return apperrors.NewValidationError("validation failed", errs)
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
