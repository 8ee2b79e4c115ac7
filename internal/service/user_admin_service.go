package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/site-auth/internal/domain"
	"github.com/spec-kit/site-auth/internal/events"
	"github.com/spec-kit/site-auth/internal/repository"
)

const (
	defaultInquiryLimit = 50
	maxInquiryLimit     = 500
)

// UserAdminService backs the admin dashboard.
type UserAdminService struct {
	users      repository.UserRepository
	inquiries  repository.InquiryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserAdminService constructs the service.
func NewUserAdminService(users repository.UserRepository, inquiries repository.InquiryRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserAdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	return &UserAdminService{users: users, inquiries: inquiries, dispatcher: dispatcher, logger: logger}
}

// ListUsers returns every non-admin account in creation order.
func (s *UserAdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.UserType == domain.UserTypeAdmin {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// DeleteUser removes a regular account. The actor's own account and admin
// accounts are never removed.
func (s *UserAdminService) DeleteUser(ctx context.Context, actor *domain.User, userID int64) error {
	if actor != nil && actor.ID == userID {
		return ErrSelfDelete
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if target.IsAdmin() {
		return ErrProtectedUser
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	evActor := events.Actor{}
	if actor != nil {
		evActor = events.Actor{UserID: &actor.ID, Email: actor.Email}
	}
	if err := s.dispatcher.Publish(ctx, events.New(events.EventUserDeleted, formatID(target.ID), evActor, userPayload(target))); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(events.EventUserDeleted)), zap.Error(err))
	}
	s.logger.Info("user deleted", zap.Int64("user_id", target.ID), zap.Any("actor", evActor))
	return nil
}

// ListInquiries returns the newest contact form submissions.
func (s *UserAdminService) ListInquiries(ctx context.Context, limit int) ([]domain.ContactInquiry, error) {
	switch {
	case limit <= 0:
		limit = defaultInquiryLimit
	case limit > maxInquiryLimit:
		limit = maxInquiryLimit
	}
	return s.inquiries.List(ctx, limit)
}
