package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/site-auth/internal/domain"
	"github.com/spec-kit/site-auth/internal/events"
	"github.com/spec-kit/site-auth/internal/repository"
)

const previewRunes = 120

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Service string
	Message string
}

// ContactService records contact form submissions and notifies the team.
type ContactService struct {
	inquiries  repository.InquiryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewContactService constructs the service.
func NewContactService(inquiries repository.InquiryRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	return &ContactService{inquiries: inquiries, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// Submit stores the inquiry and publishes contact_submitted.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*domain.ContactInquiry, error) {
	inquiry := &domain.ContactInquiry{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Service:   in.Service,
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, err
	}

	payload := events.ContactSubmittedPayload{
		Name:           inquiry.Name,
		Email:          inquiry.Email,
		Service:        inquiry.Service,
		MessagePreview: preview(inquiry.Message),
	}
	if err := s.dispatcher.Publish(ctx, events.New(events.EventContactSubmitted, inquiry.ID, events.Actor{Email: inquiry.Email}, payload)); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(events.EventContactSubmitted)), zap.Error(err))
	}
	return inquiry, nil
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewRunes]) + "…"
}
