package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/site-auth/internal/config"
	"github.com/spec-kit/site-auth/internal/events"
)

// NotificationService handles emitting notifications for domain events.
// Delivery is driven by worker.NotificationWorker, which calls Handle off the request path.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		logger: logger,
		cfg:    cfg,
	}
}

// EventTypes lists the events the service reacts to.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventAdminSeeded,
		events.EventUserRegistered,
		events.EventUserDeleted,
		events.EventContactSubmitted,
	}
}

// Handle routes an event to its notification handler.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventAdminSeeded:
		return n.handleAdminSeeded(ctx, event)
	case events.EventUserRegistered:
		return n.handleUserRegistered(ctx, event)
	case events.EventUserDeleted:
		return n.handleUserDeleted(ctx, event)
	case events.EventContactSubmitted:
		return n.handleContactSubmitted(ctx, event)
	default:
		return nil
	}
}

func (n *NotificationService) handleAdminSeeded(ctx context.Context, event events.Event) error {
	n.logger.Warn("AdminSeeded; rotate the seeded admin password", zap.String("user_id", event.SubjectID))
	return nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.SubjectID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.UserPayload); ok {
		n.sendEmailNotificationStub(ctx, event, payload.Email)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("UserDeleted", zap.String("user_id", event.SubjectID), zap.Any("actor", event.Actor))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleContactSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ContactSubmitted", zap.String("inquiry_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event, n.cfg.EmailTo)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || strings.TrimSpace(to) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
