package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAdminSeeded      EventType = "admin_seeded"
	EventUserRegistered   EventType = "user_registered"
	EventUserDeleted      EventType = "user_deleted"
	EventContactSubmitted EventType = "contact_submitted"
)

// Actor identifies who caused an event. UserID is nil for anonymous visitors and the system.
type Actor struct {
	UserID *int64 `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subjectID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserPayload describes the account an event is about.
type UserPayload struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

// ContactSubmittedPayload payload.
type ContactSubmittedPayload struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Service        string `json:"service,omitempty"`
	MessagePreview string `json:"message_preview"`
}
