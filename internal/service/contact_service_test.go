package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/site-auth/internal/events"
	"github.com/spec-kit/site-auth/internal/repository"
)

func TestContactSubmit(t *testing.T) {
	inquiries := repository.NewMemoryInquiryRepository()
	dispatcher := events.NewInMemoryDispatcher()
	var got []events.Event
	dispatcher.Subscribe(events.EventContactSubmitted, func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})
	svc := NewContactService(inquiries, dispatcher, nil)
	ctx := context.Background()

	inq, err := svc.Submit(ctx, ContactInput{
		Name:    "Ana",
		Email:   "ana@x.com",
		Service: "cloud-migration",
		Message: strings.Repeat("é", 200),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, inq.ID)

	stored, err := inquiries.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, inq.ID, stored[0].ID)

	require.Len(t, got, 1)
	payload := got[0].Payload.(events.ContactSubmittedPayload)
	assert.Equal(t, previewRunes+1, utf8.RuneCountInString(payload.MessagePreview))
	assert.Equal(t, inq.ID, got[0].SubjectID)
}

func TestPreviewShortMessage(t *testing.T) {
	assert.Equal(t, "hello", preview("hello"))
}
