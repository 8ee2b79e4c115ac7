package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventUserDeleted, func(_ context.Context, e Event) error {
		got = append(got, "deleted")
		return nil
	})

	err := d.Publish(context.Background(), New(EventUserRegistered, "42", Actor{}, nil))
	assert.NoError(t, err)
	assert.Equal(t, []string{"first:42", "second:42"}, got)
}

func TestDispatcherRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0
	d.Subscribe(EventContactSubmitted, func(context.Context, Event) error { calls++; return boom })
	d.Subscribe(EventContactSubmitted, func(context.Context, Event) error { calls++; return nil })

	err := d.Publish(context.Background(), New(EventContactSubmitted, "x", Actor{}, nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestNewStampsEvent(t *testing.T) {
	e := New(EventAdminSeeded, "1", Actor{}, UserPayload{Email: "a@x.com"})
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, EventAdminSeeded, e.Type)
}
