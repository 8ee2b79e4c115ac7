package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	orig := NewForbidden("nope")
	wrapped := fmt.Errorf("outer: %w", orig)

	got := ToDomainError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodeForbidden, got.Code)
	assert.Equal(t, http.StatusForbidden, got.HTTPStatus)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("boom")
	got := ToDomainError(cause)

	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, ToDomainError(nil))
}

func TestWithRedirect(t *testing.T) {
	base := NewUnauthorized("login required")
	got := WithRedirect(base, "/login")

	var de *DomainError
	require.ErrorAs(t, got, &de)
	assert.Equal(t, "/login", de.Details["redirect"])
	assert.Nil(t, base.(*DomainError).Details, "original must not be mutated")

	plain := errors.New("x")
	assert.Same(t, plain, WithRedirect(plain, "/login"))
}

func TestFromStatus(t *testing.T) {
	cases := map[int]string{
		http.StatusNotFound:            CodeNotFound,
		http.StatusUnauthorized:        CodeUnauthorized,
		http.StatusTooManyRequests:     CodeRateLimited,
		http.StatusBadRequest:          CodeBadRequest,
		http.StatusServiceUnavailable:  CodeInternal,
		http.StatusUnprocessableEntity: CodeBadRequest,
	}
	for status, code := range cases {
		de := FromStatus(status, "")
		assert.Equal(t, code, de.Code, "status %d", status)
		assert.Equal(t, http.StatusText(status), de.Message)
	}
}

func TestNewNotFoundMessage(t *testing.T) {
	err := NewNotFound("user", nil)
	assert.EqualError(t, err, "user not found")
}
