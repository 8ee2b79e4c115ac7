package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/site-auth/internal/domain"
	"github.com/spec-kit/site-auth/internal/repository"
	apperrors "github.com/spec-kit/site-auth/pkg/util/errorutil"
)

// repoResolver resolves sessions straight from the stores, dropping sessions of deleted users.
type repoResolver struct {
	sessions *repository.MemorySessionRepository
	users    *repository.MemoryUserRepository
}

func (r repoResolver) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	session, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, ErrNoSession
	}
	user, err := r.users.GetByID(ctx, session.User.ID)
	if err != nil {
		_ = r.sessions.Delete(ctx, sessionID)
		return nil, ErrNoSession
	}
	return user, nil
}

type fixture struct {
	tokens   *TokenManager
	sessions *repository.MemorySessionRepository
	users    *repository.MemoryUserRepository
	mw       *AuthMiddleware
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tokens:   NewTokenManager("secret", time.Hour),
		sessions: repository.NewMemorySessionRepository(),
		users:    repository.NewMemoryUserRepository(),
	}
	f.mw = NewAuthMiddleware(f.tokens, repoResolver{sessions: f.sessions, users: f.users}, "/login")
	return f
}

func (f *fixture) signIn(t *testing.T, user *domain.User) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, user))
	require.NoError(t, f.sessions.Save(ctx, &domain.Session{ID: "sess-" + user.Email, User: *user, ExpiresAt: time.Now().Add(time.Hour)}))
	token, _, err := f.tokens.GenerateToken("sess-"+user.Email, user)
	require.NoError(t, err)
	return token
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).SendString(fe.Message)
		}
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code, "details": de.Details})
	}})
}

func do(t *testing.T, app *fiber.App, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	body := map[string]any{}
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body
}

func TestHandleLoadsPrincipal(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t, &domain.User{ID: 1, Email: "a@x.com", UserType: domain.UserTypeUser})

	app := newTestApp()
	app.Get("/", f.mw.Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendString(p.User.Email)
	})

	status, _ := do(t, app, token)
	assert.Equal(t, http.StatusOK, status)
}

func TestHandleRejectsAnonymousWithRedirect(t *testing.T) {
	f := newFixture(t)
	app := newTestApp()
	app.Get("/", f.mw.Handle, func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	for _, token := range []string{"", "garbage"} {
		status, body := do(t, app, token)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, apperrors.CodeUnauthorized, body["code"])
		assert.Equal(t, "/login", body["details"].(map[string]any)["redirect"])
	}
}

func TestHandleRejectsEndedSession(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t, &domain.User{ID: 1, Email: "a@x.com", UserType: domain.UserTypeUser})
	require.NoError(t, f.sessions.Delete(context.Background(), "sess-a@x.com"))

	app := newTestApp()
	app.Get("/", f.mw.Handle, func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	status, _ := do(t, app, token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHandleDropsSessionOfDeletedUser(t *testing.T) {
	f := newFixture(t)
	token := f.signIn(t, &domain.User{ID: 1, Email: "a@x.com", UserType: domain.UserTypeUser})
	require.NoError(t, f.users.Delete(context.Background(), 1))

	app := newTestApp()
	app.Get("/", f.mw.Handle, func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	status, _ := do(t, app, token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestOptionalLetsAnonymousThrough(t *testing.T) {
	f := newFixture(t)
	app := newTestApp()
	app.Get("/", f.mw.Optional, func(c *fiber.Ctx) error {
		_, ok := PrincipalFromContext(c)
		if ok {
			return c.SendString("user")
		}
		return c.SendString("anonymous")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "anonymous", string(raw))
}

func TestRequireUserType(t *testing.T) {
	f := newFixture(t)
	userToken := f.signIn(t, &domain.User{ID: 1, Email: "u@x.com", UserType: domain.UserTypeUser})
	adminToken := f.signIn(t, &domain.User{ID: 2, Email: "admin@x.com", UserType: domain.UserTypeAdmin})

	app := newTestApp()
	app.Get("/", f.mw.Optional, RequireUserType("/login", domain.UserTypeAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	status, body := do(t, app, userToken)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "/login", body["details"].(map[string]any)["redirect"])

	status, _ = do(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, app, adminToken)
	assert.Equal(t, http.StatusOK, status)
}

func TestRequireAuthenticated(t *testing.T) {
	f := newFixture(t)
	app := newTestApp()
	app.Get("/", f.mw.Optional, RequireAuthenticated("/login"), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	status, _ := do(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}
