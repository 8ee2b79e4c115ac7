package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/site-auth/internal/domain"
	apperrors "github.com/spec-kit/site-auth/pkg/util/errorutil"
)

const principalKey = "auth_principal"

var errAnonymous = errors.New("anonymous")

// Principal represents the authenticated caller.
type Principal struct {
	SessionID string
	User      *domain.User
}

// ErrNoSession is returned by a SessionResolver when the session does not exist,
// has expired, or belongs to a deleted account.
var ErrNoSession = errors.New("no active session")

// SessionResolver maps a session id to the live user record behind it.
type SessionResolver interface {
	CurrentUser(ctx context.Context, sessionID string) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and loads the session behind them.
type AuthMiddleware struct {
	tokens    *TokenManager
	sessions  SessionResolver
	loginPath string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions SessionResolver, loginPath string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, loginPath: loginPath}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		if errors.Is(err, errAnonymous) {
			return apperrors.WithRedirect(apperrors.NewUnauthorized("authentication required"), m.loginPath)
		}
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional loads the principal when a valid token is present and lets anonymous callers through.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	principal, err := m.authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil && !errors.Is(err, errAnonymous) {
		return err
	}
	if principal != nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

// LoginPath returns where unauthenticated browsers are sent.
func (m *AuthMiddleware) LoginPath() string {
	return m.loginPath
}

// authenticate returns errAnonymous for every "not signed in" case and a
// different error only when a store fails.
func (m *AuthMiddleware) authenticate(ctx context.Context, header string) (*Principal, error) {
	if header == "" {
		return nil, errAnonymous
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errAnonymous
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, errAnonymous
	}

	user, err := m.sessions.CurrentUser(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, errAnonymous
		}
		return nil, apperrors.NewInternalError(err)
	}
	if user.ID != claims.UserID {
		return nil, errAnonymous
	}

	return &Principal{SessionID: claims.SessionID(), User: user}, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
