package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/site-auth/internal/auth"
	"github.com/spec-kit/site-auth/internal/config"
	"github.com/spec-kit/site-auth/internal/domain"
	"github.com/spec-kit/site-auth/internal/events"
	"github.com/spec-kit/site-auth/internal/observability"
	"github.com/spec-kit/site-auth/internal/repository"
)

// AuthResult is returned by flows that sign a caller in.
type AuthResult struct {
	User      *domain.User
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// RegisterInput carries a new account's details. Form-level checks such as
// password confirmation happen before the service is called.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// AuthService is the single source of truth for who is signed in.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	tokenMgr   *auth.TokenManager
	bcryptCost int
	adminSeed  adminSeed
	ids        *idClock
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type adminSeed struct {
	name     string
	email    string
	password string
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionRepo,
		dispatcher: dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
		adminSeed: adminSeed{
			name:     cfg.Auth.AdminName,
			email:    cfg.Auth.AdminEmail,
			password: cfg.Auth.AdminPassword,
		},
		ids: newIDClock(time.Now),
		now: time.Now,
	}
}

// Initialize seeds the administrator account when the store has none.
// It reports whether an admin was created and is safe to call on every start.
func (s *AuthService) Initialize(ctx context.Context) (bool, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return false, err
	}
	for i := range users {
		if users[i].IsAdmin() {
			s.logger.Debug("admin present; skipping seed", zap.Int64("user_id", users[i].ID))
			return false, nil
		}
	}

	if s.adminSeed.email == "" || s.adminSeed.password == "" {
		return false, ErrAdminCredentialsMissing
	}

	hash, err := auth.HashPassword(s.adminSeed.password, s.bcryptCost)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		ID:           s.ids.Next(),
		FullName:     s.adminSeed.name,
		Email:        s.adminSeed.email,
		PasswordHash: hash,
		UserType:     domain.UserTypeAdmin,
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.users.EnsureAdmin(ctx, admin)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	s.logger.Info("seeded admin account", zap.Int64("user_id", admin.ID), zap.String("email", admin.Email))
	s.metrics.RecordAuthEvent("admin_seeded")
	s.publish(ctx, events.New(events.EventAdminSeeded, formatID(admin.ID), events.Actor{}, userPayload(admin)))
	return true, nil
}

// Login signs in the account whose email matches exactly and whose password verifies.
// Failed attempts leave every existing session untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		// Burn the same bcrypt time as a real comparison.
		_ = auth.ComparePassword(s.timingHash(), password)
		s.metrics.RecordAuthEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if !auth.IsMismatch(err) {
			s.logger.Error("stored password hash unusable", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		s.metrics.RecordAuthEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	result, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordAuthEvent("login")
	return result, nil
}

// Register creates a regular account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           s.ids.Next(),
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		UserType:     domain.UserTypeUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.metrics.RecordAuthEvent("register")
	s.publish(ctx, events.New(events.EventUserRegistered, formatID(user.ID),
		events.Actor{UserID: &user.ID, Email: user.Email}, userPayload(user)))

	return s.startSession(ctx, user)
}

// Logout ends the session. Unknown or empty session ids are not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.metrics.RecordAuthEvent("logout")
	return nil
}

// CurrentUser resolves a session to the live account behind it.
// Sessions of deleted accounts are removed and reported as auth.ErrNoSession.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, auth.ErrNoSession
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrNoSession
		}
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, auth.ErrNoSession
	}

	user, err := s.users.GetByID(ctx, session.User.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.sessions.Delete(ctx, sessionID)
			return nil, auth.ErrNoSession
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.metrics.RecordAuthEvent("password_changed")
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	sessionID := uuid.NewString()
	token, exp, err := s.tokenMgr.GenerateToken(sessionID, user)
	if err != nil {
		return nil, err
	}

	snapshot := *user
	snapshot.PasswordHash = ""
	session := &domain.Session{
		ID:        sessionID,
		User:      snapshot,
		CreatedAt: s.now().UTC(),
		ExpiresAt: exp,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, SessionID: sessionID, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword(uuid.NewString(), s.bcryptCost)
		if err != nil {
			s.logger.Warn("unable to build timing hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func userPayload(u *domain.User) events.UserPayload {
	return events.UserPayload{FullName: u.FullName, Email: u.Email, UserType: string(u.UserType)}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
