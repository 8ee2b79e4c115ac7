package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/site-auth/internal/auth"
	"github.com/spec-kit/site-auth/internal/config"
	"github.com/spec-kit/site-auth/internal/domain"
	"github.com/spec-kit/site-auth/internal/events"
	"github.com/spec-kit/site-auth/internal/observability"
	"github.com/spec-kit/site-auth/internal/repository"
)

type authFixture struct {
	svc        *AuthService
	users      *repository.MemoryUserRepository
	sessions   *repository.MemorySessionRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
		AdminName:             "Hari",
		AdminEmail:            "hari@gmail.com",
		AdminPassword:         "Hari@123",
	}}
}

func newAuthFixture(t *testing.T, cfg config.Config) *authFixture {
	t.Helper()
	f := &authFixture{
		users:      repository.NewMemoryUserRepository(),
		sessions:   repository.NewMemorySessionRepository(),
		dispatcher: events.NewInMemoryDispatcher(),
		metrics:    observability.NewMetrics(),
	}
	f.svc = NewAuthService(cfg, AuthDependencies{
		UserRepo:    f.users,
		SessionRepo: f.sessions,
		Dispatcher:  f.dispatcher,
		Metrics:     f.metrics,
	})
	return f
}

func countAdmins(t *testing.T, repo repository.UserRepository) int {
	t.Helper()
	users, err := repo.List(context.Background())
	require.NoError(t, err)
	n := 0
	for _, u := range users {
		if u.IsAdmin() {
			n++
		}
	}
	return n
}

func TestInitializeSeedsAdminOnFreshStore(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	var seeded []events.Event
	f.dispatcher.Subscribe(events.EventAdminSeeded, func(_ context.Context, e events.Event) error {
		seeded = append(seeded, e)
		return nil
	})

	created, err := f.svc.Initialize(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, countAdmins(t, f.users))
	assert.Len(t, seeded, 1)

	admin, err := f.users.GetByEmail(context.Background(), "hari@gmail.com")
	require.NoError(t, err)
	assert.NotEqual(t, "Hari@123", admin.PasswordHash)
	assert.NoError(t, auth.ComparePassword(admin.PasswordHash, "Hari@123"))
}

func TestInitializeIsIdempotent(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	ctx := context.Background()

	_, err := f.svc.Initialize(ctx)
	require.NoError(t, err)
	created, err := f.svc.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, countAdmins(t, f.users))
}

func TestInitializeConcurrentStartsSeedOneAdmin(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc := NewAuthService(testConfig(), AuthDependencies{
				UserRepo:    users,
				SessionRepo: repository.NewMemorySessionRepository(),
			})
			_, err := svc.Initialize(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, countAdmins(t, users))
}

func TestInitializeKeepsExistingAdmin(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &domain.User{ID: 1, Email: "boss@x.com", UserType: domain.UserTypeAdmin}))

	created, err := f.svc.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, countAdmins(t, f.users))
	_, err = f.users.GetByEmail(ctx, "hari@gmail.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInitializeWithoutAdminCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.AdminEmail, cfg.Auth.AdminPassword = "", ""
	f := newAuthFixture(t, cfg)

	_, err := f.svc.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrAdminCredentialsMissing)
}

func TestRegisterThenLoginYieldsSameUser(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeUser, reg.User.UserType)
	assert.NotEmpty(t, reg.Token)

	login, err := f.svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	current, err := f.svc.CurrentUser(ctx, login.SessionID)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, current.ID)
}

func TestRegisterSignsInImmediately(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	ctx := context.Background()
	_, err := f.svc.Initialize(ctx)
	require.NoError(t, err)

	reg, err := f.svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	current, err := f.svc.CurrentUser(ctx, reg.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", current.Email)

	session, err := f.sessions.Get(ctx, reg.SessionID)
	require.NoError(t, err)
	assert.Empty(t, session.User.PasswordHash, "session snapshot carries no hash")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, RegisterInput{FullName: "B", Email: "a@x.com", Password: "p2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterAssignsDistinctIDs(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	fixed := time.UnixMilli(1700000000000)
	f.svc.ids = newIDClock(func() time.Time { return fixed })
	ctx := context.Background()

	a, err := f.svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	b, err := f.svc.Register(ctx, RegisterInput{FullName: "B", Email: "b@x.com", Password: "p"})
	require.NoError(t, err)

	assert.Equal(t, int64(1700000000000), a.User.ID)
	assert.Equal(t, int64(1700000000001), b.User.ID)
}

func TestLoginWrongPasswordLeavesSessionsUntouched(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	before := f.sessions.Len()

	_, err = f.svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "nobody@x.com", "p1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "A@X.COM", "p1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "email comparison is case-sensitive")

	assert.Equal(t, before, f.sessions.Len())
	current, err := f.svc.CurrentUser(ctx, reg.SessionID)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, current.ID)
	assert.Equal(t, int64(3), f.metrics.Snapshot().AuthEvents["login_failed"])
}

func TestLogoutClearsSessionAndIsIdempotent(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, reg.SessionID))
	_, err = f.svc.CurrentUser(ctx, reg.SessionID)
	assert.ErrorIs(t, err, auth.ErrNoSession)

	assert.NoError(t, f.svc.Logout(ctx, reg.SessionID))
	assert.NoError(t, f.svc.Logout(ctx, ""))
	assert.NoError(t, f.svc.Logout(ctx, "never-existed"))
}

func TestCurrentUserDropsSessionOfDeletedUser(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	require.NoError(t, f.users.Delete(ctx, reg.User.ID))

	_, err = f.svc.CurrentUser(ctx, reg.SessionID)
	assert.ErrorIs(t, err, auth.ErrNoSession)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.com", Password: "old"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, reg.User.ID, "bad", "new"), ErrInvalidCredentials)
	require.NoError(t, f.svc.ChangePassword(ctx, reg.User.ID, "old", "new"))

	_, err = f.svc.Login(ctx, "a@x.com", "old")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "a@x.com", "new")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, 999, "x", "y"), ErrUserNotFound)
}

func TestRegisterPublishesEventEvenIfHandlerFails(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	f.dispatcher.Subscribe(events.EventUserRegistered, func(context.Context, events.Event) error {
		return errors.New("smtp down")
	})

	_, err := f.svc.Register(context.Background(), RegisterInput{FullName: "A", Email: "a@x.com", Password: "p"})
	assert.NoError(t, err)
}

func TestOverlongPasswordIsRejected(t *testing.T) {
	f := newAuthFixture(t, testConfig())
	ctx := context.Background()
	long := strings.Repeat("x", 73)

	_, err := f.svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.com", Password: long})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	_, err = f.users.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	res, err := f.svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.ChangePassword(ctx, res.User.ID, "secret1", long), ErrPasswordTooLong)

	_, err = f.svc.Login(ctx, "a@x.com", "secret1")
	assert.NoError(t, err)
}
