package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/site-auth/internal/domain"
)

const (
	usersKey      = "users"
	maxTxAttempts = 10
)

// ErrConflict is returned when an optimistic Redis transaction keeps losing races.
var ErrConflict = errors.New("concurrent modification, retry later")

// RedisUserRepository stores the whole collection as one JSON array under the users key.
// Writes run inside WATCH/MULTI so concurrent writers cannot overwrite each other.
type RedisUserRepository struct {
	client redis.UniversalClient
	key    string
}

// NewRedisUserRepository returns a Redis-backed implementation using keyPrefix+"users".
func NewRedisUserRepository(client redis.UniversalClient, keyPrefix string) *RedisUserRepository {
	return &RedisUserRepository{client: client, key: keyPrefix + usersKey}
}

func (r *RedisUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].Email == user.Email {
				return nil, ErrEmailTaken
			}
		}
		return append(users, *user), nil
	})
}

func (r *RedisUserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		idx := -1
		for i := range users {
			if users[i].ID == user.ID {
				idx = i
			} else if users[i].Email == user.Email {
				return nil, ErrEmailTaken
			}
		}
		if idx < 0 {
			return nil, ErrNotFound
		}
		users[idx] = *user
		return users, nil
	})
}

func (r *RedisUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	users, err := r.load(ctx, r.client)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *RedisUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.load(ctx, r.client)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *RedisUserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.load(ctx, r.client)
}

func (r *RedisUserRepository) Delete(ctx context.Context, id int64) error {
	return r.mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID == id {
				return append(users[:i], users[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

func (r *RedisUserRepository) EnsureAdmin(ctx context.Context, admin *domain.User) (bool, error) {
	created := false
	err := r.mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		created = false
		for i := range users {
			if users[i].UserType == domain.UserTypeAdmin {
				return nil, errSkipWrite
			}
		}
		for i := range users {
			if users[i].Email == admin.Email {
				return nil, ErrEmailTaken
			}
		}
		seeded := *admin
		seeded.UserType = domain.UserTypeAdmin
		created = true
		return append(users, seeded), nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

var errSkipWrite = errors.New("no write needed")

type userGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisUserRepository) load(ctx context.Context, c userGetter) ([]domain.User, error) {
	raw, err := c.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.User{}, nil
	}
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0)
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return users, nil
}

// mutate applies fn to the current collection and writes the result atomically.
// fn returning errSkipWrite ends the transaction without writing.
func (r *RedisUserRepository) mutate(ctx context.Context, fn func([]domain.User) ([]domain.User, error)) error {
	txf := func(tx *redis.Tx) error {
		users, err := r.load(ctx, tx)
		if err != nil {
			return err
		}
		next, err := fn(users)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, payload, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, r.key)
		switch {
		case err == nil, errors.Is(err, errSkipWrite):
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return err
		}
	}
	return ErrConflict
}
