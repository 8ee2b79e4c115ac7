package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/site-auth/internal/config"
	"github.com/spec-kit/site-auth/internal/repository"
)

// Stores bundles the repositories selected by the storage configuration.
type Stores struct {
	Users     repository.UserRepository
	Sessions  repository.SessionRepository
	Inquiries repository.InquiryRepository

	Postgres *Postgres
	Redis    *Redis
}

// Open connects the configured backends and builds the repositories.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Stores, error) {
	stores := &Stores{}
	userDriver, sessionDriver := cfg.Storage.UserDriver, cfg.Storage.SessionDriver

	if userDriver == config.DriverPostgres {
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		stores.Postgres = pg
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				stores.Close()
				return nil, err
			}
		}
	}

	if userDriver == config.DriverRedis || sessionDriver == config.DriverRedis {
		stores.Redis = NewRedis(ctx, cfg.Redis, logger)
		if err := stores.Redis.Ping(ctx); err != nil {
			stores.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	switch userDriver {
	case config.DriverPostgres:
		pool := stores.Postgres.PoolHandle()
		stores.Users = repository.NewUserRepository(pool)
		stores.Inquiries = repository.NewInquiryRepository(pool)
	case config.DriverRedis:
		stores.Users = repository.NewRedisUserRepository(stores.Redis.Client, cfg.Redis.KeyPrefix)
		stores.Inquiries = repository.NewRedisInquiryRepository(stores.Redis.Client, cfg.Redis.KeyPrefix)
	default:
		logger.Warn("using in-memory user store; data is lost on restart")
		stores.Users = repository.NewMemoryUserRepository()
		stores.Inquiries = repository.NewMemoryInquiryRepository()
	}

	switch sessionDriver {
	case config.DriverRedis:
		stores.Sessions = repository.NewRedisSessionRepository(stores.Redis.Client, cfg.Redis.KeyPrefix)
	default:
		stores.Sessions = repository.NewMemorySessionRepository()
	}

	logger.Info("storage ready",
		zap.String("user_driver", userDriver),
		zap.String("session_driver", sessionDriver))
	return stores, nil
}

// Close releases backend connections.
func (s *Stores) Close() {
	if s == nil {
		return
	}
	s.Postgres.Close()
	s.Redis.Close()
}
