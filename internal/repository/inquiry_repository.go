package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/site-auth/internal/domain"
)

const inquiriesKey = "inquiries"

// InquiryRepository persists contact form submissions.
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *domain.ContactInquiry) error
	// List returns the newest inquiries first, at most limit of them.
	List(ctx context.Context, limit int) ([]domain.ContactInquiry, error)
}

type inquiryRepository struct {
	pool *pgxpool.Pool
}

// NewInquiryRepository returns a Postgres-backed implementation.
func NewInquiryRepository(pool *pgxpool.Pool) InquiryRepository {
	return &inquiryRepository{pool: pool}
}

func (r *inquiryRepository) Create(ctx context.Context, inquiry *domain.ContactInquiry) error {
	const query = `
        INSERT INTO contact_inquiries (id, name, email, phone, service, message, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		inquiry.ID,
		inquiry.Name,
		inquiry.Email,
		inquiry.Phone,
		inquiry.Service,
		inquiry.Message,
		inquiry.CreatedAt,
	)
	return err
}

func (r *inquiryRepository) List(ctx context.Context, limit int) ([]domain.ContactInquiry, error) {
	const query = `
        SELECT id::text, name, email, phone, service, message, created_at
        FROM contact_inquiries ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ContactInquiry, 0)
	for rows.Next() {
		var inq domain.ContactInquiry
		if err := rows.Scan(&inq.ID, &inq.Name, &inq.Email, &inq.Phone, &inq.Service, &inq.Message, &inq.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, inq)
	}
	return out, rows.Err()
}

// MemoryInquiryRepository keeps inquiries in process memory.
type MemoryInquiryRepository struct {
	mu        sync.RWMutex
	inquiries []domain.ContactInquiry
}

// NewMemoryInquiryRepository returns an empty in-memory store.
func NewMemoryInquiryRepository() *MemoryInquiryRepository {
	return &MemoryInquiryRepository{}
}

func (r *MemoryInquiryRepository) Create(_ context.Context, inquiry *domain.ContactInquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inquiries = append(r.inquiries, *inquiry)
	return nil
}

func (r *MemoryInquiryRepository) List(_ context.Context, limit int) ([]domain.ContactInquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ContactInquiry, 0, len(r.inquiries))
	for i := len(r.inquiries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.inquiries[i])
	}
	return out, nil
}

// RedisInquiryRepository pushes inquiries onto a Redis list, newest at the head.
type RedisInquiryRepository struct {
	client redis.UniversalClient
	key    string
}

// NewRedisInquiryRepository returns a Redis-backed implementation.
func NewRedisInquiryRepository(client redis.UniversalClient, keyPrefix string) *RedisInquiryRepository {
	return &RedisInquiryRepository{client: client, key: keyPrefix + inquiriesKey}
}

func (r *RedisInquiryRepository) Create(ctx context.Context, inquiry *domain.ContactInquiry) error {
	payload, err := json.Marshal(inquiry)
	if err != nil {
		return err
	}
	return r.client.LPush(ctx, r.key, payload).Err()
}

func (r *RedisInquiryRepository) List(ctx context.Context, limit int) ([]domain.ContactInquiry, error) {
	if limit <= 0 {
		return []domain.ContactInquiry{}, nil
	}
	raw, err := r.client.LRange(ctx, r.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.ContactInquiry, 0, len(raw))
	for _, item := range raw {
		var inq domain.ContactInquiry
		if err := json.Unmarshal([]byte(item), &inq); err != nil {
			return nil, err
		}
		out = append(out, inq)
	}
	return out, nil
}
