package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/site-auth/internal/domain"
)

// MemoryUserRepository keeps users in process memory, in creation order.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

// NewMemoryUserRepository returns an empty in-memory store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexByEmail(user.Email) >= 0 {
		return ErrEmailTaken
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexByID(user.ID)
	if idx < 0 {
		return ErrNotFound
	}
	if other := r.indexByEmail(user.Email); other >= 0 && other != idx {
		return ErrEmailTaken
	}
	r.users[idx] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexByID(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	user := r.users[idx]
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexByEmail(email)
	if idx < 0 {
		return nil, ErrNotFound
	}
	user := r.users[idx]
	return &user, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexByID(id)
	if idx < 0 {
		return ErrNotFound
	}
	r.users = append(r.users[:idx], r.users[idx+1:]...)
	return nil
}

func (r *MemoryUserRepository) EnsureAdmin(_ context.Context, admin *domain.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].UserType == domain.UserTypeAdmin {
			return false, nil
		}
	}
	if r.indexByEmail(admin.Email) >= 0 {
		return false, ErrEmailTaken
	}
	seeded := *admin
	seeded.UserType = domain.UserTypeAdmin
	r.users = append(r.users, seeded)
	return true, nil
}

func (r *MemoryUserRepository) indexByID(id int64) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryUserRepository) indexByEmail(email string) int {
	for i := range r.users {
		if r.users[i].Email == email {
			return i
		}
	}
	return -1
}
