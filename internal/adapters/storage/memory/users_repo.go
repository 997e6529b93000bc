package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petora-connect/internal/domain/users"
)

type userRepo struct {
	mu   sync.RWMutex
	byID map[string]users.Profile
}

func NewUserRepo() users.Repository {
	return &userRepo{
		byID: make(map[string]users.Profile),
	}
}

func (r *userRepo) GetByID(ctx context.Context, userID string) (users.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[userID]
	if !ok {
		return users.Profile{}, notFound("profile", userID)
	}
	return p, nil
}

func (r *userRepo) CreateIfAbsent(ctx context.Context, p users.Profile) (users.Profile, bool, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return users.Profile{}, false, errors.New("user id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.byID[p.UserID]; ok {
		return cur, false, nil
	}
	r.byID[p.UserID] = p
	return p, true, nil
}

func (r *userRepo) List(ctx context.Context) ([]users.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]users.Profile, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
