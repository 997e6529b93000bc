package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petora-connect/internal/domain/listings"
)

type listingRepo struct {
	mu   sync.RWMutex
	byID map[string]listings.Listing
}

func NewListingRepo() listings.Repository {
	return &listingRepo{
		byID: make(map[string]listings.Listing),
	}
}

func (r *listingRepo) Create(ctx context.Context, l listings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("listing id required")
	}
	if _, exists := r.byID[l.ID]; exists {
		return errors.New("listing already exists")
	}
	r.byID[l.ID] = cloneListing(l)
	return nil
}

func (r *listingRepo) Update(ctx context.Context, l listings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[l.ID]; !exists {
		return notFound("listing", l.ID)
	}
	r.byID[l.ID] = cloneListing(l)
	return nil
}

func (r *listingRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return notFound("listing", id)
	}
	delete(r.byID, id)
	return nil
}

func (r *listingRepo) GetByID(ctx context.Context, id string) (listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return listings.Listing{}, notFound("listing", id)
	}
	return cloneListing(l), nil
}

func (r *listingRepo) List(ctx context.Context, q listings.Query) ([]listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]listings.Listing, 0)
	for _, l := range r.byID {
		if q.ListingType != "" && l.ListingType != q.ListingType {
			continue
		}
		if q.OwnerID != "" && l.OwnerID != q.OwnerID {
			continue
		}
		out = append(out, cloneListing(l))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Price es puntero: se copia para no compartir memoria con el caller.
func cloneListing(l listings.Listing) listings.Listing {
	if l.Price != nil {
		p := *l.Price
		l.Price = &p
	}
	return l
}
