package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"

	"petora-connect/internal/domain/groups"
)

type groupRepo struct {
	mu       sync.RWMutex
	byID     map[string]groups.Group
	messages map[string][]groups.Message
}

func NewGroupRepo() groups.Repository {
	return &groupRepo{
		byID:     make(map[string]groups.Group),
		messages: make(map[string][]groups.Message),
	}
}

func (r *groupRepo) Create(ctx context.Context, g groups.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(g.ID) == "" {
		return errors.New("group id required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return errors.New("group already exists")
	}
	r.byID[g.ID] = cloneGroup(g)
	return nil
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (groups.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return groups.Group{}, notFound("group", id)
	}
	return cloneGroup(g), nil
}

func (r *groupRepo) List(ctx context.Context) ([]groups.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]groups.Group, 0, len(r.byID))
	for _, g := range r.byID {
		out = append(out, cloneGroup(g))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *groupRepo) AddMember(ctx context.Context, groupID, userID string) (groups.Group, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[groupID]
	if !ok {
		return groups.Group{}, false, notFound("group", groupID)
	}
	if slices.Contains(g.MemberIDs, userID) {
		return cloneGroup(g), false, nil
	}
	g.MemberIDs = append(slices.Clone(g.MemberIDs), userID)
	g.MemberCount = len(g.MemberIDs)
	r.byID[groupID] = g
	return cloneGroup(g), true, nil
}

func (r *groupRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return notFound("group", id)
	}
	delete(r.byID, id)
	delete(r.messages, id)
	return nil
}

func (r *groupRepo) AppendMessage(ctx context.Context, m groups.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[m.GroupID]; !ok {
		return notFound("group", m.GroupID)
	}
	r.messages[m.GroupID] = append(r.messages[m.GroupID], m)
	return nil
}

func (r *groupRepo) ListMessages(ctx context.Context, groupID string) ([]groups.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := slices.Clone(r.messages[groupID])
	if out == nil {
		out = make([]groups.Message, 0)
	}
	// estable: a igual createdAt queda el orden de inserción
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func cloneGroup(g groups.Group) groups.Group {
	g.MemberIDs = slices.Clone(g.MemberIDs)
	if g.MemberIDs == nil {
		g.MemberIDs = []string{}
	}
	return g
}
