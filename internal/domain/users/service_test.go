package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	byID map[string]Profile
	err  error
}

func (r *testRepo) GetByID(_ context.Context, id string) (Profile, error) {
	if r.err != nil {
		return Profile{}, r.err
	}
	p, ok := r.byID[id]
	if !ok {
		return Profile{}, fmt.Errorf("profile %s: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

func (r *testRepo) CreateIfAbsent(_ context.Context, p Profile) (Profile, bool, error) {
	if r.err != nil {
		return Profile{}, false, r.err
	}
	if cur, ok := r.byID[p.UserID]; ok {
		return cur, false, nil
	}
	r.byID[p.UserID] = p
	return p, true, nil
}

func (r *testRepo) List(_ context.Context) ([]Profile, error) {
	out := make([]Profile, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func newTestService() (*Service, *testRepo) {
	repo := &testRepo{byID: map[string]Profile{}}
	svc := NewService(repo, Deps{AdminIDs: []string{" admin-1 ", ""}})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestEnsureProfile_DefaultsOnFirstRequest(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	c, err := svc.EnsureProfile(ctx, auth.Claims{UserID: "user-a", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "New User", c.DisplayName)
	assert.Equal(t, "https://api.dicebear.com/7.x/initials/svg?seed=New+User", c.AvatarURL)

	stored := repo.byID["user-a"]
	assert.Equal(t, "a@example.com", stored.Email)
	assert.False(t, stored.IsAdmin)

	// el segundo request no pisa el perfil, pero los claims del token mandan
	c, err = svc.EnsureProfile(ctx, auth.Claims{UserID: "user-a", DisplayName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.DisplayName)
	assert.Equal(t, "a@example.com", c.Email)
	assert.Equal(t, "New User", repo.byID["user-a"].DisplayName)
}

func TestEnsureProfile_Errors(t *testing.T) {
	svc, repo := newTestService()
	_, err := svc.EnsureProfile(context.Background(), auth.Claims{})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	repo.err = errors.New("db down")
	_, err = svc.EnsureProfile(context.Background(), auth.Claims{UserID: "x"})
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestIsAdmin(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.byID["flagged"] = Profile{UserID: "flagged", IsAdmin: true}

	ok, err := svc.IsAdmin(ctx, "admin-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsAdmin(ctx, "flagged")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsAdmin(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.IsAdmin(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestContactEmail(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.byID["with"] = Profile{UserID: "with", Email: "w@example.com"}
	repo.byID["without"] = Profile{UserID: "without"}

	e, ok, err := svc.ContactEmail(ctx, "with")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "w@example.com", e)

	_, ok, err = svc.ContactEmail(ctx, "without")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.ContactEmail(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestList_AdminOnly(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.byID["user-a"] = Profile{UserID: "user-a"}
	repo.byID["admin-1"] = Profile{UserID: "admin-1"}

	_, err := svc.List(ctx, "user-a")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	items, err := svc.List(ctx, "admin-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].IsAdmin)
	assert.False(t, items[1].IsAdmin)
}
