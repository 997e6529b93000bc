package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/optional"
	"petora-connect/internal/ports/blob"
	"petora-connect/internal/ports/changefeed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test doubles
// -------------------------

type testRepo struct {
	byID map[string]Listing
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Listing{}}
}

func (r *testRepo) Create(_ context.Context, l Listing) error {
	if _, ok := r.byID[l.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[l.ID] = l
	return nil
}

func (r *testRepo) Update(_ context.Context, l Listing) error {
	if _, ok := r.byID[l.ID]; !ok {
		return apperr.ErrNotFound
	}
	r.byID[l.ID] = l
	return nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Listing, error) {
	l, ok := r.byID[id]
	if !ok {
		return Listing{}, fmt.Errorf("listing %s: %w", id, apperr.ErrNotFound)
	}
	return l, nil
}

func (r *testRepo) List(_ context.Context, q Query) ([]Listing, error) {
	out := make([]Listing, 0)
	for _, l := range r.byID {
		if q.ListingType != "" && l.ListingType != q.ListingType {
			continue
		}
		if q.OwnerID != "" && l.OwnerID != q.OwnerID {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type stubImages struct {
	err   error
	saved []string
}

func (s *stubImages) Save(_ context.Context, up blob.Upload) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	_, _ = io.ReadAll(up.Body)
	s.saved = append(s.saved, up.Filename)
	return "/images/1-" + up.Filename, nil
}

type stubContacts map[string]string

func (s stubContacts) ContactEmail(_ context.Context, userID string) (string, bool, error) {
	if userID == "broken" {
		return "", false, errors.New("profiles down")
	}
	e, ok := s[userID]
	return e, ok, nil
}

type recordingFeed struct {
	events []changefeed.Event
}

func (f *recordingFeed) Publish(_ context.Context, ev changefeed.Event) error {
	f.events = append(f.events, ev)
	return nil
}

func newTestService() (*Service, *testRepo, *recordingFeed) {
	repo := newTestRepo()
	feed := &recordingFeed{}
	svc := NewService(repo, Deps{
		Images:   &stubImages{},
		Contacts: stubContacts{"owner-1": "owner1@example.com"},
		Feed:     feed,
	})
	tick := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, repo, feed
}

func price(v float64) *float64 { return &v }

func buddy(listingType string, p *float64) CreateInput {
	return CreateInput{
		Name:        "Buddy",
		Species:     "Dog",
		Breed:       "Golden Retriever",
		Age:         "2 years",
		Gender:      "Male",
		Location:    "Sunnyvale, CA",
		ListingType: listingType,
		Price:       p,
		Description: "Friendly and energetic, loves fetch.",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	out := map[string]string{}
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// -------------------------
// Tests
// -------------------------

func TestCreate_BuddyScenario(t *testing.T) {
	svc, _, feed := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, "owner-1", buddy("Sale", price(500)), nil)
	require.NoError(t, err)
	assert.Equal(t, TypeSale, l.ListingType)
	require.NotNil(t, l.Price)
	assert.Equal(t, 500.0, *l.Price)
	assert.Equal(t, PlaceholderImageURL, l.ImageURL)
	assert.Equal(t, "owner-1", l.OwnerID)
	require.Len(t, feed.events, 1)
	assert.Equal(t, changefeed.TopicListings, feed.events[0].Topic)
	assert.Equal(t, changefeed.Created, feed.events[0].Type)

	_, err = svc.Create(ctx, "owner-1", buddy("Adoption", price(500)), nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, fieldErrors(t, err), "price")
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "", buddy("Adoption", nil), nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.Create(ctx, "owner-1", buddy("Sale", nil), nil)
	assert.Equal(t, "is required for Sale listings", fieldErrors(t, err)["price"])

	_, err = svc.Create(ctx, "owner-1", buddy("Sale", price(-1)), nil)
	assert.Contains(t, fieldErrors(t, err), "price")

	_, err = svc.Create(ctx, "owner-1", buddy("Stray", nil), nil)
	assert.Contains(t, fieldErrors(t, err), "listingType")

	in := buddy("Adoption", nil)
	in.Name = "B"
	in.Breed = ""
	in.Species = "Lizard"
	in.Description = "short"
	errs := fieldErrors(t, func() error { _, err := svc.Create(ctx, "owner-1", in, nil); return err }())
	assert.Len(t, errs, 4, "todos los problemas juntos")
}

func TestCreate_WithImage(t *testing.T) {
	svc, repo, _ := newTestService()
	img := &blob.Upload{Filename: "buddy.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}

	l, err := svc.Create(context.Background(), "owner-1", buddy("Foster", nil), img)
	require.NoError(t, err)
	assert.Equal(t, "/images/1-buddy.png", l.ImageURL)

	svc.images = &stubImages{err: apperr.Invalid("image", "too large")}
	_, err = svc.Create(context.Background(), "owner-1", buddy("Foster", nil), img)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Len(t, repo.byID, 1, "si la imagen falla no se crea nada")
}

func TestReportStray(t *testing.T) {
	svc, _, _ := newTestService()

	l, err := svc.ReportStray(context.Background(), StrayReportInput{
		Location:        "Main St & 3rd",
		Description:     "Small brown dog near the park",
		ReporterContact: "555-0101",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, TypeStray, l.ListingType)
	assert.Equal(t, StrayName, l.Name)
	assert.Equal(t, SpeciesOther, l.Species)
	assert.Equal(t, GenderUnknown, l.Gender)
	assert.Empty(t, l.OwnerID)
	assert.Nil(t, l.Price)

	// sin dueño nadie puede editarlo ni borrarlo
	_, err = svc.Update(context.Background(), l.ID, "someone", UpdateInput{Name: optional.Of("Mine now")})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), l.ID, "someone"), apperr.ErrForbidden)
	_, err = svc.Get(context.Background(), l.ID)
	require.NoError(t, err)

	_, err = svc.ReportStray(context.Background(), StrayReportInput{Location: "X", Description: "short"}, nil)
	errs := fieldErrors(t, err)
	assert.Contains(t, errs, "location")
	assert.Contains(t, errs, "description")

	strays, err := svc.ListStrays(context.Background())
	require.NoError(t, err)
	assert.Len(t, strays, 1)
}

func TestUpdate_OwnershipAndNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	l, err := svc.Create(ctx, "owner-1", buddy("Adoption", nil), nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, l.ID, "intruder", UpdateInput{Name: optional.Of("Hacked")})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	got, err := svc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buddy", got.Name, "sigue intacto")

	_, err = svc.Update(ctx, "missing", "owner-1", UpdateInput{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	stray, err := svc.ReportStray(ctx, StrayReportInput{Location: "Park", Description: "Grey cat, friendly"}, nil)
	require.NoError(t, err)
	_, err = svc.Update(ctx, stray.ID, "owner-1", UpdateInput{Name: optional.Of("Mine")})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, stray.ID, "owner-1"), apperr.ErrForbidden)
}

func TestUpdate_PresenceSemantics(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	l, err := svc.Create(ctx, "owner-1", buddy("Sale", price(500)), nil)
	require.NoError(t, err)

	// Cambiar a Adoption sin limpiar precio viola el acople.
	_, err = svc.Update(ctx, l.ID, "owner-1", UpdateInput{ListingType: optional.Of("Adoption")})
	assert.Contains(t, fieldErrors(t, err), "price")

	// Con price: null pasa.
	up, err := svc.Update(ctx, l.ID, "owner-1", UpdateInput{
		ListingType: optional.Of("Adoption"),
		Price:       optional.Null[float64](),
	})
	require.NoError(t, err)
	assert.Equal(t, TypeAdoption, up.ListingType)
	assert.Nil(t, up.Price)
	assert.Equal(t, "Buddy", up.Name, "campos ausentes no cambian")
	assert.True(t, up.UpdatedAt.After(l.UpdatedAt))

	// Campos requeridos no se pueden limpiar.
	_, err = svc.Update(ctx, l.ID, "owner-1", UpdateInput{Name: optional.Null[string](), Breed: optional.Of("  ")})
	errs := fieldErrors(t, err)
	assert.Equal(t, "cannot be cleared", errs["name"])
	assert.Equal(t, "cannot be cleared", errs["breed"])

	// imageUrl null vuelve al placeholder.
	up, err = svc.Update(ctx, l.ID, "owner-1", UpdateInput{ImageURL: optional.Of("https://cdn.example.com/b.png")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/b.png", up.ImageURL)
	up, err = svc.Update(ctx, l.ID, "owner-1", UpdateInput{ImageURL: optional.Null[string]()})
	require.NoError(t, err)
	assert.Equal(t, PlaceholderImageURL, up.ImageURL)

	// Nunca a Stray.
	_, err = svc.Update(ctx, l.ID, "owner-1", UpdateInput{ListingType: optional.Of("Stray")})
	assert.Contains(t, fieldErrors(t, err), "listingType")

	// Vuelta a Sale exige precio.
	up, err = svc.Update(ctx, l.ID, "owner-1", UpdateInput{ListingType: optional.Of("Sale"), Price: optional.Of(120.5)})
	require.NoError(t, err)
	require.NotNil(t, up.Price)
	assert.Equal(t, 120.5, *up.Price)
}

func TestDelete_ThenGetNotFound(t *testing.T) {
	svc, _, feed := newTestService()
	ctx := context.Background()
	l, err := svc.Create(ctx, "owner-1", buddy("Adoption", nil), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, l.ID, "intruder"), apperr.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, l.ID, "owner-1"))

	_, err = svc.Get(ctx, l.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, l.ID, "owner-1"), apperr.ErrNotFound)

	last := feed.events[len(feed.events)-1]
	assert.Equal(t, changefeed.Deleted, last.Type)
	assert.Empty(t, last.Payload)
}

func TestGet_ContactEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	withProfile, err := svc.Create(ctx, "owner-1", buddy("Adoption", nil), nil)
	require.NoError(t, err)
	noProfile, err := svc.Create(ctx, "owner-2", buddy("Adoption", nil), nil)
	require.NoError(t, err)
	broken, err := svc.Create(ctx, "broken", buddy("Adoption", nil), nil)
	require.NoError(t, err)

	v, err := svc.Get(ctx, withProfile.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner1@example.com", v.ContactEmail)

	v, err = svc.Get(ctx, noProfile.ID)
	require.NoError(t, err)
	assert.Empty(t, v.ContactEmail)

	v, err = svc.Get(ctx, broken.ID)
	require.NoError(t, err, "el lookup de contacto no tumba la lectura")
	assert.Empty(t, v.ContactEmail)
}

func TestListByOwner_NewestFirst(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	a, _ := svc.Create(ctx, "owner-1", buddy("Adoption", nil), nil)
	_, _ = svc.Create(ctx, "owner-2", buddy("Adoption", nil), nil)
	b, _ := svc.Create(ctx, "owner-1", buddy("Foster", nil), nil)

	items, err := svc.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)
}
