package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"petora-connect/internal/domain/listings"
	"petora-connect/internal/domain/posts"
	"petora-connect/internal/domain/users"
	"petora-connect/internal/platform/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var (
	listingCols = []string{"id", "owner_id", "name", "species", "breed", "age", "gender", "location",
		"listing_type", "price", "description", "image_url", "reporter_contact", "created_at", "updated_at"}
	groupCols   = []string{"id", "name", "description", "image_url", "owner_id", "member_ids", "member_count", "created_at"}
	postCols    = []string{"id", "author_id", "author_name", "author_avatar", "body", "image_url", "liked_by", "comments", "created_at"}
	profileCols = []string{"user_id", "display_name", "email", "avatar_url", "is_admin", "created_at"}
)

func TestMigrate_RunsEveryStatement(t *testing.T) {
	db, mock := newMock(t)
	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
}

func TestListingsRepo_CreateStrayHasNullOwnerAndPrice(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListingsRepo(db)

	mock.ExpectExec("INSERT INTO listings").
		WithArgs("s1", nil, "Found Stray", "Other", "Unknown", "Unknown", "Unknown", "Main St",
			"Stray", nil, "Seen near the park", "img", "555-0100", t0, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), listings.Listing{
		ID: "s1", Name: "Found Stray", Species: listings.SpeciesOther, Breed: "Unknown", Age: "Unknown",
		Gender: listings.GenderUnknown, Location: "Main St", ListingType: listings.TypeStray,
		Description: "Seen near the park", ImageURL: "img", ReporterContact: "555-0100",
		CreatedAt: t0, UpdatedAt: t0,
	})
	require.NoError(t, err)
}

func TestListingsRepo_ListBuildsFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListingsRepo(db)

	rows := sqlmock.NewRows(listingCols).
		AddRow("a", "u1", "Buddy", "Dog", "Golden Retriever", "2 years", "Male", "Sunnyvale, CA",
			"Sale", 500.0, "Friendly dog", "img", "", t0, t0)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE listing_type = $1 AND owner_id = $2 ORDER BY created_at DESC")).
		WithArgs("Sale", "u1").
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), listings.Query{ListingType: listings.TypeSale, OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Price)
	assert.Equal(t, 500.0, *got[0].Price)
	assert.Equal(t, listings.SpeciesDog, got[0].Species)
	assert.Equal(t, "u1", got[0].OwnerID)
}

func TestListingsRepo_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListingsRepo(db)

	mock.ExpectQuery("FROM listings WHERE id").WithArgs("x").WillReturnRows(sqlmock.NewRows(listingCols))
	_, err := repo.GetByID(context.Background(), "x")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	mock.ExpectExec("UPDATE listings").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), listings.Listing{ID: "x"}), apperr.ErrNotFound)

	mock.ExpectExec("DELETE FROM listings").WithArgs("x").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "x"), apperr.ErrNotFound)
}

func TestGroupsRepo_AddMember(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGroupsRepo(db)
	ctx := context.Background()

	// nuevo miembro: el UPDATE condicional devuelve la fila
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND NOT jsonb_exists(member_ids, $2)")).
		WithArgs("g", "u2").
		WillReturnRows(sqlmock.NewRows(groupCols).
			AddRow("g", "Doodles", "desc", "img", "u1", []byte(`["u1","u2"]`), 2, t0))
	g, added, err := repo.AddMember(ctx, "g", "u2")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 2, g.MemberCount)
	assert.Equal(t, []string{"u1", "u2"}, g.MemberIDs)

	// ya era miembro: sin fila, se relee el grupo
	mock.ExpectQuery("UPDATE groups").WithArgs("g", "u2").WillReturnRows(sqlmock.NewRows(groupCols))
	mock.ExpectQuery("FROM groups WHERE id").WithArgs("g").
		WillReturnRows(sqlmock.NewRows(groupCols).
			AddRow("g", "Doodles", "desc", "img", "u1", []byte(`["u1","u2"]`), 2, t0))
	g, added, err = repo.AddMember(ctx, "g", "u2")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 2, g.MemberCount)

	// grupo inexistente
	mock.ExpectQuery("UPDATE groups").WithArgs("nope", "u2").WillReturnRows(sqlmock.NewRows(groupCols))
	mock.ExpectQuery("FROM groups WHERE id").WithArgs("nope").WillReturnRows(sqlmock.NewRows(groupCols))
	_, _, err = repo.AddMember(ctx, "nope", "u2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGroupsRepo_ListMessagesOrdersBySeq(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGroupsRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC, seq ASC")).
		WithArgs("g").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "sender_id", "sender_name", "avatar_url", "text", "created_at"}).
			AddRow("m1", "g", "u1", "Ana", "", "Hi", t0).
			AddRow("m2", "g", "u2", "Bo", "", "Hello", t0))

	msgs, err := repo.ListMessages(context.Background(), "g")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
}

func TestPostsRepo_SetLikeAndComments(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostsRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SET liked_by = liked_by - $2::text")).
		WithArgs("p", "u1").
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow("p", "a", "Ana", "", "hello", "", []byte(`[]`), []byte(`[]`), t0))
	p, changed, err := repo.SetLike(ctx, "p", "u1", false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, p.LikeCount)
	assert.Equal(t, []string{}, p.LikedBy)

	mock.ExpectQuery(regexp.QuoteMeta("comments || jsonb_build_array($2::jsonb)")).
		WithArgs("p", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow("p", "a", "Ana", "", "hello", "", []byte(`["u9"]`),
				[]byte(`[{"id":"c1","authorId":"u9","authorName":"Bo","avatarUrl":"","body":"nice","createdAt":"2026-03-01T10:00:00Z"}]`), t0))
	p, err = repo.AppendComment(ctx, "p", posts.Comment{ID: "c1", AuthorID: "u9", Body: "nice", CreatedAt: t0})
	require.NoError(t, err)
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "nice", p.Comments[0].Body)
	assert.Equal(t, 1, p.LikeCount)

	mock.ExpectQuery("UPDATE posts").WithArgs("nope", sqlmock.AnyArg()).WillReturnRows(sqlmock.NewRows(postCols))
	_, err = repo.AppendComment(ctx, "nope", posts.Comment{ID: "c2"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProfilesRepo_CreateIfAbsentConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfilesRepo(db)

	mock.ExpectQuery("ON CONFLICT \\(user_id\\) DO NOTHING").
		WithArgs("u1", "Other", "", "avatar", false, t0).
		WillReturnRows(sqlmock.NewRows(profileCols))
	mock.ExpectQuery("FROM profiles WHERE user_id").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow("u1", "Ana", "a@example.com", "avatar", false, t0))

	p, created, err := repo.CreateIfAbsent(context.Background(),
		users.Profile{UserID: "u1", DisplayName: "Other", AvatarURL: "avatar", CreatedAt: t0})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Ana", p.DisplayName)
}
