package store_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"linkboard/internal/config"
	"linkboard/internal/db"
	"linkboard/internal/models"
	"linkboard/internal/store"
)

func TestViolationOfWrappedErrors(t *testing.T) {
	ce := &store.ConstraintError{Kind: store.ViolationForeignKey, Err: errors.New("boom")}

	assert.Equal(t, store.ViolationForeignKey, store.ViolationOf(fmt.Errorf("creating: %w", ce)))
	assert.Equal(t, store.ViolationNone, store.ViolationOf(errors.New("other")))
	assert.Equal(t, store.ViolationNone, store.ViolationOf(nil))
}

// openPostgres connects to TEST_DATABASE_URL or skips the test.
func openPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	log := zerolog.New(io.Discard)
	gdb, err := db.Open(config.DatabaseConfig{
		URL:          url,
		MaxOpenConns: 10,
		MaxIdleConns: 2,
		LogLevel:     "silent",
	}, log)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, log))
	t.Cleanup(func() { _ = db.Close(gdb) })

	return store.NewPostgresStore(gdb)
}

func createUser(t *testing.T, s store.Gateway) models.User {
	t.Helper()
	u := models.User{Email: uuid.NewString() + "@example.com", Name: "tester", Password: "x"}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	return u
}

func TestPostgresStoreVoteUniqueIndex(t *testing.T) {
	s := openPostgres(t)
	ctx := context.Background()
	u := createUser(t, s)
	link := models.Link{URL: "https://example.com/" + uuid.NewString(), Description: "pg", PostedByID: &u.ID}
	require.NoError(t, s.CreateLink(ctx, &link))

	require.NoError(t, s.CreateVote(ctx, &models.Vote{UserID: u.ID, LinkID: link.ID}))
	err := s.CreateVote(ctx, &models.Vote{UserID: u.ID, LinkID: link.ID})

	assert.Equal(t, store.ViolationUnique, store.ViolationOf(err))
}

func TestPostgresStoreCommentForeignKey(t *testing.T) {
	s := openPostgres(t)

	err := s.CreateComment(context.Background(), &models.Comment{LinkID: 999999999, Body: "orphan"})

	assert.Equal(t, store.ViolationForeignKey, store.ViolationOf(err))
}

func TestPostgresStoreFindLinksEscapesWildcards(t *testing.T) {
	s := openPostgres(t)
	ctx := context.Background()
	marker := uuid.NewString()
	require.NoError(t, s.CreateLink(ctx, &models.Link{URL: "https://example.com/" + marker, Description: "100% real"}))

	links, err := s.FindLinks(ctx, store.LinkQuery{Needle: marker})
	require.NoError(t, err)
	assert.Len(t, links, 1)

	links, err = s.FindLinks(ctx, store.LinkQuery{Needle: marker + "%"})
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestPostgresStoreNotFound(t *testing.T) {
	s := openPostgres(t)

	_, err := s.FindLinkByID(context.Background(), 999999999)

	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTranslatePgErrors(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "idx_vote_user_link"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "fk_comments_link"}

	assert.Equal(t, store.ViolationUnique, store.ViolationOf(store.Translate(unique)))
	assert.Equal(t, store.ViolationForeignKey, store.ViolationOf(store.Translate(fk)))
	assert.Equal(t, store.ViolationUnique, store.ViolationOf(store.Translate(gorm.ErrDuplicatedKey)))
	assert.ErrorIs(t, store.Translate(gorm.ErrRecordNotFound), store.ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, store.Translate(other))
}
