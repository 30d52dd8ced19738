package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkboard/internal/config"
	"linkboard/internal/models"
	"linkboard/internal/store"
)

func newTestAuth(t *testing.T, ttl time.Duration) (*AuthService, *store.MemoryStore, models.User) {
	t.Helper()
	s := store.NewMemoryStore()
	u := models.User{Email: "ada@example.com", Name: "Ada", Password: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	return NewAuthService(config.AuthConfig{Secret: "test-secret", TokenTTL: ttl}, s), s, u
}

func TestIssueAndAuthenticate(t *testing.T) {
	auth, _, u := newTestAuth(t, time.Hour)

	token, err := auth.IssueToken(u.ID)
	require.NoError(t, err)

	caller, err := auth.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	require.NotNil(t, caller)
	assert.Equal(t, u.ID, caller.ID)
}

func TestAuthenticateIgnoresScheme(t *testing.T) {
	auth, _, u := newTestAuth(t, 0)
	token, err := auth.IssueToken(u.ID)
	require.NoError(t, err)

	caller, err := auth.Authenticate(context.Background(), "Token "+token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, caller.ID)
}

func TestAuthenticateWithoutHeaderIsAnonymous(t *testing.T) {
	auth, _, _ := newTestAuth(t, time.Hour)

	caller, err := auth.Authenticate(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, caller)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	auth, _, u := newTestAuth(t, time.Hour)
	forger := NewAuthService(config.AuthConfig{Secret: "other-secret"}, nil)
	forged, err := forger.IssueToken(u.ID)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"no scheme":   "justatoken",
		"empty token": "Bearer ",
		"garbage":     "Bearer not.a.jwt",
		"forged":      "Bearer " + forged,
	} {
		t.Run(name, func(t *testing.T) {
			caller, err := auth.Authenticate(context.Background(), header)
			assert.Nil(t, caller)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	auth, _, u := newTestAuth(t, time.Minute)
	issued := time.Now().Add(-time.Hour)
	auth.now = func() time.Time { return issued }
	token, err := auth.IssueToken(u.ID)
	require.NoError(t, err)

	auth.now = time.Now
	_, err = auth.Authenticate(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthenticateRejectsOtherAlgorithms(t *testing.T) {
	auth, _, u := newTestAuth(t, 0)
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: u.ID})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), "Bearer "+signed)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthenticateUnknownUserIsAnonymous(t *testing.T) {
	auth, _, _ := newTestAuth(t, 0)
	token, err := auth.IssueToken(9999)
	require.NoError(t, err)

	caller, err := auth.Authenticate(context.Background(), "Bearer "+token)
	assert.NoError(t, err)
	assert.Nil(t, caller)
}

type failingFinder struct{ err error }

func (f failingFinder) FindUserByID(context.Context, uint) (*models.User, error) {
	return nil, f.err
}

func TestAuthenticateSurfacesStorageFailure(t *testing.T) {
	boom := errors.New("connection refused")
	auth := NewAuthService(config.AuthConfig{Secret: "test-secret"}, failingFinder{err: boom})
	token, err := auth.IssueToken(1)
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
}

type countingFinder struct {
	UserFinder
	calls int
}

func (f *countingFinder) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	f.calls++
	return f.UserFinder.FindUserByID(ctx, id)
}

func TestAuthenticateCachesCallers(t *testing.T) {
	s := store.NewMemoryStore()
	u := models.User{Email: "ada@example.com", Name: "Ada", Password: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	finder := &countingFinder{UserFinder: s}
	auth := NewAuthService(config.AuthConfig{
		Secret:          "test-secret",
		CallerCacheSize: 8,
		CallerCacheTTL:  time.Minute,
	}, finder)

	token, err := auth.IssueToken(u.ID)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		caller, err := auth.Authenticate(context.Background(), "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, caller.ID)
	}
	assert.Equal(t, 1, finder.calls)

	ghost, err := auth.IssueToken(4242)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		caller, err := auth.Authenticate(context.Background(), "Bearer "+ghost)
		require.NoError(t, err)
		assert.Nil(t, caller)
	}
	assert.Equal(t, 3, finder.calls)
}
