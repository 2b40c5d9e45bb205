package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"barter/internal/domain"
	"barter/internal/repos"
	"barter/internal/services"
)

func newAuth(t *testing.T) *services.AuthService {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := services.NewAuthService(repos.NewUserRepo(db), "test-secret", time.Hour)
	s.Cost = bcrypt.MinCost
	return s
}

func TestAuth_RegisterLoginResolve(t *testing.T) {
	s := newAuth(t)
	ctx := context.Background()

	u, tok, err := s.Register(ctx, services.Registration{Username: "alice", Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEmpty(t, tok)

	p, err := s.Resolve(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, "alice", p.Username)

	_, tok2, err := s.Login(ctx, "ALICE", "correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, tok, tok2, "every token gets its own id")

	_, _, err = s.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
	_, _, err = s.Login(ctx, "nobody", "whatever1")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}

func TestAuth_RegisterValidation(t *testing.T) {
	s := newAuth(t)
	ctx := context.Background()

	_, _, err := s.Register(ctx, services.Registration{Username: "ab", Email: "nope", Password: "short"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "username")
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "password")

	_, _, err = s.Register(ctx, services.Registration{Username: "carol", Email: "c@example.com", Password: "password1"})
	require.NoError(t, err)
	_, _, err = s.Register(ctx, services.Registration{Username: "Carol", Email: "c2@example.com", Password: "password1"})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "username")
}

func TestAuth_ResolveRejectsBadTokens(t *testing.T) {
	s := newAuth(t)
	ctx := context.Background()
	_, tok, err := s.Register(ctx, services.Registration{Username: "dave", Email: "d@example.com", Password: "password1"})
	require.NoError(t, err)

	other := *s
	other.Secret = []byte("another-secret")
	_, err = other.Resolve(ctx, tok)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	later := *s
	later.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Resolve(ctx, tok)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	p, err := s.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.True(t, p.IsAnonymous())
}
