package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anvlasov/bug-report-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestSessionStore(t *testing.T) {
	t.Run("issue and resolve", func(t *testing.T) {
		store := NewSessionStore(time.Hour)
		token := store.Issue(42)

		userID, ok := store.Resolve(token)
		assert.True(t, ok)
		assert.Equal(t, int64(42), userID)
	})

	t.Run("unknown token", func(t *testing.T) {
		store := NewSessionStore(time.Hour)
		_, ok := store.Resolve("no-such-token")
		assert.False(t, ok)
	})

	t.Run("revoked token", func(t *testing.T) {
		store := NewSessionStore(time.Hour)
		token := store.Issue(42)
		store.Revoke(token)

		_, ok := store.Resolve(token)
		assert.False(t, ok)
	})

	t.Run("expired token", func(t *testing.T) {
		store := NewSessionStore(time.Minute)
		token := store.Issue(42)

		store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, ok := store.Resolve(token)
		assert.False(t, ok)
	})
}

type stubUsers struct {
	user domain.User
	err  error
}

func (s stubUsers) FindUserByUsername(context.Context, string) (domain.User, error) {
	return s.user, s.err
}

func (s stubUsers) FindUserByID(context.Context, int64) (domain.User, error) {
	return s.user, s.err
}

func TestGateLogin(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	user := domain.User{ID: 1, Username: "alice", PasswordHash: hash}

	t.Run("correct password", func(t *testing.T) {
		gate := NewGate(stubUsers{user: user}, NewSessionStore(time.Hour))

		token, got, err := gate.Login(context.Background(), "alice", "s3cret")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		gate := NewGate(stubUsers{user: user}, NewSessionStore(time.Hour))

		_, _, err := gate.Login(context.Background(), "alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user reported as credential mismatch", func(t *testing.T) {
		gate := NewGate(stubUsers{err: assert.AnError}, NewSessionStore(time.Hour))

		_, _, err := gate.Login(context.Background(), "nobody", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"well formed", "Bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"no space after scheme", "Bearerabc123", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"lowercase scheme", "bearer abc123", ""},
		{"scheme only", "Bearer ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, BearerToken(r))
		})
	}
}
