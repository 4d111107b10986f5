package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anvlasov/bug-report-service/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")
)

// UserSource is the slice of the identity store the gate needs.
type UserSource interface {
	FindUserByUsername(ctx context.Context, username string) (domain.User, error)
	FindUserByID(ctx context.Context, userID int64) (domain.User, error)
}

// Gate authenticates callers and supplies the current actor to the rest
// of the application. The engine itself never touches credentials.
type Gate struct {
	users    UserSource
	sessions *SessionStore
}

func NewGate(users UserSource, sessions *SessionStore) *Gate {
	return &Gate{users: users, sessions: sessions}
}

// Login verifies the password against the stored hash and issues a
// session token. A missing user and a wrong password are reported
// identically.
func (g *Gate) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	user, err := g.users.FindUserByUsername(ctx, username)
	if err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return "", domain.User{}, ErrInvalidCredentials
	}

	return g.sessions.Issue(user.ID), user, nil
}

func (g *Gate) Logout(token string) {
	g.sessions.Revoke(token)
}

type actorKey struct{}

// ActorFromContext returns the authenticated user placed there by
// Middleware.
func ActorFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(actorKey{}).(domain.User)
	return user, ok
}

// Middleware resolves the Bearer token to a user and injects it into the
// request context. Requests without a valid session are rejected by the
// wrapped handler via onReject.
func (g *Gate) Middleware(onReject func(w http.ResponseWriter, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				onReject(w, ErrUnauthenticated)
				return
			}

			userID, ok := g.sessions.Resolve(token)
			if !ok {
				onReject(w, ErrUnauthenticated)
				return
			}

			user, err := g.users.FindUserByID(r.Context(), userID)
			if err != nil {
				onReject(w, ErrUnauthenticated)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the session token from the Authorization header.
// It returns "" unless the header carries the "Bearer " scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
