package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go-videotube/internal/model"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type accessVerifier interface {
	VerifyAccess(token string) (string, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

// AuthMiddleware is the session gate in front of every protected route.
type AuthMiddleware struct {
	verifier accessVerifier
	users    userFinder
}

func NewAuthMiddleware(verifier accessVerifier, users userFinder) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, users: users}
}

// RequireAuth resolves the caller from the accessToken cookie or a Bearer
// header and stores the user on the request context. Every failure gets the
// same 401 response.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessTokenFrom(r)
		if token == "" {
			writeUnauthorized(w)
			return
		}

		userID, err := m.verifier.VerifyAccess(token)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		user, err := m.users.FindByID(r.Context(), userID)
		if err != nil {
			slog.DebugContext(r.Context(), "session user lookup failed", "user_id", userID, "error", err)
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user)))
	})
}

// IdentityFromContext returns the user attached by RequireAuth.
func IdentityFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(identityContextKey).(model.User)
	return user, ok
}

// WithIdentity attaches the public view of user to ctx. RequireAuth uses it
// for every authenticated request.
func WithIdentity(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, identityContextKey, user.Public())
}

func accessTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		if token := strings.TrimSpace(cookie.Value); token != "" {
			return token
		}
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return ""
}

func writeUnauthorized(w http.ResponseWriter) {
	writeErrorEnvelope(w, http.StatusUnauthorized, "Unauthorized access")
}
