package authz

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

// AuthUser is the verified identity attached to the request context once
// the bearer token has been checked
type AuthUser struct {
	Subject uuid.UUID
	Role    Role
}

func (u AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("subject", u.Subject.String()),
		slog.String("role", string(u.Role)),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "authz context value " + k.name
}

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

// FromContext returns the AuthUser stored by AuthUserMiddleware
func FromContext(ctx context.Context) (*AuthUser, bool) {
	user, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return user, ok
}

// Verifier extracts and verifies the bearer token from the Authorization
// header or the access_token cookie
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return jwtauth.Verify(ja, jwtauth.TokenFromHeader, jwtauth.TokenFromCookie)
}

// AuthUserMiddleware converts verified token claims into an AuthUser on the
// request context. Missing subject or a role outside the closed set is a
// 401; the guard never passes unrecognized roles downstream.
func AuthUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		sub, _ := claims["sub"].(string)
		subject, err := uuid.Parse(sub)
		if err != nil {
			slog.Warn("Bearer token with unusable subject claim", "err", err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		roleStr, _ := claims["role"].(string)
		role, err := ParseRole(roleStr)
		if err != nil {
			slog.Warn("Bearer token with unknown role claim", "role", roleStr)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		authUser := &AuthUser{Subject: subject, Role: role}
		ctx := context.WithValue(r.Context(), AuthUserKey, authUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route subtree with an Authorize check
func RequireRole(required Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if err := Authorize(authUser.Role, required); err != nil {
				slog.Info("Authorization denied", "user", authUser, "required", string(required))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
