package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-labs/authcore/pkg/tokengenerator"
)

const (
	testSecret = "test-secret"
	testIssuer = "authcore-test"
)

func newGuardedServer(t *testing.T) *httptest.Server {
	t.Helper()
	tokenAuth := jwtauth.New("HS256", []byte(testSecret), nil,
		jwt.WithIssuer(testIssuer),
		jwt.WithAudience(testIssuer),
	)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(AuthUserMiddleware)

		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			user, ok := FromContext(r.Context())
			require.True(t, ok)
			w.Write([]byte(user.Subject.String()))
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(RoleAdmin))
			r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	return signTokenIssuedBy(t, role, testIssuer)
}

func signTokenIssuedBy(t *testing.T, role, issuer string) string {
	t.Helper()
	g := tokengenerator.NewJwtTokenGenerator(testSecret, issuer, issuer)
	token, _, err := g.GenerateToken(uuid.New(), role, time.Minute)
	require.NoError(t, err)
	return token
}

func TestGuardMiddleware(t *testing.T) {
	srv := newGuardedServer(t)

	t.Run("NoToken", func(t *testing.T) {
		resp := get(t, srv.URL+"/me", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		resp := get(t, srv.URL+"/me", "garbage")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("ValidUserToken", func(t *testing.T) {
		resp := get(t, srv.URL+"/me", signToken(t, "user"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("ForeignIssuerOrAudience", func(t *testing.T) {
		// Well-signed but minted for a different deployment; the verifier
		// checks issuer and audience, not just the signature.
		resp := get(t, srv.URL+"/me", signTokenIssuedBy(t, "user", "someone-else"))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("UnknownRoleClaim", func(t *testing.T) {
		resp := get(t, srv.URL+"/me", signToken(t, "superuser"))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("UserDeniedAdminRoute", func(t *testing.T) {
		resp := get(t, srv.URL+"/admin", signToken(t, "user"))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("AdminAllowed", func(t *testing.T) {
		resp := get(t, srv.URL+"/admin", signToken(t, "admin"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
