package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/verdant-labs/authcore/pkg/authz"
	"github.com/verdant-labs/authcore/pkg/identity"
	"github.com/verdant-labs/authcore/pkg/login"
	"github.com/verdant-labs/authcore/pkg/refreshtoken"
)

// Handle handles HTTP requests for authentication
type Handle struct {
	loginService *login.LoginService
}

// NewHandle creates a new authentication handler
func NewHandle(loginService *login.LoginService) *Handle {
	return &Handle{loginService: loginService}
}

// RegisterRoutes registers the authentication routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/token/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
	r.Post("/register", h.Register)
}

// RegisterProtectedRoutes registers routes that require a verified bearer
// token on the request context
func (h *Handle) RegisterProtectedRoutes(r chi.Router) {
	r.Put("/password", h.ChangePassword)
	r.Post("/logout/all", h.LogoutAll)
}

// Login handles the credential login request
func (h *Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.loginService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.renderAuthFailure(w, r, err)
		return
	}

	render.JSON(w, r, newTokenResponse(pair))
}

// Refresh handles the refresh token exchange request
func (h *Handle) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.loginService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.renderAuthFailure(w, r, err)
		return
	}

	render.JSON(w, r, newTokenResponse(pair))
}

// Logout revokes the presented refresh token's chain
func (h *Handle) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.loginService.Logout(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, login.ErrStoreUnavailable) {
			renderError(w, r, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		// Logout of an unknown or already-revoked token is not an error
		// worth reporting to the client.
		slog.Debug("Logout on unknown refresh token", "err", err)
	}

	render.JSON(w, r, MessageResponse{Message: "logged out"})
}

// LogoutAll revokes every session of the authenticated subject
func (h *Handle) LogoutAll(w http.ResponseWriter, r *http.Request) {
	authUser, ok := authz.FromContext(r.Context())
	if !ok {
		renderError(w, r, http.StatusUnauthorized, credentialsMessage)
		return
	}

	if err := h.loginService.LogoutAll(r.Context(), authUser.Subject); err != nil {
		renderError(w, r, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	render.JSON(w, r, MessageResponse{Message: "logged out"})
}

// Register creates a new identity
func (h *Handle) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	params := login.RegisterParams{}
	copier.Copy(&params, &req)

	ident, err := h.loginService.Register(r.Context(), params)
	if err != nil {
		var complexityErr login.ErrPasswordComplexity
		switch {
		case errors.As(err, &complexityErr):
			renderError(w, r, http.StatusBadRequest, complexityErr.Error())
		case errors.Is(err, identity.ErrUsernameTaken):
			renderError(w, r, http.StatusConflict, "username already taken")
		case errors.Is(err, login.ErrStoreUnavailable):
			renderError(w, r, http.StatusServiceUnavailable, "service unavailable")
		default:
			renderError(w, r, http.StatusBadRequest, err.Error())
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, IdentityResponse{
		ID:       ident.ID.String(),
		Username: ident.Username,
		Role:     ident.Role,
	})
}

// ChangePassword verifies the current password and replaces it
func (h *Handle) ChangePassword(w http.ResponseWriter, r *http.Request) {
	authUser, ok := authz.FromContext(r.Context())
	if !ok {
		renderError(w, r, http.StatusUnauthorized, credentialsMessage)
		return
	}

	var req ChangePasswordRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.loginService.ChangePassword(r.Context(), authUser.Subject, req.CurrentPassword, req.NewPassword)
	if err != nil {
		var complexityErr login.ErrPasswordComplexity
		switch {
		case errors.As(err, &complexityErr):
			renderError(w, r, http.StatusBadRequest, complexityErr.Error())
		case errors.Is(err, login.ErrStoreUnavailable):
			renderError(w, r, http.StatusServiceUnavailable, "service unavailable")
		default:
			renderError(w, r, http.StatusUnauthorized, credentialsMessage)
		}
		return
	}

	render.JSON(w, r, MessageResponse{Message: "password changed"})
}

// renderAuthFailure collapses every authentication failure to the same 401
// so the response kind leaks nothing about which check failed. Reuse
// detection gets logged loudly first; infrastructure failures surface as
// 503 rather than masquerading as an auth decision.
func (h *Handle) renderAuthFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, refreshtoken.ErrReuseDetected):
		slog.Error("Rejecting request after refresh token reuse", "err", err)
		renderError(w, r, http.StatusUnauthorized, credentialsMessage)
	case errors.Is(err, login.ErrStoreUnavailable):
		slog.Error("Store unavailable during authentication", "err", err)
		renderError(w, r, http.StatusServiceUnavailable, "service unavailable")
	default:
		renderError(w, r, http.StatusUnauthorized, credentialsMessage)
	}
}
