package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/verdant-labs/authcore/pkg/authz"
	"github.com/verdant-labs/authcore/pkg/config"
	"github.com/verdant-labs/authcore/pkg/identity"
	"github.com/verdant-labs/authcore/pkg/login"
	loginapi "github.com/verdant-labs/authcore/pkg/login/api"
	"github.com/verdant-labs/authcore/pkg/notification"
	"github.com/verdant-labs/authcore/pkg/ratelimit"
	"github.com/verdant-labs/authcore/pkg/refreshtoken"
	"github.com/verdant-labs/authcore/pkg/tokengenerator"
)

type Config struct {
	DbConfig             config.DatabaseConfig
	JwtConfig            config.JwtConfig
	PasswordPolicyConfig config.PasswordPolicyConfig
	EmailConfig          config.EmailConfig
	AppConfig            app.AppConfig
}

func main() {
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	pool, err := dbutils.NewDbPool(context.Background(), cfg.DbConfig.ToDbConfig())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.DbConfig.Database, "host", cfg.DbConfig.Host, "err", err)
		os.Exit(-1)
	}

	accessExpiry, err := cfg.JwtConfig.ParseAccessTokenExpiry()
	if err != nil {
		slog.Error("Invalid access token expiry", "value", cfg.JwtConfig.AccessTokenExpiry, "err", err)
		os.Exit(-1)
	}
	refreshExpiry, err := cfg.JwtConfig.ParseRefreshTokenExpiry()
	if err != nil {
		slog.Error("Invalid refresh token expiry", "value", cfg.JwtConfig.RefreshTokenExpiry, "err", err)
		os.Exit(-1)
	}

	notifications := notification.NewManager(notification.NewSlogNotifier())
	if cfg.EmailConfig.Enabled() {
		emailNotifier, err := notification.NewEmailNotifier(cfg.EmailConfig.ToSMTPConfig())
		if err != nil {
			slog.Error("Failed creating email notifier", "err", err)
			os.Exit(-1)
		}
		notifications.RegisterNotifier(emailNotifier)
	}

	identityRepo := identity.NewPostgresRepository(pool)
	refreshRepo := refreshtoken.NewPostgresRepository(pool)
	refreshSvc := refreshtoken.NewService(refreshRepo, refreshtoken.WithExpiry(refreshExpiry))
	tokenGen := tokengenerator.NewJwtTokenGenerator(cfg.JwtConfig.Secret, cfg.JwtConfig.Issuer, cfg.JwtConfig.Audience)

	loginService := login.NewLoginService(identityRepo, tokenGen, refreshSvc,
		login.WithAccessTokenExpiry(accessExpiry),
		login.WithPolicyChecker(login.NewDefaultPasswordPolicyChecker(cfg.PasswordPolicyConfig.ToPolicy())),
		login.WithNotificationManager(notifications, cfg.EmailConfig.AlertTo),
	)

	loginHandle := loginapi.NewHandle(loginService)
	loginLimiter := ratelimit.NewMiddleware(ratelimit.DefaultConfig())
	server.R.Route("/auth", func(r chi.Router) {
		r.Use(loginLimiter.Handler)
		loginHandle.RegisterRoutes(r)
	})

	// The same issuer/audience checks the token generator applies on parse;
	// both verification paths must reject the same tokens.
	tokenAuth := jwtauth.New("HS256", []byte(cfg.JwtConfig.Secret), nil,
		jwt.WithIssuer(cfg.JwtConfig.Issuer),
		jwt.WithAudience(cfg.JwtConfig.Audience),
	)

	server.R.Group(func(r chi.Router) {
		r.Use(authz.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(authz.AuthUserMiddleware)

		r.Route("/auth/me", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				authUser, _ := authz.FromContext(r.Context())
				render.JSON(w, r, map[string]string{
					"subject": authUser.Subject.String(),
					"role":    string(authUser.Role),
				})
			})
		})

		r.Route("/auth/session", func(r chi.Router) {
			loginHandle.RegisterProtectedRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(authz.RequireRole(authz.RoleAdmin))
			r.Get("/admin/ping", func(w http.ResponseWriter, r *http.Request) {
				render.PlainText(w, r, http.StatusText(http.StatusOK))
			})
		})
	})

	server.Run()
}
