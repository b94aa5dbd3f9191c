package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/verdant-labs/authcore/pkg/identity"
	"github.com/verdant-labs/authcore/pkg/notification"
	"github.com/verdant-labs/authcore/pkg/refreshtoken"
	"github.com/verdant-labs/authcore/pkg/tokengenerator"
)

// DefaultAccessTokenExpiry is the access token lifetime used when no option
// overrides it
const DefaultAccessTokenExpiry = 15 * time.Minute

// TokenPair is what a successful login or refresh returns. It is issued
// atomically: callers never see an access token without its refresh token
// or the other way around.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// LoginService orchestrates authentication: password login, token pair
// refresh with rotation, and revocation.
//
// Per session chain the lifecycle is
// anonymous -> authenticated (pair issued) -> refreshed (repeatable) -> revoked.
type LoginService struct {
	identities    identity.Repository
	refreshSvc    *refreshtoken.Service
	tokenGen      tokengenerator.TokenGenerator
	hashers       PasswordHasherFactory
	policy        PasswordPolicyChecker
	notifications *notification.Manager
	accessExpiry  time.Duration
	alertTo       string

	// hash of a throwaway password, verified against when the username is
	// unknown so both failure paths cost a real hash computation
	dummyHash string
}

// Option is a function that configures a LoginService
type Option func(*LoginService)

// WithHasherFactory sets the password hasher factory
func WithHasherFactory(f PasswordHasherFactory) Option {
	return func(s *LoginService) {
		s.hashers = f
	}
}

// WithPolicyChecker sets the password policy checker
func WithPolicyChecker(pc PasswordPolicyChecker) Option {
	return func(s *LoginService) {
		s.policy = pc
	}
}

// WithAccessTokenExpiry sets the access token lifetime
func WithAccessTokenExpiry(expiry time.Duration) Option {
	return func(s *LoginService) {
		if expiry > 0 {
			s.accessExpiry = expiry
		}
	}
}

// WithNotificationManager sets the manager security alerts are sent through
func WithNotificationManager(m *notification.Manager, alertTo string) Option {
	return func(s *LoginService) {
		s.notifications = m
		s.alertTo = alertTo
	}
}

// NewLoginService creates a new LoginService
func NewLoginService(identities identity.Repository, tokenGen tokengenerator.TokenGenerator, refreshSvc *refreshtoken.Service, opts ...Option) *LoginService {
	s := &LoginService{
		identities:   identities,
		refreshSvc:   refreshSvc,
		tokenGen:     tokenGen,
		hashers:      NewDefaultHasherFactory(),
		policy:       NewDefaultPasswordPolicyChecker(nil),
		accessExpiry: DefaultAccessTokenExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := s.hashers.GetCurrentHasher().Hash(uuid.New().String())
	if err != nil {
		// Hashing a fresh random string only fails when the hasher itself
		// is broken; nothing sensible can run on top of that.
		panic(fmt.Sprintf("login: hashing dummy password: %v", err))
	}
	s.dummyHash = dummy

	return s
}

// Login verifies the credentials and issues a token pair. Unknown username,
// wrong password and disabled identity all fail with ErrInvalidCredentials.
func (s *LoginService) Login(ctx context.Context, username, password string) (TokenPair, error) {
	ident, err := s.identities.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			// Burn a hash computation anyway so the unknown-username
			// path costs the same as a wrong password.
			VerifyAny(s.hashers, password, s.dummyHash)
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, storeError(err)
	}

	if !VerifyAny(s.hashers, password, ident.PasswordHash) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if ident.Disabled {
		slog.Info("Login attempt on disabled identity", "subject", ident.ID)
		return TokenPair{}, ErrInvalidCredentials
	}

	return s.issuePair(ctx, ident)
}

// Refresh redeems a refresh token and returns a fresh pair. The role claim
// is re-read from the credential store so role changes propagate here.
func (s *LoginService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	rt, err := s.refreshSvc.Redeem(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, refreshtoken.ErrReuseDetected) {
			s.alertReuse(rt.Subject, refreshToken)
			return TokenPair{}, err
		}
		if errors.Is(err, refreshtoken.ErrTokenNotFound) || errors.Is(err, refreshtoken.ErrInvalidSecret) {
			return TokenPair{}, err
		}
		return TokenPair{}, storeError(err)
	}

	ident, err := s.identities.Get(ctx, rt.Subject)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			s.revokeRaw(ctx, rt.Raw)
			return TokenPair{}, ErrInvalidCredentials
		}
		s.revokeRaw(ctx, rt.Raw)
		return TokenPair{}, storeError(err)
	}
	if ident.Disabled {
		slog.Info("Refresh attempt on disabled identity", "subject", ident.ID)
		s.revokeRaw(ctx, rt.Raw)
		return TokenPair{}, ErrInvalidCredentials
	}

	accessToken, accessExp, err := s.tokenGen.GenerateToken(ident.ID, ident.Role, s.accessExpiry)
	if err != nil {
		// The rotated token is already persisted; take it back so the
		// pair stays all-or-nothing.
		s.revokeRaw(ctx, rt.Raw)
		return TokenPair{}, fmt.Errorf("issuing access token: %w", err)
	}

	return TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     rt.Raw,
		RefreshExpiresAt: rt.ExpiresAt,
	}, nil
}

// Logout revokes the chain the presented refresh token belongs to. Access
// tokens already in the wild stay valid until natural expiry; they are
// stateless and there is no denylist here.
func (s *LoginService) Logout(ctx context.Context, refreshToken string) error {
	err := s.refreshSvc.RevokeChain(ctx, refreshToken)
	if err != nil && !errors.Is(err, refreshtoken.ErrTokenNotFound) && !errors.Is(err, refreshtoken.ErrInvalidSecret) {
		return storeError(err)
	}
	return err
}

// LogoutAll revokes every refresh token belonging to the subject
func (s *LoginService) LogoutAll(ctx context.Context, subject uuid.UUID) error {
	if err := s.refreshSvc.RevokeSubject(ctx, subject); err != nil {
		return storeError(err)
	}
	return nil
}

// RegisterParams represents parameters for registering an identity
type RegisterParams struct {
	Username string
	Password string
	Role     string
}

// Register creates a new identity after checking password complexity.
// An empty role defaults to "user"; unknown role values are rejected.
func (s *LoginService) Register(ctx context.Context, params RegisterParams) (identity.Identity, error) {
	if params.Role == "" {
		params.Role = identity.RoleUser
	}
	if !identity.ValidRole(params.Role) {
		return identity.Identity{}, fmt.Errorf("unknown role: %q", params.Role)
	}

	if err := s.policy.CheckPasswordComplexity(params.Password); err != nil {
		return identity.Identity{}, ErrPasswordComplexity{Details: err.Error()}
	}

	hash, err := s.hashers.GetCurrentHasher().Hash(params.Password)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("hashing password: %w", err)
	}

	ident, err := s.identities.Create(ctx, identity.CreateIdentityParams{
		Username:     params.Username,
		PasswordHash: hash,
		Role:         params.Role,
	})
	if err != nil {
		if errors.Is(err, identity.ErrUsernameTaken) {
			return identity.Identity{}, err
		}
		return identity.Identity{}, storeError(err)
	}

	slog.Info("Registered identity", "subject", ident.ID, "role", ident.Role)
	return ident, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every open session of the subject
func (s *LoginService) ChangePassword(ctx context.Context, subject uuid.UUID, currentPassword, newPassword string) error {
	ident, err := s.identities.Get(ctx, subject)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			return ErrInvalidCredentials
		}
		return storeError(err)
	}

	if !VerifyAny(s.hashers, currentPassword, ident.PasswordHash) || ident.Disabled {
		return ErrInvalidCredentials
	}

	if err := s.policy.CheckPasswordComplexity(newPassword); err != nil {
		return ErrPasswordComplexity{Details: err.Error()}
	}

	hash, err := s.hashers.GetCurrentHasher().Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.identities.UpdatePassword(ctx, subject, hash); err != nil {
		return storeError(err)
	}

	// A password change invalidates every existing session chain.
	if err := s.refreshSvc.RevokeSubject(ctx, subject); err != nil {
		return storeError(err)
	}
	return nil
}

// issuePair mints access and refresh tokens for the identity. The access
// token is signed first; the refresh record is only persisted once signing
// succeeded, so a failure on either side leaves nothing behind.
func (s *LoginService) issuePair(ctx context.Context, ident identity.Identity) (TokenPair, error) {
	accessToken, accessExp, err := s.tokenGen.GenerateToken(ident.ID, ident.Role, s.accessExpiry)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issuing access token: %w", err)
	}

	rt, err := s.refreshSvc.Issue(ctx, ident.ID)
	if err != nil {
		return TokenPair{}, storeError(err)
	}

	return TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     rt.Raw,
		RefreshExpiresAt: rt.ExpiresAt,
	}, nil
}

func (s *LoginService) revokeRaw(ctx context.Context, raw string) {
	if err := s.refreshSvc.RevokeChain(ctx, raw); err != nil {
		slog.Error("Failed to revoke refresh chain", "err", err)
	}
}

func (s *LoginService) alertReuse(subject uuid.UUID, refreshToken string) {
	slog.Error("Refresh token reuse detected", "subject", subject)
	s.notifications.Notify(notification.SecurityAlertNotification, notification.NotificationData{
		To:      s.alertTo,
		Subject: "Refresh token reuse detected",
		Body:    "A consumed refresh token was presented again. The session chain has been revoked and the user must authenticate afresh.",
		Data: map[string]string{
			"subject": subject.String(),
		},
	})
}
