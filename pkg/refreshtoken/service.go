package refreshtoken

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultExpiry is the refresh token lifetime used when no option overrides it
const DefaultExpiry = 7 * 24 * time.Hour

const secretLength = 32

// Service implements refresh token issuance, rotation and revocation.
// Every successful redemption consumes the presented token and replaces it
// with a successor; tokens are never reusable as-is.
type Service struct {
	repo   Repository
	expiry time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithExpiry sets the refresh token lifetime
func WithExpiry(expiry time.Duration) Option {
	return func(s *Service) {
		if expiry > 0 {
			s.expiry = expiry
		}
	}
}

// NewService creates a new refresh token service
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		expiry: DefaultExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates and persists a new refresh token for the subject, starting a
// fresh rotation chain
func (s *Service) Issue(ctx context.Context, subject uuid.UUID) (Token, error) {
	return s.issue(ctx, subject, uuid.NullUUID{})
}

// Redeem exchanges a refresh token for its successor. The presented token is
// consumed in the process. Redeeming an already-consumed token is treated as
// a compromise signal: the entire chain reachable from it, including the
// currently active leaf, is revoked before ErrReuseDetected is returned.
func (s *Service) Redeem(ctx context.Context, raw string) (Token, error) {
	id, secret, err := splitToken(raw)
	if err != nil {
		return Token{}, ErrTokenNotFound
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return Token{}, err
	}
	if time.Now().After(rec.ExpiresAt) {
		return Token{}, ErrTokenNotFound
	}

	digest := hashSecret(secret)
	if subtle.ConstantTimeCompare(digest, rec.SecretHash) != 1 {
		return Token{}, ErrInvalidSecret
	}

	if rec.Used {
		slog.Warn("Consumed refresh token presented again, revoking chain",
			"token_id", rec.TokenID, "subject", rec.Subject)
		if err := s.repo.DeleteChain(ctx, rec.TokenID); err != nil {
			return Token{}, fmt.Errorf("revoking chain after reuse: %w", err)
		}
		// Subject is filled in so the caller can say whose session was
		// revoked when it raises the alarm.
		return Token{ID: rec.TokenID, Subject: rec.Subject}, ErrReuseDetected
	}

	successor, secRaw := newRecord(rec.Subject, uuid.NullUUID{UUID: rec.TokenID, Valid: true}, s.expiry)
	created, err := s.repo.Consume(ctx, rec.TokenID, successor)
	if err != nil {
		return Token{}, err
	}
	if !created {
		// Lost a race against another redemption of the same token.
		// Exactly one of the two may win; this one triggers the same
		// revocation a straight replay does.
		slog.Warn("Concurrent redemption of refresh token, revoking chain",
			"token_id", rec.TokenID, "subject", rec.Subject)
		if err := s.repo.DeleteChain(ctx, rec.TokenID); err != nil {
			return Token{}, fmt.Errorf("revoking chain after reuse: %w", err)
		}
		return Token{ID: rec.TokenID, Subject: rec.Subject}, ErrReuseDetected
	}

	return Token{
		ID:        successor.TokenID,
		Subject:   successor.Subject,
		Raw:       encodeToken(successor.TokenID, secRaw),
		ExpiresAt: successor.ExpiresAt,
	}, nil
}

// RevokeChain revokes the chain the presented token belongs to. The secret
// is verified first so that knowing a token id alone cannot end a session.
func (s *Service) RevokeChain(ctx context.Context, raw string) error {
	id, secret, err := splitToken(raw)
	if err != nil {
		return ErrTokenNotFound
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(hashSecret(secret), rec.SecretHash) != 1 {
		return ErrInvalidSecret
	}
	return s.repo.DeleteChain(ctx, rec.TokenID)
}

// RevokeSubject revokes every refresh token belonging to the subject
func (s *Service) RevokeSubject(ctx context.Context, subject uuid.UUID) error {
	return s.repo.DeleteBySubject(ctx, subject)
}

func (s *Service) issue(ctx context.Context, subject uuid.UUID, predecessor uuid.NullUUID) (Token, error) {
	rec, secret := newRecord(subject, predecessor, s.expiry)
	if err := s.repo.Create(ctx, rec); err != nil {
		return Token{}, err
	}
	return Token{
		ID:        rec.TokenID,
		Subject:   subject,
		Raw:       encodeToken(rec.TokenID, secret),
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func newRecord(subject uuid.UUID, predecessor uuid.NullUUID, expiry time.Duration) (Record, string) {
	buf := make([]byte, secretLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no usable entropy
		// source; issuing a guessable token instead is not an option.
		panic(fmt.Sprintf("refreshtoken: reading random secret: %v", err))
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)

	now := time.Now().UTC()
	return Record{
		TokenID:       uuid.New(),
		Subject:       subject,
		SecretHash:    hashSecret(secret),
		PredecessorID: predecessor,
		IssuedAt:      now,
		ExpiresAt:     now.Add(expiry),
	}, secret
}

func hashSecret(secret string) []byte {
	digest := sha256.Sum256([]byte(secret))
	return digest[:]
}

func encodeToken(id uuid.UUID, secret string) string {
	return id.String() + "." + secret
}

func splitToken(raw string) (uuid.UUID, string, error) {
	idStr, secret, ok := strings.Cut(raw, ".")
	if !ok || secret == "" {
		return uuid.UUID{}, "", fmt.Errorf("malformed refresh token")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.UUID{}, "", fmt.Errorf("malformed refresh token id: %w", err)
	}
	return id, secret, nil
}
