package tokengenerator

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultLeeway is the clock skew tolerance applied to expiry checks.
// It never applies to signature verification.
const DefaultLeeway = 30 * time.Second

// TokenGenerator interface defines methods for access token operations
type TokenGenerator interface {
	// GenerateToken generates a signed token for the given subject and role
	GenerateToken(subject uuid.UUID, role string, expiry time.Duration) (string, time.Time, error)

	// ParseToken parses and validates a token, returning its claims
	ParseToken(tokenStr string) (*Claims, error)
}

// Claims struct for JWT claims carried by access tokens
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the subject claim parsed as a UUID
func (c *Claims) SubjectID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// JwtTokenGenerator implements the TokenGenerator interface using HS256.
// The secret is process-wide immutable configuration; key rotation happens
// via redeploy, never at runtime.
type JwtTokenGenerator struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// NewJwtTokenGenerator creates a new JwtTokenGenerator
func NewJwtTokenGenerator(secret, issuer, audience string) *JwtTokenGenerator {
	return &JwtTokenGenerator{
		Secret:   secret,
		Issuer:   issuer,
		Audience: audience,
		Leeway:   DefaultLeeway,
	}
}

// GenerateToken creates a new signed token with the given subject and role
func (g *JwtTokenGenerator) GenerateToken(subject uuid.UUID, role string, expiry time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    g.Issuer,
			Subject:   subject.String(),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{g.Audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		slog.Error("Failed sign JWT claim string", "err", err)
		return "", time.Time{}, err
	}
	return ss, claims.ExpiresAt.Time, nil
}

// ParseToken parses and validates a token string. Expiry is checked with the
// configured leeway; signature and structural failures get no leeway at all.
func (g *JwtTokenGenerator) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return []byte(g.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(g.Leeway),
		jwt.WithIssuer(g.Issuer),
		jwt.WithAudience(g.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrInvalidSignature):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
