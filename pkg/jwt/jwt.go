package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingMethod = gojwt.SigningMethodHS256

// Config holds token verification settings.
type Config struct {
	Secret string `env:"JWT_SECRET,required"`
	// Issuer, when set, must match the token's iss claim.
	Issuer string `env:"JWT_ISSUER"`
	// Leeway tolerates clock skew on exp and nbf.
	Leeway time.Duration `env:"JWT_LEEWAY" envDefault:"30s"`
}

// Claims is the token payload.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	gojwt.RegisteredClaims
}

// User returns the authenticated user id.
func (c Claims) User() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// Service signs and verifies tokens.
type Service struct {
	secret []byte
	parser *gojwt.Parser
	issuer string
}

// New creates a Service from cfg.
func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{signingMethod.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(cfg.Issuer))
	}
	return &Service{
		secret: []byte(cfg.Secret),
		parser: gojwt.NewParser(opts...),
		issuer: cfg.Issuer,
	}, nil
}

// Issue mints a token for userID valid for ttl from now.
func (s *Service) Issue(userID string, now time.Time, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUserID
	}
	claims := Claims{
		UserID: userID,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := gojwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns its claims.
func (s *Service) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.secret, nil
	})
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return nil, errors.Join(ErrExpiredToken, err)
	case err != nil:
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.User() == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}
