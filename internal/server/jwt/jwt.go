package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess значение claim "type" в access token
const TokenTypeAccess = "access"

// Default lifetimes
const (
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	DefaultResetTokenTTL   = time.Hour
)

// ErrInvalidToken returned for any access token that fails validation
var ErrInvalidToken = errors.New("invalid access token")

// Claims represents access token claims. Subject holds the user ID.
type Claims struct {
	Type string `json:"type"`
	gojwt.RegisteredClaims
}

// Service provides JWT token generation and validation
type Service struct {
	now             func() time.Time
	secret          []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewService creates a new JWT service
// secret should be a cryptographically secure random string
func NewService(secret string, accessTokenTTL, refreshTokenTTL time.Duration) *Service {
	return &Service{
		now:             time.Now,
		secret:          []byte(secret),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// GenerateAccessToken creates a signed HS256 access token for the user
func (s *Service) GenerateAccessToken(userID string) (string, error) {
	now := s.now()

	claims := Claims{
		Type: TokenTypeAccess,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  gojwt.NewNumericDate(now),
			Issuer:    "globalconnect",
		},
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateAccessToken validates signature, expiry and token type.
// Returns the user ID from the subject claim.
func (s *Service) ValidateAccessToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, func(token *gojwt.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, gojwt.WithTimeFunc(s.now), gojwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Type != TokenTypeAccess || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// GenerateRefreshToken creates a new random refresh token and its expiry
func (s *Service) GenerateRefreshToken() (string, time.Time, error) {
	token, err := NewOpaqueToken()
	if err != nil {
		return "", time.Time{}, err
	}

	return token, s.now().Add(s.refreshTokenTTL), nil
}

// NewOpaqueToken returns 32 random bytes encoded as URL-safe base64
func NewOpaqueToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}
