package auth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
)

// SecretVerifier verifies HS256 tokens signed with a shared secret. It backs
// local development, tests and the seed tool, which can issue tokens.
type SecretVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewSecretVerifier creates an HS256 verifier
func NewSecretVerifier(secret string, logger *slog.Logger) (*SecretVerifier, error) {
	if len(secret) < 32 {
		return nil, errors.New("JWT secret must be at least 32 bytes")
	}
	return &SecretVerifier{secret: []byte(secret), logger: logger}, nil
}

func (v *SecretVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		v.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}
	return checkClaims(claims, v.logger)
}

// IssueToken signs an access token for userID valid for ttl
func (v *SecretVerifier) IssueToken(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  "authenticated",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *SecretVerifier) Close() error { return nil }
