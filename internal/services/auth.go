package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
	"github.com/insertapp/insert/pkg/models"
)

// SessionStore is the subset of redis.Client the auth service needs, kept
// narrow so tests can substitute a fake.
type SessionStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService issues and validates bearer tokens. A token is only accepted
// while its session key is live in Redis, so revocation takes effect
// immediately instead of waiting out the JWT expiry.
type AuthService struct {
	cfg       *config.Config
	logger    *logrus.Logger
	sessions  SessionStore
	jwtSecret []byte
}

func NewAuthService(cfg *config.Config, logger *logrus.Logger, sessions SessionStore) *AuthService {
	return &AuthService{
		cfg:       cfg,
		logger:    logger,
		sessions:  sessions,
		jwtSecret: []byte(cfg.Auth.JWTSecret),
	}
}

// GenerateToken signs a JWT for the user and opens the backing session.
func (s *AuthService) GenerateToken(ctx context.Context, userID uuid.UUID, nickname string) (string, error) {
	now := time.Now()
	claims := &models.JWTClaims{
		UserID:   userID,
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Auth.TokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "github.com/insertapp/insert",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.sessions.Set(ctx, sessionKey(userID), tokenString, s.cfg.Auth.TokenTTL).Err(); err != nil {
		// Session-gated validation fails open when Redis is down, so the
		// token stays usable.
		s.logger.WithError(err).Warn("Failed to store session in Redis")
	}

	return tokenString, nil
}

// ValidateToken checks the signature, the registered claims and the
// session. A missing session means the token was revoked or never issued
// here.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	exists, err := s.sessions.Exists(ctx, sessionKey(claims.UserID)).Result()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to check session in Redis")
	} else if exists == 0 {
		return nil, fmt.Errorf("session not found or expired")
	}

	return claims, nil
}

// RevokeToken drops the user's session; outstanding JWTs stop validating.
func (s *AuthService) RevokeToken(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func sessionKey(userID uuid.UUID) string {
	return fmt.Sprintf("session:%s", userID.String())
}
