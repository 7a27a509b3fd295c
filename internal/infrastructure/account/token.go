package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/usecase"
)

type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type sessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 session tokens for operators.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(strings.TrimSpace(cfg.Secret)) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		cfg.Issuer = "matchday-preview"
	}
	return &TokenService{cfg: cfg, now: time.Now}, nil
}

func (s *TokenService) Issue(principal user.Principal) (string, time.Time, error) {
	if strings.TrimSpace(principal.UserID) == "" {
		return "", time.Time{}, fmt.Errorf("principal user id is required")
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.TTL)
	claims := sessionClaims{
		Username: principal.Username,
		Role:     string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   principal.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *TokenService) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return user.Principal{}, fmt.Errorf("%w: token expired", usecase.ErrUnauthorized)
		}
		return user.Principal{}, fmt.Errorf("%w: invalid token", usecase.ErrUnauthorized)
	}
	if !parsed.Valid {
		return user.Principal{}, fmt.Errorf("%w: invalid token", usecase.ErrUnauthorized)
	}

	role := user.Role(claims.Role)
	if strings.TrimSpace(claims.Subject) == "" || !role.Valid() {
		return user.Principal{}, fmt.Errorf("%w: token claims are incomplete", usecase.ErrUnauthorized)
	}

	return user.Principal{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     role,
	}, nil
}
