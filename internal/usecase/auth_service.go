package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
)

// TokenIssuer signs session tokens for authenticated principals.
type TokenIssuer interface {
	Issue(principal user.Principal) (string, time.Time, error)
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      user.User
}

type AuthService struct {
	userRepo user.Repository
	hasher   PasswordHasher
	issuer   TokenIssuer
	logger   *logging.Logger
	now      func() time.Time
}

func NewAuthService(userRepo user.Repository, hasher PasswordHasher, issuer TokenIssuer, logger *logging.Logger) *AuthService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks credentials and returns a signed session token. Unknown users
// and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Login")
	defer span.End()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return LoginResult{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	item, exists, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return LoginResult{}, fmt.Errorf("get user by username: %w", err)
	}
	if !exists {
		return LoginResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err := s.hasher.Compare(item.PasswordHash, password); err != nil {
		return LoginResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if !item.IsActive() {
		return LoginResult{}, fmt.Errorf("%w: account is inactive", ErrForbidden)
	}

	token, expiresAt, err := s.issuer.Issue(user.Principal{
		UserID:   item.ID,
		Username: item.Username,
		Role:     item.Role,
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	now := s.now().UTC()
	if err := s.userRepo.TouchLogin(ctx, item.ID, now); err != nil {
		s.logger.WarnContext(ctx, "record last login failed", "user_id", item.ID, "error", err)
	} else {
		item.LastLoginAt = &now
	}

	return LoginResult{Token: token, ExpiresAt: expiresAt, User: item}, nil
}
