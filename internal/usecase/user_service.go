package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/platform/id"
)

const minPasswordLength = 8

// PasswordHasher hashes and verifies operator passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type UserInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     user.Role
	Status   user.Status
}

type UserService struct {
	userRepo user.Repository
	hasher   PasswordHasher
	idGen    id.Generator
	now      func() time.Time
}

func NewUserService(userRepo user.Repository, hasher PasswordHasher, idGen id.Generator) *UserService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		idGen:    idGen,
		now:      time.Now,
	}
}

func (s *UserService) List(ctx context.Context, filter user.Filter) (Page[user.User], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.List")
	defer span.End()

	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Role != "" && !filter.Role.Valid() {
		return Page[user.User]{}, fmt.Errorf("%w: unsupported role %q", ErrInvalidInput, filter.Role)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return Page[user.User]{}, fmt.Errorf("%w: unsupported status %q", ErrInvalidInput, filter.Status)
	}
	filter.Limit, filter.Offset = normalizePaging(filter.Limit, filter.Offset)

	items, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return Page[user.User]{}, fmt.Errorf("list users: %w", err)
	}
	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return Page[user.User]{}, fmt.Errorf("count users: %w", err)
	}
	return Page[user.User]{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (user.User, error) {
	userID = strings.TrimSpace(userID)
	if !id.Valid(userID) {
		return user.User{}, fmt.Errorf("%w: invalid user id %q", ErrInvalidInput, userID)
	}

	item, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}
	return item, nil
}

func (s *UserService) Create(ctx context.Context, input UserInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Create")
	defer span.End()

	username := strings.ToLower(strings.TrimSpace(input.Username))
	if _, exists, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return user.User{}, fmt.Errorf("get user by username: %w", err)
	} else if exists {
		return user.User{}, fmt.Errorf("%w: username %s is taken", ErrConflict, username)
	}

	if len(input.Password) < minPasswordLength {
		return user.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.idGen.NewID()
	if err != nil {
		return user.User{}, fmt.Errorf("generate user id: %w", err)
	}

	now := s.now().UTC()
	item := user.User{
		ID:           userID,
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		Role:         input.Role,
		Status:       input.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.Role == "" {
		item.Role = user.RoleKTV
	}
	if item.Status == "" {
		item.Status = user.StatusActive
	}
	if err := item.Validate(); err != nil {
		return user.User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.userRepo.Create(ctx, item); err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return item, nil
}

// Update changes profile, role, status or password. Username is immutable.
func (s *UserService) Update(ctx context.Context, principal user.Principal, userID string, input UserInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Update")
	defer span.End()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if current.ID == principal.UserID {
		if input.Role != "" && input.Role != current.Role {
			return user.User{}, fmt.Errorf("%w: cannot change your own role", ErrForbidden)
		}
		if input.Status == user.StatusInactive {
			return user.User{}, fmt.Errorf("%w: cannot deactivate yourself", ErrForbidden)
		}
	}

	if v := strings.TrimSpace(input.Email); v != "" {
		current.Email = v
	}
	if v := strings.TrimSpace(input.FullName); v != "" {
		current.FullName = v
	}
	if input.Role != "" {
		current.Role = input.Role
	}
	if input.Status != "" {
		current.Status = input.Status
	}
	if input.Password != "" {
		if len(input.Password) < minPasswordLength {
			return user.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
		}
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return user.User{}, fmt.Errorf("hash password: %w", err)
		}
		current.PasswordHash = hash
	}
	current.UpdatedAt = s.now().UTC()

	if err := current.Validate(); err != nil {
		return user.User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.userRepo.Update(ctx, current); err != nil {
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	return current, nil
}

func (s *UserService) Delete(ctx context.Context, principal user.Principal, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Delete")
	defer span.End()

	current, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if current.ID == principal.UserID {
		return fmt.Errorf("%w: cannot delete yourself", ErrForbidden)
	}

	if err := s.userRepo.Delete(ctx, current.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
