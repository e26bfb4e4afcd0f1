package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicportal/admin-api/internal/core/domain"
	"github.com/civicportal/admin-api/internal/core/ports"
)

// UserService manages staff accounts.
type UserService struct {
	repo   ports.UserRepository
	cache  StatsCache
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, cache StatsCache, logger zerolog.Logger) *UserService {
	if cache == nil {
		cache = NoopStatsCache{}
	}
	return &UserService{repo: repo, cache: cache, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	return s.repo.List(ctx, filter)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateUser adds an account on behalf of an administrator. Unlike signup it
// may assign any known role.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email, password are required", domain.ErrValidation)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	status := in.Status
	if status == "" {
		status = domain.UserActive
	}
	if !domain.ValidUserStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   in.Department,
		Phone:        in.Phone,
		Avatar:       in.Avatar,
		Bio:          in.Bio,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user created")
	return created, nil
}

// UpdateUser changes profile fields only; role and password are not writable here.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrValidation)
		}
		patch.Email = &email
	}

	if patch.IsEmpty() {
		return s.repo.FindByID(ctx, id)
	}

	updated, err := s.repo.Update(ctx, id, patch, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info().Str("user_id", deleted.ID).Msg("user deleted")
	return deleted, nil
}

func (s *UserService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}
