package ports

import (
	"context"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// CreateUserInput carries the fields accepted when an admin creates an account.
type CreateUserInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
	Phone      string
	Avatar     string
	Bio        string
	Status     string
}

type UserService interface {
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) (*domain.User, error)
}
