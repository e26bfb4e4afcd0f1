package ports

import (
	"context"
	"time"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// UserRepository defines persistence operations for staff accounts.
type UserRepository interface {
	// Create inserts user. A duplicate email yields domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns users matching filter, newest first.
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch, updatedAt time.Time) (*domain.User, error)
	SetRole(ctx context.Context, id, role string) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) (*domain.User, error)
	CountActiveOfficers(ctx context.Context) (int64, error)
}
