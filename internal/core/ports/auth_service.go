package ports

import (
	"context"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// SignupInput carries the fields accepted by POST /auth/signup.
type SignupInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
	Phone      string
	Avatar     string
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
