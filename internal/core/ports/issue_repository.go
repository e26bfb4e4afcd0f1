package ports

import (
	"context"
	"time"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// IssueRepository defines persistence operations for issues.
// Lookups by an id that does not exist, or is not a valid id, return
// domain.ErrIssueNotFound.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) (*domain.Issue, error)
	FindByID(ctx context.Context, id string) (*domain.Issue, error)
	// List returns issues matching filter, most recently updated first.
	List(ctx context.Context, filter domain.IssueFilter) ([]*domain.Issue, error)
	// Update applies patch, stamps updatedAt and returns the stored document.
	Update(ctx context.Context, id string, patch domain.IssuePatch, updatedAt time.Time) (*domain.Issue, error)
	// UpdateIfStatus is Update guarded on the stored status still being from.
	// An issue whose status has since changed yields domain.ErrInvalidTransition.
	UpdateIfStatus(ctx context.Context, id string, from domain.IssueStatus, patch domain.IssuePatch, updatedAt time.Time) (*domain.Issue, error)
	// Delete removes the issue and returns it as it was.
	Delete(ctx context.Context, id string) (*domain.Issue, error)
}

// IssueStatsRepository computes aggregates over the issues collection.
type IssueStatsRepository interface {
	// CountByStatus counts issues with the given status; an empty status counts all.
	CountByStatus(ctx context.Context, status domain.IssueStatus) (int64, error)
	// AverageResolutionHours is the mean time from creation to resolution over
	// resolved issues that carry resolvedAt. Zero when there are none.
	AverageResolutionHours(ctx context.Context) (float64, error)
	// AverageRating is the mean feedback rating. Zero when there is no feedback.
	AverageRating(ctx context.Context) (float64, error)
	CountByCategory(ctx context.Context) ([]domain.CategoryCount, error)
	DepartmentPerformance(ctx context.Context) ([]domain.DepartmentPerformance, error)
}
