package ports

import (
	"context"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// ActivityRepository persists the issue audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, activity *domain.IssueActivity) error
	// ListByIssue returns an issue's activity oldest first.
	ListByIssue(ctx context.Context, issueID string) ([]*domain.IssueActivity, error)
}
