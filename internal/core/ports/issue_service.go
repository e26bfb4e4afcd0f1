package ports

import (
	"context"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// CreateIssueInput carries all data needed to file a new issue.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    domain.IssueCategory
	Priority    domain.IssuePriority
	Status      domain.IssueStatus
	Location    domain.Location
	Reporter    domain.Reporter
	AssignedTo  string
	Department  string
	Images      []string
	Feedback    *domain.Feedback
	Actor       string
}

// AssignIssueInput routes an issue to an officer and/or a department.
type AssignIssueInput struct {
	AssignedTo *string
	Department *string
	Actor      string
}

// IssueService defines use-case operations for issues. Actor is the email of
// the authenticated caller when known; it only feeds the audit trail.
type IssueService interface {
	ListIssues(ctx context.Context, filter domain.IssueFilter) ([]*domain.Issue, error)
	GetIssue(ctx context.Context, id string) (*domain.Issue, error)
	CreateIssue(ctx context.Context, input CreateIssueInput) (*domain.Issue, error)
	UpdateIssue(ctx context.Context, id string, patch domain.IssuePatch, actor string) (*domain.Issue, error)
	ChangeStatus(ctx context.Context, id string, status domain.IssueStatus, actor string) (*domain.Issue, error)
	AssignIssue(ctx context.Context, id string, input AssignIssueInput) (*domain.Issue, error)
	DeleteIssue(ctx context.Context, id, actor string) (*domain.Issue, error)
	IssueActivity(ctx context.Context, id string) ([]*domain.IssueActivity, error)
}

// AnalyticsService computes the dashboard aggregates.
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
	CategoryBreakdown(ctx context.Context) ([]domain.CategoryCount, error)
	DepartmentPerformance(ctx context.Context) ([]domain.DepartmentPerformance, error)
}
