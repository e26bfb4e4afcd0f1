package ports

import (
	"context"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// ActivityRecorder accepts audit entries for asynchronous processing.
// Record must not block the request path for long.
type ActivityRecorder interface {
	Record(activity domain.IssueActivity)
}

// ActivityPublisher forwards processed activity to an external sink.
type ActivityPublisher interface {
	Publish(ctx context.Context, activity domain.IssueActivity) error
}

// ActivityService processes a single audit entry.
type ActivityService interface {
	Process(ctx context.Context, activity domain.IssueActivity) error
}
