package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicportal/admin-api/internal/api/metrics"
	"github.com/civicportal/admin-api/internal/core/domain"
	"github.com/civicportal/admin-api/internal/core/ports"
)

type activityService struct {
	repo      ports.ActivityRepository
	publisher ports.ActivityPublisher
	log       zerolog.Logger
}

// NewActivityService returns an ActivityService. publisher may be nil when no
// external sink is configured.
func NewActivityService(repo ports.ActivityRepository, publisher ports.ActivityPublisher, log zerolog.Logger) ports.ActivityService {
	return &activityService{repo: repo, publisher: publisher, log: log}
}

// Process persists one audit entry and forwards it to the publisher.
func (s *activityService) Process(ctx context.Context, a domain.IssueActivity) error {
	start := time.Now()

	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}

	if err := s.repo.Insert(ctx, &a); err != nil {
		metrics.ActivityErrorsTotal.WithLabelValues("insert_failed").Inc()
		metrics.ActivityProcessingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("process activity: insert: %w", err)
	}

	// The audit row is the source of truth; the external sink is best effort.
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, a); err != nil {
			metrics.ActivityErrorsTotal.WithLabelValues("publish_failed").Inc()
			s.log.Warn().Err(err).Str("issue_id", a.IssueID).Msg("failed to publish activity")
		}
	}

	metrics.ActivityProcessedTotal.WithLabelValues(string(a.Action)).Inc()
	switch a.Action {
	case domain.ActionCreated:
		metrics.IssuesCreatedTotal.Inc()
	case domain.ActionStatusChanged:
		metrics.StatusChangesTotal.WithLabelValues(string(a.FromStatus), string(a.ToStatus)).Inc()
	}
	metrics.ActivityProcessingDuration.WithLabelValues(string(a.Action)).Observe(time.Since(start).Seconds())

	s.log.Debug().
		Str("issue_id", a.IssueID).
		Str("action", string(a.Action)).
		Msg("activity processed")
	return nil
}
