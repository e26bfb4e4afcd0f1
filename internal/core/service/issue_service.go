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

// IssueOptions tunes IssueService behaviour.
type IssueOptions struct {
	// StrictTransitions enforces the forward-only status lifecycle. When false
	// any status may be written at any time.
	StrictTransitions bool
}

type IssueService struct {
	repo       ports.IssueRepository
	activities ports.ActivityRepository
	recorder   ports.ActivityRecorder
	cache      StatsCache
	opts       IssueOptions
	logger     zerolog.Logger
	now        func() time.Time
}

func NewIssueService(
	repo ports.IssueRepository,
	activities ports.ActivityRepository,
	recorder ports.ActivityRecorder,
	cache StatsCache,
	opts IssueOptions,
	logger zerolog.Logger,
) *IssueService {
	if cache == nil {
		cache = NoopStatsCache{}
	}
	return &IssueService{
		repo:       repo,
		activities: activities,
		recorder:   recorder,
		cache:      cache,
		opts:       opts,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *IssueService) ListIssues(ctx context.Context, filter domain.IssueFilter) ([]*domain.Issue, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, filter.Status)
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, filter.Category)
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, filter.Priority)
	}
	return s.repo.List(ctx, filter)
}

func (s *IssueService) GetIssue(ctx context.Context, id string) (*domain.Issue, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateIssue files a new issue. Timestamps are always set by the server.
func (s *IssueService) CreateIssue(ctx context.Context, in ports.CreateIssueInput) (*domain.Issue, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.Category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}

	now := s.now()
	issue := &domain.Issue{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      in.Status,
		Location:    in.Location,
		Reporter:    in.Reporter,
		AssignedTo:  in.AssignedTo,
		Department:  in.Department,
		Images:      in.Images,
		Feedback:    in.Feedback,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	issue.ApplyDefaults()
	if issue.Status == domain.StatusResolved {
		issue.ResolvedAt = &now
	}

	if err := validateIssue(issue); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, issue)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create issue")
		return nil, err
	}

	s.record(domain.IssueActivity{
		IssueID:  created.ID,
		Action:   domain.ActionCreated,
		ToStatus: created.Status,
		Actor:    in.Actor,
		At:       now,
	})
	s.invalidate(ctx)

	s.logger.Info().
		Str("issue_id", created.ID).
		Str("category", string(created.Category)).
		Str("priority", string(created.Priority)).
		Msg("issue created")
	return created, nil
}

// UpdateIssue applies a partial update. Fields absent from patch keep their
// stored value.
func (s *IssueService) UpdateIssue(ctx context.Context, id string, patch domain.IssuePatch, actor string) (*domain.Issue, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.repo.FindByID(ctx, id)
	}
	if patch.Location != nil && len(patch.Location.Coordinates) == 0 {
		loc := *patch.Location
		loc.Coordinates = []float64{0, 0}
		patch.Location = &loc
	}

	var from domain.IssueStatus
	if patch.Status != nil {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.checkTransition(current.Status, *patch.Status); err != nil {
			return nil, err
		}
		from = current.Status
		s.stampResolved(current, &patch)
	}

	updated, err := s.write(ctx, id, from, patch)
	if err != nil {
		return nil, err
	}

	entry := domain.IssueActivity{IssueID: updated.ID, Action: domain.ActionUpdated, Actor: actor, At: updated.UpdatedAt}
	if patch.Status != nil && from != updated.Status {
		entry.Action = domain.ActionStatusChanged
		entry.FromStatus = from
		entry.ToStatus = updated.Status
	}
	s.record(entry)
	s.invalidate(ctx)
	return updated, nil
}

// ChangeStatus writes a new status. Unless strict transitions are enabled the
// previous status is not consulted for permission.
func (s *IssueService) ChangeStatus(ctx context.Context, id string, status domain.IssueStatus, actor string) (*domain.Issue, error) {
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", domain.ErrValidation)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(current.Status, status); err != nil {
		return nil, err
	}

	patch := domain.IssuePatch{Status: &status}
	s.stampResolved(current, &patch)

	updated, err := s.write(ctx, id, current.Status, patch)
	if err != nil {
		return nil, err
	}

	s.record(domain.IssueActivity{
		IssueID:    updated.ID,
		Action:     domain.ActionStatusChanged,
		FromStatus: current.Status,
		ToStatus:   updated.Status,
		Actor:      actor,
		At:         updated.UpdatedAt,
	})
	s.invalidate(ctx)

	s.logger.Info().
		Str("issue_id", updated.ID).
		Str("from", string(current.Status)).
		Str("to", string(updated.Status)).
		Msg("issue status changed")
	return updated, nil
}

// AssignIssue routes an issue to an officer and/or department. Neither value
// is checked against the users collection.
func (s *IssueService) AssignIssue(ctx context.Context, id string, in ports.AssignIssueInput) (*domain.Issue, error) {
	if in.AssignedTo == nil && in.Department == nil {
		return nil, fmt.Errorf("%w: assignedTo or department is required", domain.ErrValidation)
	}

	updated, err := s.repo.Update(ctx, id, domain.IssuePatch{
		AssignedTo: in.AssignedTo,
		Department: in.Department,
	}, s.now())
	if err != nil {
		return nil, err
	}

	s.record(domain.IssueActivity{
		IssueID: updated.ID,
		Action:  domain.ActionAssigned,
		Actor:   in.Actor,
		At:      updated.UpdatedAt,
	})
	return updated, nil
}

func (s *IssueService) DeleteIssue(ctx context.Context, id, actor string) (*domain.Issue, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.record(domain.IssueActivity{
		IssueID:    deleted.ID,
		Action:     domain.ActionDeleted,
		FromStatus: deleted.Status,
		Actor:      actor,
		At:         s.now(),
	})
	s.invalidate(ctx)

	s.logger.Info().Str("issue_id", deleted.ID).Msg("issue deleted")
	return deleted, nil
}

// IssueActivity returns the audit trail of an existing issue.
func (s *IssueService) IssueActivity(ctx context.Context, id string) ([]*domain.IssueActivity, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.activities.ListByIssue(ctx, id)
}

func (s *IssueService) checkTransition(from, to domain.IssueStatus) error {
	if !s.opts.StrictTransitions || from.CanTransitionTo(to) {
		return nil
	}
	return fmt.Errorf("%w: from %s to %s", domain.ErrInvalidTransition, from, to)
}

// write stores patch. Under strict transitions a status change only lands if
// the stored status is still the one the transition was checked against.
func (s *IssueService) write(ctx context.Context, id string, from domain.IssueStatus, patch domain.IssuePatch) (*domain.Issue, error) {
	if s.opts.StrictTransitions && patch.Status != nil {
		return s.repo.UpdateIfStatus(ctx, id, from, patch, s.now())
	}
	return s.repo.Update(ctx, id, patch, s.now())
}

// stampResolved sets resolvedAt the first time an issue becomes resolved.
func (s *IssueService) stampResolved(current *domain.Issue, patch *domain.IssuePatch) {
	if patch.Status == nil || *patch.Status != domain.StatusResolved {
		return
	}
	if current.ResolvedAt != nil || patch.ResolvedAt != nil {
		return
	}
	now := s.now()
	patch.ResolvedAt = &now
}

func (s *IssueService) record(activity domain.IssueActivity) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(activity)
}

func (s *IssueService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

func validateIssue(issue *domain.Issue) error {
	if !issue.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, issue.Category)
	}
	if !issue.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, issue.Priority)
	}
	if !issue.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, issue.Status)
	}
	return validateLocation(issue.Location)
}

func validatePatch(p domain.IssuePatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
	}
	if p.Category != nil && !p.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, *p.Category)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *p.Status)
	}
	if p.Location != nil {
		return validateLocation(*p.Location)
	}
	return nil
}

func validateLocation(l domain.Location) error {
	if n := len(l.Coordinates); n != 0 && n != 2 {
		return fmt.Errorf("%w: coordinates must be [lat, lng]", domain.ErrValidation)
	}
	return nil
}
