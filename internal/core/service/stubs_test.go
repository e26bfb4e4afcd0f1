package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicportal/admin-api/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory issue repository
// ---------------------------------------------------------------------------

type stubIssueRepo struct {
	issues    map[string]*domain.Issue
	seq       int
	createErr error
	updates   int
	// beforeWrite runs at the start of every update, standing in for a
	// concurrent writer.
	beforeWrite func(id string)
}

func newStubIssueRepo() *stubIssueRepo {
	return &stubIssueRepo{issues: make(map[string]*domain.Issue)}
}

func cloneIssue(i *domain.Issue) *domain.Issue {
	clone := *i
	return &clone
}

func (r *stubIssueRepo) Create(_ context.Context, issue *domain.Issue) (*domain.Issue, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	stored := cloneIssue(issue)
	stored.ID = fmt.Sprintf("issue-%d", r.seq)
	r.issues[stored.ID] = stored
	return cloneIssue(stored), nil
}

func (r *stubIssueRepo) FindByID(_ context.Context, id string) (*domain.Issue, error) {
	i, ok := r.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	return cloneIssue(i), nil
}

func (r *stubIssueRepo) List(_ context.Context, f domain.IssueFilter) ([]*domain.Issue, error) {
	var out []*domain.Issue
	for _, i := range r.issues {
		if f.Status != "" && i.Status != f.Status {
			continue
		}
		if f.Category != "" && i.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(i.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, cloneIssue(i))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UpdatedAt.After(out[b].UpdatedAt) })
	return out, nil
}

func (r *stubIssueRepo) UpdateIfStatus(ctx context.Context, id string, from domain.IssueStatus, p domain.IssuePatch, updatedAt time.Time) (*domain.Issue, error) {
	if r.beforeWrite != nil {
		r.beforeWrite(id)
		r.beforeWrite = nil
	}
	i, ok := r.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	if i.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	return r.Update(ctx, id, p, updatedAt)
}

func (r *stubIssueRepo) Update(_ context.Context, id string, p domain.IssuePatch, updatedAt time.Time) (*domain.Issue, error) {
	if r.beforeWrite != nil {
		r.beforeWrite(id)
		r.beforeWrite = nil
	}
	i, ok := r.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	r.updates++
	if p.Title != nil {
		i.Title = *p.Title
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Category != nil {
		i.Category = *p.Category
	}
	if p.Priority != nil {
		i.Priority = *p.Priority
	}
	if p.Status != nil {
		i.Status = *p.Status
	}
	if p.Location != nil {
		i.Location = *p.Location
	}
	if p.Reporter != nil {
		i.Reporter = *p.Reporter
	}
	if p.AssignedTo != nil {
		i.AssignedTo = *p.AssignedTo
	}
	if p.Department != nil {
		i.Department = *p.Department
	}
	if p.Images != nil {
		i.Images = p.Images
	}
	if p.ResolvedAt != nil {
		i.ResolvedAt = p.ResolvedAt
	}
	if p.Feedback != nil {
		i.Feedback = p.Feedback
	}
	i.UpdatedAt = updatedAt
	return cloneIssue(i), nil
}

func (r *stubIssueRepo) Delete(_ context.Context, id string) (*domain.Issue, error) {
	i, ok := r.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	delete(r.issues, id)
	return i, nil
}

func (r *stubIssueRepo) CountByStatus(_ context.Context, status domain.IssueStatus) (int64, error) {
	var n int64
	for _, i := range r.issues {
		if status == "" || i.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *stubIssueRepo) AverageResolutionHours(_ context.Context) (float64, error) {
	var total float64
	var n int
	for _, i := range r.issues {
		if i.Status == domain.StatusResolved && i.ResolvedAt != nil {
			total += i.ResolvedAt.Sub(i.CreatedAt).Hours()
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return total / float64(n), nil
}

func (r *stubIssueRepo) AverageRating(_ context.Context) (float64, error) {
	var total float64
	var n int
	for _, i := range r.issues {
		if i.Feedback != nil {
			total += i.Feedback.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return total / float64(n), nil
}

func (r *stubIssueRepo) CountByCategory(_ context.Context) ([]domain.CategoryCount, error) {
	counts := map[domain.IssueCategory]int64{}
	for _, i := range r.issues {
		counts[i.Category]++
	}
	var out []domain.CategoryCount
	for c, n := range counts {
		out = append(out, domain.CategoryCount{Category: c, Count: n})
	}
	return out, nil
}

func (r *stubIssueRepo) DepartmentPerformance(_ context.Context) ([]domain.DepartmentPerformance, error) {
	return nil, nil
}

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	seq       int
	setRoles  int
	touchedAt time.Time
	touchErr  error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, f domain.UserFilter) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, p domain.UserPatch, updatedAt time.Time) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if p.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *p.Email {
				return nil, domain.ErrEmailTaken
			}
		}
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	u.UpdatedAt = updatedAt
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetRole(_ context.Context, id, role string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	r.setRoles++
	u.Role = role
	return nil
}

func (r *stubUserRepo) TouchLogin(_ context.Context, id string, at time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	r.touchedAt = at
	u.LastLogin = &at
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	delete(r.users, id)
	return u, nil
}

func (r *stubUserRepo) CountActiveOfficers(_ context.Context) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == domain.RoleDepartmentOfficer && u.Status == domain.UserActive {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Activity and cache stubs
// ---------------------------------------------------------------------------

type stubActivityRepo struct {
	mu        sync.Mutex
	insertErr error
	inserted  []*domain.IssueActivity
}

func (r *stubActivityRepo) Insert(_ context.Context, a *domain.IssueActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *a
	r.inserted = append(r.inserted, &clone)
	return nil
}

func (r *stubActivityRepo) ListByIssue(_ context.Context, issueID string) ([]*domain.IssueActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.IssueActivity
	for _, a := range r.inserted {
		if a.IssueID == issueID {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubRecorder struct {
	recorded []domain.IssueActivity
}

func (r *stubRecorder) Record(a domain.IssueActivity) {
	r.recorded = append(r.recorded, a)
}

type stubPublisher struct {
	err       error
	published []domain.IssueActivity
}

func (p *stubPublisher) Publish(_ context.Context, a domain.IssueActivity) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, a)
	return nil
}

// stubCache keeps one entry tagged with the generation it was stored under.
type stubCache struct {
	gen         int64
	stats       *domain.DashboardStats
	statsGen    int64
	genErr      error
	getErr      error
	sets        int
	invalidated int
}

func (c *stubCache) Generation(context.Context) (int64, error) {
	if c.genErr != nil {
		return 0, c.genErr
	}
	return c.gen, nil
}

func (c *stubCache) GetDashboard(_ context.Context, gen int64) (*domain.DashboardStats, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.stats == nil || c.statsGen != gen {
		return nil, nil
	}
	return c.stats, nil
}

func (c *stubCache) SetDashboard(_ context.Context, gen int64, s *domain.DashboardStats) error {
	c.sets++
	c.stats = s
	c.statsGen = gen
	return nil
}

func (c *stubCache) Invalidate(context.Context) error {
	c.invalidated++
	c.gen++
	c.stats = nil
	return nil
}
