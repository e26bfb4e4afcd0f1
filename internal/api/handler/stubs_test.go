package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/civicportal/admin-api/internal/core/domain"
	"github.com/civicportal/admin-api/internal/core/ports"
)

// newContext builds an echo context for a JSON request. Path params are given
// as name/value pairs.
func newContext(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

type stubAuthService struct {
	signupFn func(ctx context.Context, in ports.SignupInput) (string, *domain.User, error)
	loginFn  func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Signup(ctx context.Context, in ports.SignupInput) (string, *domain.User, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

type stubIssueService struct {
	listFn     func(ctx context.Context, f domain.IssueFilter) ([]*domain.Issue, error)
	getFn      func(ctx context.Context, id string) (*domain.Issue, error)
	createFn   func(ctx context.Context, in ports.CreateIssueInput) (*domain.Issue, error)
	updateFn   func(ctx context.Context, id string, p domain.IssuePatch, actor string) (*domain.Issue, error)
	statusFn   func(ctx context.Context, id string, s domain.IssueStatus, actor string) (*domain.Issue, error)
	assignFn   func(ctx context.Context, id string, in ports.AssignIssueInput) (*domain.Issue, error)
	deleteFn   func(ctx context.Context, id, actor string) (*domain.Issue, error)
	activityFn func(ctx context.Context, id string) ([]*domain.IssueActivity, error)
}

func (s *stubIssueService) ListIssues(ctx context.Context, f domain.IssueFilter) ([]*domain.Issue, error) {
	return s.listFn(ctx, f)
}

func (s *stubIssueService) GetIssue(ctx context.Context, id string) (*domain.Issue, error) {
	return s.getFn(ctx, id)
}

func (s *stubIssueService) CreateIssue(ctx context.Context, in ports.CreateIssueInput) (*domain.Issue, error) {
	return s.createFn(ctx, in)
}

func (s *stubIssueService) UpdateIssue(ctx context.Context, id string, p domain.IssuePatch, actor string) (*domain.Issue, error) {
	return s.updateFn(ctx, id, p, actor)
}

func (s *stubIssueService) ChangeStatus(ctx context.Context, id string, st domain.IssueStatus, actor string) (*domain.Issue, error) {
	return s.statusFn(ctx, id, st, actor)
}

func (s *stubIssueService) AssignIssue(ctx context.Context, id string, in ports.AssignIssueInput) (*domain.Issue, error) {
	return s.assignFn(ctx, id, in)
}

func (s *stubIssueService) DeleteIssue(ctx context.Context, id, actor string) (*domain.Issue, error) {
	return s.deleteFn(ctx, id, actor)
}

func (s *stubIssueService) IssueActivity(ctx context.Context, id string) ([]*domain.IssueActivity, error) {
	return s.activityFn(ctx, id)
}

type stubUserService struct {
	listFn   func(ctx context.Context, f domain.UserFilter) ([]*domain.User, error)
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	createFn func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	updateFn func(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error)
	deleteFn func(ctx context.Context, id string) (*domain.User, error)
}

func (s *stubUserService) ListUsers(ctx context.Context, f domain.UserFilter) ([]*domain.User, error) {
	return s.listFn(ctx, f)
}

func (s *stubUserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) UpdateUser(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	return s.updateFn(ctx, id, p)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	return s.deleteFn(ctx, id)
}

type stubAnalyticsService struct {
	stats       *domain.DashboardStats
	categories  []domain.CategoryCount
	departments []domain.DepartmentPerformance
	err         error
}

func (s *stubAnalyticsService) Dashboard(context.Context) (*domain.DashboardStats, error) {
	return s.stats, s.err
}

func (s *stubAnalyticsService) CategoryBreakdown(context.Context) ([]domain.CategoryCount, error) {
	return s.categories, s.err
}

func (s *stubAnalyticsService) DepartmentPerformance(context.Context) ([]domain.DepartmentPerformance, error) {
	return s.departments, s.err
}
