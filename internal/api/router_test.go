package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/civicportal/admin-api/internal/core/domain"
	"github.com/civicportal/admin-api/internal/core/ports"
)

const testSecret = "router-test-secret"

type fakeIssues struct {
	ports.IssueService
	created int
}

func (f *fakeIssues) GetIssue(_ context.Context, id string) (*domain.Issue, error) {
	if id == "i1" {
		return &domain.Issue{ID: "i1", Title: "Pothole"}, nil
	}
	return nil, domain.ErrIssueNotFound
}

func (f *fakeIssues) ListIssues(context.Context, domain.IssueFilter) ([]*domain.Issue, error) {
	return []*domain.Issue{}, nil
}

func (f *fakeIssues) CreateIssue(_ context.Context, in ports.CreateIssueInput) (*domain.Issue, error) {
	f.created++
	return &domain.Issue{ID: "new", Title: in.Title, Category: in.Category}, nil
}

func (f *fakeIssues) ChangeStatus(context.Context, string, domain.IssueStatus, string) (*domain.Issue, error) {
	return nil, domain.ErrInvalidTransition
}

type fakeUsers struct {
	ports.UserService
}

func (fakeUsers) CreateUser(_ context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if in.Email == "taken@city.gov" {
		return nil, domain.ErrEmailTaken
	}
	return &domain.User{ID: "u9", Name: in.Name, Email: in.Email, Role: domain.RoleUser}, nil
}

func (fakeUsers) ListUsers(context.Context, domain.UserFilter) ([]*domain.User, error) {
	return []*domain.User{}, nil
}

type fakeLimiter struct{ allow bool }

func (l fakeLimiter) Allow(context.Context, string) (bool, error) { return l.allow, nil }

func newTestRouter(t *testing.T, authRequired bool, limiter *fakeLimiter) (http.Handler, *fakeIssues) {
	t.Helper()
	issues := &fakeIssues{}
	deps := Dependencies{
		Issues: issues,
		Users:  fakeUsers{},
	}
	if limiter != nil {
		deps.IssueLimiter = *limiter
	}
	opts := Options{
		JWTSecret:    testSecret,
		AuthRequired: authRequired,
		CORSOrigins:  []string{"*"},
		Registry:     prometheus.NewRegistry(),
	}
	return NewRouter(deps, opts, zerolog.Nop()), issues
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"email": role + "@city.gov",
		"role":  role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func do(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestRouter_ErrorMapping(t *testing.T) {
	h, _ := newTestRouter(t, false, nil)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"issue found", http.MethodGet, "/api/issues/i1", "", http.StatusOK, ""},
		{"issue missing", http.MethodGet, "/api/issues/zzz", "", http.StatusNotFound, "issue not found"},
		{"validation", http.MethodPost, "/api/issues", `{"category":"safety"}`, http.StatusBadRequest, "validation failed: title is required"},
		{"refused transition", http.MethodPatch, "/api/issues/i1/status", `{"status":"pending"}`, http.StatusUnprocessableEntity, "invalid status transition"},
		{"duplicate email", http.MethodPost, "/api/users", `{"name":"T","email":"taken@city.gov","password":"pw"}`, http.StatusConflict, "email already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, tt.method, tt.path, tt.body, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantMsg != "" {
				if got := errorMessage(t, rec); got != tt.wantMsg {
					t.Fatalf("expected message %q, got %q", tt.wantMsg, got)
				}
			}
		})
	}
}

func TestRouter_OpenAccessByDefault(t *testing.T) {
	h, _ := newTestRouter(t, false, nil)

	if rec := do(h, http.MethodGet, "/api/issues", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without a token, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/issues", "", "garbage"); rec.Code != http.StatusOK {
		t.Fatalf("an invalid token must be ignored when auth is optional, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected healthy liveness check, got %d", rec.Code)
	}
}

func TestRouter_AuthRequired(t *testing.T) {
	h, _ := newTestRouter(t, true, nil)
	body := `{"name":"New","email":"new@city.gov","password":"pw"}`

	if rec := do(h, http.MethodGet, "/api/issues", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/users", "", signToken(t, domain.RoleUser)); rec.Code != http.StatusOK {
		t.Fatalf("expected any signed-in user to list users, got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/users", body, signToken(t, domain.RoleUser)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin create, got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/users", body, signToken(t, domain.RoleAdmin)); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin create, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(h, http.MethodGet, "/api/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health must stay public, got %d", rec.Code)
	}
}

func TestRouter_IssueReportsThrottled(t *testing.T) {
	h, issues := newTestRouter(t, false, &fakeLimiter{allow: false})

	rec := do(h, http.MethodPost, "/api/issues", `{"title":"Leak","category":"utilities"}`, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if issues.created != 0 {
		t.Fatal("a throttled report must not reach the service")
	}
	if rec := do(h, http.MethodGet, "/api/issues/i1", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("reads must not be throttled, got %d", rec.Code)
	}
}

// countingLimiter allows limit hits per key and records the keys it saw.
type countingLimiter struct {
	limit int
	hits  map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.hits == nil {
		l.hits = make(map[string]int)
	}
	l.hits[key]++
	return l.hits[key] <= l.limit, nil
}

func newLimitedRouter(limiter *countingLimiter, proxies []*net.IPNet) http.Handler {
	deps := Dependencies{Issues: &fakeIssues{}, Users: fakeUsers{}, IssueLimiter: limiter}
	return NewRouter(deps, Options{
		JWTSecret:      testSecret,
		CORSOrigins:    []string{"*"},
		TrustedProxies: proxies,
		Registry:       prometheus.NewRegistry(),
	}, zerolog.Nop())
}

func postIssueFrom(h http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/issues", strings.NewReader(`{"title":"Leak","category":"utilities"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouter_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := &countingLimiter{limit: 1}
	h := newLimitedRouter(limiter, nil)

	want := []int{http.StatusCreated, http.StatusTooManyRequests, http.StatusTooManyRequests}
	for i, xff := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		if got := postIssueFrom(h, "203.0.113.9:40000", xff); got != want[i] {
			t.Fatalf("request %d with X-Forwarded-For %s: expected %d, got %d", i+1, xff, want[i], got)
		}
	}
	if len(limiter.hits) != 1 || limiter.hits["ip:203.0.113.9"] != 3 {
		t.Fatalf("expected every hit counted against the peer address, got %v", limiter.hits)
	}
}

func TestRouter_RateLimitHonoursTrustedProxy(t *testing.T) {
	_, proxy, err := net.ParseCIDR("10.0.0.0/8")
	if err != nil {
		t.Fatal(err)
	}
	limiter := &countingLimiter{limit: 1}
	h := newLimitedRouter(limiter, []*net.IPNet{proxy})

	if got := postIssueFrom(h, "10.0.0.5:40000", "198.51.100.1"); got != http.StatusCreated {
		t.Fatalf("expected 201, got %d", got)
	}
	if got := postIssueFrom(h, "10.0.0.5:40000", "198.51.100.2"); got != http.StatusCreated {
		t.Fatalf("a second client behind the proxy has its own window, got %d", got)
	}
	if got := postIssueFrom(h, "10.0.0.5:40000", "198.51.100.1"); got != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for the repeat client, got %d", got)
	}
	// An untrusted peer cannot pick its own key.
	if got := postIssueFrom(h, "203.0.113.9:40000", "198.51.100.3"); got != http.StatusCreated {
		t.Fatalf("expected 201, got %d", got)
	}
	if limiter.hits["ip:203.0.113.9"] != 1 {
		t.Fatalf("untrusted peer must be keyed by its own address, got %v", limiter.hits)
	}
}

func TestRouter_RateLimitKeysSignedInReporterByUser(t *testing.T) {
	limiter := &countingLimiter{limit: 1}
	h := newLimitedRouter(limiter, nil)

	rec := do(h, http.MethodPost, "/api/issues", `{"title":"Leak","category":"utilities"}`, signToken(t, domain.RoleAdmin))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if limiter.hits["user:u1"] != 1 {
		t.Fatalf("expected the hit keyed by user id, got %v", limiter.hits)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	h, _ := newTestRouter(t, false, nil)

	rec := do(h, http.MethodGet, "/api/nowhere", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
