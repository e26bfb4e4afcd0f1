package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "64f1c2a9e4b0a1b2c3d4e5f6",
		"email": "alice@city.gov",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", validClaims()))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth("secret")
	handler := mw(func(c echo.Context) error {
		called = true
		if c.Get("user_id") != "64f1c2a9e4b0a1b2c3d4e5f6" {
			t.Fatalf("user_id not set")
		}
		if c.Get("email") != "alice@city.gov" {
			t.Fatalf("email not set")
		}
		if c.Get("role") != "admin" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	cases := map[string]string{
		"missing header": "",
		"bad scheme":     "Token abc",
		"garbage token":  "Bearer not-a-token",
		"wrong secret":   "Bearer " + signToken(t, "other", validClaims()),
		"expired":        "Bearer " + signToken(t, "secret", expired),
	}

	for name, header := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Auth("secret")(func(c echo.Context) error {
			t.Fatalf("%s: should not reach next", name)
			return nil
		})

		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestOptionalAuth(t *testing.T) {
	e := echo.New()

	run := func(header string) (echo.Context, bool) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		called := false
		_ = OptionalAuth("secret")(func(c echo.Context) error {
			called = true
			return nil
		})(c)
		return c, called
	}

	c, called := run("")
	if !called || c.Get("email") != nil {
		t.Fatalf("anonymous request should pass without claims")
	}

	c, called = run("Bearer not-a-token")
	if !called || c.Get("email") != nil {
		t.Fatalf("invalid token should pass without claims")
	}

	c, called = run("Bearer " + signToken(t, "secret", validClaims()))
	if !called || c.Get("email") != "alice@city.gov" {
		t.Fatalf("valid token should set claims")
	}
}
