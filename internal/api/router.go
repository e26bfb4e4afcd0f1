package api

import (
	"net"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/civicportal/admin-api/docs"
	"github.com/civicportal/admin-api/internal/api/handler"
	"github.com/civicportal/admin-api/internal/api/middleware"
	"github.com/civicportal/admin-api/internal/core/domain"
	"github.com/civicportal/admin-api/internal/core/ports"
)

// Options carries the HTTP-level settings of the router.
type Options struct {
	JWTSecret    string
	AuthRequired bool
	CORSOrigins  []string

	// TrustedProxies are the ranges whose X-Forwarded-For is honoured when
	// resolving the client IP. Empty uses the peer address.
	TrustedProxies []*net.IPNet

	// Registry receives the HTTP metrics and backs /metrics. Nil uses the
	// default Prometheus registry.
	Registry *prometheus.Registry
}

// Dependencies are the services and health checks the routes are bound to.
type Dependencies struct {
	Auth      ports.AuthService
	Issues    ports.IssueService
	Users     ports.UserService
	Analytics ports.AnalyticsService
	// Checks feed the readiness check, keyed by dependency name.
	Checks map[string]handler.DependencyCheck
	// IssueLimiter throttles POST /api/issues. Nil disables throttling.
	IssueLimiter middleware.Limiter
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.IPExtractor = ipExtractor(opts.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
	}))
	e.Use(requestLogger(log))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "civic",
		Registerer: registerer,
	}))

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// --- Health checks (no auth required) ---
	api.GET("/health", handler.NewHealthHandler().Liveness)
	api.GET("/health/ready", handler.NewReadinessHandler(deps.Checks).Readiness)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/signup", authHandler.Signup)

	authn := middleware.OptionalAuth(opts.JWTSecret)
	adminOnly := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if opts.AuthRequired {
		authn = middleware.Auth(opts.JWTSecret)
		adminOnly = middleware.RBAC(domain.RoleAdmin)
	}

	// --- Issues ---
	issueHandler := handler.NewIssueHandler(deps.Issues)
	issues := api.Group("/issues", authn)
	issues.GET("", issueHandler.List)
	issues.GET("/:id", issueHandler.Get)
	issues.GET("/:id/activity", issueHandler.Activity)
	if deps.IssueLimiter != nil {
		issues.POST("", issueHandler.Create, middleware.RateLimit(deps.IssueLimiter, log))
	} else {
		issues.POST("", issueHandler.Create)
	}
	issues.PUT("/:id", issueHandler.Update)
	issues.PATCH("/:id/status", issueHandler.UpdateStatus)
	issues.PATCH("/:id/assign", issueHandler.Assign)
	issues.DELETE("/:id", issueHandler.Delete)

	// --- Users ---
	userHandler := handler.NewUserHandler(deps.Users)
	users := api.Group("/users", authn)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create, adminOnly)
	users.PUT("/:id", userHandler.Update, adminOnly)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Analytics ---
	analyticsHandler := handler.NewAnalyticsHandler(deps.Analytics)
	analytics := api.Group("/analytics", authn)
	analytics.GET("/dashboard", analyticsHandler.Dashboard)
	analytics.GET("/categories", analyticsHandler.Categories)
	analytics.GET("/departments", analyticsHandler.Departments)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

func ipExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	trust := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		trust = append(trust, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(trust...)
}
