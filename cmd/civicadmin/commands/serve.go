package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/civicportal/admin-api/internal/api"
	"github.com/civicportal/admin-api/internal/api/handler"
	"github.com/civicportal/admin-api/internal/core/ports"
	"github.com/civicportal/admin-api/internal/core/service"
	"github.com/civicportal/admin-api/internal/infrastructure/config"
	"github.com/civicportal/admin-api/internal/infrastructure/db/mongo"
	"github.com/civicportal/admin-api/internal/infrastructure/db/redis"
	"github.com/civicportal/admin-api/internal/infrastructure/http"
	"github.com/civicportal/admin-api/internal/infrastructure/queue"
	"github.com/civicportal/admin-api/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, log, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		return serve(ctx, cfg, log)
	},
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Warn().Err(err).Msg("index creation failed, continuing")
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	issueRepo := mongo.NewIssueRepository(db)
	userRepo := mongo.NewUserRepository(db)
	activityRepo := mongo.NewActivityRepository(db)
	statsCache := redis.NewStatsCache(rdb, cfg.Dashboard.CacheTTL)

	var publisher ports.ActivityPublisher
	if len(cfg.Activity.KafkaBrokers) > 0 {
		kafka, err := queue.NewKafkaPublisher(cfg.Activity.KafkaBrokers, cfg.Activity.KafkaTopic, logger.Component("kafka"))
		if err != nil {
			return err
		}
		defer func() { _ = kafka.Close() }()
		publisher = kafka
	}

	activitySvc := service.NewActivityService(activityRepo, publisher, logger.Component("activity"))
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, activitySvc, logger.Component("dispatcher"))
	// Workers outlive the signal context so Stop can drain queued entries.
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Stop()

	deps := api.Dependencies{
		Auth: service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, cfg.AdminEmail, logger.Component("auth")),
		Issues: service.NewIssueService(issueRepo, activityRepo, dispatcher, statsCache,
			service.IssueOptions{StrictTransitions: cfg.StrictTransitions}, logger.Component("issues")),
		Users:     service.NewUserService(userRepo, statsCache, logger.Component("users")),
		Analytics: service.NewAnalyticsService(issueRepo, userRepo, statsCache, logger.Component("analytics")),
		Checks: map[string]handler.DependencyCheck{
			"mongo": handler.MongoCheck(db),
			"redis": handler.RedisCheck(rdb),
		},
	}
	if cfg.Limits.IssueRate > 0 {
		deps.IssueLimiter = redis.NewRateLimiter(rdb, "issues", cfg.Limits.IssueRate, cfg.Limits.IssueWindow)
	}

	proxies, err := cfg.ProxyRanges()
	if err != nil {
		return err
	}
	router := api.NewRouter(deps, api.Options{
		JWTSecret:      cfg.JWTSecret,
		AuthRequired:   cfg.AuthRequired,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: proxies,
	}, log)

	log.Info().
		Bool("auth_required", cfg.AuthRequired).
		Bool("strict_transitions", cfg.StrictTransitions).
		Int("activity_workers", cfg.Activity.Workers).
		Msg("civic admin api starting")

	return http.NewServer(router, ":"+cfg.Port, log).Run(ctx)
}
