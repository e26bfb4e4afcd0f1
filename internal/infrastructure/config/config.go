package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// devJWTSecret signs tokens outside production when JWT_SECRET is unset.
const devJWTSecret = "civic-admin-dev-secret"

type Config struct {
	Port      string        `env:"PORT,        default=5000"`
	Env       string        `env:"ENV,         default=development"`
	LogLevel  string        `env:"LOG_LEVEL,   default=info"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,   default=24h"`

	// AdminEmail is always granted the admin role on signup and login.
	AdminEmail        string   `env:"ADMIN_EMAIL,               default=kanhacet@gmail.com"`
	AuthRequired      bool     `env:"AUTH_REQUIRED,             default=false"`
	StrictTransitions bool     `env:"STRICT_STATUS_TRANSITIONS, default=false"`
	CORSOrigins       []string `env:"CORS_ORIGINS,              default=*"`

	// TrustedProxies lists the CIDRs whose X-Forwarded-For is believed. Empty
	// means the peer address is the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Limits    LimitsConfig
	Activity  ActivityConfig
	Dashboard DashboardConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=civic_issues"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type LimitsConfig struct {
	// IssueRate is the number of issue reports one client may file per window.
	// Zero disables the limiter.
	IssueRate   int           `env:"ISSUE_RATE_LIMIT,  default=20"`
	IssueWindow time.Duration `env:"ISSUE_RATE_WINDOW, default=1m"`
}

type ActivityConfig struct {
	Workers      int      `env:"ACTIVITY_WORKERS, default=4"`
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC,      default=civic.issue-activity"`
}

type DashboardConfig struct {
	CacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL, default=30s"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ProxyRanges parses TrustedProxies.
func (c *Config) ProxyRanges() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, cidr := range c.TrustedProxies {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("config: TRUSTED_PROXIES: %w", err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET is required in production")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.Limits.IssueRate < 0 {
		return fmt.Errorf("config: ISSUE_RATE_LIMIT must not be negative, got %d", c.Limits.IssueRate)
	}
	if c.Limits.IssueRate > 0 && c.Limits.IssueWindow <= 0 {
		return errors.New("config: ISSUE_RATE_WINDOW must be positive")
	}
	if _, err := c.ProxyRanges(); err != nil {
		return err
	}
	return nil
}
