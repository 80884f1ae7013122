// Package config содержит логику чтения конфигурации сервиса учёта дебиторской задолженности.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress        = "localhost:8080"
	defaultLogLevel          = "info"
	defaultReportCacheTTL    = 5 * time.Minute
	defaultReconcileInterval = time.Minute
	defaultRateLimit         = 120
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress         string        `env:"RUN_ADDRESS"`
	DatabaseURI        string        `env:"DATABASE_URI"`
	RedisAddress       string        `env:"REDIS_ADDRESS"`
	SessionSecret      string        `env:"SESSION_SECRET"`
	LogLevel           string        `env:"LOG_LEVEL"`
	ReportCacheTTL     time.Duration `env:"REPORT_CACHE_TTL"`
	ReconcileInterval  time.Duration `env:"RECONCILE_INTERVAL"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значения из окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	envCfg := Config{}
	if err := env.Parse(&envCfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := &Config{}
	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.RedisAddress, "r", "", "redis address for report cache")
	flag.StringVar(&cfg.SessionSecret, "s", "", "session cookie signing secret")
	flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
	flag.DurationVar(&cfg.ReportCacheTTL, "cache-ttl", defaultReportCacheTTL, "aging report cache TTL")
	flag.DurationVar(&cfg.ReconcileInterval, "reconcile-interval", defaultReconcileInterval, "status reconciliation interval, 0 disables")
	flag.IntVar(&cfg.RateLimitPerMinute, "rate-limit", defaultRateLimit, "aging report requests per minute per user")

	flag.Parse()

	if envCfg.RunAddress != "" {
		cfg.RunAddress = envCfg.RunAddress
	}
	if envCfg.DatabaseURI != "" {
		cfg.DatabaseURI = envCfg.DatabaseURI
	}
	if envCfg.RedisAddress != "" {
		cfg.RedisAddress = envCfg.RedisAddress
	}
	if envCfg.SessionSecret != "" {
		cfg.SessionSecret = envCfg.SessionSecret
	}
	if envCfg.LogLevel != "" {
		cfg.LogLevel = envCfg.LogLevel
	}
	if envCfg.ReportCacheTTL > 0 {
		cfg.ReportCacheTTL = envCfg.ReportCacheTTL
	}
	if envCfg.ReconcileInterval > 0 {
		cfg.ReconcileInterval = envCfg.ReconcileInterval
	}
	if envCfg.RateLimitPerMinute > 0 {
		cfg.RateLimitPerMinute = envCfg.RateLimitPerMinute
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = defaultRateLimit
	}

	return cfg, nil
}
