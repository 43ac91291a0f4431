package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; OrdoLeadGen/1.0; +https://ordo.com)"

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string
	Format string
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port              string
	GoogleMapsAPIKey  string
	RateLimitGenerate RateLimitConfig
	EnrichLimit       int
	EnrichDelay       time.Duration
	HTTPTimeout       time.Duration
	ScraperUserAgent  string
	ContactPageProbe  bool
	ContactLookupURL  string
	Log               LogConfig
}

// Load reads configuration from environment variables and applies sane defaults.
// A missing GOOGLE_MAPS_API_KEY is not an error here; discovery reports it when used.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		GoogleMapsAPIKey: strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY")),
		EnrichDelay:      parseDuration(getEnv("ENRICH_DELAY", "500ms"), 500*time.Millisecond),
		HTTPTimeout:      parseDuration(getEnv("HTTP_TIMEOUT", "15s"), 15*time.Second),
		ScraperUserAgent: getEnv("SCRAPER_USER_AGENT", defaultUserAgent),
		ContactLookupURL: strings.TrimSpace(os.Getenv("CONTACT_LOOKUP_URL")),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_GENERATE", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_GENERATE value: %w", err)
	}
	cfg.RateLimitGenerate = rl

	limit, err := strconv.Atoi(getEnv("ENRICH_LIMIT", "20"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("invalid ENRICH_LIMIT value: %q", os.Getenv("ENRICH_LIMIT"))
	}
	cfg.EnrichLimit = limit

	probe, err := strconv.ParseBool(getEnv("CONTACT_PAGE_PROBE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONTACT_PAGE_PROBE value: %w", err)
	}
	cfg.ContactPageProbe = probe

	return cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
