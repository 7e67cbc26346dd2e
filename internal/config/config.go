// Package config loads server configuration from flags, TABSPLIT_* environment
// variables and an optional plain config file.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/mmynk/tabsplit/internal/parser"
	"github.com/mmynk/tabsplit/internal/session"
	"github.com/mmynk/tabsplit/internal/storage/sqlite"
)

// EnvPrefix is the prefix for environment variable overrides, e.g. TABSPLIT_PORT.
const EnvPrefix = "TABSPLIT"

var ErrInvalid = errors.New("invalid configuration")

// Config is the server configuration.
type Config struct {
	Port      int
	DBPath    string
	LogLevel  string
	LogFormat string

	TokenSecret string
	TokenTTL    time.Duration

	SessionTTL    time.Duration
	PurgeInterval time.Duration

	CurrencySymbol       string
	DefaultTipPercentage float64
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load parses args (without the program name). The returned error wraps
// ff.ErrHelp when -h or --help was given; Usage then holds the help text.
func Load(args []string) (*Config, error) {
	fs := ff.NewFlagSet("tabsplit-server")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		dbPath        = fs.StringLong("db", sqlite.MemoryDSN, "SQLite database path (:memory: keeps sessions in process memory)")
		logLevel      = fs.StringLong("log-level", "info", "Log level: debug, info, warn, error")
		logFormat     = fs.StringLong("log-format", "text", "Log format: text or json")
		tokenSecret   = fs.StringLong("token-secret", "", "HMAC secret for session tokens (required)")
		tokenTTL      = fs.DurationLong("token-ttl", 12*time.Hour, "Session token lifetime")
		sessionTTL    = fs.DurationLong("session-ttl", 12*time.Hour, "Idle time after which a session is purged")
		purgeInterval = fs.DurationLong("purge-interval", 10*time.Minute, "How often expired sessions are purged")
		symbol        = fs.StringLong("currency-symbol", parser.DefaultSymbol, "Currency symbol prefixing receipt amounts")
		tipPct        = fs.Float64Long("tip-percent", session.DefaultTipPercentage, "Default tip percentage for new sessions")
		_             = fs.StringLong("config", "", "Path to a plain config file")
	)

	if err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			return nil, fmt.Errorf("%w\n%s", err, ffhelp.Flags(fs))
		}
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg := &Config{
		Port:                 *port,
		DBPath:               *dbPath,
		LogLevel:             strings.ToLower(strings.TrimSpace(*logLevel)),
		LogFormat:            strings.ToLower(strings.TrimSpace(*logFormat)),
		TokenSecret:          *tokenSecret,
		TokenTTL:             *tokenTTL,
		SessionTTL:           *sessionTTL,
		PurgeInterval:        *purgeInterval,
		CurrencySymbol:       strings.TrimSpace(*symbol),
		DefaultTipPercentage: *tipPct,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.TokenSecret == "" {
		errs = append(errs, errors.New("token secret is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.PurgeInterval <= 0 {
		errs = append(errs, errors.New("purge interval must be positive"))
	}
	if c.CurrencySymbol == "" {
		errs = append(errs, errors.New("currency symbol is required"))
	}
	if c.DefaultTipPercentage < 0 || math.IsNaN(c.DefaultTipPercentage) || math.IsInf(c.DefaultTipPercentage, 0) {
		errs = append(errs, fmt.Errorf("tip percent %v must be a finite non-negative number", c.DefaultTipPercentage))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
