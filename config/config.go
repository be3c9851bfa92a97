package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mww/fantasy_predictions/model"
)

type Config struct {
	// Storage
	DBDriver   string // "postgres" or "sqlite"
	ConnString string
	SQLitePath string

	// Web server
	Port           int
	AdminUser      string
	AdminPassword  string
	CORSOrigins    []string
	WriteRateLimit float64 // requests per second on mutating routes, 0 disables

	// Game rules
	Rules           model.ScoringRules
	RulesPath       string
	HoursToDeadline int
	NextMatchesDays int

	// Logging
	LogLevel  string
	LogPretty bool
}

// Load reads the configuration from the environment, after loading a .env
// file if one exists. When SCORING_RULES_PATH is set the YAML file overrides
// the rule values read from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	env := &envReader{}
	c := &Config{
		DBDriver:   envStr("DB_DRIVER", "postgres"),
		ConnString: envStr("POSTGRES_CONN_STR", ""),
		SQLitePath: envStr("SQLITE_PATH", "predictions.db"),

		Port:           env.getInt("PORT", 3000),
		AdminUser:      envStr("ADMIN_USER", "admin"),
		AdminPassword:  envStr("ADMIN_PASSWORD", ""),
		CORSOrigins:    envList("CORS_ORIGINS"),
		WriteRateLimit: env.getFloat("WRITE_RATE_LIMIT", 5),

		Rules: model.ScoringRules{
			ExactPoints:  env.getInt32("EXACT_POINTS", model.DefaultScoringRules.ExactPoints),
			TrendPoints:  env.getInt32("TREND_POINTS", model.DefaultScoringRules.TrendPoints),
			StarredBonus: env.getInt32("STARRED_BONUS", model.DefaultScoringRules.StarredBonus),
			WonPoints:    env.getInt32("MATCH_WON_POINTS", model.DefaultScoringRules.WonPoints),
			TiePoints:    env.getInt32("MATCH_TIE_POINTS", model.DefaultScoringRules.TiePoints),
			LostPoints:   env.getInt32("MATCH_LOST_POINTS", model.DefaultScoringRules.LostPoints),
		},
		RulesPath:       envStr("SCORING_RULES_PATH", ""),
		HoursToDeadline: env.getInt("HOURS_TO_DEADLINE", 1),
		NextMatchesDays: env.getInt("NEXT_MATCHES_DAYS", 7),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogPretty: envStr("LOG_PRETTY", "false") == "true",
	}
	if err := env.err(); err != nil {
		return nil, err
	}

	if c.RulesPath != "" {
		f, err := LoadRulesFile(c.RulesPath)
		if err != nil {
			return nil, err
		}
		f.Apply(c)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("invalid scoring rules: %w", err)
	}
	if c.HoursToDeadline < 0 {
		return model.Invalid("hours to deadline must not be negative, got %d", c.HoursToDeadline)
	}
	if c.NextMatchesDays <= 0 {
		return model.Invalid("next matches days must be positive, got %d", c.NextMatchesDays)
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return model.Invalid("unknown DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envReader parses numeric variables and keeps every malformed value, so
// a typo never silently falls back to the default.
type envReader struct {
	errs []error
}

func (e *envReader) getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, model.Invalid("%s must be an integer, got %q", key, v))
		return fallback
	}
	return n
}

func (e *envReader) getInt32(key string, fallback int32) int32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		e.errs = append(e.errs, model.Invalid("%s must be a 32-bit integer, got %q", key, v))
		return fallback
	}
	return int32(n)
}

func (e *envReader) getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, model.Invalid("%s must be a number, got %q", key, v))
		return fallback
	}
	return n
}

func (e *envReader) err() error {
	return errors.Join(e.errs...)
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var result []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}
