package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"studytracker/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Env      string
	LogLevel slog.Level

	// Storage
	DBDriver     string
	DatabasePath string
	DatabaseURL  string

	// Redis (optional; empty disables event publishing)
	RedisURL string

	// Goals, in minutes. Zero disables a goal.
	DailyGoalMinutes  int
	WeeklyGoalMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Env:               getEnvOrDefault("ENV", "development"),
		LogLevel:          parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		DBDriver:          strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverSQLite)),
		DatabasePath:      getEnvOrDefault("DATABASE_PATH", "study_tracker.db"),
		DatabaseURL:       getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:          getEnvOrDefault("REDIS_URL", ""),
		DailyGoalMinutes:  getEnvAsIntOrDefault("DAILY_GOAL_MINUTES", 0),
		WeeklyGoalMinutes: getEnvAsIntOrDefault("WEEKLY_GOAL_MINUTES", 0),
	}

	return cfg
}

// Validate reports every setting that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			errs = append(errs, errors.New("DATABASE_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q (use sqlite, postgres or memory)", c.DBDriver))
	}
	if err := c.Goal().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("DAILY_GOAL_MINUTES/WEEKLY_GOAL_MINUTES: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) Goal() models.StudyGoal {
	return models.StudyGoal{DailyMinutes: c.DailyGoalMinutes, WeeklyMinutes: c.WeeklyGoalMinutes}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
