package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}

	for _, tc := range tests {
		if got := parseLogLevel(tc.in); got != tc.expected {
			t.Errorf("parseLogLevel(%q) = %v, expected %v", tc.in, got, tc.expected)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "LOG_LEVEL", "DB_DRIVER", "DATABASE_PATH", "DATABASE_URL", "REDIS_URL", "DAILY_GOAL_MINUTES", "WEEKLY_GOAL_MINUTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.DBDriver != DriverSQLite {
		t.Errorf("Expected sqlite driver, got %q", cfg.DBDriver)
	}
	if cfg.DatabasePath != "study_tracker.db" {
		t.Errorf("Expected default database path, got %q", cfg.DatabasePath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("Expected info level, got %v", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/study")
	t.Setenv("DAILY_GOAL_MINUTES", "90")
	t.Setenv("WEEKLY_GOAL_MINUTES", "600")

	cfg := Load()
	if cfg.DBDriver != DriverPostgres {
		t.Errorf("Expected postgres driver, got %q", cfg.DBDriver)
	}
	if cfg.DailyGoalMinutes != 90 || cfg.WeeklyGoalMinutes != 600 {
		t.Errorf("Unexpected goals %d/%d", cfg.DailyGoalMinutes, cfg.WeeklyGoalMinutes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected config to validate, got %v", err)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{DBDriver: DriverPostgres, DailyGoalMinutes: -1, WeeklyGoalMinutes: -5}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"DATABASE_URL", "daily goal minutes cannot be negative", "weekly goal minutes cannot be negative"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %s, got %v", want, err)
		}
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{DBDriver: "mongo"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "mongo") {
		t.Errorf("Expected unknown driver error, got %v", err)
	}
}
