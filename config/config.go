/*
Package config loads server configuration from the environment.

PURPOSE:
  Reads an optional .env file then the process environment, applies
  defaults, and translates compliance knobs into an engine policy. The
  loaded Config is passed explicitly to the pieces that need it; there
  is no package-level state.

VARIABLES:
  PORT                  HTTP listen port (default 8080)
  DATABASE_PATH         SQLite file path (default ./data/planning.db)
  JWT_SECRET            token signing secret (required outside dev)
  TOKEN_TTL_HOURS       access token lifetime (default 24)
  ALLOWED_ORIGINS       comma-separated CORS origins (default *)
  LOG_LEVEL             logrus level name (default info)
  MIN_RH_PER_PERIOD     weekly-rest floor per period (default 4)
  MIN_CH_PER_PERIOD     habitual-leave floor per period (default 4)
  MAX_CV_PER_PERIOD     seniority-leave ceiling per period (default 1)
  HOUR_QUOTA_TOLERANCE  allowed deviation from the hour quota (default 0)
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/planningos/quota-engine/engine"
)

type Config struct {
	Port           int
	DatabasePath   string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	LogLevel       logrus.Level

	Policy engine.CompliancePolicy
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	tolerance, err := decimal.NewFromString(getEnv("HOUR_QUOTA_TOLERANCE", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid HOUR_QUOTA_TOLERANCE: %w", err)
	}

	policy := engine.DefaultPolicy()
	policy.MinWeeklyRest = getEnvAsInt("MIN_RH_PER_PERIOD", policy.MinWeeklyRest)
	policy.MinHabitualLeave = getEnvAsInt("MIN_CH_PER_PERIOD", policy.MinHabitualLeave)
	policy.MaxSeniorityLeave = getEnvAsInt("MAX_CV_PER_PERIOD", policy.MaxSeniorityLeave)
	policy.HourQuotaTolerance = tolerance

	return &Config{
		Port:           getEnvAsInt("PORT", 8080),
		DatabasePath:   getEnv("DATABASE_PATH", "./data/planning.db"),
		JWTSecret:      secret,
		TokenTTL:       time.Duration(getEnvAsInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		LogLevel:       level,
		Policy:         policy,
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
