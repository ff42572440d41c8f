// Package config loads and validates AxPersona server configuration from
// the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/axwise-ai/axpersona/pkg/models"
)

// Defaults applied when the environment leaves a knob unset.
const (
	DefaultHTTPPort                = "8080"
	DefaultGeminiModel             = "gemini-2.5-flash"
	DefaultMaxPersonas             = 5
	DefaultMaxConcurrentInterviews = 12
	DefaultCallTimeout             = 300 * time.Second

	// Bounds for the interview fanout concurrency.
	MinConcurrentInterviews = 1
	MaxConcurrentInterviews = 32
)

// Config is the resolved server configuration.
type Config struct {
	HTTPPort string
	GinMode  string

	// LLM gateway settings.
	GeminiAPIKey string
	GeminiModel  string
	CallTimeout  time.Duration

	// Simulation settings.
	MaxPersonas             int
	MaxConcurrentInterviews int

	// Auth middleware settings.
	EnableClerkValidation bool
	ClerkJWTKey           string
}

// Load reads configuration from the environment. The Gemini API key is
// required; either GEMINI_API_KEY or GOOGLE_API_KEY satisfies it.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:                getEnv("HTTP_PORT", DefaultHTTPPort),
		GinMode:                 getEnv("GIN_MODE", "release"),
		GeminiAPIKey:            firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"),
		GeminiModel:             getEnv("GEMINI_MODEL", DefaultGeminiModel),
		CallTimeout:             DefaultCallTimeout,
		MaxPersonas:             DefaultMaxPersonas,
		MaxConcurrentInterviews: DefaultMaxConcurrentInterviews,
		ClerkJWTKey:             os.Getenv("CLERK_JWT_KEY"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) is required")
	}

	if v := os.Getenv("LLM_CALL_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid LLM_CALL_TIMEOUT_SECONDS: %q", v)
		}
		cfg.CallTimeout = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("MAX_PERSONAS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_PERSONAS: %q", v)
		}
		if n > 10 {
			n = 10
		}
		cfg.MaxPersonas = n
	}

	if v := os.Getenv("MAX_CONCURRENT_INTERVIEWS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_CONCURRENT_INTERVIEWS: %q", v)
		}
		if n < MinConcurrentInterviews {
			n = MinConcurrentInterviews
		}
		if n > MaxConcurrentInterviews {
			n = MaxConcurrentInterviews
		}
		cfg.MaxConcurrentInterviews = n
	}

	if v := os.Getenv("ENABLE_CLERK_VALIDATION"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ENABLE_CLERK_VALIDATION: %q", v)
		}
		cfg.EnableClerkValidation = enabled
	}

	return cfg, nil
}

// SimulationDefaults returns the simulation configuration applied when a
// pipeline run or simulation request carries no explicit config.
func (c *Config) SimulationDefaults() models.SimulationConfig {
	sc := models.DefaultSimulationConfig()
	sc.PeoplePerStakeholder = c.MaxPersonas
	sc.Normalize()
	return sc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
