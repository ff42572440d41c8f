package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadAcceptsEitherKeyVariable(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "google-key", cfg.GeminiAPIKey)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPPort, cfg.HTTPPort)
	assert.Equal(t, DefaultGeminiModel, cfg.GeminiModel)
	assert.Equal(t, DefaultMaxPersonas, cfg.MaxPersonas)
	assert.Equal(t, DefaultMaxConcurrentInterviews, cfg.MaxConcurrentInterviews)
	assert.Equal(t, 300*time.Second, cfg.CallTimeout)
	assert.False(t, cfg.EnableClerkValidation)
}

func TestLoadMaxPersonas(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")

	t.Run("valid", func(t *testing.T) {
		t.Setenv("MAX_PERSONAS", "3")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.MaxPersonas)
	})

	t.Run("clamped to ten", func(t *testing.T) {
		t.Setenv("MAX_PERSONAS", "50")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.MaxPersonas)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("MAX_PERSONAS", "zero")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadConcurrencyClamped(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("MAX_CONCURRENT_INTERVIEWS", "100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, MaxConcurrentInterviews, cfg.MaxConcurrentInterviews)
}

func TestLoadClerkValidation(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("ENABLE_CLERK_VALIDATION", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.EnableClerkValidation)

	t.Setenv("ENABLE_CLERK_VALIDATION", "maybe")
	_, err = Load()
	assert.Error(t, err)
}

func TestSimulationDefaults(t *testing.T) {
	cfg := &Config{MaxPersonas: 4}
	sc := cfg.SimulationDefaults()
	assert.Equal(t, 4, sc.PeoplePerStakeholder)
	assert.True(t, sc.IncludeInsights)
}
