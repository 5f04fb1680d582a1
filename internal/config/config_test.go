package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seeron6/eras-portfolio/internal/game"
)

var keys = []string{
	"PORT", "LOG_LEVEL", "LOG_PRETTY", "DB_PATH", "CLIENT_ORIGIN", "NODE_ENV", "JWT_SECRET",
	"ADMIN_PASSWORD_HASH", "COOKIE_NAME", "JWT_EXPIRES_DAYS", "API_KEY", "GEMINI_API_KEY",
	"GEMINI_MODEL", "ASSISTANT_TIMEOUT", "COMPROMISE_DELAY", "WORDGUESS_SCORING",
	"DAILY_SALT", "WORDS_FILE", "VISITOR_IDLE_TTL", "VISITOR_SWEEP_INTERVAL",
}

// clearEnv blanks every key for the test. DB_PATH is set by tests that need it.
func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5175", c.Port)
	assert.Equal(t, ":5175", c.Addr())
	assert.Equal(t, 15*time.Second, c.AssistantTimeout)
	assert.Equal(t, 20*time.Second, c.RequestTimeout())
	assert.Equal(t, 3*time.Second, c.CompromiseDelay)
	assert.Equal(t, game.ScoringLenient, c.Scoring)
	assert.Equal(t, "gemini-2.0-flash", c.Model)
	assert.Equal(t, devSecret, c.JWTSecret)
	assert.Empty(t, c.APIKey)
	assert.False(t, c.Production)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("ASSISTANT_TIMEOUT", "2s")
	t.Setenv("WORDGUESS_SCORING", "STRICT")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("DB_PATH", "/tmp/x.db")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "g-key", c.APIKey)
	assert.Equal(t, 2*time.Second, c.AssistantTimeout)
	assert.Equal(t, game.ScoringStrict, c.Scoring)
	assert.True(t, c.LogPretty)
	assert.Equal(t, "/tmp/x.db", c.DBPath)

	t.Setenv("API_KEY", "primary")
	c, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "primary", c.APIKey)
}

func TestEmptyDBPathDisablesLedger(t *testing.T) {
	clearEnv(t)
	c, err := Load()
	require.NoError(t, err)
	assert.Empty(t, c.DBPath)
}

func TestBadDurationFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPROMISE_DELAY", "soon")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.CompromiseDelay)
}

func TestProductionNeedsSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")
	_, err := Load()
	assert.ErrorIs(t, err, ErrNoSecret)

	t.Setenv("JWT_SECRET", "s3cret")
	c, err := Load()
	require.NoError(t, err)
	assert.True(t, c.Production)
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func TestUnknownScoringWarns(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORDGUESS_SCORING", "strikt")
	buf := captureLog(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, game.ScoringLenient, c.Scoring)
	assert.Contains(t, buf.String(), "strikt")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestKnownScoringIsQuiet(t *testing.T) {
	for _, v := range []string{"", "strict", " LENIENT "} {
		clearEnv(t)
		t.Setenv("WORDGUESS_SCORING", v)
		buf := captureLog(t)

		_, err := Load()
		require.NoError(t, err)
		assert.NotContains(t, buf.String(), "unknown scoring mode", v)
	}
}
