// Package config reads server settings from the environment.
// main loads .env with godotenv before calling Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/seeron6/eras-portfolio/internal/game"
)

// Config is the full server configuration.
type Config struct {
	Port      string
	LogLevel  string
	LogPretty bool

	// DBPath is the SQLite results file. Empty disables the ledger.
	DBPath string

	ClientOrigin string
	Production   bool

	JWTSecret         string
	AdminPasswordHash string
	CookieName        string
	TokenTTL          time.Duration

	APIKey           string
	Model            string
	AssistantTimeout time.Duration

	CompromiseDelay time.Duration
	Scoring         game.Scoring
	DailySalt       string
	WordsFile       string

	VisitorIdleTTL time.Duration
	SweepInterval  time.Duration
}

// ErrNoSecret is returned in production when JWT_SECRET is unset.
var ErrNoSecret = errors.New("config: JWT_SECRET is required in production")

// devSecret signs tokens outside production when JWT_SECRET is unset.
const devSecret = "dev-only-secret"

// Load reads the environment. Malformed durations fall back to defaults;
// only a missing production secret is an error.
func Load() (Config, error) {
	c := Config{
		Port:              envStr("PORT", "5175"),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		LogPretty:         envBool("LOG_PRETTY", false),
		DBPath:            envRaw("DB_PATH", "./data/app.db"),
		ClientOrigin:      envStr("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:        os.Getenv("NODE_ENV") == "production",
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		CookieName:        envStr("COOKIE_NAME", "eras_visitor"),
		TokenTTL:          time.Duration(envInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour,
		APIKey:            envStr("API_KEY", os.Getenv("GEMINI_API_KEY")),
		Model:             envStr("GEMINI_MODEL", "gemini-2.0-flash"),
		AssistantTimeout:  envDuration("ASSISTANT_TIMEOUT", 15*time.Second),
		CompromiseDelay:   envDuration("COMPROMISE_DELAY", 3*time.Second),
		Scoring:           game.ParseScoring(os.Getenv("WORDGUESS_SCORING")),
		DailySalt:         envStr("DAILY_SALT", "eras"),
		WordsFile:         os.Getenv("WORDS_FILE"),
		VisitorIdleTTL:    envDuration("VISITOR_IDLE_TTL", 2*time.Hour),
		SweepInterval:     envDuration("VISITOR_SWEEP_INTERVAL", 5*time.Minute),
	}
	if raw := strings.TrimSpace(os.Getenv("WORDGUESS_SCORING")); raw != "" && !strings.EqualFold(raw, string(c.Scoring)) {
		log.Warn().Str("WORDGUESS_SCORING", raw).Str("using", string(c.Scoring)).Msg("unknown scoring mode")
	}
	if c.JWTSecret == "" {
		if c.Production {
			return c, ErrNoSecret
		}
		c.JWTSecret = devSecret
	}
	return c, nil
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }

// RequestTimeout bounds each HTTP request. It must outlast the assistant so a
// slow model call still ends in a fallback reply rather than a 503.
func (c Config) RequestTimeout() time.Duration { return c.AssistantTimeout + 5*time.Second }

func (c Config) String() string {
	return fmt.Sprintf("port=%s db=%q model=%s scoring=%s production=%t assistant=%t",
		c.Port, c.DBPath, c.Model, c.Scoring, c.Production, c.APIKey != "")
}

func envStr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// envRaw distinguishes unset (default) from set-but-empty (kept).
func envRaw(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return def
}

func envBool(k string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return b
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
		return d
	}
	return def
}
