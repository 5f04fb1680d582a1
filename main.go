package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seeron6/eras-portfolio/assets"
	"github.com/seeron6/eras-portfolio/internal/app"
	"github.com/seeron6/eras-portfolio/internal/assistant"
	"github.com/seeron6/eras-portfolio/internal/auth"
	"github.com/seeron6/eras-portfolio/internal/config"
	"github.com/seeron6/eras-portfolio/internal/era"
	"github.com/seeron6/eras-portfolio/internal/httpserver"
	"github.com/seeron6/eras-portfolio/internal/results"
	"github.com/seeron6/eras-portfolio/internal/store"
	"github.com/seeron6/eras-portfolio/internal/words"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// run returns only after the HTTP server has drained, so deferred closes
// never race an in-flight ledger write.
func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if lvl, lerr := zerolog.ParseLevel(cfg.LogLevel); lerr == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log.Info().Str("config", cfg.String()).Msg("configuration loaded")

	if err := words.Init(cfg.WordsFile); err != nil {
		return fmt.Errorf("load word lists: %w", err)
	}

	resume, resumeJSON, err := assets.LoadResume()
	if err != nil {
		return fmt.Errorf("load resume: %w", err)
	}

	gemini := assistant.NewGemini(cfg.APIKey, cfg.Model)
	if !gemini.Configured() {
		log.Warn().Msg("no API key set; assistant replies will use fallback text")
	}
	persona := assistant.NewPersona(resume.Header.Name, resumeJSON)

	var ledger *results.Ledger
	if cfg.DBPath != "" {
		db, err := results.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database %s: %w", cfg.DBPath, err)
		}
		defer db.Close()
		if err := results.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		ledger = results.NewLedger(db)
	} else {
		log.Warn().Msg("DB_PATH empty; finished games will not be recorded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	go store.RunSweeper(ctx, mem, cfg.VisitorIdleTTL, cfg.SweepInterval)

	srv := httpserver.New(httpserver.Deps{
		Store:  mem,
		Ledger: ledger,
		Signer: auth.NewSigner(cfg.JWTSecret, cfg.TokenTTL),
		Cookie: auth.CookieOptions{Name: cfg.CookieName, Secure: cfg.Production},
		Game: app.Config{
			Replier:    assistant.NewResponder(gemini, cfg.AssistantTimeout, assistant.GameFallbacks, "game"),
			Words:      words.Words(),
			Characters: words.Characters(),
			Scoring:    cfg.Scoring,
			ResetDelay: cfg.CompromiseDelay,
		},
		ChatReplier:       assistant.NewResponder(gemini, cfg.AssistantTimeout, assistant.ChatFallbacks, "chat"),
		ChatContext:       func(e era.Era) string { return persona.ChatContext(e.String()) },
		ResumeJSON:        resumeJSON,
		ClientOrigin:      cfg.ClientOrigin,
		DailySalt:         cfg.DailySalt,
		AdminPasswordHash: cfg.AdminPasswordHash,
		RequestTimeout:    cfg.RequestTimeout(),
		AllowClientSeed:   !cfg.Production,
	})

	log.Info().Str("addr", cfg.Addr()).Msg("starting server")
	return srv.Run(ctx, cfg.Addr())
}
