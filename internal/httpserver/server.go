// internal/httpserver/server.go
//
// HTTP server wiring for the portfolio backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/resume", "/stats".
//   - Visitor endpoints (signed visitor cookie): /state, /era, /game/*, /chat/*.
//   - Admin endpoints (admin JWT): /admin/login, /admin/plays.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every visitor route resolves or creates an app.Visitor before the handler runs.
//   - Finished games are written to the results ledger on a best-effort basis.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/seeron6/eras-portfolio/internal/app"
	"github.com/seeron6/eras-portfolio/internal/auth"
	"github.com/seeron6/eras-portfolio/internal/chat"
	"github.com/seeron6/eras-portfolio/internal/era"
	"github.com/seeron6/eras-portfolio/internal/results"
	"github.com/seeron6/eras-portfolio/internal/store"
	"github.com/seeron6/eras-portfolio/internal/words"
)

// Deps is everything the server needs from main.
type Deps struct {
	Store  store.Store
	Ledger *results.Ledger // nil disables persistence
	Signer *auth.Signer
	Cookie auth.CookieOptions

	Game        app.Config
	ChatReplier chat.Replier
	ChatContext chat.ContextFunc

	ResumeJSON        []byte
	ClientOrigin      string
	DailySalt         string
	AdminPasswordHash string
	RequestTimeout    time.Duration

	// AllowClientSeed lets POST /game/open pick the secret's seed. Only for
	// development and tests.
	AllowClientSeed bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server bundles router and dependencies.
type Server struct {
	r *chi.Mux
	d Deps

	// newVisitorMu serialises get-or-create so two first requests from the
	// same cookie share one Visitor.
	newVisitorMu sync.Mutex
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 20 * time.Second
	}
	s := &Server{r: chi.NewRouter(), d: d}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(d.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(d.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "eras-portfolio",
			"eras":    era.All,
			"endpoints": []string{
				"/health", "/resume", "/state", "POST /era", "/game/*", "/chat/*", "/stats",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/resume", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(d.ResumeJSON)
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		n, c := words.Stats()
		writeJSON(w, http.StatusOK, map[string]int{"words": n, "characters": c})
	})

	// --- visitor routes ---
	s.r.Group(func(r chi.Router) {
		r.Use(s.withVisitor)
		r.Get("/state", s.handleState)
		r.Post("/era", s.handleEra)
		s.mountGame(r)
		s.mountChat(r)
	})

	// --- stats + admin ---
	s.mountAdmin(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Run serves HTTP on addr until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

// serve owns ln. Shutdown waits up to one request timeout for handlers, so
// pending assistant calls and ledger writes finish before Run returns.
func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{Handler: s.r, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("draining requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.d.RequestTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- state -------------------------------------

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	v := visitorFrom(r)
	writeJSON(w, http.StatusOK, v.State())
}

type eraReq struct {
	Era string `json:"era"`
}

// handleEra switches theme. An unknown era is a 400; re-selecting the current
// era is a no-op.
func (s *Server) handleEra(w http.ResponseWriter, r *http.Request) {
	var req eraReq
	if !decode(w, r, &req) {
		return
	}
	e, err := era.Parse(req.Era)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_era")
		return
	}
	v := visitorFrom(r)
	before := v.State().Era
	st := v.SetEra(e)
	if before != st.Era {
		log.Debug().Str("visitor", v.ID).Str("from", before.String()).Str("to", st.Era.String()).Msg("era changed")
	}
	writeJSON(w, http.StatusOK, st)
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// decode reads a JSON body into dst. An empty body leaves dst zero-valued;
// malformed JSON writes a 400 and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return false
	}
	return true
}
