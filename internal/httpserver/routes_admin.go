// internal/httpserver/routes_admin.go
//
// Results endpoints:
//   - GET  /stats        → public played/won tally per mini-game
//   - POST /admin/login  → exchange the admin password for an admin token
//   - GET  /admin/plays  → latest finished games (admin token required)

package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/seeron6/eras-portfolio/internal/auth"
)

const adminSubject = "admin"

func (s *Server) mountAdmin(r chi.Router) {
	r.Get("/stats", s.handleStats)
	r.Post("/admin/login", s.handleAdminLogin)
	r.With(s.requireAdmin).Get("/admin/plays", s.handleAdminPlays)
}

func (s *Server) adminCookie() auth.CookieOptions {
	c := s.d.Cookie
	c.Name += "_admin"
	return c
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.d.Ledger.Summary(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("stats summary")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"variants":  sum,
		"persisted": s.d.Ledger.Enabled(),
		"visitors":  s.d.Store.Len(),
	})
}

type adminLoginReq struct {
	Password string `json:"password"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginReq
	if !decode(w, r, &req) {
		return
	}
	if !auth.CheckPassword(s.d.AdminPasswordHash, req.Password) {
		log.Warn().Str("ip", r.RemoteAddr).Msg("admin login failed")
		writeError(w, http.StatusUnauthorized, "invalid_password")
		return
	}
	tok, exp, err := s.d.Signer.Sign(adminSubject, auth.RoleAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	auth.SetCookie(w, s.adminCookie(), tok, exp)
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "expiresAt": exp})
}

type ctxAdminKey struct{}

// requireAdmin enforces a valid admin token from the bearer header or admin cookie.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := s.d.Signer.Parse(auth.BearerOrCookie(r, s.adminCookie().Name))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if c.Role != auth.RoleAdmin {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		ctx := context.WithValue(r.Context(), ctxAdminKey{}, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleAdminPlays(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	plays, err := s.d.Ledger.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("recent plays")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if c, ok := r.Context().Value(ctxAdminKey{}).(*auth.Claims); ok {
		log.Debug().Str("subject", c.Subject).Int("rows", len(plays)).Msg("admin listed plays")
	}
	writeJSON(w, http.StatusOK, plays)
}
