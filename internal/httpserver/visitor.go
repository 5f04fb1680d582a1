package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/seeron6/eras-portfolio/internal/app"
	"github.com/seeron6/eras-portfolio/internal/auth"
	"github.com/seeron6/eras-portfolio/internal/chat"
	"github.com/seeron6/eras-portfolio/internal/store"
)

type ctxVisitorKey struct{}

// withVisitor resolves the visitor from the signed cookie (or bearer token).
// A missing or invalid token mints a new visitor and cookie; a valid token
// whose visitor was evicted gets a fresh Visitor under the same id.
func (s *Server) withVisitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := s.d.Signer.Parse(auth.BearerOrCookie(r, s.d.Cookie.Name)); err == nil && c.Role == auth.RoleVisitor {
			id = c.Subject
		}
		if id == "" {
			id = uuid.NewString()
			tok, exp, err := s.d.Signer.Sign(id, auth.RoleVisitor)
			if err != nil {
				log.Error().Err(err).Msg("sign visitor token")
				writeError(w, http.StatusInternalServerError, "sign_failed")
				return
			}
			auth.SetCookie(w, s.d.Cookie, tok, exp)
		}

		v, err := s.visitor(r.Context(), id)
		if err != nil {
			log.Error().Err(err).Str("visitor", id).Msg("load visitor")
			writeError(w, http.StatusInternalServerError, "visitor_failed")
			return
		}
		v.Touch(s.d.Now())

		ctx := context.WithValue(r.Context(), ctxVisitorKey{}, v)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// visitor returns the stored visitor for id, creating it if absent.
func (s *Server) visitor(ctx context.Context, id string) (*app.Visitor, error) {
	s.newVisitorMu.Lock()
	defer s.newVisitorMu.Unlock()

	v, err := s.d.Store.Get(ctx, id)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	v = app.NewVisitor(id, s.d.Game, chat.NewSession(s.d.ChatReplier, s.d.ChatContext))
	if err := s.d.Store.Save(ctx, v); err != nil {
		return nil, err
	}
	log.Info().Str("visitor", id).Msg("new visitor")
	return v, nil
}

// visitorFrom is only valid behind withVisitor.
func visitorFrom(r *http.Request) *app.Visitor {
	v, _ := r.Context().Value(ctxVisitorKey{}).(*app.Visitor)
	return v
}
