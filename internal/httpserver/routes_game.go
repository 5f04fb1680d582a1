// internal/httpserver/routes_game.go
//
// HTTP routes for the era mini-games, mounted under /game:
//   - POST /game/open, /game/close, GET /game   → overlay lifecycle
//   - POST /game/start, /game/again              → session lifecycle
//   - POST /game/key                             → keyboard input for either grid game
//   - POST /game/code/*                          → code breaker pad
//   - POST /game/word/*                          → word guess keyboard
//   - POST /game/dialogue/say                    → dialogue turn
//
// Invalid input is never an HTTP error: the response carries accepted=false
// and the unchanged snapshot. Moving a closed overlay is a 409.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/seeron6/eras-portfolio/internal/app"
	"github.com/seeron6/eras-portfolio/internal/daily"
	"github.com/seeron6/eras-portfolio/internal/game"
	"github.com/seeron6/eras-portfolio/internal/results"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Get("/", s.handleGame)
		r.Post("/open", s.handleOpen)
		r.Post("/close", s.handleClose)
		r.Post("/start", s.handleStart)
		r.Post("/again", s.handleAgain)
		r.Post("/key", s.handleKey)

		r.Post("/code/digit", s.handleCodeDigit)
		r.Post("/code/delete", s.codeMove(func(c *game.CodeBreak) bool { return c.DeleteDigit() }))
		r.Post("/code/submit", s.codeMove(func(c *game.CodeBreak) bool { return c.Submit() }))
		r.Post("/code/guess", s.handleCodeGuess)

		r.Post("/word/letter", s.handleWordLetter)
		r.Post("/word/delete", s.wordMove(func(w *game.WordGuess) bool { return w.DeleteLetter() }))
		r.Post("/word/submit", s.wordMove(func(w *game.WordGuess) bool { return w.Submit() }))
		r.Post("/word/guess", s.handleWordGuess)

		r.Post("/dialogue/say", s.handleSay)
	})
}

type openReq struct {
	Seed  *uint64 `json:"seed"`
	Daily bool    `json:"daily"`
}

type openRes struct {
	State  app.State     `json:"state"`
	Game   game.Snapshot `json:"game"`
	Seeded bool          `json:"seeded"`
}

// handleOpen opens the overlay with a fresh session. daily=true derives the
// seed from today's date so every visitor gets the same secret. A client seed
// is honoured only when AllowClientSeed is set.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req openReq
	if !decode(w, r, &req) {
		return
	}
	opts := app.OpenOptions{Daily: req.Daily}
	if req.Seed != nil && s.d.AllowClientSeed {
		opts.Seed = req.Seed
	}
	if req.Daily {
		seed := daily.Seed(s.d.Now(), s.d.DailySalt)
		opts.Seed = &seed
	}
	v := visitorFrom(r)
	snap := v.OpenGame(opts)
	log.Debug().Str("visitor", v.ID).Str("variant", string(snap.Variant)).Bool("daily", req.Daily).Msg("game opened")
	if req.Seed != nil && opts.Seed == nil {
		log.Warn().Str("visitor", v.ID).Msg("client seed ignored")
	}
	writeJSON(w, http.StatusOK, openRes{State: v.State(), Game: snap, Seeded: opts.Seed != nil})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, visitorFrom(r).CloseGame())
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	snap, err := visitorFrom(r).Game()
	if err != nil {
		writeError(w, http.StatusConflict, "game_closed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	v := visitorFrom(r)
	mv, err := v.StartGame(r.Context())
	s.respondMove(w, r, v, mv, err)
}

func (s *Server) handleAgain(w http.ResponseWriter, r *http.Request) {
	v := visitorFrom(r)
	mv, err := v.PlayAgain()
	s.respondMove(w, r, v, mv, err)
}

type keyReq struct {
	Key string `json:"key"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyReq
	if !decode(w, r, &req) {
		return
	}
	v := visitorFrom(r)
	mv, err := v.Key(req.Key)
	s.respondMove(w, r, v, mv, err)
}

// --------------------------- code breaker ----------------------------------

type digitReq struct {
	Digit *int `json:"digit"`
}

type codeGuessReq struct {
	Guess []int `json:"guess"`
}

func (s *Server) codeMove(fn func(c *game.CodeBreak) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := visitorFrom(r)
		mv, err := v.Code(fn)
		s.respondMove(w, r, v, mv, err)
	}
}

func (s *Server) handleCodeDigit(w http.ResponseWriter, r *http.Request) {
	var req digitReq
	if !decode(w, r, &req) {
		return
	}
	s.codeMove(func(c *game.CodeBreak) bool {
		return req.Digit != nil && c.AppendDigit(*req.Digit)
	})(w, r)
}

func (s *Server) handleCodeGuess(w http.ResponseWriter, r *http.Request) {
	var req codeGuessReq
	if !decode(w, r, &req) {
		return
	}
	s.codeMove(func(c *game.CodeBreak) bool { return c.SubmitGuess(req.Guess) })(w, r)
}

// ---------------------------- word guess -----------------------------------

type letterReq struct {
	Letter string `json:"letter"`
}

type wordGuessReq struct {
	Word string `json:"word"`
}

func (s *Server) wordMove(fn func(w *game.WordGuess) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := visitorFrom(r)
		mv, err := v.Word(fn)
		s.respondMove(w, r, v, mv, err)
	}
}

func (s *Server) handleWordLetter(w http.ResponseWriter, r *http.Request) {
	var req letterReq
	if !decode(w, r, &req) {
		return
	}
	s.wordMove(func(g *game.WordGuess) bool {
		if utf8.RuneCountInString(req.Letter) != 1 {
			return false
		}
		l, _ := utf8.DecodeRuneInString(req.Letter)
		return g.AppendLetter(l)
	})(w, r)
}

func (s *Server) handleWordGuess(w http.ResponseWriter, r *http.Request) {
	var req wordGuessReq
	if !decode(w, r, &req) {
		return
	}
	s.wordMove(func(g *game.WordGuess) bool { return g.SubmitGuess(req.Word) })(w, r)
}

// ----------------------------- dialogue ------------------------------------

type sayReq struct {
	Text string `json:"text"`
}

func (s *Server) handleSay(w http.ResponseWriter, r *http.Request) {
	var req sayReq
	if !decode(w, r, &req) {
		return
	}
	v := visitorFrom(r)
	mv, err := v.Say(r.Context(), req.Text)
	s.respondMove(w, r, v, mv, err)
}

// ------------------------------ shared -------------------------------------

// respondMove writes a Move and records the game if this move finished it.
func (s *Server) respondMove(w http.ResponseWriter, r *http.Request, v *app.Visitor, mv app.Move, err error) {
	if errors.Is(err, app.ErrNoGame) {
		writeError(w, http.StatusConflict, "game_closed")
		return
	}
	if mv.Finished {
		s.recordPlay(r.Context(), v, mv)
	}
	writeJSON(w, http.StatusOK, mv)
}

// recordPlay writes a finished game to the ledger. Failures are logged only.
func (s *Server) recordPlay(ctx context.Context, v *app.Visitor, mv app.Move) {
	id, err := s.d.Ledger.Record(context.WithoutCancel(ctx), results.Play{
		VisitorID: v.ID,
		Variant:   mv.Snapshot.Variant,
		Status:    mv.Snapshot.Status,
		Attempts:  mv.Attempts,
		Daily:     mv.Daily,
	})
	if err != nil {
		log.Warn().Err(err).Str("visitor", v.ID).Msg("record play")
		return
	}
	log.Info().
		Str("visitor", v.ID).
		Str("play", id).
		Str("variant", string(mv.Snapshot.Variant)).
		Str("status", string(mv.Snapshot.Status)).
		Int("attempts", mv.Attempts).
		Msg("game finished")
}
