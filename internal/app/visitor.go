// internal/app/visitor.go
//
// Visitor bundles everything one browser session owns: the UI State value,
// the game overlay and the chat widget.
//
// Concurrency:
//   - mu serialises every mutation of state and of the synchronous games, so
//     each visitor behaves like a single event loop.
//   - mu is never held across an assistant call. Dialogue and chat sessions
//     guard themselves and discard replies that arrive after a reset.

package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/seeron6/eras-portfolio/internal/chat"
	"github.com/seeron6/eras-portfolio/internal/era"
	"github.com/seeron6/eras-portfolio/internal/game"
)

var (
	// ErrNoGame is returned for game moves while the overlay is closed.
	ErrNoGame = errors.New("app: game overlay is closed")
	// ErrWrongGame is returned when a move does not apply to the active variant.
	ErrWrongGame = errors.New("app: move does not apply to this game")
)

// Move is the outcome of one game operation.
type Move struct {
	Accepted bool          `json:"accepted"`
	Snapshot game.Snapshot `json:"game"`
	// Finished is true only on the move that ended the game.
	Finished bool `json:"-"`
	Attempts int  `json:"-"`
	Daily    bool `json:"-"`
}

// Visitor is safe for concurrent use.
type Visitor struct {
	ID string

	mu       sync.Mutex
	state    State
	overlay  *Overlay
	chat     *chat.Session
	lastSeen time.Time
}

// NewVisitor creates a visitor in the Initial state.
func NewVisitor(id string, cfg Config, c *chat.Session) *Visitor {
	return &Visitor{
		ID:       id,
		state:    Initial(),
		overlay:  NewOverlay(cfg),
		chat:     c,
		lastSeen: time.Now(),
	}
}

// Touch records activity for idle eviction.
func (v *Visitor) Touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

// LastSeen is the time of the last Touch.
func (v *Visitor) LastSeen() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// State returns the current UI state value.
func (v *Visitor) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// SetEra switches theme; a real change closes and resets the game overlay.
func (v *Visitor) SetEra(e era.Era) State {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.state.WithEra(e)
	if next.Era != v.state.Era {
		v.overlay.Close()
	}
	v.state = next
	return v.state
}

// OpenGame (re)opens the overlay with a fresh session for the current era.
func (v *Visitor) OpenGame(opts OpenOptions) game.Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = v.state.OpenGame()
	return v.overlay.Open(v.state.Era, opts).Snapshot()
}

// CloseGame closes the overlay and abandons the session.
func (v *Visitor) CloseGame() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.overlay.Close()
	v.state = v.state.CloseGame()
	return v.state
}

// Game returns a snapshot of the active session.
func (v *Visitor) Game() (game.Snapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.overlay.Session()
	if s == nil {
		return game.Snapshot{}, ErrNoGame
	}
	return s.Snapshot(), nil
}

// Play runs fn against the active session under the visitor lock.
// fn reports whether it accepted the move.
func (v *Visitor) Play(fn func(s game.Session) bool) (Move, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.overlay.Session()
	if s == nil {
		return Move{}, ErrNoGame
	}
	before := s.Status()
	ok := fn(s)
	return v.moveLocked(s, before, ok), nil
}

// StartGame starts the active session. The dialogue game waits for the
// assistant's opening line without holding the visitor lock.
func (v *Visitor) StartGame(ctx context.Context) (Move, error) {
	return v.dispatch(ctx, func(s game.Session) bool {
		switch g := s.(type) {
		case *game.CodeBreak:
			return g.Start()
		case *game.WordGuess:
			return g.Start()
		}
		return false
	}, func(ctx context.Context, d *game.Dialogue) bool {
		return d.Start(ctx)
	})
}

// PlayAgain returns a finished game to its start screen.
func (v *Visitor) PlayAgain() (Move, error) {
	return v.Play(func(s game.Session) bool { return s.PlayAgain() })
}

// Key routes a keyboard/pad key to the active code-breaker or word game.
func (v *Visitor) Key(key string) (Move, error) {
	return v.Play(func(s game.Session) bool {
		switch g := s.(type) {
		case *game.CodeBreak:
			return g.Key(key)
		case *game.WordGuess:
			return g.Key(key)
		}
		return false
	})
}

// Code runs fn against the active code-breaker.
func (v *Visitor) Code(fn func(c *game.CodeBreak) bool) (Move, error) {
	var wrong bool
	mv, err := v.Play(func(s game.Session) bool {
		c, ok := s.(*game.CodeBreak)
		if !ok {
			wrong = true
			return false
		}
		return fn(c)
	})
	if err == nil && wrong {
		return mv, ErrWrongGame
	}
	return mv, err
}

// Word runs fn against the active word-guess game.
func (v *Visitor) Word(fn func(w *game.WordGuess) bool) (Move, error) {
	var wrong bool
	mv, err := v.Play(func(s game.Session) bool {
		w, ok := s.(*game.WordGuess)
		if !ok {
			wrong = true
			return false
		}
		return fn(w)
	})
	if err == nil && wrong {
		return mv, ErrWrongGame
	}
	return mv, err
}

// Say sends a user turn to the active dialogue game.
func (v *Visitor) Say(ctx context.Context, text string) (Move, error) {
	v.mu.Lock()
	_, isDialogue := v.overlay.Session().(*game.Dialogue)
	closed := v.overlay.Session() == nil
	v.mu.Unlock()
	if closed {
		return Move{}, ErrNoGame
	}
	if !isDialogue {
		mv, err := v.Play(func(game.Session) bool { return false })
		if err != nil {
			return mv, err
		}
		return mv, ErrWrongGame
	}
	return v.dispatch(ctx, nil, func(ctx context.Context, d *game.Dialogue) bool {
		return d.Say(ctx, text)
	})
}

// dispatch runs sync moves under the lock and dialogue moves outside it.
// A dialogue reply that lands after the overlay moved on is reported as
// not accepted against whatever session is current.
func (v *Visitor) dispatch(ctx context.Context, sync func(game.Session) bool, async func(context.Context, *game.Dialogue) bool) (Move, error) {
	v.mu.Lock()
	s := v.overlay.Session()
	if s == nil {
		v.mu.Unlock()
		return Move{}, ErrNoGame
	}
	d, isDialogue := s.(*game.Dialogue)
	if !isDialogue || async == nil {
		defer v.mu.Unlock()
		before := s.Status()
		ok := false
		if sync != nil {
			ok = sync(s)
		}
		return v.moveLocked(s, before, ok), nil
	}
	v.mu.Unlock()

	before := d.Status()
	ok := async(ctx, d)

	v.mu.Lock()
	defer v.mu.Unlock()
	cur := v.overlay.Session()
	if cur == nil {
		return Move{}, ErrNoGame
	}
	if cur != s {
		return v.moveLocked(cur, cur.Status(), false), nil
	}
	return v.moveLocked(s, before, ok), nil
}

func (v *Visitor) moveLocked(s game.Session, before game.Status, accepted bool) Move {
	snap := s.Snapshot()
	return Move{
		Accepted: accepted,
		Snapshot: snap,
		Finished: !before.Terminal() && snap.Status.Terminal(),
		Attempts: s.Attempts(),
		Daily:    v.overlay.Daily(),
	}
}

// Chat returns the visitor's chat session.
func (v *Visitor) Chat() *chat.Session { return v.chat }

// OpenChat marks the widget open.
func (v *Visitor) OpenChat() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = v.state.OpenChat()
	return v.state
}

// CloseChat closes the widget and resets the conversation, discarding any
// reply still in flight.
func (v *Visitor) CloseChat() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.chat.Reset()
	v.state = v.state.CloseChat()
	return v.state
}

// SendChat forwards text to the assistant tagged with the current era.
func (v *Visitor) SendChat(ctx context.Context, text string) bool {
	e := v.State().Era
	return v.chat.Send(ctx, e, text)
}
