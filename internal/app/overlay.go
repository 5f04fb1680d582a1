// internal/app/overlay.go
//
// The game overlay: owns at most one game session and picks the variant
// from the current era.
//
//   RETRO  → dialogue guessing game
//   MODERN → code breaker
//   FUTURE → word guess
//
// Opening the overlay always starts from a fresh session; closing it drops the
// session and abandons any outstanding assistant reply.

package app

import (
	"time"

	"github.com/seeron6/eras-portfolio/internal/era"
	"github.com/seeron6/eras-portfolio/internal/game"
)

// Config carries everything needed to construct game sessions.
type Config struct {
	Replier    game.Replier
	Words      []string
	Characters []string
	Scoring    game.Scoring
	ResetDelay time.Duration
	Detector   game.WinDetector
	// Now is the clock for the code-breaker's auto-reset. nil means time.Now.
	Now func() time.Time
}

// OpenOptions controls how a new session draws its secret.
type OpenOptions struct {
	// Seed makes the secret reproducible. nil draws a random seed.
	Seed *uint64
	// Daily marks the session as the shared puzzle of the day.
	Daily bool
}

// VariantFor maps an era to its mini-game.
func VariantFor(e era.Era) game.Variant {
	switch e {
	case era.Modern:
		return game.VariantCodeBreak
	case era.Future:
		return game.VariantWordGuess
	default:
		return game.VariantDialogue
	}
}

// Overlay is not safe for concurrent use; Visitor serialises access.
type Overlay struct {
	cfg     Config
	session game.Session
	daily   bool
}

// NewOverlay returns a closed overlay.
func NewOverlay(cfg Config) *Overlay {
	return &Overlay{cfg: cfg}
}

// Open discards any current session and creates a fresh one for e.
func (o *Overlay) Open(e era.Era, opts OpenOptions) game.Session {
	o.Close()
	rng := game.NewRand(opts.Seed)

	switch VariantFor(e) {
	case game.VariantCodeBreak:
		var cbOpts []game.CodeBreakOption
		if o.cfg.Now != nil {
			cbOpts = append(cbOpts, game.WithClock(o.cfg.Now))
		}
		if o.cfg.ResetDelay > 0 {
			cbOpts = append(cbOpts, game.WithResetDelay(o.cfg.ResetDelay))
		}
		o.session = game.NewCodeBreak(rng, cbOpts...)
	case game.VariantWordGuess:
		o.session = game.NewWordGuess(rng, o.cfg.Words, o.cfg.Scoring)
	default:
		o.session = game.NewDialogue(rng, o.cfg.Replier, o.cfg.Characters, o.cfg.Detector)
	}
	o.daily = opts.Daily
	return o.session
}

// Close drops the session.
func (o *Overlay) Close() {
	if d, ok := o.session.(*game.Dialogue); ok {
		d.Reset()
	}
	o.session = nil
	o.daily = false
}

// Session returns the active session or nil when closed.
func (o *Overlay) Session() game.Session { return o.session }

// Daily reports whether the active session is the daily puzzle.
func (o *Overlay) Daily() bool { return o.daily }
