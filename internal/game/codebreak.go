// internal/game/codebreak.go
//
// Code-breaker: guess a 4-digit code in 8 attempts.
// Responsibilities:
//   - Draw a secret of 4 independent digits (repeats allowed).
//   - Buffer pad/keyboard input and submit it as a guess.
//   - Score guesses with the two-pass exact/partial algorithm.
//   - Track state transitions: start → playing → won/compromised.
//
// Notes:
//   - Compromised is not a real loss. After resetDelay the game drops back to
//     Start with a "false alarm" notice. The check runs lazily against the
//     injected clock whenever the game is observed or mutated; there is no timer.

package game

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultResetDelay is how long the compromised screen stays up.
	DefaultResetDelay = 3 * time.Second

	// FalseAlarmNotice is shown once a compromised game resets itself.
	FalseAlarmNotice = "JUST KIDDING... but that was close."
)

// CodeBreak holds the state of one code-breaker session.
type CodeBreak struct {
	rng        *rand.Rand
	now        func() time.Time
	resetDelay time.Duration

	status        Status
	secret        [CodeLength]int
	attempts      []CodeAttempt
	pending       []int
	compromisedAt time.Time
	notice        string
}

// CodeBreakOption customises a CodeBreak.
type CodeBreakOption func(*CodeBreak)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) CodeBreakOption {
	return func(c *CodeBreak) { c.now = now }
}

// WithResetDelay overrides DefaultResetDelay.
func WithResetDelay(d time.Duration) CodeBreakOption {
	return func(c *CodeBreak) {
		if d > 0 {
			c.resetDelay = d
		}
	}
}

// NewCodeBreak constructs a game in the Start state.
func NewCodeBreak(rng *rand.Rand, opts ...CodeBreakOption) *CodeBreak {
	c := &CodeBreak{
		rng:        rng,
		now:        time.Now,
		resetDelay: DefaultResetDelay,
		status:     StatusStart,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *CodeBreak) Variant() Variant { return VariantCodeBreak }

// Status reports the current state, applying the compromised auto-reset first.
func (c *CodeBreak) Status() Status {
	c.settle()
	return c.status
}

func (c *CodeBreak) Attempts() int { return len(c.attempts) }

// History returns a copy of the recorded attempts.
func (c *CodeBreak) History() []CodeAttempt {
	out := make([]CodeAttempt, len(c.attempts))
	copy(out, c.attempts)
	return out
}

// Start draws a fresh secret and begins play. Ignored while playing.
func (c *CodeBreak) Start() bool {
	c.settle()
	if c.status == StatusPlaying || c.status == StatusCompromised {
		return false
	}
	for i := range c.secret {
		c.secret[i] = c.rng.IntN(10)
	}
	c.attempts = nil
	c.pending = nil
	c.notice = ""
	c.status = StatusPlaying
	return true
}

// PlayAgain returns a won game to Start.
func (c *CodeBreak) PlayAgain() bool {
	c.settle()
	if c.status != StatusWon {
		return false
	}
	c.status = StatusStart
	c.attempts = nil
	c.pending = nil
	return true
}

// AppendDigit adds d to the pending guess. Ignored once 4 digits are pending.
func (c *CodeBreak) AppendDigit(d int) bool {
	c.settle()
	if c.status != StatusPlaying || d < 0 || d > 9 || len(c.pending) >= CodeLength {
		return false
	}
	c.pending = append(c.pending, d)
	return true
}

// DeleteDigit drops the last pending digit.
func (c *CodeBreak) DeleteDigit() bool {
	c.settle()
	if c.status != StatusPlaying || len(c.pending) == 0 {
		return false
	}
	c.pending = c.pending[:len(c.pending)-1]
	return true
}

// Submit scores the pending guess and clears it.
func (c *CodeBreak) Submit() bool {
	c.settle()
	if len(c.pending) != CodeLength {
		return false
	}
	guess := c.pending
	if !c.SubmitGuess(guess) {
		return false
	}
	c.pending = nil
	return true
}

// Key maps a keyboard key name onto the pad operations:
// "0".."9" append, "Backspace"/"Delete" remove, "Enter" submits.
func (c *CodeBreak) Key(key string) bool {
	switch {
	case len(key) == 1 && key[0] >= '0' && key[0] <= '9':
		return c.AppendDigit(int(key[0] - '0'))
	case strings.EqualFold(key, "Backspace"), strings.EqualFold(key, "Delete"):
		return c.DeleteDigit()
	case strings.EqualFold(key, "Enter"):
		return c.Submit()
	}
	return false
}

// SubmitGuess records a full guess. Wrong length, out-of-range digits or a
// game that is not playing make it a no-op.
//
// State transitions:
//   - exact == 4 → Won.
//   - otherwise, the 8th attempt → Compromised.
func (c *CodeBreak) SubmitGuess(guess []int) bool {
	c.settle()
	if c.status != StatusPlaying || len(guess) != CodeLength {
		return false
	}
	var g [CodeLength]int
	for i, d := range guess {
		if d < 0 || d > 9 {
			return false
		}
		g[i] = d
	}

	exact, partial := ScoreCode(c.secret, g)
	c.attempts = append(c.attempts, CodeAttempt{Guess: g, Exact: exact, Partial: partial})

	if exact == CodeLength {
		c.status = StatusWon
	} else if len(c.attempts) >= MaxCodeAttempts {
		c.status = StatusCompromised
		c.compromisedAt = c.now()
	}
	return true
}

// Snapshot returns a render-ready copy of the game.
func (c *CodeBreak) Snapshot() Snapshot {
	c.settle()
	s := Snapshot{
		Variant:      VariantCodeBreak,
		Status:       c.status,
		Notice:       c.notice,
		Pending:      digits(c.pending),
		AttemptsLeft: MaxCodeAttempts - len(c.attempts),
		CodeAttempts: c.History(),
	}
	if c.status == StatusWon {
		s.Secret = digits(c.secret[:])
	}
	return s
}

// settle applies the compromised → start reset once the delay has elapsed.
func (c *CodeBreak) settle() {
	if c.status != StatusCompromised {
		return
	}
	if c.now().Sub(c.compromisedAt) < c.resetDelay {
		return
	}
	c.status = StatusStart
	c.notice = FalseAlarmNotice
	c.attempts = nil
	c.pending = nil
}

// ScoreCode implements the two-pass exact/partial scoring.
//
// Pass 1:
//   - Count exact positions.
//   - Collect the remaining (non-exact) secret digits into a pool.
//
// Pass 2:
//   - For each non-exact guess digit, consume one occurrence from the pool
//     if available and count it as partial.
//
// A digit repeated in the guess therefore never earns more partial credit
// than the secret actually holds.
func ScoreCode(secret, guess [CodeLength]int) (exact, partial int) {
	var pool [10]int
	for i := 0; i < CodeLength; i++ {
		if guess[i] == secret[i] {
			exact++
		} else {
			pool[secret[i]]++
		}
	}
	for i := 0; i < CodeLength; i++ {
		if guess[i] == secret[i] {
			continue
		}
		if pool[guess[i]] > 0 {
			partial++
			pool[guess[i]]--
		}
	}
	return exact, partial
}

func digits(ds []int) string {
	var b strings.Builder
	for _, d := range ds {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}
