// internal/game/wordguess.go
//
// Word-guess: find the 5-letter password in 6 guesses.
// Responsibilities:
//   - Pick the secret uniformly from the candidate list.
//   - Buffer on-screen keyboard input (append / back / enter).
//   - Score guesses per letter under the configured Scoring rule.
//   - Track state transitions: start → playing → won/lost.
//
// Notes:
//   - No dictionary check: any 5 letters are accepted as a guess.
//   - All words are upper-case A–Z internally.

package game

import (
	"math/rand/v2"
	"strings"
)

// DefaultWord is used when the candidate list is empty.
const DefaultWord = "ROBOT"

// Scoring selects how repeated letters are marked.
type Scoring string

const (
	// ScoringLenient marks a letter Present whenever it occurs anywhere in the
	// secret, so a repeated guess letter can be Present more often than the
	// secret contains it.
	ScoringLenient Scoring = "lenient"

	// ScoringStrict is the classic two-pass rule: each secret letter is
	// consumed at most once, exactly like the code-breaker.
	ScoringStrict Scoring = "strict"
)

// ParseScoring maps a config string onto a Scoring, defaulting to lenient.
func ParseScoring(s string) Scoring {
	if strings.EqualFold(strings.TrimSpace(s), string(ScoringStrict)) {
		return ScoringStrict
	}
	return ScoringLenient
}

// WordGuess holds the state of one word-guess session.
type WordGuess struct {
	rng        *rand.Rand
	candidates []string
	scoring    Scoring

	status  Status
	secret  string
	guesses []WordAttempt
	pending []byte
}

// NewWordGuess constructs a game in the Start state.
func NewWordGuess(rng *rand.Rand, candidates []string, scoring Scoring) *WordGuess {
	list := make([]string, 0, len(candidates))
	for _, w := range candidates {
		w = strings.ToUpper(strings.TrimSpace(w))
		if ValidWord(w) {
			list = append(list, w)
		}
	}
	if scoring != ScoringStrict {
		scoring = ScoringLenient
	}
	return &WordGuess{rng: rng, candidates: list, scoring: scoring, status: StatusStart}
}

func (w *WordGuess) Variant() Variant { return VariantWordGuess }
func (w *WordGuess) Status() Status   { return w.status }
func (w *WordGuess) Attempts() int    { return len(w.guesses) }

// History returns a copy of the recorded guesses.
func (w *WordGuess) History() []WordAttempt {
	out := make([]WordAttempt, len(w.guesses))
	copy(out, w.guesses)
	return out
}

// Start picks a secret and begins play. Ignored while playing.
func (w *WordGuess) Start() bool {
	if w.status == StatusPlaying {
		return false
	}
	w.secret = pick(w.rng, w.candidates, DefaultWord)
	w.guesses = nil
	w.pending = nil
	w.status = StatusPlaying
	return true
}

// PlayAgain returns a won or lost game to Start.
func (w *WordGuess) PlayAgain() bool {
	if w.status != StatusWon && w.status != StatusLost {
		return false
	}
	w.status = StatusStart
	w.guesses = nil
	w.pending = nil
	return true
}

// AppendLetter adds r to the pending word. Ignored once 5 letters are pending.
func (w *WordGuess) AppendLetter(r rune) bool {
	if w.status != StatusPlaying || len(w.pending) >= WordLength {
		return false
	}
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	if r < 'A' || r > 'Z' {
		return false
	}
	w.pending = append(w.pending, byte(r))
	return true
}

// DeleteLetter drops the last pending letter.
func (w *WordGuess) DeleteLetter() bool {
	if w.status != StatusPlaying || len(w.pending) == 0 {
		return false
	}
	w.pending = w.pending[:len(w.pending)-1]
	return true
}

// Submit scores the pending word and clears it.
func (w *WordGuess) Submit() bool {
	if !w.SubmitGuess(string(w.pending)) {
		return false
	}
	w.pending = nil
	return true
}

// Key maps on-screen and physical keys: a single letter appends,
// "BACK"/"Backspace" deletes, "ENTER" submits.
func (w *WordGuess) Key(key string) bool {
	switch {
	case strings.EqualFold(key, "ENTER"):
		return w.Submit()
	case strings.EqualFold(key, "BACK"), strings.EqualFold(key, "Backspace"), strings.EqualFold(key, "Delete"):
		return w.DeleteLetter()
	case len(key) == 1:
		return w.AppendLetter(rune(key[0]))
	}
	return false
}

// SubmitGuess validates and scores a guess.
//
// Validation rules:
//   - Game must be playing.
//   - Guess must be exactly 5 letters A–Z (case-insensitive).
//
// State transitions:
//   - guess == secret → Won.
//   - otherwise the 6th guess → Lost.
func (w *WordGuess) SubmitGuess(word string) bool {
	if w.status != StatusPlaying {
		return false
	}
	word = strings.ToUpper(strings.TrimSpace(word))
	if !ValidWord(word) {
		return false
	}

	var marks [WordLength]Mark
	if w.scoring == ScoringStrict {
		marks = scoreStrict(w.secret, word)
	} else {
		marks = scoreLenient(w.secret, word)
	}
	w.guesses = append(w.guesses, WordAttempt{Guess: word, Marks: marks})

	if word == w.secret {
		w.status = StatusWon
	} else if len(w.guesses) >= MaxWordGuesses {
		w.status = StatusLost
	}
	return true
}

// Snapshot returns a render-ready copy of the game.
func (w *WordGuess) Snapshot() Snapshot {
	s := Snapshot{
		Variant:      VariantWordGuess,
		Status:       w.status,
		Pending:      string(w.pending),
		AttemptsLeft: MaxWordGuesses - len(w.guesses),
		WordAttempts: w.History(),
	}
	if w.status == StatusWon || w.status == StatusLost {
		s.Secret = w.secret
	}
	return s
}

// scoreLenient checks each position independently: same letter → Correct,
// letter anywhere in the secret → Present, else Absent.
func scoreLenient(secret, guess string) [WordLength]Mark {
	var res [WordLength]Mark
	for i := 0; i < WordLength; i++ {
		switch {
		case guess[i] == secret[i]:
			res[i] = MarkCorrect
		case strings.IndexByte(secret, guess[i]) >= 0:
			res[i] = MarkPresent
		default:
			res[i] = MarkAbsent
		}
	}
	return res
}

// scoreStrict implements the standard two-pass scoring.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non-correct) secret letters.
//
// Pass 2:
//   - For each non-correct guess letter: if count remains, mark Present and
//     decrement; otherwise Absent.
func scoreStrict(secret, guess string) [WordLength]Mark {
	var res [WordLength]Mark
	var counts [26]int

	for i := 0; i < WordLength; i++ {
		if guess[i] == secret[i] {
			res[i] = MarkCorrect
		} else {
			counts[secret[i]-'A']++
		}
	}
	for i := 0; i < WordLength; i++ {
		if res[i] == MarkCorrect {
			continue
		}
		j := guess[i] - 'A'
		if counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// ValidWord reports whether w can be a secret or a guess: exactly
// WordLength letters, all A–Z.
func ValidWord(w string) bool {
	if len(w) != WordLength {
		return false
	}
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
