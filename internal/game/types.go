// internal/game/types.go
//
// Core type definitions shared by the three mini-games.
// Defines:
//   - Variant: which game a session runs (dialogue / codebreak / wordguess).
//   - Status:  position in the start → playing → terminal state machine.
//   - Mark:    per-letter result of a word guess.
//   - CodeAttempt, WordAttempt, Turn: immutable history entries.
//   - Snapshot: the JSON view of a session handed to the client.

package game

import (
	"context"

	"github.com/seeron6/eras-portfolio/internal/assistant"
)

// Variant identifies which mini-game a session runs.
type Variant string

const (
	VariantDialogue  Variant = "dialogue"
	VariantCodeBreak Variant = "codebreak"
	VariantWordGuess Variant = "wordguess"
)

// Status is the coarse state of a game session.
type Status string

const (
	StatusStart       Status = "start"
	StatusPlaying     Status = "playing"
	StatusWon         Status = "won"
	StatusLost        Status = "lost"
	StatusCompromised Status = "compromised"
)

// Terminal reports whether no further guesses are accepted in this state.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusCompromised
}

// Mark is the evaluation of a single letter in a word guess.
//   - "correct": right letter, right position.
//   - "present": letter occurs in the secret elsewhere.
//   - "absent":  letter is not in the secret.
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

const (
	CodeLength      = 4
	MaxCodeAttempts = 8
	WordLength      = 5
	MaxWordGuesses  = 6
)

// CodeAttempt is one recorded code-breaker guess and its feedback.
type CodeAttempt struct {
	Guess   [CodeLength]int `json:"guess"`
	Exact   int             `json:"exact"`
	Partial int             `json:"partial"`
}

// WordAttempt is one recorded word guess with per-letter marks.
type WordAttempt struct {
	Guess string           `json:"guess"`
	Marks [WordLength]Mark `json:"marks"`
}

// Sender tells who authored a dialogue turn.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Turn is one line of the guessing-game conversation.
type Turn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Snapshot is a read-only copy of a session for rendering.
// Secret is only filled once the game has ended in a way that reveals it.
type Snapshot struct {
	Variant      Variant       `json:"variant"`
	Status       Status        `json:"status"`
	Notice       string        `json:"notice,omitempty"`
	Busy         bool          `json:"busy"`
	Pending      string        `json:"pending"`
	AttemptsLeft int           `json:"attemptsLeft"`
	CodeAttempts []CodeAttempt `json:"codeAttempts,omitempty"`
	WordAttempts []WordAttempt `json:"wordAttempts,omitempty"`
	Turns        []Turn        `json:"turns,omitempty"`
	Secret       string        `json:"secret,omitempty"`
}

// Session is the part of every game the overlay and HTTP layer rely on.
type Session interface {
	Variant() Variant
	Status() Status
	// Attempts is the number of recorded guesses (or user turns for dialogue).
	Attempts() int
	Snapshot() Snapshot
	// PlayAgain returns a finished game to Start. It reports false if the
	// game is not in a state that allows it.
	PlayAgain() bool
}

// Replier produces assistant text for a request and never fails; errors are
// already converted to fallback text by the implementation.
type Replier interface {
	Reply(ctx context.Context, req assistant.Request) string
}
