// internal/game/dialogue.go
//
// Dialogue guessing game: a fairy thinks of a famous person and answers
// yes/no questions through the remote assistant.
// Responsibilities:
//   - Pick the secret identity and request the opening line.
//   - Forward user turns with the full history and the hidden secret.
//   - Detect a win from the assistant's wording.
//
// Notes:
//   - Unlike the other games this one is asynchronous, so it guards itself
//     with a mutex that is never held across the remote call.
//   - busy rejects a second turn while a reply is outstanding.
//   - gen is bumped on every reset; a reply for an older gen is dropped.

package game

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/seeron6/eras-portfolio/internal/assistant"
)

// DefaultCharacter is used when the character list is empty.
const DefaultCharacter = "Drake"

// WinDetector decides from an assistant reply whether the user has won.
type WinDetector interface {
	Won(reply string) bool
}

// WinDetectorFunc adapts a function to WinDetector.
type WinDetectorFunc func(reply string) bool

func (f WinDetectorFunc) Won(reply string) bool { return f(reply) }

// KeywordDetector is a best-effort heuristic: the game is won when the reply
// mentions "congrat" or "win" in any case.
var KeywordDetector WinDetector = WinDetectorFunc(func(reply string) bool {
	l := strings.ToLower(reply)
	return strings.Contains(l, "congrat") || strings.Contains(l, "win")
})

// Dialogue holds the state of one guessing-game session.
type Dialogue struct {
	mu         sync.Mutex
	rng        *rand.Rand
	replier    Replier
	detector   WinDetector
	characters []string

	status Status
	secret string
	turns  []Turn
	busy   bool
	gen    uint64
}

// NewDialogue constructs a game in the Start state. A nil detector uses
// KeywordDetector.
func NewDialogue(rng *rand.Rand, replier Replier, characters []string, detector WinDetector) *Dialogue {
	if detector == nil {
		detector = KeywordDetector
	}
	return &Dialogue{
		rng:        rng,
		replier:    replier,
		detector:   detector,
		characters: append([]string(nil), characters...),
		status:     StatusStart,
	}
}

func (d *Dialogue) Variant() Variant { return VariantDialogue }

func (d *Dialogue) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Attempts counts the user turns so far.
func (d *Dialogue) Attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, t := range d.turns {
		if t.Sender == SenderUser {
			n++
		}
	}
	return n
}

// Busy reports whether a reply is outstanding.
func (d *Dialogue) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// Turns returns a copy of the conversation.
func (d *Dialogue) Turns() []Turn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Turn(nil), d.turns...)
}

// Start picks the secret and asks the assistant for the opening line.
// It blocks until the reply arrives; the game reports busy meanwhile.
func (d *Dialogue) Start(ctx context.Context) bool {
	d.mu.Lock()
	if d.status != StatusStart || d.busy {
		d.mu.Unlock()
		return false
	}
	d.secret = pick(d.rng, d.characters, DefaultCharacter)
	d.turns = nil
	d.status = StatusPlaying
	d.busy = true
	d.gen++
	gen := d.gen
	req := assistant.Request{
		Prompt:        assistant.GuessGameOpening,
		SystemContext: assistant.GuessGameContext(d.secret, d.options(), nil),
		MaxTokens:     assistant.GameMaxTokens,
	}
	d.mu.Unlock()

	reply := d.replier.Reply(ctx, req)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return false
	}
	d.busy = false
	d.turns = append(d.turns, Turn{Sender: SenderAssistant, Text: reply})
	return true
}

// Say sends a user turn. Blank text, a pending reply or a game that is not
// playing make it a no-op.
func (d *Dialogue) Say(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)

	d.mu.Lock()
	if text == "" || d.busy || d.status != StatusPlaying {
		d.mu.Unlock()
		return false
	}
	d.turns = append(d.turns, Turn{Sender: SenderUser, Text: text})
	d.busy = true
	gen := d.gen
	req := assistant.Request{
		Prompt:        text,
		SystemContext: assistant.GuessGameContext(d.secret, d.options(), transcript(d.turns)),
		MaxTokens:     assistant.GameMaxTokens,
	}
	d.mu.Unlock()

	reply := d.replier.Reply(ctx, req)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return false
	}
	d.busy = false
	d.turns = append(d.turns, Turn{Sender: SenderAssistant, Text: reply})
	if d.detector.Won(reply) {
		d.status = StatusWon
	}
	return true
}

// Reset abandons any outstanding reply and returns to Start.
func (d *Dialogue) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.busy = false
	d.turns = nil
	d.secret = ""
	d.status = StatusStart
}

// PlayAgain resets a won game.
func (d *Dialogue) PlayAgain() bool {
	if d.Status() != StatusWon {
		return false
	}
	d.Reset()
	return true
}

func (d *Dialogue) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := Snapshot{
		Variant: VariantDialogue,
		Status:  d.status,
		Busy:    d.busy,
		Turns:   append([]Turn(nil), d.turns...),
	}
	if d.status == StatusWon {
		s.Secret = d.secret
	}
	return s
}

func (d *Dialogue) options() []string {
	if len(d.characters) == 0 {
		return []string{DefaultCharacter}
	}
	return d.characters
}

// transcript renders turns as "sender: text" lines.
func transcript(turns []Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = string(t.Sender) + ": " + t.Text
	}
	return out
}
