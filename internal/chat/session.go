// internal/chat/session.go
//
// Conversation state of the floating assistant widget.
// Responsibilities:
//   - Keep an append-only message list seeded with a greeting.
//   - Forward each user message with the active era to the assistant.
//   - Allow one outstanding request per session; later sends are rejected.
//   - Drop replies that arrive after the widget was reset.

package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/seeron6/eras-portfolio/internal/assistant"
	"github.com/seeron6/eras-portfolio/internal/era"
)

// Greeting seeds every new session.
const Greeting = "Greetings! Ask me anything about Seeron's work."

// Sender tells who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one chat line.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Replier answers a request with displayable text.
type Replier interface {
	Reply(ctx context.Context, req assistant.Request) string
}

// ContextFunc builds the system context for an era.
type ContextFunc func(e era.Era) string

// Session is safe for concurrent use.
type Session struct {
	replier   Replier
	contextOf ContextFunc

	mu       sync.Mutex
	messages []Message
	busy     bool
	gen      uint64
}

// NewSession returns a session holding only the greeting.
func NewSession(r Replier, contextOf ContextFunc) *Session {
	return &Session{
		replier:   r,
		contextOf: contextOf,
		messages:  seed(),
	}
}

func seed() []Message {
	return []Message{{Sender: SenderAssistant, Text: Greeting}}
}

// Send appends text as a user message and waits for the reply.
// It reports false, leaving the session untouched, when text is blank or a
// request is already outstanding. It also reports false if the session was
// reset before the reply arrived; that reply is discarded.
func (s *Session) Send(ctx context.Context, e era.Era, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return false
	}
	s.messages = append(s.messages, Message{Sender: SenderUser, Text: text})
	s.busy = true
	gen := s.gen
	s.mu.Unlock()

	reply := s.replier.Reply(ctx, assistant.Request{
		Prompt:        text,
		SystemContext: s.contextOf(e),
		MaxTokens:     assistant.ChatMaxTokens,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.messages = append(s.messages, Message{Sender: SenderAssistant, Text: reply})
	s.busy = false
	return true
}

// Reset abandons any outstanding request and restores the greeting.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.busy = false
	s.messages = seed()
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Len is the number of messages, greeting included.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Busy reports whether a reply is outstanding.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}
