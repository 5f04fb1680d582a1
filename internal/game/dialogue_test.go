package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seeron6/eras-portfolio/internal/assistant"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

var testCharacters = []string{"Drake", "Vijay", "Neymar"}

// scriptedReplier answers with canned replies in order and records requests.
type scriptedReplier struct {
	mu      sync.Mutex
	replies []string
	reqs    []assistant.Request
}

func (s *scriptedReplier) Reply(_ context.Context, req assistant.Request) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	if len(s.replies) == 0 {
		return "*POOF* No."
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r
}

// gatedReplier blocks each call until the test releases a reply.
type gatedReplier struct {
	entered chan struct{}
	release chan string
}

func newGated() *gatedReplier {
	return &gatedReplier{entered: make(chan struct{}, 1), release: make(chan string)}
}

func (g *gatedReplier) Reply(_ context.Context, _ assistant.Request) string {
	g.entered <- struct{}{}
	return <-g.release
}

func TestDialogueStartAndTurns(t *testing.T) {
	r := &scriptedReplier{replies: []string{"*POOF* I'm thinking of a legend!", "Yes! *sparkle*"}}
	d := NewDialogue(seeded(1), r, testCharacters, nil)

	require.True(t, d.Start(context.Background()))
	assert.Contains(t, testCharacters, d.secret)
	assert.Equal(t, StatusPlaying, d.Status())
	require.Len(t, r.reqs, 1)
	assert.Equal(t, assistant.GuessGameOpening, r.reqs[0].Prompt)
	assert.Contains(t, r.reqs[0].SystemContext, "The secret character is: "+d.secret)
	assert.Equal(t, assistant.GameMaxTokens, r.reqs[0].MaxTokens)

	require.True(t, d.Say(context.Background(), "  Is he a singer? "))
	turns := d.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, Turn{Sender: SenderAssistant, Text: "*POOF* I'm thinking of a legend!"}, turns[0])
	assert.Equal(t, Turn{Sender: SenderUser, Text: "Is he a singer?"}, turns[1])
	assert.Equal(t, SenderAssistant, turns[2].Sender)

	require.Len(t, r.reqs, 2)
	assert.Equal(t, "Is he a singer?", r.reqs[1].Prompt)
	assert.Contains(t, r.reqs[1].SystemContext, "user: Is he a singer?")
	assert.Equal(t, StatusPlaying, d.Status())
	assert.Equal(t, 1, d.Attempts())
	assert.Empty(t, d.Snapshot().Secret)
}

func TestDialogueWinDetection(t *testing.T) {
	r := &scriptedReplier{replies: []string{"Hello!", "CONGRATULATIONS, YOU WIN! *POOF*"}}
	d := NewDialogue(seeded(2), r, testCharacters, nil)
	d.Start(context.Background())

	require.True(t, d.Say(context.Background(), "Is it "+d.secret+"?"))
	assert.Equal(t, StatusWon, d.Status())
	assert.Equal(t, d.secret, d.Snapshot().Secret)
	assert.False(t, d.Say(context.Background(), "again?"), "no turns after winning")

	require.True(t, d.PlayAgain())
	assert.Equal(t, StatusStart, d.Status())
	assert.Empty(t, d.Turns())
}

func TestKeywordDetector(t *testing.T) {
	assert.True(t, KeywordDetector.Won("Congratulations, you win!"))
	assert.True(t, KeywordDetector.Won("congrats"))
	assert.True(t, KeywordDetector.Won("You WIN"))
	assert.False(t, KeywordDetector.Won("No, try again"))
}

func TestDialogueCustomDetector(t *testing.T) {
	r := &scriptedReplier{replies: []string{"Hi", "you win nothing"}}
	never := WinDetectorFunc(func(string) bool { return false })
	d := NewDialogue(seeded(3), r, testCharacters, never)
	d.Start(context.Background())
	d.Say(context.Background(), "Drake?")
	assert.Equal(t, StatusPlaying, d.Status())
}

func TestDialogueIgnoresBlankAndIdle(t *testing.T) {
	r := &scriptedReplier{}
	d := NewDialogue(seeded(4), r, testCharacters, nil)
	assert.False(t, d.Say(context.Background(), "hello"), "not started")

	d.Start(context.Background())
	assert.False(t, d.Say(context.Background(), "   "))
	assert.Len(t, d.Turns(), 1)
}

func TestDialogueRejectsWhileBusy(t *testing.T) {
	g := newGated()
	d := NewDialogue(seeded(5), g, testCharacters, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.Start(context.Background())
	}()
	<-g.entered

	assert.True(t, d.Busy())
	assert.True(t, d.Snapshot().Busy)
	assert.False(t, d.Say(context.Background(), "Is it Drake?"))
	assert.False(t, d.Start(context.Background()))

	g.release <- "Welcome!"
	wg.Wait()
	assert.False(t, d.Busy())
	assert.Len(t, d.Turns(), 1)
}

func TestDialogueResetDiscardsLateReply(t *testing.T) {
	g := newGated()
	d := NewDialogue(seeded(6), g, testCharacters, nil)

	go func() { d.Start(context.Background()) }()
	<-g.entered
	g.release <- "Welcome!"
	require.Eventually(t, func() bool { return !d.Busy() && len(d.Turns()) == 1 }, timeout, tick)

	done := make(chan bool)
	go func() { done <- d.Say(context.Background(), "Is it Vijay?") }()
	<-g.entered

	d.Reset()
	g.release <- "Congratulations, you win!"
	assert.False(t, <-done, "late reply is dropped")

	assert.Equal(t, StatusStart, d.Status())
	assert.Empty(t, d.Turns())
	assert.False(t, d.Busy())
}
