package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seeron6/eras-portfolio/internal/app"
	"github.com/seeron6/eras-portfolio/internal/assistant"
	"github.com/seeron6/eras-portfolio/internal/auth"
	"github.com/seeron6/eras-portfolio/internal/chat"
	"github.com/seeron6/eras-portfolio/internal/era"
	"github.com/seeron6/eras-portfolio/internal/game"
	"github.com/seeron6/eras-portfolio/internal/results"
	"github.com/seeron6/eras-portfolio/internal/store"
)

const adminPassword = "let-me-in"

// fakeGen returns a fixed reply or error and can be changed mid-test.
type fakeGen struct {
	mu    sync.Mutex
	reply string
	err   error
}

func (f *fakeGen) Generate(_ context.Context, _ assistant.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reply, f.err
}

func (f *fakeGen) set(reply string, err error) {
	f.mu.Lock()
	f.reply, f.err = reply, err
	f.mu.Unlock()
}

type fixture struct {
	srv    *Server
	ledger *results.Ledger
	gen    *fakeGen
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	db, err := results.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, results.Migrate(db))

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)

	gen := &fakeGen{reply: "*POOF* Who am I?"}
	ledger := results.NewLedger(db)
	d := Deps{
		Store:  store.NewMemoryStore(),
		Ledger: ledger,
		Signer: auth.NewSigner("test-secret", time.Hour),
		Cookie: auth.CookieOptions{Name: "eras_visitor"},
		Game: app.Config{
			Replier:    assistant.NewResponder(gen, time.Second, assistant.GameFallbacks, "game"),
			Words:      []string{"ROBOT"},
			Characters: []string{"Drake"},
			Scoring:    game.ScoringLenient,
		},
		ChatReplier:       assistant.NewResponder(gen, time.Second, assistant.ChatFallbacks, "chat"),
		ChatContext:       func(e era.Era) string { return "era " + e.String() },
		ResumeJSON:        []byte(`{"header":{"name":"Test"}}`),
		DailySalt:         "salt",
		AdminPasswordHash: hash,
	}
	for _, o := range opts {
		o(&d)
	}
	return &fixture{srv: New(d), ledger: ledger, gen: gen}
}

// client carries cookies between requests like a browser would.
type client struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
	bearer  string
}

func (f *fixture) client(t *testing.T) *client {
	return &client{t: t, h: f.srv.Router(), cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type moveBody struct {
	Accepted bool          `json:"accepted"`
	Game     game.Snapshot `json:"game"`
}

func TestHealthAndNotFound(t *testing.T) {
	c := newFixture(t).client(t)

	rec := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = c.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodGet, "/resume", nil)
	assert.JSONEq(t, `{"header":{"name":"Test"}}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	c := newFixture(t).client(t)
	rec := c.do(http.MethodOptions, "/state", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestVisitorCookieKeepsState(t *testing.T) {
	c := newFixture(t).client(t)

	rec := c.do(http.MethodGet, "/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, app.Initial(), decodeBody[app.State](t, rec))
	require.Contains(t, c.cookies, "eras_visitor")

	rec = c.do(http.MethodPost, "/era", map[string]string{"era": "modern"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "known visitor must not be re-issued a cookie")

	st := decodeBody[app.State](t, c.do(http.MethodGet, "/state", nil))
	assert.Equal(t, era.Modern, st.Era)

	rec = c.do(http.MethodPost, "/era", map[string]string{"era": "steampunk"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/era", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClosedOverlayIsConflict(t *testing.T) {
	c := newFixture(t).client(t)
	rec := c.do(http.MethodPost, "/game/key", map[string]string{"key": "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = c.do(http.MethodGet, "/game", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCodeBreakerRejectedInputIsSilent(t *testing.T) {
	c := newFixture(t).client(t)
	c.do(http.MethodPost, "/era", map[string]string{"era": "MODERN"})
	c.do(http.MethodPost, "/game/open", nil)

	mv := decodeBody[moveBody](t, c.do(http.MethodPost, "/game/start", nil))
	require.True(t, mv.Accepted)
	assert.Equal(t, game.VariantCodeBreak, mv.Game.Variant)
	assert.Equal(t, game.MaxCodeAttempts, mv.Game.AttemptsLeft)

	rec := c.do(http.MethodPost, "/game/code/digit", map[string]int{"digit": 12})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[moveBody](t, rec).Accepted)

	mv = decodeBody[moveBody](t, c.do(http.MethodPost, "/game/code/submit", nil))
	assert.False(t, mv.Accepted, "submitting an empty buffer is ignored")

	for _, d := range []int{1, 2, 3} {
		mv = decodeBody[moveBody](t, c.do(http.MethodPost, "/game/code/digit", map[string]int{"digit": d}))
		require.True(t, mv.Accepted)
	}
	mv = decodeBody[moveBody](t, c.do(http.MethodPost, "/game/code/delete", nil))
	assert.True(t, mv.Accepted)
	assert.Equal(t, "12", mv.Game.Pending)

	mv = decodeBody[moveBody](t, c.do(http.MethodPost, "/game/code/guess", map[string][]int{"guess": {1, 2, 3}}))
	assert.False(t, mv.Accepted)
	mv = decodeBody[moveBody](t, c.do(http.MethodPost, "/game/word/letter", map[string]string{"letter": "A"}))
	assert.False(t, mv.Accepted, "word moves do not apply to the code breaker")
}

func TestDailyCodeBreakerMatchesAcrossVisitors(t *testing.T) {
	f := newFixture(t)
	play := func() game.Snapshot {
		c := f.client(t)
		c.do(http.MethodPost, "/era", map[string]string{"era": "MODERN"})
		c.do(http.MethodPost, "/game/open", map[string]bool{"daily": true})
		c.do(http.MethodPost, "/game/start", nil)
		return decodeBody[moveBody](t, c.do(http.MethodPost, "/game/code/guess", map[string][]int{"guess": {1, 2, 3, 4}})).Game
	}
	a, b := play(), play()
	require.Len(t, a.CodeAttempts, 1)
	assert.Equal(t, a.CodeAttempts, b.CodeAttempts)
}

func TestWordGameWinIsRecordedAndListed(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.do(http.MethodPost, "/era", map[string]string{"era": "FUTURE"})
	open := decodeBody[openRes](t, c.do(http.MethodPost, "/game/open", nil))
	assert.True(t, open.State.GameOpen)
	assert.Equal(t, game.VariantWordGuess, open.Game.Variant)
	c.do(http.MethodPost, "/game/start", nil)

	mv := decodeBody[moveBody](t, c.do(http.MethodPost, "/game/word/guess", map[string]string{"word": "zzzzz"}))
	assert.True(t, mv.Accepted, "any five letters are accepted")
	for _, k := range []string{"r", "o", "b", "o", "t"} {
		c.do(http.MethodPost, "/game/key", map[string]string{"key": k})
	}
	mv = decodeBody[moveBody](t, c.do(http.MethodPost, "/game/key", map[string]string{"key": "ENTER"}))
	require.True(t, mv.Accepted)
	assert.Equal(t, game.StatusWon, mv.Game.Status)
	assert.Equal(t, "ROBOT", mv.Game.Secret)

	// A replayed terminal move must not be recorded twice.
	mv = decodeBody[moveBody](t, c.do(http.MethodPost, "/game/key", map[string]string{"key": "ENTER"}))
	assert.False(t, mv.Accepted)

	sum, err := f.ledger.Summary(context.Background())
	require.NoError(t, err)
	assert.Contains(t, sum, results.VariantSummary{Variant: game.VariantWordGuess, Played: 1, Won: 1})

	stats := decodeBody[map[string]any](t, c.do(http.MethodGet, "/stats", nil))
	assert.Equal(t, true, stats["persisted"])

	admin := f.client(t)
	rec := admin.do(http.MethodGet, "/admin/plays", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A visitor token is not an admin token.
	admin.bearer = c.cookies["eras_visitor"].Value
	rec = admin.do(http.MethodGet, "/admin/plays", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	admin.bearer = ""

	rec = admin.do(http.MethodPost, "/admin/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = admin.do(http.MethodPost, "/admin/login", map[string]string{"password": adminPassword})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = admin.do(http.MethodGet, "/admin/plays", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	plays := decodeBody[[]results.Play](t, rec)
	require.Len(t, plays, 1)
	assert.Equal(t, 2, plays[0].Attempts)
	assert.Equal(t, game.StatusWon, plays[0].Status)
}

func TestEraSwitchClosesOverlay(t *testing.T) {
	c := newFixture(t).client(t)
	c.do(http.MethodPost, "/game/open", nil)
	st := decodeBody[app.State](t, c.do(http.MethodPost, "/era", map[string]string{"era": "FUTURE"}))
	assert.False(t, st.GameOpen)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodGet, "/game", nil).Code)
}

func TestDialogueGame(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	f.gen.set("Congratulations on finding me!", nil)

	c.do(http.MethodPost, "/game/open", nil)
	mv := decodeBody[moveBody](t, c.do(http.MethodPost, "/game/start", nil))
	require.True(t, mv.Accepted)
	assert.Equal(t, game.StatusPlaying, mv.Game.Status, "the opening line never wins")
	require.Len(t, mv.Game.Turns, 1)

	mv = decodeBody[moveBody](t, c.do(http.MethodPost, "/game/dialogue/say", map[string]string{"text": "   "}))
	assert.False(t, mv.Accepted)

	mv = decodeBody[moveBody](t, c.do(http.MethodPost, "/game/dialogue/say", map[string]string{"text": "Drake?"}))
	require.True(t, mv.Accepted)
	assert.Equal(t, game.StatusWon, mv.Game.Status)
	assert.Equal(t, "Drake", mv.Game.Secret)

	rec := c.do(http.MethodPost, "/game/key", map[string]string{"key": "A"})
	assert.False(t, decodeBody[moveBody](t, rec).Accepted)
}

func TestDialogueFallbackOnFailure(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	f.gen.set("", assistant.ErrNetwork)

	c.do(http.MethodPost, "/game/open", nil)
	mv := decodeBody[moveBody](t, c.do(http.MethodPost, "/game/start", nil))
	require.Len(t, mv.Game.Turns, 1)
	assert.Equal(t, assistant.GameFallbacks.Failure, mv.Game.Turns[0].Text)
}

func TestChat(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	view := decodeBody[chatRes](t, c.do(http.MethodGet, "/chat", nil))
	require.Len(t, view.Messages, 1)
	assert.Equal(t, chat.Greeting, view.Messages[0].Text)

	view = decodeBody[chatRes](t, c.do(http.MethodPost, "/chat/open", nil))
	assert.True(t, view.Open)

	f.gen.set("", assistant.ErrConfigMissing)
	view = decodeBody[chatRes](t, c.do(http.MethodPost, "/chat/send", map[string]string{"text": "hi"}))
	require.True(t, view.Accepted)
	require.Len(t, view.Messages, 3)
	assert.Equal(t, assistant.ChatFallbacks.ConfigMissing, view.Messages[2].Text)

	view = decodeBody[chatRes](t, c.do(http.MethodPost, "/chat/send", map[string]string{"text": ""}))
	assert.False(t, view.Accepted)
	assert.Len(t, view.Messages, 3)

	view = decodeBody[chatRes](t, c.do(http.MethodPost, "/chat/close", nil))
	assert.False(t, view.Open)
	assert.Len(t, view.Messages, 1)
}

func TestClientSeedIgnoredByDefault(t *testing.T) {
	c := newFixture(t).client(t)
	c.do(http.MethodPost, "/era", map[string]string{"era": "MODERN"})

	open := decodeBody[openRes](t, c.do(http.MethodPost, "/game/open", map[string]uint64{"seed": 42}))
	assert.False(t, open.Seeded, "a visitor must not choose the secret")

	open = decodeBody[openRes](t, c.do(http.MethodPost, "/game/open", map[string]bool{"daily": true}))
	assert.True(t, open.Seeded)
}

func TestClientSeedHonouredWhenAllowed(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.AllowClientSeed = true })
	play := func() (bool, game.Snapshot) {
		c := f.client(t)
		c.do(http.MethodPost, "/era", map[string]string{"era": "MODERN"})
		open := decodeBody[openRes](t, c.do(http.MethodPost, "/game/open", map[string]uint64{"seed": 42}))
		c.do(http.MethodPost, "/game/start", nil)
		mv := decodeBody[moveBody](t, c.do(http.MethodPost, "/game/code/guess", map[string][]int{"guess": {1, 2, 3, 4}}))
		return open.Seeded, mv.Game
	}
	seededA, a := play()
	seededB, b := play()
	assert.True(t, seededA)
	assert.True(t, seededB)
	require.Len(t, a.CodeAttempts, 1)
	assert.Equal(t, a.CodeAttempts, b.CodeAttempts)
}
