package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seeron6/eras-portfolio/internal/chat"
)

// mountChat registers the assistant widget routes under /chat.
func (s *Server) mountChat(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Get("/", s.handleChat)
		r.Post("/open", s.handleChatOpen)
		r.Post("/close", s.handleChatClose)
		r.Post("/send", s.handleChatSend)
	})
}

type chatRes struct {
	Accepted bool           `json:"accepted"`
	Open     bool           `json:"open"`
	Busy     bool           `json:"busy"`
	Messages []chat.Message `json:"messages"`
}

func (s *Server) chatView(r *http.Request, accepted bool) chatRes {
	v := visitorFrom(r)
	c := v.Chat()
	return chatRes{
		Accepted: accepted,
		Open:     v.State().ChatOpen,
		Busy:     c.Busy(),
		Messages: c.Messages(),
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chatView(r, true))
}

func (s *Server) handleChatOpen(w http.ResponseWriter, r *http.Request) {
	visitorFrom(r).OpenChat()
	writeJSON(w, http.StatusOK, s.chatView(r, true))
}

// handleChatClose resets the conversation; a reply still in flight for the
// old conversation is dropped.
func (s *Server) handleChatClose(w http.ResponseWriter, r *http.Request) {
	visitorFrom(r).CloseChat()
	writeJSON(w, http.StatusOK, s.chatView(r, true))
}

type chatSendReq struct {
	Text string `json:"text"`
}

// handleChatSend blocks until the assistant answers (or the fallback fires).
func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var req chatSendReq
	if !decode(w, r, &req) {
		return
	}
	ok := visitorFrom(r).SendChat(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, s.chatView(r, ok))
}
