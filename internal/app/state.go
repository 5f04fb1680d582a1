package app

import "github.com/seeron6/eras-portfolio/internal/era"

// State is the visitor's UI state. It is a value: every transition returns a
// new State and leaves the receiver untouched.
type State struct {
	Era      era.Era `json:"era"`
	GameOpen bool    `json:"gameOpen"`
	ChatOpen bool    `json:"chatOpen"`
}

// Initial is the state a new visitor lands in.
func Initial() State { return State{Era: era.Retro} }

// WithEra switches theme. Switching to a different era closes the game overlay.
func (s State) WithEra(e era.Era) State {
	if e == s.Era {
		return s
	}
	s.Era = e
	s.GameOpen = false
	return s
}

func (s State) OpenGame() State  { s.GameOpen = true; return s }
func (s State) CloseGame() State { s.GameOpen = false; return s }
func (s State) OpenChat() State  { s.ChatOpen = true; return s }
func (s State) CloseChat() State { s.ChatOpen = false; return s }
