package assistant

import (
	"fmt"
	"strings"
)

// Token budgets per caller.
const (
	ChatMaxTokens = 60
	GameMaxTokens = 80
)

// GuessGameOpening is the first prompt of the fairy guessing game.
const GuessGameOpening = "Start the game! Introduce yourself as a male fairy. " +
	"Tell me you are thinking of a famous person (a legend). Don't say who it is."

// Persona builds the portfolio assistant's system context.
type Persona struct {
	owner  string
	resume string
}

// NewPersona takes the portfolio owner's name and the résumé as JSON.
func NewPersona(owner string, resumeJSON []byte) Persona {
	return Persona{owner: owner, resume: strings.TrimSpace(string(resumeJSON))}
}

// ChatContext is the system context for the chat widget in the given era.
func (p Persona) ChatContext(era string) string {
	return fmt.Sprintf(`You are an AI assistant for the portfolio website of %s.
Resume: %s

Persona:
- Retro Era: 90s cartoon style.
- Modern Era: Professional, corporate.
- Future Era: Cyberpunk AI.

Current User Era: %s`, p.owner, p.resume, era)
}

// GuessGameContext is the hidden system context for one turn of the guessing
// game. history lines are "sender: text".
func GuessGameContext(secret string, options []string, history []string) string {
	return fmt.Sprintf(`You are playing a "Guess Who" game. You are a male fairy (like Cosmo).
The secret character is: %[1]s.
The available options are: %[2]s.

Rules:
1. The user will ask Yes/No questions to guess the character.
2. Answer ONLY with Yes, No, or a very short hint if they are stuck.
3. Be silly and use magical sound effects in text (e.g., *POOF*).
4. If the user guesses correctly (mentions %[1]s), congratulate them warmly.

Current conversation history: %[3]s`, secret, strings.Join(options, ", "), strings.Join(history, "\n"))
}
