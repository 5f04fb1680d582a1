// internal/words/words.go
//
// Candidate lists for the mini-games.
//
// Responsibilities:
//   - Word-guess candidates: 5-letter passwords, upper-case A–Z.
//   - Dialogue candidates: the secret identities the fairy may think of.
//
// Initialization behavior (Init):
//   1. If a words file path is given, load candidates from it (one per line).
//   2. Otherwise fall back to the embedded `default_words.txt`.
//   Characters always come from the embedded `default_characters.txt`.
//
// Constraints:
//   • Words must pass game.ValidWord; others are skipped.
//   • Blank lines and lines starting with '#' are ignored.
//   • Initialization is run once (sync.Once).

package words

import (
	"bufio"
	_ "embed"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/seeron6/eras-portfolio/internal/game"
)

//go:embed default_words.txt
var embeddedWords string

//go:embed default_characters.txt
var embeddedCharacters string

var (
	initOnce   sync.Once
	words      []string
	characters []string
	initialErr error
)

// Init loads the candidate lists exactly once.
// Returns an error if the word list ends up empty.
func Init(wordsFile string) error {
	initOnce.Do(func() {
		if wordsFile != "" {
			f, err := os.Open(wordsFile)
			if err != nil {
				initialErr = err
				return
			}
			defer f.Close()
			words, initialErr = ParseWords(f)
			if initialErr != nil {
				return
			}
		} else {
			words, _ = ParseWords(strings.NewReader(embeddedWords))
		}
		characters = parseLines(embeddedCharacters)

		if len(words) == 0 {
			initialErr = errors.New("words: word list is empty")
		}
	})
	return initialErr
}

// ParseWords reads one word per line, upper-cases it and keeps only valid
// 5-letter alphabetic entries. Duplicates are dropped.
func ParseWords(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToUpper(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if !game.ValidWord(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out, sc.Err()
}

// parseLines splits an embedded list into trimmed, non-comment lines.
func parseLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Words returns a copy of the word-guess candidates.
func Words() []string { return append([]string(nil), words...) }

// Characters returns a copy of the dialogue-game identities.
func Characters() []string { return append([]string(nil), characters...) }

// Stats returns counts of loaded entries: (words, characters).
func Stats() (wordCount int, characterCount int) {
	return len(words), len(characters)
}
