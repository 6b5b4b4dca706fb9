package quest

import (
	"sort"
	"strings"
	"unicode"
)

// Progress is the transient minigame state of an open quest session.
type Progress struct {
	QuestID     string           `json:"quest_id"`
	RiddleIndex int              `json:"riddle_index"`
	Hangman     *HangmanProgress `json:"hangman,omitempty"`
}

func NewProgress(q Quest) Progress {
	p := Progress{QuestID: q.ID}
	if q.Kind() == KindHangman {
		p.Hangman = &HangmanProgress{}
	}
	return p
}

type HangmanProgress struct {
	WordIndex    int      `json:"word_index"`
	Guessed      []string `json:"guessed"`
	WrongGuesses int      `json:"wrong_guesses"`
	HintUsed     bool     `json:"hint_used"`
	Hint         string   `json:"hint,omitempty"`
}

func (h *HangmanProgress) HasGuessed(letter rune) bool {
	s := string(unicode.ToUpper(letter))
	for _, g := range h.Guessed {
		if g == s {
			return true
		}
	}
	return false
}

func (h *HangmanProgress) addGuess(letter rune) {
	h.Guessed = append(h.Guessed, string(unicode.ToUpper(letter)))
	sort.Strings(h.Guessed)
}

// NextWord resets letter state for the following word.
func (h *HangmanProgress) NextWord() {
	h.WordIndex++
	h.Guessed = nil
	h.WrongGuesses = 0
	h.HintUsed = false
	h.Hint = ""
}

// Guess records letter against word and reports whether it was new and whether it hit.
func (h *HangmanProgress) Guess(word string, letter rune) (fresh, hit bool) {
	if h.HasGuessed(letter) {
		return false, false
	}
	h.addGuess(letter)
	upper := unicode.ToUpper(letter)
	for _, r := range Letters(word) {
		if r == upper {
			return true, true
		}
	}
	h.WrongGuesses++
	return true, false
}

func (h *HangmanProgress) Solved(word string) bool {
	for _, r := range Letters(word) {
		if !h.HasGuessed(r) {
			return false
		}
	}
	return true
}

// Mask shows guessed letters and hides the rest; non-letters are always shown.
func (h *HangmanProgress) Mask(word string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(word) {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
		case h.HasGuessed(r):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Letters returns the distinct upper-cased letters of word in order of appearance.
func Letters(word string) []rune {
	seen := make(map[rune]bool)
	out := make([]rune, 0, len(word))
	for _, r := range strings.ToUpper(word) {
		if !unicode.IsLetter(r) || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
