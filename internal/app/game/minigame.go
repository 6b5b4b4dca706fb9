package game

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"lifelens-island/internal/domain/quest"
)

type Verdict string

const (
	VerdictRetry      Verdict = "retry"
	VerdictProgress   Verdict = "progress"
	VerdictAdvance    Verdict = "advance"
	VerdictRepeat     Verdict = "repeat"
	VerdictComplete   Verdict = "complete"
	VerdictCloseLater Verdict = "close_later"
	VerdictFail       Verdict = "fail"
)

type Outcome struct {
	Verdict  Verdict
	Correct  bool
	Feedback string
	Solution string
	Progress quest.Progress
}

// Evaluate judges one submission against the quest's current minigame progress.
// It never mutates prog; the updated progress is returned in the outcome.
func Evaluate(q quest.Quest, prog quest.Progress, value string, rules Rules) (Outcome, error) {
	prog = cloneProgress(prog)
	switch p := q.Payload.(type) {
	case quest.RiddlePayload:
		if p.Correct(value) {
			return Outcome{Verdict: VerdictComplete, Correct: true, Feedback: "Correct!", Progress: prog}, nil
		}
		return Outcome{Verdict: VerdictRetry, Feedback: "Not quite. Try again.", Progress: prog}, nil

	case quest.DecisionPayload:
		choice, ok := p.Choice(value)
		if !ok {
			return Outcome{}, fmt.Errorf("%w: unknown choice %q", ErrInvalidAnswer, value)
		}
		if choice.Correct {
			return Outcome{Verdict: VerdictComplete, Correct: true, Feedback: choice.Feedback, Progress: prog}, nil
		}
		return Outcome{Verdict: VerdictCloseLater, Feedback: choice.Feedback, Progress: prog}, nil

	case quest.ChainPayload:
		idx := prog.RiddleIndex
		if idx < 0 || idx >= len(p.Riddles) {
			return Outcome{}, fmt.Errorf("riddle index %d out of range", idx)
		}
		if !p.Riddles[idx].Correct(value) {
			return Outcome{Verdict: VerdictRetry, Feedback: "That door stays shut. Try again.", Progress: prog}, nil
		}
		if idx == len(p.Riddles)-1 {
			return Outcome{Verdict: VerdictComplete, Correct: true, Feedback: "The last door swings open!", Progress: prog}, nil
		}
		prog.RiddleIndex++
		return Outcome{Verdict: VerdictAdvance, Correct: true, Feedback: fmt.Sprintf("Correct! Riddle %d of %d.", prog.RiddleIndex+1, len(p.Riddles)), Progress: prog}, nil

	case quest.HangmanPayload:
		return evaluateHangman(p, prog, value, rules)
	}
	return Outcome{}, fmt.Errorf("%w: unsupported payload %T", quest.ErrInvalidQuest, q.Payload)
}

func evaluateHangman(p quest.HangmanPayload, prog quest.Progress, value string, rules Rules) (Outcome, error) {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) != 1 {
		return Outcome{}, ErrInvalidGuess
	}
	letter, _ := utf8.DecodeRuneInString(value)
	if !unicode.IsLetter(letter) {
		return Outcome{}, ErrInvalidGuess
	}
	if prog.Hangman == nil {
		prog.Hangman = &quest.HangmanProgress{}
	}
	h := prog.Hangman
	if h.WordIndex < 0 || h.WordIndex >= len(p.Words) {
		return Outcome{}, fmt.Errorf("word index %d out of range", h.WordIndex)
	}
	word := p.Words[h.WordIndex].Word

	fresh, hit := h.Guess(word, letter)
	if !fresh {
		return Outcome{Verdict: VerdictRepeat, Feedback: "You already tried that letter.", Progress: prog}, nil
	}
	if !hit {
		if h.WrongGuesses >= rules.HangmanMaxWrong {
			return Outcome{
				Verdict:  VerdictFail,
				Feedback: fmt.Sprintf("Out of guesses! The word was %s.", strings.ToUpper(word)),
				Solution: strings.ToUpper(word),
				Progress: prog,
			}, nil
		}
		return Outcome{Verdict: VerdictProgress, Feedback: fmt.Sprintf("No %c here. %d guesses left.", unicode.ToUpper(letter), rules.HangmanMaxWrong-h.WrongGuesses), Progress: prog}, nil
	}
	if !h.Solved(word) {
		return Outcome{Verdict: VerdictProgress, Correct: true, Feedback: "Good guess!", Progress: prog}, nil
	}
	if h.WordIndex == len(p.Words)-1 {
		return Outcome{Verdict: VerdictComplete, Correct: true, Feedback: fmt.Sprintf("You spelled %s!", strings.ToUpper(word)), Progress: prog}, nil
	}
	h.NextWord()
	return Outcome{Verdict: VerdictAdvance, Correct: true, Feedback: fmt.Sprintf("You spelled %s! On to the next word.", strings.ToUpper(word)), Progress: prog}, nil
}

func cloneProgress(p quest.Progress) quest.Progress {
	if p.Hangman == nil {
		return p
	}
	h := *p.Hangman
	h.Guessed = append([]string(nil), p.Hangman.Guessed...)
	p.Hangman = &h
	return p
}
