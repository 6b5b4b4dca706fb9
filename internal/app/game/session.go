package game

import (
	"lifelens-island/internal/domain/quest"
)

type Phase string

const (
	PhaseReading   Phase = "reading"
	PhaseAnswering Phase = "answering"
	PhaseClosing   Phase = "closing"
)

// session is one open quest: Reading -> Answering -> closed. Closing is the
// short feedback window before an automatic close.
type session struct {
	questID     string
	phase       Phase
	remaining   int
	progress    quest.Progress
	feedback    string
	timer       Timer
	armed       uint64
	hintPending bool
}

func (s *session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.armed = 0
}

type SessionView struct {
	QuestID        string     `json:"quest_id"`
	Kind           quest.Kind `json:"kind"`
	Title          string     `json:"title"`
	Phase          Phase      `json:"phase"`
	Remaining      int        `json:"remaining"`
	AcceptsAnswers bool       `json:"accepts_answers"`
	Prompt         string     `json:"prompt"`
	Options        []string   `json:"options,omitempty"`
	Step           int        `json:"step,omitempty"`
	Steps          int        `json:"steps,omitempty"`
	Masked         string     `json:"masked,omitempty"`
	Clue           string     `json:"clue,omitempty"`
	Guessed        []string   `json:"guessed,omitempty"`
	WrongGuesses   int        `json:"wrong_guesses,omitempty"`
	MaxWrong       int        `json:"max_wrong,omitempty"`
	HintUsed       bool       `json:"hint_used,omitempty"`
	Hint           string     `json:"hint,omitempty"`
	Feedback       string     `json:"feedback,omitempty"`
}

func newSessionView(q quest.Quest, s *session, rules Rules) SessionView {
	v := SessionView{
		QuestID:        q.ID,
		Kind:           q.Kind(),
		Title:          q.Title,
		Phase:          s.phase,
		Remaining:      s.remaining,
		AcceptsAnswers: s.phase == PhaseAnswering,
		Feedback:       s.feedback,
	}
	switch p := q.Payload.(type) {
	case quest.RiddlePayload:
		v.Prompt = p.Question
		v.Options = append([]string(nil), p.Options...)
	case quest.DecisionPayload:
		v.Prompt = p.Scenario
		v.Options = []string{p.Choices[0].Text, p.Choices[1].Text}
	case quest.ChainPayload:
		idx := s.progress.RiddleIndex
		if idx >= 0 && idx < len(p.Riddles) {
			v.Prompt = p.Riddles[idx].Question
			v.Options = append([]string(nil), p.Riddles[idx].Options...)
		}
		v.Step = idx + 1
		v.Steps = len(p.Riddles)
	case quest.HangmanPayload:
		h := s.progress.Hangman
		if h == nil || h.WordIndex >= len(p.Words) {
			break
		}
		w := p.Words[h.WordIndex]
		v.Prompt = q.Description
		v.Masked = h.Mask(w.Word)
		v.Clue = w.Clue
		v.Guessed = append([]string(nil), h.Guessed...)
		v.WrongGuesses = h.WrongGuesses
		v.MaxWrong = rules.HangmanMaxWrong
		v.HintUsed = h.HintUsed
		v.Hint = h.Hint
		v.Step = h.WordIndex + 1
		v.Steps = len(p.Words)
	}
	return v
}
