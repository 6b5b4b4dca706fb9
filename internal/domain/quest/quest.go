package quest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lifelens-island/internal/domain/island"
)

type Kind string

const (
	KindRiddle   Kind = "multiple_choice_riddle"
	KindDecision Kind = "binary_decision"
	KindChain    Kind = "chained_riddles"
	KindHangman  Kind = "hangman_word_chain"
)

type Source string

const (
	SourceLandmark  Source = "landmark"
	SourceGenerated Source = "generated"
)

var ErrInvalidQuest = errors.New("invalid quest")

type Reward struct {
	Currency int            `json:"currency"`
	Cells    []island.Coord `json:"cells,omitempty"`
	Items    []string       `json:"items,omitempty"`
}

// Payload is the kind-specific body of a quest. Exactly one concrete type exists per Kind.
type Payload interface {
	Kind() Kind
	Bonus() int
}

type Riddle struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

func (r Riddle) Correct(value string) bool {
	return value == r.Answer
}

type RiddlePayload struct {
	Riddle
	BonusCurrency int `json:"bonus_currency,omitempty"`
}

func (RiddlePayload) Kind() Kind { return KindRiddle }
func (p RiddlePayload) Bonus() int { return p.BonusCurrency }

type Choice struct {
	Text     string `json:"text" yaml:"text"`
	Correct  bool   `json:"is_correct" yaml:"is_correct"`
	Feedback string `json:"feedback" yaml:"feedback"`
}

type DecisionPayload struct {
	Scenario      string    `json:"scenario"`
	Choices       [2]Choice `json:"choices"`
	BonusCurrency int       `json:"bonus_currency,omitempty"`
}

func (DecisionPayload) Kind() Kind { return KindDecision }
func (p DecisionPayload) Bonus() int { return p.BonusCurrency }

// Choice looks a submitted option up by index ("0"/"1") or by its exact text.
func (p DecisionPayload) Choice(value string) (Choice, bool) {
	switch value {
	case "0":
		return p.Choices[0], true
	case "1":
		return p.Choices[1], true
	}
	for _, c := range p.Choices {
		if c.Text == value {
			return c, true
		}
	}
	return Choice{}, false
}

type ChainPayload struct {
	Riddles       []Riddle `json:"riddles"`
	BonusCurrency int      `json:"bonus_currency,omitempty"`
}

func (ChainPayload) Kind() Kind { return KindChain }
func (p ChainPayload) Bonus() int { return p.BonusCurrency }

type HangmanWord struct {
	Word string `json:"word"`
	Clue string `json:"clue,omitempty"`
}

type HangmanPayload struct {
	Words         []HangmanWord `json:"words"`
	BonusCurrency int           `json:"bonus_currency,omitempty"`
}

func (HangmanPayload) Kind() Kind { return KindHangman }
func (p HangmanPayload) Bonus() int { return p.BonusCurrency }

type Quest struct {
	ID          string
	Source      Source
	Landmark    island.LandmarkKind
	Title       string
	Description string
	Reward      Reward
	Payload     Payload
	Completed   bool
	CreatedAt   island.Timestamp
	CompletedAt *island.Timestamp
}

func (q Quest) Kind() Kind {
	if q.Payload == nil {
		return ""
	}
	return q.Payload.Kind()
}

// TotalReward is the currency credited on completion.
func (q Quest) TotalReward() int {
	total := q.Reward.Currency
	if q.Payload != nil {
		total += q.Payload.Bonus()
	}
	return total
}

func (q Quest) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: id required", ErrInvalidQuest)
	}
	switch p := q.Payload.(type) {
	case RiddlePayload:
		return validateRiddle(p.Riddle)
	case DecisionPayload:
		if strings.TrimSpace(p.Scenario) == "" {
			return fmt.Errorf("%w: scenario required", ErrInvalidQuest)
		}
		for i, c := range p.Choices {
			if strings.TrimSpace(c.Text) == "" {
				return fmt.Errorf("%w: choice %d has no text", ErrInvalidQuest, i)
			}
		}
		if p.Choices[0].Correct == p.Choices[1].Correct {
			return fmt.Errorf("%w: exactly one choice must be correct", ErrInvalidQuest)
		}
	case ChainPayload:
		if len(p.Riddles) == 0 {
			return fmt.Errorf("%w: chain has no riddles", ErrInvalidQuest)
		}
		for _, r := range p.Riddles {
			if err := validateRiddle(r); err != nil {
				return err
			}
		}
	case HangmanPayload:
		if len(p.Words) == 0 {
			return fmt.Errorf("%w: no hangman words", ErrInvalidQuest)
		}
		for _, w := range p.Words {
			if len(Letters(w.Word)) == 0 {
				return fmt.Errorf("%w: hangman word %q has no letters", ErrInvalidQuest, w.Word)
			}
		}
	case nil:
		return fmt.Errorf("%w: payload required", ErrInvalidQuest)
	default:
		return fmt.Errorf("%w: unknown payload %T", ErrInvalidQuest, p)
	}
	return nil
}

func validateRiddle(r Riddle) error {
	if strings.TrimSpace(r.Question) == "" || r.Answer == "" {
		return fmt.Errorf("%w: riddle needs a question and an answer", ErrInvalidQuest)
	}
	if len(r.Options) == 0 {
		return nil
	}
	for _, o := range r.Options {
		if o == r.Answer {
			return nil
		}
	}
	return fmt.Errorf("%w: answer %q is not among the options", ErrInvalidQuest, r.Answer)
}

type questJSON struct {
	ID          string              `json:"id"`
	Kind        Kind                `json:"kind"`
	Source      Source              `json:"source"`
	Landmark    island.LandmarkKind `json:"landmark,omitempty"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Reward      Reward              `json:"reward"`
	Payload     json.RawMessage     `json:"payload"`
	Completed   bool                `json:"is_completed"`
	CreatedAt   island.Timestamp    `json:"created_at"`
	CompletedAt *island.Timestamp   `json:"completed_at,omitempty"`
}

func (q Quest) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(q.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", q.Kind(), err)
	}
	return json.Marshal(questJSON{
		ID:          q.ID,
		Kind:        q.Kind(),
		Source:      q.Source,
		Landmark:    q.Landmark,
		Title:       q.Title,
		Description: q.Description,
		Reward:      q.Reward,
		Payload:     payload,
		Completed:   q.Completed,
		CreatedAt:   q.CreatedAt,
		CompletedAt: q.CompletedAt,
	})
}

func (q *Quest) UnmarshalJSON(b []byte) error {
	var raw questJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var (
		payload Payload
		err     error
	)
	switch raw.Kind {
	case KindRiddle:
		var p RiddlePayload
		err = json.Unmarshal(raw.Payload, &p)
		payload = p
	case KindDecision:
		var p DecisionPayload
		err = json.Unmarshal(raw.Payload, &p)
		payload = p
	case KindChain:
		var p ChainPayload
		err = json.Unmarshal(raw.Payload, &p)
		payload = p
	case KindHangman:
		var p HangmanPayload
		err = json.Unmarshal(raw.Payload, &p)
		payload = p
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidQuest, raw.Kind)
	}
	if err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", raw.Kind, err)
	}
	*q = Quest{
		ID:          raw.ID,
		Source:      raw.Source,
		Landmark:    raw.Landmark,
		Title:       raw.Title,
		Description: raw.Description,
		Reward:      raw.Reward,
		Payload:     payload,
		Completed:   raw.Completed,
		CreatedAt:   raw.CreatedAt,
		CompletedAt: raw.CompletedAt,
	}
	return nil
}
