package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lifelens-island/internal/domain/quest"
)

var ErrMalformed = errors.New("malformed quest content")

type Riddle struct {
	Title    string   `json:"title" yaml:"title"`
	Question string   `json:"question" yaml:"question"`
	Options  []string `json:"options" yaml:"options"`
	Answer   string   `json:"answer" yaml:"answer"`
}

func (r Riddle) Validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("%w: riddle needs a title and a question", ErrMalformed)
	}
	if len(r.Options) != 3 {
		return fmt.Errorf("%w: riddle needs exactly 3 options, got %d", ErrMalformed, len(r.Options))
	}
	for _, o := range r.Options {
		if o == r.Answer {
			return nil
		}
	}
	return fmt.Errorf("%w: answer %q is not one of the options", ErrMalformed, r.Answer)
}

type Decision struct {
	Title    string          `json:"title" yaml:"title"`
	Scenario string          `json:"scenario" yaml:"scenario"`
	Choices  [2]quest.Choice `json:"choices" yaml:"choices"`
}

func (d Decision) Validate() error {
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Scenario) == "" {
		return fmt.Errorf("%w: decision needs a title and a scenario", ErrMalformed)
	}
	if d.Choices[0].Correct == d.Choices[1].Correct {
		return fmt.Errorf("%w: exactly one choice must be correct", ErrMalformed)
	}
	return nil
}

// Provider generates quest content beyond the landmark catalog. Implementations
// must return an error rather than partial content.
type Provider interface {
	GenerateRiddle(ctx context.Context, exclude []string) (Riddle, error)
	GenerateDecisionScenario(ctx context.Context, exclude []string) (Decision, error)
	GenerateHint(ctx context.Context, word string) (string, error)
}

func excluded(exclude []string, title string) bool {
	for _, e := range exclude {
		if strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(title)) {
			return true
		}
	}
	return false
}
