package game

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrIllegalPlacement         = errors.New("illegal placement")
	ErrGenerationQuotaExceeded  = errors.New("daily quest generation limit reached")
	ErrGenerationCooldownActive = errors.New("quest generation is cooling down")
	ErrContentProvider          = errors.New("quest content provider failed")
	ErrAnswerTimeout            = errors.New("time's up")
	ErrHangmanExhausted         = errors.New("out of guesses")

	ErrUnknownPiece       = errors.New("unknown piece type")
	ErrQuestNotFound      = errors.New("quest not found")
	ErrQuestCompleted     = errors.New("quest already completed")
	ErrNoSession          = errors.New("no open quest session")
	ErrReadingPhase       = errors.New("answers are locked while reading")
	ErrSessionClosing     = errors.New("quest session is closing")
	ErrInvalidGuess       = errors.New("guess must be a single letter")
	ErrInvalidAnswer      = errors.New("invalid answer")
	ErrHintUsed           = errors.New("hint already used for this word")
	ErrHintUnavailable    = errors.New("hints are only available for word quests")
	ErrGenerationInFlight = errors.New("a quest is already being generated")
	ErrStaleResult        = errors.New("quest screen changed before content arrived")
)

// CooldownError carries the time left before generation is allowed again.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: %s remaining", ErrGenerationCooldownActive, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Unwrap() error {
	return ErrGenerationCooldownActive
}
