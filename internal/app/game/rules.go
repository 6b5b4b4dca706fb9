package game

import "time"

// Rules holds the balancing constants of the island game.
type Rules struct {
	ReadingSeconds        int
	AnsweringSeconds      int
	Tick                  time.Duration
	DecisionFeedbackDelay time.Duration

	DailyGenerationLimit int
	CooldownThreshold    int
	CooldownDuration     time.Duration

	HangmanMaxWrong int
	HangmanPenalty  int

	ConversionRate   int
	BonusRevealCount int

	GeneratedRiddleReward   int
	GeneratedDecisionReward int
	GeneratedRevealCells    int
}

func DefaultRules() Rules {
	return Rules{
		ReadingSeconds:          15,
		AnsweringSeconds:        15,
		Tick:                    time.Second,
		DecisionFeedbackDelay:   3 * time.Second,
		DailyGenerationLimit:    8,
		CooldownThreshold:       5,
		CooldownDuration:        3 * time.Minute,
		HangmanMaxWrong:         6,
		HangmanPenalty:          50,
		ConversionRate:          2,
		BonusRevealCount:        2,
		GeneratedRiddleReward:   30,
		GeneratedDecisionReward: 20,
		GeneratedRevealCells:    1,
	}
}
