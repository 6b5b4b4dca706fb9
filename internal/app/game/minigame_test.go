package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelens-island/internal/domain/island"
	"lifelens-island/internal/domain/quest"
)

func landmark(t *testing.T, kind island.LandmarkKind) quest.Quest {
	t.Helper()
	q, ok := quest.LandmarkQuest(kind)
	require.True(t, ok)
	return q
}

func TestEvaluate_Riddle(t *testing.T) {
	q := landmark(t, island.LandmarkBuriedBay)
	prog := quest.NewProgress(q)

	out, err := Evaluate(q, prog, "Sand", DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, VerdictRetry, out.Verdict)
	assert.False(t, out.Correct)

	out, err = Evaluate(q, prog, "Doubloons", DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, VerdictComplete, out.Verdict)
	assert.True(t, out.Correct)
}

func TestEvaluate_Decision(t *testing.T) {
	q := landmark(t, island.LandmarkSkullRock)
	prog := quest.NewProgress(q)

	out, err := Evaluate(q, prog, "1", DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, VerdictComplete, out.Verdict)

	out, err = Evaluate(q, prog, "Hand over the food money", DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, VerdictCloseLater, out.Verdict)
	assert.Contains(t, out.Feedback, "oldest trick")

	_, err = Evaluate(q, prog, "2", DefaultRules())
	require.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestEvaluate_ChainAdvancesThenCompletes(t *testing.T) {
	q := landmark(t, island.LandmarkCave)
	prog := quest.NewProgress(q)
	rules := DefaultRules()

	out, err := Evaluate(q, prog, "A budget", rules)
	require.NoError(t, err)
	assert.Equal(t, VerdictRetry, out.Verdict, "answers are checked against the current riddle only")

	out, err = Evaluate(q, prog, "Interest", rules)
	require.NoError(t, err)
	assert.Equal(t, VerdictAdvance, out.Verdict)
	assert.Equal(t, 1, out.Progress.RiddleIndex)
	assert.Zero(t, prog.RiddleIndex)

	out, err = Evaluate(q, out.Progress, "A budget", rules)
	require.NoError(t, err)
	assert.Equal(t, VerdictAdvance, out.Verdict)

	out, err = Evaluate(q, out.Progress, "An emergency fund", rules)
	require.NoError(t, err)
	assert.Equal(t, VerdictComplete, out.Verdict)
}

func guess(t *testing.T, q quest.Quest, prog quest.Progress, letters string) Outcome {
	t.Helper()
	var out Outcome
	for _, r := range letters {
		var err error
		out, err = Evaluate(q, prog, string(r), DefaultRules())
		require.NoError(t, err)
		prog = out.Progress
	}
	return out
}

func TestEvaluate_HangmanRepeatIsNoOp(t *testing.T) {
	q := landmark(t, island.LandmarkShipwreck)
	prog := guess(t, q, quest.NewProgress(q), "z").Progress
	require.Equal(t, 1, prog.Hangman.WrongGuesses)

	out, err := Evaluate(q, prog, "Z", DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, VerdictRepeat, out.Verdict)
	assert.Equal(t, 1, out.Progress.Hangman.WrongGuesses)
	assert.Equal(t, []string{"Z"}, out.Progress.Hangman.Guessed)
}

func TestEvaluate_HangmanRejectsNonLetters(t *testing.T) {
	q := landmark(t, island.LandmarkShipwreck)
	for _, v := range []string{"", "ab", "7", "?"} {
		_, err := Evaluate(q, quest.NewProgress(q), v, DefaultRules())
		assert.ErrorIs(t, err, ErrInvalidGuess, "guess %q", v)
	}
}

func TestEvaluate_HangmanFailsOnSixthMiss(t *testing.T) {
	q := landmark(t, island.LandmarkShipwreck)
	prog := quest.NewProgress(q)

	out := guess(t, q, prog, "bdefg")
	assert.Equal(t, VerdictProgress, out.Verdict)
	assert.Equal(t, 5, out.Progress.Hangman.WrongGuesses)

	out, err := Evaluate(q, out.Progress, "i", DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, VerdictFail, out.Verdict)
	assert.Equal(t, "ANCHOR", out.Solution)
	assert.Empty(t, prog.Hangman.Guessed, "caller progress untouched")
}

func TestEvaluate_HangmanWordChain(t *testing.T) {
	q := landmark(t, island.LandmarkVolcano)
	prog := quest.NewProgress(q)

	out := guess(t, q, prog, "budgz")
	assert.Equal(t, VerdictProgress, out.Verdict)
	assert.Equal(t, "BUDG__", out.Progress.Hangman.Mask("BUDGET"))

	out = guess(t, q, out.Progress, "et")
	assert.Equal(t, VerdictAdvance, out.Verdict)
	assert.Equal(t, 1, out.Progress.Hangman.WordIndex)
	assert.Empty(t, out.Progress.Hangman.Guessed)
	assert.Zero(t, out.Progress.Hangman.WrongGuesses)

	out = guess(t, q, out.Progress, "treasu")
	assert.Equal(t, VerdictComplete, out.Verdict)
}
