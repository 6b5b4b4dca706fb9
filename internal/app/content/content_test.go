package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelens-island/internal/domain/quest"
)

func TestLoadPool_ShippedFile(t *testing.T) {
	pool, err := LoadPool("../../../data/quests/pool.yaml")
	require.NoError(t, err)
	assert.Len(t, pool.Riddles, 6)
	assert.Len(t, pool.Decisions, 4)
	for _, word := range []string{"ANCHOR", "COMPASS", "SAVINGS", "BUDGET", "TREASURE"} {
		hint, ok := pool.Hints[word]
		require.True(t, ok, "no hint for %s", word)
		assert.NotContains(t, strings.ToUpper(hint), word)
	}
}

func TestLoadPool_RejectsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	body := `riddles:
  - title: Broken
    question: Which?
    options: ["a", "b", "c"]
    answer: d
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	_, err := LoadPool(path)
	require.ErrorIs(t, err, ErrMalformed)

	_, err = LoadPool(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func testPool() Pool {
	return Pool{
		Riddles: []Riddle{
			{Title: "One", Question: "q1", Options: []string{"a", "b", "c"}, Answer: "a"},
			{Title: "Two", Question: "q2", Options: []string{"a", "b", "c"}, Answer: "b"},
		},
		Decisions: []Decision{{
			Title:    "Only",
			Scenario: "s",
			Choices:  [2]quest.Choice{{Text: "x", Correct: true}, {Text: "y"}},
		}},
		Hints: map[string]string{"anchor": "Heavy and hooked"},
	}
}

func TestPoolProvider_HonoursExclusions(t *testing.T) {
	p := NewPoolProvider(testPool(), 9)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		r, err := p.GenerateRiddle(ctx, []string{" one "})
		require.NoError(t, err)
		assert.Equal(t, "Two", r.Title)
	}
	_, err := p.GenerateRiddle(ctx, []string{"One", "TWO"})
	require.ErrorIs(t, err, ErrPoolExhausted)

	d, err := p.GenerateDecisionScenario(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Only", d.Title)
	_, err = p.GenerateDecisionScenario(ctx, []string{"only"})
	require.ErrorIs(t, err, ErrPoolExhausted)
}

func TestPoolProvider_Hints(t *testing.T) {
	p := NewPoolProvider(testPool(), 9)
	ctx := context.Background()

	hint, err := p.GenerateHint(ctx, "ANCHOR")
	require.NoError(t, err)
	assert.Equal(t, "Heavy and hooked", hint)

	hint, err = p.GenerateHint(ctx, "budget")
	require.NoError(t, err)
	assert.Equal(t, `It has 6 letters and starts with "B".`, hint)

	_, err = p.GenerateHint(ctx, "  ")
	require.ErrorIs(t, err, ErrMalformed)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.GenerateHint(cancelled, "ANCHOR")
	require.ErrorIs(t, err, context.Canceled)
}

type stubModel struct {
	text    string
	err     error
	prompts []string
}

func (m *stubModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	for _, p := range parts {
		if t, ok := p.(genai.Text); ok {
			m.prompts = append(m.prompts, string(t))
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.text == "" {
		return &genai.GenerateContentResponse{}, nil
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.text)}},
	}}}, nil
}

func TestGeminiProvider_Riddle(t *testing.T) {
	model := &stubModel{text: "```json\n{\"title\":\"Coin Keeper\",\"question\":\"What saves?\",\"options\":[\"A bank\",\"A hole\",\"A gull\"],\"answer\":\"A bank\"}\n```"}
	g := NewGeminiProvider(model)

	r, err := g.GenerateRiddle(context.Background(), []string{"Old Title"})
	require.NoError(t, err)
	assert.Equal(t, "Coin Keeper", r.Title)
	assert.Equal(t, "A bank", r.Answer)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Old Title")

	_, err = g.GenerateRiddle(context.Background(), []string{"coin keeper"})
	require.ErrorIs(t, err, ErrMalformed, "repeated titles are rejected")
}

func TestGeminiProvider_Decision(t *testing.T) {
	model := &stubModel{text: `{"title":"Fork in the Road","scenario":"Spend or save?","choices":[{"text":"Save","is_correct":true,"feedback":"Nice"},{"text":"Spend","is_correct":false,"feedback":"Oops"}]}`}
	d, err := NewGeminiProvider(model).GenerateDecisionScenario(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, d.Choices[0].Correct)
	assert.Equal(t, "Oops", d.Choices[1].Feedback)

	model.text = `{"title":"Both Right","scenario":"s","choices":[{"text":"a","is_correct":true},{"text":"b","is_correct":true}]}`
	_, err = NewGeminiProvider(model).GenerateDecisionScenario(context.Background(), nil)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestGeminiProvider_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := NewGeminiProvider(&stubModel{}).GenerateRiddle(ctx, nil)
	require.ErrorIs(t, err, ErrEmptyResponse)

	_, err = NewGeminiProvider(&stubModel{text: "not json"}).GenerateRiddle(ctx, nil)
	require.ErrorIs(t, err, ErrMalformed)

	_, err = NewGeminiProvider(&stubModel{text: `{"title":"T","question":"q","options":["a","b"],"answer":"a"}`}).GenerateRiddle(ctx, nil)
	require.ErrorIs(t, err, ErrMalformed)

	upstream := errors.New("quota exceeded")
	_, err = NewGeminiProvider(&stubModel{err: upstream}).GenerateHint(ctx, "ANCHOR")
	require.ErrorIs(t, err, upstream)

	_, err = NewGeminiProvider(&stubModel{text: `{"hint":"It is an anchor!"}`}).GenerateHint(ctx, "ANCHOR")
	require.ErrorIs(t, err, ErrMalformed, "hints must not reveal the word")

	hint, err := NewGeminiProvider(&stubModel{text: `{"hint":" Ships drop it to stay put. "}`}).GenerateHint(ctx, "ANCHOR")
	require.NoError(t, err)
	assert.Equal(t, "Ships drop it to stay put.", hint)
}

func TestFallbackProvider(t *testing.T) {
	ctx := context.Background()
	broken := NewGeminiProvider(&stubModel{err: errors.New("down")})
	f := NewFallbackProvider(zerolog.Nop(), broken, NewPoolProvider(testPool(), 1))

	r, err := f.GenerateRiddle(ctx, []string{"One"})
	require.NoError(t, err)
	assert.Equal(t, "Two", r.Title)

	hint, err := f.GenerateHint(ctx, "anchor")
	require.NoError(t, err)
	assert.Equal(t, "Heavy and hooked", hint)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewFallbackProvider(zerolog.Nop(), NewPoolProvider(testPool(), 1), NewPoolProvider(testPool(), 1)).GenerateDecisionScenario(cancelled, nil)
	require.ErrorIs(t, err, context.Canceled, "a cancelled request is not retried on the fallback")
}
