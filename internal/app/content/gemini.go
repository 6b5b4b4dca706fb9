package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrEmptyResponse = errors.New("model returned no content")

// TextModel is the part of *genai.GenerativeModel the provider needs.
type TextModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type GeminiProvider struct {
	model TextModel
}

func NewGeminiProvider(model TextModel) *GeminiProvider {
	return &GeminiProvider{model: model}
}

// NewGeminiClient opens a Gemini client. The caller closes it on shutdown.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*genai.Client, *genai.GenerativeModel, error) {
	if apiKey == "" {
		return nil, nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	return client, model, nil
}

func (g *GeminiProvider) GenerateRiddle(ctx context.Context, exclude []string) (Riddle, error) {
	var r Riddle
	if err := g.generateJSON(ctx, riddlePrompt(exclude), &r); err != nil {
		return Riddle{}, err
	}
	if err := r.Validate(); err != nil {
		return Riddle{}, err
	}
	if excluded(exclude, r.Title) {
		return Riddle{}, fmt.Errorf("%w: title %q was already used", ErrMalformed, r.Title)
	}
	return r, nil
}

func (g *GeminiProvider) GenerateDecisionScenario(ctx context.Context, exclude []string) (Decision, error) {
	var d Decision
	if err := g.generateJSON(ctx, decisionPrompt(exclude), &d); err != nil {
		return Decision{}, err
	}
	if err := d.Validate(); err != nil {
		return Decision{}, err
	}
	if excluded(exclude, d.Title) {
		return Decision{}, fmt.Errorf("%w: title %q was already used", ErrMalformed, d.Title)
	}
	return d, nil
}

func (g *GeminiProvider) GenerateHint(ctx context.Context, word string) (string, error) {
	var out struct {
		Hint string `json:"hint"`
	}
	if err := g.generateJSON(ctx, hintPrompt(word), &out); err != nil {
		return "", err
	}
	hint := strings.TrimSpace(out.Hint)
	if hint == "" {
		return "", fmt.Errorf("%w: empty hint", ErrMalformed)
	}
	if strings.Contains(strings.ToUpper(hint), strings.ToUpper(word)) {
		return "", fmt.Errorf("%w: hint gives the word away", ErrMalformed)
	}
	return hint, nil
}

func (g *GeminiProvider) generateJSON(ctx context.Context, prompt string, v any) error {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}
	text, err := firstText(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// cleanJSON strips a markdown code fence the model sometimes wraps its answer in.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
