package content

import (
	"context"

	"github.com/rs/zerolog"
)

// FallbackProvider tries the primary provider and serves from the secondary
// when the primary fails.
type FallbackProvider struct {
	logger    zerolog.Logger
	primary   Provider
	secondary Provider
}

func NewFallbackProvider(logger zerolog.Logger, primary, secondary Provider) *FallbackProvider {
	return &FallbackProvider{logger: logger, primary: primary, secondary: secondary}
}

func (f *FallbackProvider) GenerateRiddle(ctx context.Context, exclude []string) (Riddle, error) {
	r, err := f.primary.GenerateRiddle(ctx, exclude)
	if err == nil || ctx.Err() != nil {
		return r, err
	}
	f.logger.Warn().Err(err).Msg("primary riddle provider failed, using fallback")
	return f.secondary.GenerateRiddle(ctx, exclude)
}

func (f *FallbackProvider) GenerateDecisionScenario(ctx context.Context, exclude []string) (Decision, error) {
	d, err := f.primary.GenerateDecisionScenario(ctx, exclude)
	if err == nil || ctx.Err() != nil {
		return d, err
	}
	f.logger.Warn().Err(err).Msg("primary decision provider failed, using fallback")
	return f.secondary.GenerateDecisionScenario(ctx, exclude)
}

func (f *FallbackProvider) GenerateHint(ctx context.Context, word string) (string, error) {
	h, err := f.primary.GenerateHint(ctx, word)
	if err == nil || ctx.Err() != nil {
		return h, err
	}
	f.logger.Warn().Err(err).Msg("primary hint provider failed, using fallback")
	return f.secondary.GenerateHint(ctx, word)
}
