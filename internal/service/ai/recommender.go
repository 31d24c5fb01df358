package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/culturesphere-go/internal/constants"
	"github.com/kapu/culturesphere-go/internal/domain"
	"github.com/kapu/culturesphere-go/internal/prompt"
)

const (
	msgGenerationFailed = "Failed to generate AI recommendations. Please try again later."
	msgEmptyGeneration  = "Unable to generate a recommendation at this time. Please try again."
)

// Generator is the text generation backend. *ModelManager satisfies it.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error)
}

type ContextBuilder interface {
	BuildContext(result domain.TasteResult) string
	PlainProse(s string) string
}

// Recommender turns taste results into the narrative returned to the user.
type Recommender struct {
	generator Generator
	contexts  ContextBuilder
	prompts   *prompt.PromptBuilder
	logger    *zap.Logger
}

// NewRecommender accepts a nil generator, in which case every call returns
// the fallback response template.
func NewRecommender(generator Generator, contexts ContextBuilder, prompts *prompt.PromptBuilder, logger *zap.Logger) *Recommender {
	if prompts == nil {
		prompts = prompt.DefaultPromptBuilder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{
		generator: generator,
		contexts:  contexts,
		prompts:   prompts,
		logger:    logger,
	}
}

func (r *Recommender) HasGenerator() bool {
	return r.generator != nil
}

func (r *Recommender) Recommend(ctx context.Context, userInput, domainKey string, tastes domain.TasteResult) string {
	if r.generator == nil {
		return r.prompts.FallbackResponse(prompt.FallbackResponseData{
			UserInput:  userInput,
			Domain:     domainKey,
			QlooStatus: r.contexts.PlainProse(tastes.StatusMessage()),
		})
	}

	text := r.prompts.RecommendationPrompt(prompt.RecommendationData{
		UserInput:    userInput,
		Domain:       domainKey,
		TasteContext: r.contexts.BuildContext(tastes),
	})

	ctx, cancel := context.WithTimeout(ctx, constants.GenerationConfig.Timeout)
	defer cancel()

	output, meta, err := r.generator.GenerateText(ctx, text, PresetCreative, nil)
	if err != nil {
		r.logger.Error("Error generating recommendations", zap.String("domain", domainKey), zap.Error(err))
		return msgGenerationFailed
	}

	if strings.TrimSpace(output) == "" {
		r.logger.Warn("Generation returned empty text", zap.String("domain", domainKey))
		return msgEmptyGeneration
	}

	if meta != nil {
		r.logger.Info("Recommendation generated",
			zap.String("provider", meta.Provider),
			zap.String("model", meta.Model),
			zap.Bool("used_fallback", meta.UsedFallback),
		)
	}
	return output
}
