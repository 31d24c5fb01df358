package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/kapu/culturesphere-go/internal/constants"
	"github.com/kapu/culturesphere-go/internal/metrics"
	"github.com/kapu/culturesphere-go/internal/util"
	apperrors "github.com/kapu/culturesphere-go/pkg/errors"
)

// ErrCircuitOpen is returned while the generation circuit is open.
var ErrCircuitOpen = errors.New("generation service temporarily unavailable")

var (
	statusCodeRegex = regexp.MustCompile(`\b(5\d{2})\b`)
	geminiCodeRegex = regexp.MustCompile(`"code":\s*(\d{3})`)
	leadingCodeRe   = regexp.MustCompile(`^(\d{3})\s`)
)

// ModelManager routes prompts to a primary provider with an optional fallback
// and trips a circuit breaker on upstream service failures.
type ModelManager struct {
	primary        TextProvider
	fallback       TextProvider
	logger         *zap.Logger
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	GeminiAPIKey       string
	OpenAIAPIKey       string
	DefaultGeminiModel string
	DefaultOpenAIModel string
	EnableFallback     bool
}

// NewModelManager returns nil when no provider key is configured.
func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	defaultGemini := cfg.DefaultGeminiModel
	if defaultGemini == "" {
		defaultGemini = constants.GenerationConfig.DefaultGeminiModel
	}

	defaultOpenAI := cfg.DefaultOpenAIModel
	if defaultOpenAI == "" {
		defaultOpenAI = constants.GenerationConfig.DefaultOpenAIModel
	}

	gemini, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, defaultGemini, logger)
	if err != nil {
		return nil, apperrors.NewServiceError("failed to initialize Gemini", "gemini", "init", err)
	}
	openaiProvider := NewOpenAIProvider(cfg.OpenAIAPIKey, defaultOpenAI, logger)

	var primary, fallback TextProvider
	switch {
	case gemini != nil:
		primary = gemini
		if cfg.EnableFallback && openaiProvider != nil {
			fallback = openaiProvider
			logger.Info("OpenAI fallback enabled", zap.String("model", defaultOpenAI))
		} else {
			logger.Info("OpenAI fallback disabled")
		}
	case openaiProvider != nil:
		primary = openaiProvider
		logger.Info("Gemini key not set, using OpenAI as primary", zap.String("model", defaultOpenAI))
	default:
		logger.Warn("No generation provider configured, recommendations will use the fallback template")
		return nil, nil
	}

	return newModelManager(primary, fallback, logger), nil
}

func newModelManager(primary, fallback TextProvider, logger *zap.Logger) *ModelManager {
	mm := &ModelManager{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
	mm.circuitBreaker = util.NewCircuitBreaker(util.CircuitBreakerConfig{
		Name:                "generation",
		FailureThreshold:    constants.CircuitBreakerConfig.FailureThreshold,
		ResetTimeout:        constants.CircuitBreakerConfig.ResetTimeout,
		HealthCheckInterval: constants.CircuitBreakerConfig.HealthCheckInterval,
		HealthCheckTimeout:  constants.CircuitBreakerConfig.HealthCheckTimeout,
	}, mm.healthCheckPing, logger)
	return mm
}

// GenerateText runs the prompt against the primary provider, then the
// fallback if one is configured.
func (mm *ModelManager) GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.Status()
		fields := []zap.Field{
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
		}
		if status.NextRetryTime != nil {
			fields = append(fields, zap.Time("next_retry", *status.NextRetryTime))
		}
		mm.logger.Error("Generation unavailable (circuit OPEN)", fields...)
		return "", nil, ErrCircuitOpen
	}

	primaryResult, primaryErr := mm.invokeProvider(ctx, mm.primary, prompt, preset, opts)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return primaryResult.Text, &GenerateMetadata{
			Provider: mm.primary.Name(),
			Model:    primaryResult.Model,
		}, nil
	}

	if mm.fallback == nil {
		mm.recordFailure(primaryErr)
		return "", nil, apperrors.NewServiceError("generation failed", mm.primary.Name(), "generate", primaryErr)
	}

	mm.logger.Warn("Primary provider failed, trying fallback",
		zap.String("primary", mm.primary.Name()),
		zap.Error(primaryErr),
	)

	fallbackResult, fallbackErr := mm.invokeProvider(ctx, mm.fallback, prompt, preset, opts)
	if fallbackErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return fallbackResult.Text, &GenerateMetadata{
			Provider:     mm.fallback.Name(),
			Model:        fallbackResult.Model,
			UsedFallback: true,
		}, nil
	}

	mm.recordFailure(primaryErr)
	mm.recordFailure(fallbackErr)

	return "", nil, apperrors.NewServiceError("generation failed", mm.fallback.Name(), "generate",
		errors.Join(primaryErr, fallbackErr))
}

func (mm *ModelManager) invokeProvider(ctx context.Context, provider TextProvider, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	if provider == nil {
		return ProviderResult{}, fmt.Errorf("model provider is not configured")
	}

	start := time.Now()
	result, err := provider.Generate(ctx, prompt, preset, opts)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordGeneration(provider.Name(), outcome, time.Since(start))
	return result, err
}

func (mm *ModelManager) recordFailure(err error) {
	if !isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}

	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) healthCheckPing(ctx context.Context) bool {
	mm.logger.Info("Health Check: Testing AI services...")

	var primaryOK, fallbackOK atomic.Bool
	var wg conc.WaitGroup
	wg.Go(func() {
		primaryOK.Store(mm.primary != nil && mm.primary.Ping(ctx))
	})
	if mm.fallback != nil {
		wg.Go(func() {
			fallbackOK.Store(mm.fallback.Ping(ctx))
		})
	}
	wg.Wait()

	healthy := primaryOK.Load() || fallbackOK.Load()
	mm.logger.Info("Health Check: Result",
		zap.Bool("primary", primaryOK.Load()),
		zap.Bool("fallback", fallbackOK.Load()),
		zap.Bool("healthy", healthy),
	)
	return healthy
}

func (mm *ModelManager) CircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.Status()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}

// statusCode extracts an upstream HTTP status from a provider error, or 0.
func statusCode(err error) int {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}

	msg := err.Error()
	if matches := geminiCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
			return code
		}
	}
	if matches := leadingCodeRe.FindStringSubmatch(msg); len(matches) > 1 {
		if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
			return code
		}
	}
	return 0
}

func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if isRateLimitError(err) {
		return true
	}

	if code := statusCode(err); code != 0 {
		return code >= 500 && code < 600
	}

	msg := err.Error()
	return strings.Contains(msg, "timeout") || statusCodeRegex.MatchString(msg)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if statusCode(err) == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota")
}
