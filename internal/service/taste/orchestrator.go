package taste

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/culturesphere-go/internal/domain"
	"github.com/kapu/culturesphere-go/internal/metrics"
	"go.uber.org/zap"
)

// EntityResolver finds a Qloo entity id for free text. ok=false is a normal miss.
type EntityResolver interface {
	Resolve(ctx context.Context, query, searchType, apiKey string) (string, bool)
}

// InsightFetcher returns recommendations for a seed entity plus a note for the status trail.
type InsightFetcher interface {
	FetchInsights(ctx context.Context, entityID, filterType, apiKey string) ([]domain.RecommendationItem, string)
}

// Orchestrator runs the resolve → fallback → fetch sequence for one request.
// It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	profiles *domain.ProfileTable
	resolver EntityResolver
	fetcher  InsightFetcher
	logger   *zap.Logger
}

func NewOrchestrator(profiles *domain.ProfileTable, resolver EntityResolver, fetcher InsightFetcher, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		profiles: profiles,
		resolver: resolver,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// GetUserTastes never fails: every problem is recorded in the returned trail.
func (o *Orchestrator) GetUserTastes(ctx context.Context, userInput, domainKey, apiKey string) domain.TasteResult {
	var trail domain.StatusTrail

	if strings.TrimSpace(apiKey) == "" {
		o.logger.Error("Qloo API key was not provided")
		trail.Add(domain.StageConfig, "Qloo API key not configured.")
		return trail.Result(nil)
	}

	profile := o.profiles.Lookup(domainKey)
	if profile.IsZero() {
		o.logger.Info("No domain profile configured", zap.String("domain", domainKey))
	}

	query := strings.TrimSpace(userInput)
	entityID := ""

	if profile.SearchType != "" && query != "" {
		if id, ok := o.resolver.Resolve(ctx, query, profile.SearchType, apiKey); ok {
			entityID = id
			metrics.TasteResolutions.WithLabelValues("found").Inc()
			trail.Add(domain.StageSearch, fmt.Sprintf("Qloo found a matching entity for '%s'. Getting insights...", query))
		} else {
			metrics.TasteResolutions.WithLabelValues("miss").Inc()
			trail.Add(domain.StageSearch, fmt.Sprintf(
				"Qloo could not find a specific entity for '%s' in the '%s' domain. Recommendations will be based on general AI knowledge.",
				query, domainKey))
		}
	} else {
		metrics.TasteResolutions.WithLabelValues("skipped").Inc()
		trail.Add(domain.StageSearchSkipped, fmt.Sprintf(
			"Qloo search not attempted for '%s' in '%s' domain (missing search type or query). Recommendations will be based on general AI knowledge.",
			query, domainKey))
	}

	if entityID == "" {
		if profile.SampleEntityID == "" {
			metrics.TasteResolutions.WithLabelValues("none").Inc()
			trail.Add(domain.StageNoEntity, "No valid entity ID (dynamic or sample) found for insights.")
			o.logger.Warn("No entity available for insights", zap.String("domain", domainKey))
			return trail.Result(nil)
		}

		entityID = profile.SampleEntityID
		metrics.TasteResolutions.WithLabelValues("sample").Inc()
		trail.Add(domain.StageFallback, "Falling back to sample ID for insights demo.")
		o.logger.Warn("No specific entity found, using sample ID",
			zap.String("domain", domainKey),
			zap.String("entity_id", entityID),
		)
	}

	if profile.InsightFilterType == "" {
		trail.Add(domain.StageInsightsSkipped, "Qloo insights not attempted due to missing target entity ID or filter type.")
		o.logger.Warn("Insights skipped", zap.String("domain", domainKey))
		return trail.Result(nil)
	}

	items, note := o.fetcher.FetchInsights(ctx, entityID, profile.InsightFilterType, apiKey)
	trail.Add(domain.StageInsights, note)
	metrics.TasteRecommendations.Observe(float64(len(items)))

	return trail.Result(items)
}
