package qloo

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/kapu/culturesphere-go/internal/constants"
	"github.com/kapu/culturesphere-go/internal/domain"
	"github.com/kapu/culturesphere-go/internal/util"
	"github.com/kapu/culturesphere-go/pkg/errors"
	"go.uber.org/zap"
)

type insightsResponse struct {
	Results any `json:"results"`
}

// entities returns the object records under results.entities. Anything else
// (missing, empty, wrong shape) yields no records.
func (r insightsResponse) entities() []map[string]any {
	results, _ := r.Results.(map[string]any)
	raw, _ := results["entities"].([]any)

	records := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if record, ok := entry.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records
}

func insightItem(record map[string]any) domain.RecommendationItem {
	return domain.RecommendationItem{
		Name: firstNonEmpty(record, entityNameExtractors),
		ID:   firstNonEmpty(record, entityIDExtractors),
		Type: firstNonEmpty(record, entityTypeExtractors),
	}
}

// InsightFetcher retrieves taste-graph neighbours of a seed entity.
type InsightFetcher struct {
	requester Requester
	logger    *zap.Logger
}

func NewInsightFetcher(requester Requester, logger *zap.Logger) *InsightFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightFetcher{
		requester: requester,
		logger:    logger,
	}
}

// FetchInsights never returns an error: failures come back as an empty list and
// a note describing what went wrong, ready to be appended to the status trail.
func (f *InsightFetcher) FetchInsights(ctx context.Context, entityID, filterType, apiKey string) ([]domain.RecommendationItem, string) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(constants.QlooAPIConfig.InsightsLimit))
	params.Set("signal.interests.entities", entityID)
	params.Set("filter.type", filterType)

	f.logger.Info("Requesting Qloo insights",
		zap.String("entity_id", entityID),
		zap.String("filter_type", filterType),
	)

	body, err := f.requester.Get(ctx, constants.QlooAPIConfig.InsightsPath, params, apiKey)
	if err != nil {
		return []domain.RecommendationItem{}, f.describeRequestError(err)
	}

	var resp insightsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		f.logger.Error("Failed to decode Qloo insights response",
			zap.Error(err),
			zap.Int("body_length", len(body)),
		)
		return []domain.RecommendationItem{}, "Qloo /insights API returned unreadable response."
	}

	records := resp.entities()
	if len(records) == 0 {
		f.logger.Info("Qloo insights returned no entities", zap.String("entity_id", entityID))
		return []domain.RecommendationItem{}, "Qloo /insights API call successful, but no specific results found for the entity's insights."
	}

	items := make([]domain.RecommendationItem, 0, len(records))
	for _, record := range records {
		items = append(items, insightItem(record))
	}

	f.logger.Info("Qloo insights received", zap.Int("count", len(items)))
	return items, fmt.Sprintf("Qloo provided %d specific recommendations.", len(items))
}

func (f *InsightFetcher) describeRequestError(err error) string {
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) && !apiErr.IsTransport() {
		details := util.TruncateString(strings.TrimSpace(apiErr.Body), constants.QlooAPIConfig.ErrorBodyPreview)
		f.logger.Error("HTTP error calling Qloo insights API",
			zap.Int("status", apiErr.StatusCode),
			zap.String("body", details),
		)
		return fmt.Sprintf("Qloo /insights API Error: Status %d. Details: %s", apiErr.StatusCode, details)
	}

	cause := err
	if apiErr != nil && apiErr.Cause != nil {
		cause = apiErr.Cause
	}
	f.logger.Error("Network error calling Qloo insights API", zap.Error(cause))
	return fmt.Sprintf("Qloo /insights API Network Error: %v", cause)
}
