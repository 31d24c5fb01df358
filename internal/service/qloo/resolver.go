package qloo

import (
	"context"
	stderrors "errors"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/kapu/culturesphere-go/internal/constants"
	"github.com/kapu/culturesphere-go/pkg/errors"
	"go.uber.org/zap"
)

type searchResponse struct {
	Results any `json:"results"`
}

// first returns the leading result when it is an object. Later entries are
// never inspected.
func (r searchResponse) first() (map[string]any, bool) {
	results, ok := r.Results.([]any)
	if !ok || len(results) == 0 {
		return nil, false
	}
	record, ok := results[0].(map[string]any)
	return record, ok
}

// EntityResolver maps free text to a Qloo entity id via the search endpoint.
type EntityResolver struct {
	requester Requester
	logger    *zap.Logger
}

func NewEntityResolver(requester Requester, logger *zap.Logger) *EntityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityResolver{
		requester: requester,
		logger:    logger,
	}
}

// Resolve returns the best-matching entity id. Every failure (transport, HTTP
// status, decode, empty result) is logged and reported as ok=false.
func (r *EntityResolver) Resolve(ctx context.Context, query, searchType, apiKey string) (string, bool) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("types", searchType)
	params.Set("take", strconv.Itoa(constants.QlooAPIConfig.SearchTake))

	r.logger.Info("Attempting Qloo entity search",
		zap.String("query", query),
		zap.String("type", searchType),
	)

	body, err := r.requester.Get(ctx, constants.QlooAPIConfig.SearchPath, params, apiKey)
	if err != nil {
		r.logRequestError(err, query)
		return "", false
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		r.logger.Error("Failed to decode Qloo search response",
			zap.Error(err),
			zap.String("query", query),
			zap.Int("body_length", len(body)),
		)
		return "", false
	}

	first, found := resp.first()
	if !found {
		r.logger.Info("No Qloo entity found", zap.String("query", query))
		return "", false
	}

	entityID := firstNonEmpty(first, entityIDExtractors)
	if entityID == "" {
		r.logger.Info("Qloo search result carried no entity id", zap.String("query", query))
		return "", false
	}

	name := firstNonEmpty(first, entityNameExtractors)
	if name == "" {
		name = query
	}

	r.logger.Info("Found Qloo entity",
		zap.String("entity_id", entityID),
		zap.String("name", name),
	)

	return entityID, true
}

func (r *EntityResolver) logRequestError(err error, query string) {
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) && !apiErr.IsTransport() {
		r.logger.Error("HTTP error calling Qloo search API",
			zap.Int("status", apiErr.StatusCode),
			zap.String("query", query),
			zap.Any("context", apiErr.Context),
		)
		return
	}

	r.logger.Error("Network error calling Qloo search API",
		zap.Error(err),
		zap.String("query", query),
	)
}
