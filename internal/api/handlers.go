package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/culturesphere-go/internal/constants"
	"github.com/kapu/culturesphere-go/internal/domain"
	"github.com/kapu/culturesphere-go/internal/util"
)

type TasteService interface {
	GetUserTastes(ctx context.Context, userInput, domainKey, apiKey string) domain.TasteResult
}

type RecommendationService interface {
	Recommend(ctx context.Context, userInput, domainKey string, tastes domain.TasteResult) string
}

type Handler struct {
	tastes      TasteService
	recommender RecommendationService
	qlooAPIKey  string
	logger      *zap.Logger
	now         func() time.Time
}

func NewHandler(tastes TasteService, recommender RecommendationService, qlooAPIKey string, logger *zap.Logger) *Handler {
	return &Handler{
		tastes:      tastes,
		recommender: recommender,
		qlooAPIKey:  qlooAPIKey,
		logger:      logger,
		now:         time.Now,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: h.now().Format(time.RFC3339),
	})
}

// Recommendations runs the taste pipeline then the generator. Upstream
// failures are folded into the response text, so only bad input yields a
// non-200 status.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	logger := LoggerFrom(r.Context(), h.logger)

	req, err := decodeRecommendationRequest(r)
	if err != nil {
		logger.Info("Rejected recommendation request", zap.Error(err))
		respondError(w, logger, http.StatusBadRequest, msgMissingFields)
		return
	}

	userInput := util.TruncateString(req.UserInput, constants.AIInputLimits.MaxQueryLength)

	logger.Info("Recommendation requested",
		zap.String("domain", req.Domain),
		zap.Int("input_length", len(userInput)),
	)

	tastes := h.tastes.GetUserTastes(r.Context(), userInput, req.Domain, h.qlooAPIKey)
	logger.Info("Qloo status", zap.String("status", tastes.StatusMessage()),
		zap.Int("recommendations", len(tastes.Recommendations)))

	text := h.recommender.Recommend(r.Context(), userInput, req.Domain, tastes)

	respondJSON(w, logger, http.StatusOK, RecommendationResponse{Recommendations: text})
}
