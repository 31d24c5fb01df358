package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/culturesphere-go/internal/domain"
	"github.com/kapu/culturesphere-go/internal/prompt"
	"github.com/kapu/culturesphere-go/internal/service/ai"
	"github.com/kapu/culturesphere-go/internal/service/qloo"
	"github.com/kapu/culturesphere-go/internal/service/taste"
)

type stubTastes struct {
	calls int
}

func (s *stubTastes) GetUserTastes(context.Context, string, string, string) domain.TasteResult {
	s.calls++
	var trail domain.StatusTrail
	trail.Add(domain.StageConfig, "Qloo API key not configured.")
	return trail.Result(nil)
}

type stubRecommender struct{ text string }

func (s stubRecommender) Recommend(context.Context, string, string, domain.TasteResult) string {
	return s.text
}

type fakeGenerator struct {
	prompts []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, p string, _ ai.ModelPreset, _ *ai.GenerateOptions) (string, *ai.GenerateMetadata, error) {
	f.prompts = append(f.prompts, p)
	return "Your personalized narrative.", &ai.GenerateMetadata{Provider: "fake"}, nil
}

func newTestRouter(h *Handler) http.Handler {
	return NewRouter(RouterConfig{FrontendURL: "http://localhost:5173"}, h, zap.NewNop())
}

func post(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRecommendationsRejectsMissingFields(t *testing.T) {
	tastes := &stubTastes{}
	router := newTestRouter(NewHandler(tastes, stubRecommender{text: "x"}, "key", zap.NewNop()))

	for _, body := range []string{
		`{"domain":"music"}`,
		`{"userInput":"jazz"}`,
		`{"userInput":"   ","domain":"music"}`,
		`not json`,
		``,
	} {
		rec := post(t, router, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Missing required fields (userInput, domain)"}`, rec.Body.String(), body)
	}
	assert.Zero(t, tastes.calls)
}

func TestRecommendationsReturnsText(t *testing.T) {
	tastes := &stubTastes{}
	router := newTestRouter(NewHandler(tastes, stubRecommender{text: "hello"}, "", zap.NewNop()))

	rec := post(t, router, `{"userInput":"jazz","domain":"music"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"recommendations":"hello"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, 1, tastes.calls)
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(NewHandler(&stubTastes{}, stubRecommender{}, "", zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestHealth(t *testing.T) {
	h := NewHandler(&stubTastes{}, stubRecommender{}, "", zap.NewNop())
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	router := newTestRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","timestamp":"2026-01-02T03:04:05Z"}`, rec.Body.String())
}

func TestCORSPreflightAllowsFrontend(t *testing.T) {
	router := newTestRouter(NewHandler(&stubTastes{}, stubRecommender{}, "", zap.NewNop()))

	req := httptest.NewRequest(http.MethodOptions, "/api/recommendations", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRecommendationsEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "qloo-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			_, _ = w.Write([]byte(`{"results":[{"entity_id":"ARTIST-1","name":"Miles Davis"}]}`))
		case "/v2/insights":
			_, _ = w.Write([]byte(`{"results":{"entities":[{"name":"John Coltrane","entity_id":"E1","subtype":"urn:entity:artist"}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	logger := zap.NewNop()
	profiles, err := domain.LoadDefaultProfiles()
	require.NoError(t, err)

	client := qloo.NewClientWithHTTP(upstream.URL, upstream.Client(), logger)
	orchestrator := taste.NewOrchestrator(profiles,
		qloo.NewEntityResolver(client, logger),
		qloo.NewInsightFetcher(client, logger),
		logger)
	gen := &fakeGenerator{}
	recommender := ai.NewRecommender(gen, taste.NewContextBuilder(), prompt.NewPromptBuilder(), logger)
	router := newTestRouter(NewHandler(orchestrator, recommender, "qloo-key", logger))

	rec := post(t, router, `{"userInput":"Kind of Blue","domain":"music"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Your personalized narrative.", resp.Recommendations)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "here are some specific recommendations: John Coltrane.")
	assert.Contains(t, gen.prompts[0], `User Input: "Kind of Blue"`)
}
