package taste

import (
	"context"
	"testing"

	"github.com/kapu/culturesphere-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type resolveCall struct {
	query      string
	searchType string
	apiKey     string
}

type fakeResolver struct {
	id    string
	ok    bool
	calls []resolveCall
}

func (f *fakeResolver) Resolve(_ context.Context, query, searchType, apiKey string) (string, bool) {
	f.calls = append(f.calls, resolveCall{query: query, searchType: searchType, apiKey: apiKey})
	return f.id, f.ok
}

type fetchCall struct {
	entityID   string
	filterType string
}

type fakeFetcher struct {
	items []domain.RecommendationItem
	note  string
	calls []fetchCall
}

func (f *fakeFetcher) FetchInsights(_ context.Context, entityID, filterType, _ string) ([]domain.RecommendationItem, string) {
	f.calls = append(f.calls, fetchCall{entityID: entityID, filterType: filterType})
	return f.items, f.note
}

func testProfiles() *domain.ProfileTable {
	return domain.NewProfileTable(map[string]domain.DomainProfile{
		"music": {
			SearchType:        "urn:entity:artist",
			InsightFilterType: "urn:entity:artist",
			SampleEntityID:    "SAMPLE-MUSIC",
		},
		"podcasts": {
			SearchType:        "urn:entity:podcast",
			InsightFilterType: "urn:entity:podcast",
		},
		"nofilter": {
			SearchType:     "urn:entity:thing",
			SampleEntityID: "SAMPLE-THING",
		},
	})
}

func TestGetUserTastesMissingAPIKey(t *testing.T) {
	resolver := &fakeResolver{id: "X", ok: true}
	fetcher := &fakeFetcher{}
	o := NewOrchestrator(testProfiles(), resolver, fetcher, zap.NewNop())

	result := o.GetUserTastes(context.Background(), "jazz", "music", "")

	assert.Equal(t, "Qloo API key not configured.", result.StatusMessage())
	assert.Empty(t, result.Recommendations)
	assert.Empty(t, resolver.calls)
	assert.Empty(t, fetcher.calls)
}

func TestGetUserTastesUnknownDomain(t *testing.T) {
	for _, domainKey := range []string{"astrology", "", "MUSIC-ish"} {
		resolver := &fakeResolver{}
		fetcher := &fakeFetcher{}
		o := NewOrchestrator(testProfiles(), resolver, fetcher, zap.NewNop())

		result := o.GetUserTastes(context.Background(), "anything", domainKey, "key")

		assert.NotEmpty(t, result.StatusMessage(), domainKey)
		assert.Empty(t, result.Recommendations, domainKey)
		assert.Empty(t, resolver.calls, domainKey)
		assert.Empty(t, fetcher.calls, domainKey)
		assert.True(t, result.HasStage(domain.StageSearchSkipped))
		assert.True(t, result.HasStage(domain.StageNoEntity))
	}
}

func TestGetUserTastesResolvedEntityFetchesOnce(t *testing.T) {
	resolver := &fakeResolver{id: "ARTIST-1", ok: true}
	fetcher := &fakeFetcher{
		items: []domain.RecommendationItem{{Name: "Alpha", ID: "A", Type: "artist"}},
		note:  "Qloo provided 1 specific recommendations.",
	}
	o := NewOrchestrator(testProfiles(), resolver, fetcher, zap.NewNop())

	result := o.GetUserTastes(context.Background(), "  jazz ", "Music", "key")

	require.Len(t, resolver.calls, 1)
	assert.Equal(t, resolveCall{query: "jazz", searchType: "urn:entity:artist", apiKey: "key"}, resolver.calls[0])

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, fetchCall{entityID: "ARTIST-1", filterType: "urn:entity:artist"}, fetcher.calls[0])

	assert.Equal(t, fetcher.items, result.Recommendations)
	assert.Equal(t,
		"Qloo found a matching entity for 'jazz'. Getting insights...\nQloo provided 1 specific recommendations.",
		result.StatusMessage())
	assert.False(t, result.HasStage(domain.StageFallback))
}

func TestGetUserTastesFallsBackToSample(t *testing.T) {
	resolver := &fakeResolver{}
	fetcher := &fakeFetcher{note: "Qloo /insights API call successful, but no specific results found for the entity's insights."}
	o := NewOrchestrator(testProfiles(), resolver, fetcher, zap.NewNop())

	result := o.GetUserTastes(context.Background(), "obscure", "music", "key")

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, "SAMPLE-MUSIC", fetcher.calls[0].entityID)
	assert.Empty(t, result.Recommendations)

	require.Len(t, result.Stages, 3)
	assert.Equal(t, domain.StageSearch, result.Stages[0].Stage)
	assert.Contains(t, result.Stages[0].Text, "could not find a specific entity for 'obscure' in the 'music' domain")
	assert.Equal(t, domain.StageFallback, result.Stages[1].Stage)
	assert.Equal(t, domain.StageInsights, result.Stages[2].Stage)
}

func TestGetUserTastesNoEntityNoSampleSkipsFetch(t *testing.T) {
	resolver := &fakeResolver{}
	fetcher := &fakeFetcher{}
	o := NewOrchestrator(testProfiles(), resolver, fetcher, zap.NewNop())

	result := o.GetUserTastes(context.Background(), "true crime", "podcasts", "key")

	assert.Len(t, resolver.calls, 1)
	assert.Len(t, fetcher.calls, 0)
	assert.Empty(t, result.Recommendations)
	assert.Contains(t, result.StatusMessage(), "No valid entity ID (dynamic or sample) found for insights.")
}

func TestGetUserTastesEmptyInputUsesSample(t *testing.T) {
	resolver := &fakeResolver{id: "never", ok: true}
	fetcher := &fakeFetcher{note: "ok"}
	o := NewOrchestrator(testProfiles(), resolver, fetcher, zap.NewNop())

	result := o.GetUserTastes(context.Background(), "   ", "music", "key")

	assert.Empty(t, resolver.calls)
	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, "SAMPLE-MUSIC", fetcher.calls[0].entityID)
	assert.True(t, result.HasStage(domain.StageSearchSkipped))
}

func TestGetUserTastesMissingFilterSkipsFetch(t *testing.T) {
	resolver := &fakeResolver{}
	fetcher := &fakeFetcher{}
	o := NewOrchestrator(testProfiles(), resolver, fetcher, zap.NewNop())

	result := o.GetUserTastes(context.Background(), "chair", "nofilter", "key")

	assert.Empty(t, fetcher.calls)
	assert.True(t, result.HasStage(domain.StageInsightsSkipped))
	assert.Empty(t, result.Recommendations)
}
