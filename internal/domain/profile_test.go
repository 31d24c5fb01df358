package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultProfilesCoversEveryDomain(t *testing.T) {
	table, err := LoadDefaultProfiles()
	require.NoError(t, err)

	assert.Equal(t, []string{"books", "dining", "fashion", "general", "learning", "movies", "music", "travel", "wellness"}, table.Domains())

	music := table.Lookup("music")
	assert.Equal(t, "urn:entity:artist", music.SearchType)
	assert.Equal(t, "urn:entity:artist", music.InsightFilterType)
	assert.Equal(t, "4BBEF799-A0C4-4110-AB01-39216993C312", music.SampleEntityID)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	table, err := LoadDefaultProfiles()
	require.NoError(t, err)

	assert.Equal(t, table.Lookup("travel"), table.Lookup("  Travel "))
}

func TestLookupUnknownDomainReturnsZeroProfile(t *testing.T) {
	table, err := LoadDefaultProfiles()
	require.NoError(t, err)

	profile := table.Lookup("astrology")
	assert.True(t, profile.IsZero())

	var nilTable *ProfileTable
	assert.True(t, nilTable.Lookup("music").IsZero())
}

func TestLoadProfilesAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	content := `
Podcasts:
  search_type: urn:entity:podcast
  insight_filter_type: urn:entity:podcast
music:
  search_type: urn:entity:artist
  insight_filter_type: urn:entity:album
  sample_entity_id: OVERRIDE
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadProfiles(path)
	require.NoError(t, err)

	podcasts := table.Lookup("podcasts")
	assert.Equal(t, "urn:entity:podcast", podcasts.SearchType)
	assert.Empty(t, podcasts.SampleEntityID)

	music := table.Lookup("music")
	assert.Equal(t, "urn:entity:album", music.InsightFilterType)
	assert.Equal(t, "OVERRIDE", music.SampleEntityID)

	assert.False(t, table.Lookup("books").IsZero(), "defaults must survive an override file")
}

func TestLoadProfilesMissingFile(t *testing.T) {
	_, err := LoadProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestTasteResultStatusMessageKeepsOrder(t *testing.T) {
	var trail StatusTrail
	trail.Add(StageSearch, "first")
	trail.Add(StageFallback, "  ")
	trail.Add(StageInsights, "second")

	result := trail.Result(nil)
	assert.Equal(t, "first\nsecond", result.StatusMessage())
	assert.NotNil(t, result.Recommendations)
	assert.Empty(t, result.Recommendations)
	assert.True(t, result.HasStage(StageFallback))
	assert.False(t, result.HasStage(StageNoEntity))
}

func TestRecommendationNamesSkipsBlank(t *testing.T) {
	result := TasteResult{Recommendations: []RecommendationItem{
		{Name: "Alpha"},
		{ID: "no-name"},
		{Name: " Beta "},
	}}
	assert.Equal(t, []string{"Alpha", "Beta"}, result.RecommendationNames())
}
