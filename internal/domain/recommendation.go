package domain

import "strings"

// RecommendationItem is one entity returned by the Qloo insights endpoint.
// Any field may be empty when the upstream payload omits it.
type RecommendationItem struct {
	Name string `json:"name,omitempty"`
	ID   string `json:"id,omitempty"`
	Type string `json:"type,omitempty"`
}

// Stage identifies which step of the taste pipeline produced a status line.
type Stage string

const (
	StageConfig          Stage = "config"
	StageSearch          Stage = "search"
	StageSearchSkipped   Stage = "search_skipped"
	StageFallback        Stage = "fallback"
	StageNoEntity        Stage = "no_entity"
	StageInsights        Stage = "insights"
	StageInsightsSkipped Stage = "insights_skipped"
)

// StageOutcome is one entry of the diagnostic trail.
type StageOutcome struct {
	Stage Stage
	Text  string
}

// TasteResult is the orchestrator output. Stages are kept in the order they
// were recorded; the narrative string is only produced by StatusMessage.
type TasteResult struct {
	Stages          []StageOutcome
	Recommendations []RecommendationItem
}

// StatusMessage renders the trail oldest first, one line per stage.
func (r TasteResult) StatusMessage() string {
	lines := make([]string, 0, len(r.Stages))
	for _, outcome := range r.Stages {
		if text := strings.TrimSpace(outcome.Text); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// HasStage reports whether the trail contains an entry for stage.
func (r TasteResult) HasStage(stage Stage) bool {
	for _, outcome := range r.Stages {
		if outcome.Stage == stage {
			return true
		}
	}
	return false
}

// RecommendationNames returns the non-empty item names in order.
func (r TasteResult) RecommendationNames() []string {
	names := make([]string, 0, len(r.Recommendations))
	for _, item := range r.Recommendations {
		if name := strings.TrimSpace(item.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// StatusTrail accumulates stage outcomes while a request moves through the pipeline.
type StatusTrail struct {
	stages []StageOutcome
}

func (t *StatusTrail) Add(stage Stage, text string) {
	t.stages = append(t.stages, StageOutcome{Stage: stage, Text: text})
}

// Result freezes the trail into a TasteResult.
func (t *StatusTrail) Result(recommendations []RecommendationItem) TasteResult {
	stages := make([]StageOutcome, len(t.stages))
	copy(stages, t.stages)
	if recommendations == nil {
		recommendations = []RecommendationItem{}
	}
	return TasteResult{
		Stages:          stages,
		Recommendations: recommendations,
	}
}
