package taste

import (
	"fmt"
	"html"
	"strings"

	"github.com/kapu/culturesphere-go/internal/domain"
	"github.com/microcosm-cc/bluemonday"
)

// ContextBuilder turns a TasteResult into a prose paragraph for the generation prompt.
type ContextBuilder struct {
	policy *bluemonday.Policy
}

func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{policy: bluemonday.StrictPolicy()}
}

var (
	bracketReplacer = strings.NewReplacer(
		"<", "‹",
		">", "›",
	)

	proseReplacer = strings.NewReplacer(
		"<", "‹",
		">", "›",
		"`", "",
		"\"", "'",
		"\r", "",
	)
)

// PlainProse makes text safe to embed in a quoted prompt section without
// dropping any words. Angle brackets become ‹ › before sanitizing, so nothing
// reads as a tag; entities are decoded once and re-neutralized. Line breaks
// are kept.
func (b *ContextBuilder) PlainProse(s string) string {
	sanitized := html.UnescapeString(b.policy.Sanitize(bracketReplacer.Replace(s)))
	return strings.TrimSpace(proseReplacer.Replace(sanitized))
}

func (b *ContextBuilder) BuildContext(result domain.TasteResult) string {
	status := b.PlainProse(result.StatusMessage())

	if len(result.Recommendations) == 0 {
		return fmt.Sprintf("Qloo could not provide specific insights for this query. (Status: %s)", status)
	}

	names := make([]string, 0, len(result.Recommendations))
	for _, name := range result.RecommendationNames() {
		if clean := b.PlainProse(name); clean != "" {
			names = append(names, clean)
		}
	}

	if len(names) == 0 {
		return fmt.Sprintf("Qloo returned some results, but could not extract specific names. (Status: %s)", status)
	}

	return fmt.Sprintf("Based on Qloo's Taste AI, here are some specific recommendations: %s.", strings.Join(names, ", "))
}
