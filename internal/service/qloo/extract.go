package qloo

import (
	"strconv"
	"strings"
)

// fieldExtractor pulls one candidate value out of a loosely-typed search result.
type fieldExtractor func(record map[string]any) string

// The search endpoint is not consistent about where it puts identifiers, so
// each field is read through an ordered list of extractors; first non-empty wins.
var (
	entityIDExtractors = []fieldExtractor{
		directField("entity_id"),
		directField("id"),
		nestedField("entity", "id"),
	}

	entityNameExtractors = []fieldExtractor{
		directField("name"),
		nestedField("entity", "name"),
	}

	entityTypeExtractors = []fieldExtractor{
		directField("subtype"),
		directField("type"),
	}
)

func firstNonEmpty(record map[string]any, extractors []fieldExtractor) string {
	if record == nil {
		return ""
	}
	for _, extract := range extractors {
		if value := extract(record); value != "" {
			return value
		}
	}
	return ""
}

func directField(key string) fieldExtractor {
	return func(record map[string]any) string {
		return stringValue(record[key])
	}
}

func nestedField(parent, key string) fieldExtractor {
	return func(record map[string]any) string {
		child, ok := record[parent].(map[string]any)
		if !ok {
			return ""
		}
		return stringValue(child[key])
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}
