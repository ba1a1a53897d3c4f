package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var thinkTagRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkTags removes reasoning tags some models put before the answer.
func StripThinkTags(text string) string {
	return strings.TrimSpace(thinkTagRegex.ReplaceAllString(text, ""))
}

// ParseInsights accepts a JSON array, a single object or either of them
// wrapped in prose or code fences. Entries with an unknown action or no
// symbol are dropped.
func ParseInsights(text string) ([]Insight, error) {
	raw, err := decode(text)
	if err != nil {
		return nil, err
	}

	var out []Insight
	for _, in := range raw {
		in.Action = strings.ToUpper(strings.TrimSpace(in.Action))
		in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
		if in.Symbol == "" {
			continue
		}
		switch in.Action {
		case ActionHold, ActionAdd, ActionTrim:
		default:
			continue
		}
		in.Confidence = min(max(in.Confidence, 0), 100)
		out = append(out, in)
	}
	return out, nil
}

func decode(text string) ([]Insight, error) {
	cleaned := StripThinkTags(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" || cleaned == "[]" {
		return nil, nil
	}

	candidates := []string{cleaned}
	for _, delim := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(cleaned, delim[0])
		end := strings.LastIndex(cleaned, delim[1])
		if start >= 0 && end > start {
			candidates = append(candidates, cleaned[start:end+1])
		}
	}

	for _, c := range candidates {
		if list, ok := unmarshalInsights(c); ok {
			return list, nil
		}
	}
	return nil, fmt.Errorf("failed to parse review as JSON: %.200s", cleaned)
}

func unmarshalInsights(s string) ([]Insight, bool) {
	var list []Insight
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return list, true
	}
	var one Insight
	if err := json.Unmarshal([]byte(s), &one); err == nil {
		return []Insight{one}, true
	}
	return nil, false
}
