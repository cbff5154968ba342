package signals

import (
	"sort"
	"strconv"
	"strings"
)

// TrendSummary is the parsed view of a formatted trends payload.
type TrendSummary struct {
	TrendDirection  string   `json:"trend_direction"`
	AverageInterest float64  `json:"average_interest"`
	RisingQueries   []string `json:"rising_queries"`
}

// ParseTrendPayload scans the text block produced by the trends provider.
// Direction is "growing" when the percent-change figure is positive,
// "declining" when it parses negative, "stable" when absent or unparsable.
func ParseTrendPayload(raw string) TrendSummary {
	summary := TrendSummary{TrendDirection: "stable"}

	if idx := strings.Index(raw, "%"); idx >= 0 {
		fields := strings.Fields(raw[:idx])
		if len(fields) > 0 {
			if change, err := strconv.ParseFloat(fields[len(fields)-1], 64); err == nil {
				if change > 0 {
					summary.TrendDirection = "growing"
				} else {
					summary.TrendDirection = "declining"
				}
			}
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if i := strings.Index(line, "Average Value:"); i >= 0 {
			if v, err := strconv.ParseFloat(strings.TrimSpace(line[i+len("Average Value:"):]), 64); err == nil {
				summary.AverageInterest = v
			}
		}
		if i := strings.Index(line, "Rising Related Queries:"); i >= 0 {
			for _, q := range strings.Split(line[i+len("Rising Related Queries:"):], ",") {
				q = strings.TrimSpace(q)
				if q == "" || q == "none" {
					continue
				}
				summary.RisingQueries = append(summary.RisingQueries, q)
				if len(summary.RisingQueries) == 5 {
					break
				}
			}
		}
	}
	return summary
}

// PainPointHint is a cheap, non-inference reading of a reddit payload,
// used by fallbacks when the model is unavailable.
type PainPointHint struct {
	Source      string `json:"source"`
	Query       string `json:"query"`
	Description string `json:"description"`
	Urgency     int    `json:"urgency"`
}

// PainPointHints derives one hint per query that returned substantive
// reddit results. Queries are walked in sorted order so output is
// deterministic.
func PainPointHints(results map[string]string) []PainPointHint {
	queries := make([]string, 0, len(results))
	for q := range results {
		queries = append(queries, q)
	}
	sort.Strings(queries)

	hints := make([]PainPointHint, 0, len(results))
	for _, q := range queries {
		text := strings.TrimSpace(results[q])
		if text == "" || strings.HasPrefix(text, "No posts found") {
			continue
		}
		desc := text
		if len(desc) > 200 {
			desc = desc[:200] + "..."
		}
		hints = append(hints, PainPointHint{
			Source:      "reddit",
			Query:       q,
			Description: desc,
			Urgency:     5,
		})
	}
	return hints
}

// ResearchQuality scores gathered evidence on a 0-10 scale: base 5.0,
// +2.0 for substantive trend text, +2.0 for any reddit insight, +1.0
// when rising related queries were present.
func ResearchQuality(trendText string, redditInsights int) float64 {
	quality := 5.0
	if len(trendText) > 100 {
		quality += 2.0
	}
	if redditInsights > 0 {
		quality += 2.0
	}
	if strings.Contains(trendText, "Rising Related Queries") {
		quality += 1.0
	}
	if quality > 10.0 {
		quality = 10.0
	}
	return quality
}
