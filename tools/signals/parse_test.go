package signals

import (
	"strings"
	"testing"
)

func TestParseTrendPayloadGrowing(t *testing.T) {
	raw := "Query: e-commerce automation\n" +
		"Average Value: 47.5\n" +
		"Percent Change: 12.0%\n" +
		"Rising Related Queries: ai checkout, product feeds, seo tools\n"

	got := ParseTrendPayload(raw)

	if got.TrendDirection != "growing" {
		t.Fatalf("expected direction %q, got %q", "growing", got.TrendDirection)
	}
	if got.AverageInterest != 47.5 {
		t.Fatalf("expected average 47.5, got %v", got.AverageInterest)
	}
	if len(got.RisingQueries) != 3 || got.RisingQueries[0] != "ai checkout" {
		t.Fatalf("expected 3 rising queries starting with %q, got %v", "ai checkout", got.RisingQueries)
	}
}

func TestParseTrendPayloadDeclining(t *testing.T) {
	got := ParseTrendPayload("Average Value: 3.0\nPercent Change: -8.5%\n")
	if got.TrendDirection != "declining" {
		t.Fatalf("expected direction %q, got %q", "declining", got.TrendDirection)
	}
}

func TestParseTrendPayloadStableWhenUnparsable(t *testing.T) {
	got := ParseTrendPayload("no numbers here")
	if got.TrendDirection != "stable" {
		t.Fatalf("expected direction %q, got %q", "stable", got.TrendDirection)
	}
	if got.AverageInterest != 0 {
		t.Fatalf("expected zero average, got %v", got.AverageInterest)
	}
}

func TestParseTrendPayloadCapsRisingQueries(t *testing.T) {
	raw := "Rising Related Queries: a, b, c, d, e, f, g\n"
	got := ParseTrendPayload(raw)
	if len(got.RisingQueries) != 5 {
		t.Fatalf("expected rising queries capped at 5, got %d", len(got.RisingQueries))
	}
}

func TestPainPointHints(t *testing.T) {
	long := strings.Repeat("x", 250)
	results := map[string]string{
		"b retail problems": long,
		"a manual work":     "short complaint thread",
		"c empty":           "",
		"d no data":         "No posts found for query: d no data",
	}

	hints := PainPointHints(results)

	if len(hints) != 2 {
		t.Fatalf("expected 2 hints, got %d", len(hints))
	}
	// sorted by query
	if got, want := hints[0].Query, "a manual work"; got != want {
		t.Fatalf("expected first hint query %q, got %q", want, got)
	}
	if hints[0].Urgency != 5 {
		t.Fatalf("expected default urgency 5, got %d", hints[0].Urgency)
	}
	if got, want := len(hints[1].Description), 203; got != want {
		t.Fatalf("expected truncated description of %d bytes, got %d", want, got)
	}
	if !strings.HasSuffix(hints[1].Description, "...") {
		t.Fatal("expected truncated description to end with ellipsis")
	}
}

func TestResearchQuality(t *testing.T) {
	if got, want := ResearchQuality("", 0), 5.0; got != want {
		t.Fatalf("expected base quality %v, got %v", want, got)
	}

	rich := strings.Repeat("t", 120) + " Rising Related Queries: a, b"
	if got, want := ResearchQuality(rich, 3), 10.0; got != want {
		t.Fatalf("expected capped quality %v, got %v", want, got)
	}

	if got, want := ResearchQuality("short", 2), 7.0; got != want {
		t.Fatalf("expected quality %v, got %v", want, got)
	}
}
