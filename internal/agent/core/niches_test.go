package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ideaforge/config"
	"ideaforge/tools/signals"
)

func TestNicheStageToolsTrackRegistry(t *testing.T) {
	base := signals.NewRegistry(config.SignalsConfig{Timeout: time.Second})
	stage := newNicheStage(base, &stubInference{}, testFallbacks())
	if got, want := strings.Join(stage.Tools, ","), "reddit_search,google_trends"; got != want {
		t.Fatalf("expected tools %q, got %q", want, got)
	}

	full := signals.NewRegistry(config.SignalsConfig{
		OpenAlex:    config.OpenAlexConfig{Enabled: true},
		ProductHunt: config.ProductHuntConfig{Token: "test-token"},
		Timeout:     time.Second,
	})
	stage = newNicheStage(full, &stubInference{}, testFallbacks())
	if got, want := strings.Join(stage.Tools, ","), "reddit_search,google_trends,openalex,producthunt"; got != want {
		t.Fatalf("expected tools %q, got %q", want, got)
	}
}

func TestTopPainDescriptions(t *testing.T) {
	if got := topPainDescriptions(nil, 4); got != nil {
		t.Fatalf("expected nil for missing slot, got %v", got)
	}

	discovery := &PainPointDiscoveryOutput{PainPoints: []PainPoint{
		{ProblemDescription: "Inventory tracking is manual"},
		{ProblemDescription: "   "},
		{ProblemDescription: "Returns processing is slow"},
		{ProblemDescription: "Supplier emails pile up"},
	}}
	got := topPainDescriptions(discovery, 2)
	if len(got) != 2 || got[0] != "Inventory tracking is manual" || got[1] != "Returns processing is slow" {
		t.Fatalf("expected first two non-blank descriptions, got %v", got)
	}
}

func TestNicheGatherQueriesTrendsPerPainPoint(t *testing.T) {
	redditSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"children": [{"data": {"title": "Needs a better tool", "selftext": "", "subreddit": "ecommerce", "score": 3, "num_comments": 1}}]}}`))
	}))
	defer redditSrv.Close()
	trendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer trendSrv.Close()

	reg := signals.NewRegistry(config.SignalsConfig{
		Reddit:       redditConfig(redditSrv.URL),
		GoogleTrends: config.TrendsConfig{APIKey: "test-key", BaseURL: trendSrv.URL, Geo: "US", Timeframe: "now 7-d"},
		Timeout:      5 * time.Second,
	})

	st := NewPipelineState(testInput())
	st.ResearchOutput.PainPointDiscovery = &PainPointDiscoveryOutput{PainPoints: []PainPoint{
		{ProblemDescription: "Inventory tracking is manual"},
		{ProblemDescription: "Returns processing is slow"},
	}}

	ev, err := nicheGather(reg)(context.Background(), st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(ev.Keys(redditPrefix)); got != 5 {
		t.Fatalf("expected 5 reddit payloads, got %d", got)
	}
	// rising lookup plus one per pain description
	if len(ev.Failures) != 3 {
		t.Fatalf("expected 3 trend failures, got %v", ev.Failures)
	}
	var sawPain bool
	for _, failure := range ev.Failures {
		if strings.Contains(failure, "Inventory tracking is manual") {
			sawPain = true
		}
	}
	if !sawPain {
		t.Fatalf("expected a failure for the pain-point lookup, got %v", ev.Failures)
	}
}

func TestNicheFallbackShape(t *testing.T) {
	rec := nicheFallback(testFallbacks())(NewPipelineState(testInput()), NewEvidence())

	out := rec.NicheOpportunity
	if out == nil {
		t.Fatalf("expected niche slot to be filled")
	}
	if len(out.Niches) != 1 {
		t.Fatalf("expected the single canned niche, got %d", len(out.Niches))
	}
	niche := out.Niches[0]
	if niche.NicheName != "E-commerce Automation Tools" {
		t.Fatalf("unexpected niche name: %q", niche.NicheName)
	}
	if niche.TrendScore != 7.5 {
		t.Fatalf("unexpected trend score: %v", niche.TrendScore)
	}
	if got := out.Prioritization["top_opportunity"]; got != niche.NicheName {
		t.Fatalf("expected prioritization to name the niche, got %q", got)
	}
	if out.ConfidenceScore != 6.5 {
		t.Fatalf("expected configured synthesis confidence, got %v", out.ConfidenceScore)
	}
}

func TestNicheComposeEmbedsPriorSlots(t *testing.T) {
	st := NewPipelineState(testInput())
	st.ResearchOutput.UserPersonaAnalysis = &UserPersonaAnalysisOutput{
		PrimaryPersonas: []UserPersona{{PersonaName: "Store Operator"}},
	}
	st.ResearchOutput.PainPointDiscovery = &PainPointDiscoveryOutput{
		PainPoints: []PainPoint{{ProblemDescription: "Inventory tracking is manual"}},
	}
	ev := NewEvidence()
	ev.Hints[hintRisingQueries] = []string{"checkout automation", "inventory sync"}

	prompt := nicheCompose(st, ev)
	for _, want := range []string{
		"Analyze the E-commerce market",
		"Store Operator",
		"Inventory tracking is manual",
		"Rising queries observed: checkout automation, inventory sync",
		"RECENT PRODUCT LAUNCHES:",
		"Identify at least 3 niche opportunities.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
