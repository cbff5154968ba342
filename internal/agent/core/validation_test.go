package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ideaforge/config"
	"ideaforge/tools/signals"
)

func TestValidationStageRunMarksPhaseComplete(t *testing.T) {
	reg := signals.NewRegistry(config.SignalsConfig{Timeout: time.Second})
	client := &stubInference{raw: json.RawMessage(`{
		"research_summary": "Strong automation demand in returns handling.",
		"key_opportunities": ["Returns triage"],
		"research_quality_score": 8.2,
		"next_steps_recommendation": "Interview ten store operators."
	}`)}
	stage := newValidationStage(reg, client)

	delta, err := stage.Run(context.Background(), NewPipelineState(testInput()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delta.CurrentStep != StepValidationComplete {
		t.Fatalf("expected step %q, got %q", StepValidationComplete, delta.CurrentStep)
	}
	if !delta.Phase1Complete {
		t.Fatalf("expected terminal stage to mark the phase complete")
	}
	if delta.Record.ResearchSummary == "" || delta.Record.ResearchQualityScore == nil {
		t.Fatalf("expected synthesis fields, got %+v", delta.Record)
	}
	if delta.Record.MarketResearch != nil {
		t.Fatalf("validation must not touch earlier slots")
	}
}

func TestValidationGatherPrefersRecommendedIdea(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotQuery, _ = body["q"].(string)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic": [{"title": "Compliance SaaS roundup", "snippet": "Growing fast", "link": "https://example.com"}]}`))
	}))
	defer srv.Close()

	reg := signals.NewRegistry(config.SignalsConfig{
		Serper:  config.SerperConfig{APIKey: "test-key", BaseURL: srv.URL, MaxResults: 5},
		Timeout: 5 * time.Second,
	})

	st := NewPipelineState(testInput())
	st.ResearchOutput.BusinessModelGenerator = &BusinessModelOutput{RecommendedIdea: "Agent-powered Compliance Monitor"}

	ev, err := validationGather(reg)(context.Background(), st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "Agent-powered Compliance Monitor" {
		t.Fatalf("expected the recommended idea as query, got %q", gotQuery)
	}
	if keys := ev.Keys(webPrefix); len(keys) != 1 {
		t.Fatalf("expected one web payload, got %v", keys)
	}
}

func TestValidationGatherDefaultsToIndustryQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotQuery, _ = body["q"].(string)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic": []}`))
	}))
	defer srv.Close()

	reg := signals.NewRegistry(config.SignalsConfig{
		Serper:  config.SerperConfig{APIKey: "test-key", BaseURL: srv.URL, MaxResults: 5},
		Timeout: 5 * time.Second,
	})

	if _, err := validationGather(reg)(context.Background(), NewPipelineState(testInput())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "E-commerce automation market" {
		t.Fatalf("expected industry default query, got %q", gotQuery)
	}
}

func TestValidationDecodeWritesSynthesisOnly(t *testing.T) {
	raw := json.RawMessage(`{
		"research_summary": "Summary",
		"key_opportunities": ["One", "Two"],
		"research_quality_score": 7.5,
		"next_steps_recommendation": "Ship it"
	}`)
	rec, err := validationDecode(raw, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ResearchSummary != "Summary" || len(rec.KeyOpportunities) != 2 {
		t.Fatalf("unexpected synthesis fields: %+v", rec)
	}
	if rec.ResearchQualityScore == nil || *rec.ResearchQualityScore != 7.5 {
		t.Fatalf("expected quality pointer 7.5, got %v", rec.ResearchQualityScore)
	}
	if rec.MarketResearch != nil || rec.BusinessModelGenerator != nil {
		t.Fatalf("decode must not fill earlier slots: %+v", rec)
	}
}

func TestValidationFallbackSummarizesRecord(t *testing.T) {
	st := NewPipelineState(testInput())
	st.ResearchOutput = ResearchRecord{
		MarketResearch: &MarketResearchOutput{
			MarketTrends:          []MarketTrend{{TrendName: "T1"}, {TrendName: "T2"}},
			MarketSaturationLevel: "medium",
			GrowthOpportunities:   []string{"Checkout automation"},
			ConfidenceScore:       6.0,
		},
		PainPointDiscovery:  &PainPointDiscoveryOutput{PainPoints: []PainPoint{{}}, ConfidenceScore: 7.1},
		UserPersonaAnalysis: &UserPersonaAnalysisOutput{PrimaryPersonas: []UserPersona{{}}, ConfidenceScore: 5.5},
		NicheOpportunity: &NicheOpportunityOutput{
			Niches:          []NicheOpportunity{{NicheName: "Returns Automation"}},
			ConfidenceScore: 6.5,
		},
		BusinessModelGenerator: &BusinessModelOutput{Ideas: []BusinessIdea{{}}, ConfidenceScore: 6.2},
	}

	rec := validationFallback(st, NewEvidence())

	for _, want := range []string{
		"Research completed for E-commerce industry:",
		"- Found 2 market trends",
		"- Market saturation: medium",
		"- Identified 1 pain points",
		"- Profiled 1 primary personas",
		"- Scanned 1 niche opportunities",
		"- Generated 1 business ideas",
		"- Key opportunities in automation and AI integration",
	} {
		if !strings.Contains(rec.ResearchSummary, want) {
			t.Fatalf("summary missing %q:\n%s", want, rec.ResearchSummary)
		}
	}
	if rec.ResearchQualityScore == nil || *rec.ResearchQualityScore != 7.1 {
		t.Fatalf("expected best slot confidence 7.1, got %v", rec.ResearchQualityScore)
	}
	if got, want := strings.Join(rec.KeyOpportunities, ","), "Checkout automation,Returns Automation"; got != want {
		t.Fatalf("expected opportunities %q, got %q", want, got)
	}
	if rec.NextStepsRecommendation == "" {
		t.Fatalf("expected a next-step recommendation")
	}
}

func TestValidationFallbackWithEmptyRecord(t *testing.T) {
	rec := validationFallback(NewPipelineState(testInput()), NewEvidence())

	if rec.ResearchQualityScore == nil || *rec.ResearchQualityScore != signals.ResearchQuality("", 0) {
		t.Fatalf("expected bare signal-quality floor, got %v", rec.ResearchQualityScore)
	}
	if len(rec.KeyOpportunities) != 1 || !strings.Contains(rec.KeyOpportunities[0], "further research") {
		t.Fatalf("expected placeholder opportunity, got %v", rec.KeyOpportunities)
	}
}

func TestKeyOpportunitiesCapsAtFive(t *testing.T) {
	record := ResearchRecord{
		MarketResearch: &MarketResearchOutput{
			GrowthOpportunities: []string{"g1", "g2", "g3", "g4"},
		},
		NicheOpportunity: &NicheOpportunityOutput{
			Niches: []NicheOpportunity{{NicheName: "n1"}, {NicheName: "n2"}, {NicheName: "n3"}},
		},
	}
	got := keyOpportunities(record)
	if len(got) != 5 {
		t.Fatalf("expected cap at 5 opportunities, got %v", got)
	}
	if got[4] != "n1" {
		t.Fatalf("expected growth opportunities first, got %v", got)
	}
}
