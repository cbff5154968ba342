package core

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestBusinessModelStageRunsWithoutGather(t *testing.T) {
	stage := newBusinessModelStage(&stubInference{
		raw: json.RawMessage(`{"ideas": [{"idea_name": "Returns Triage Copilot", "feasibility_score": 8}], "recommended_idea": "Returns Triage Copilot", "confidence_score": 8.5}`),
	}, testFallbacks())
	if stage.Gather != nil {
		t.Fatalf("expected generator stage to have no gather step")
	}

	delta, err := stage.Run(context.Background(), NewPipelineState(testInput()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delta.CurrentStep != StepBusinessModelComplete {
		t.Fatalf("expected step %q, got %q", StepBusinessModelComplete, delta.CurrentStep)
	}
	if got, want := strings.Join(delta.Tools, ","), "stub_llm"; got != want {
		t.Fatalf("expected only the inference tool, got %q", got)
	}
	out := delta.Record.BusinessModelGenerator
	if out == nil || out.RecommendedIdea != "Returns Triage Copilot" {
		t.Fatalf("expected decoded idea slot, got %+v", out)
	}
}

func TestBusinessModelComposeEmbedsResearch(t *testing.T) {
	st := NewPipelineState(testInput())
	st.ResearchOutput.NicheOpportunity = &NicheOpportunityOutput{
		Niches: []NicheOpportunity{{NicheName: "E-commerce Returns Automation"}},
	}
	st.ResearchOutput.PainPointDiscovery = &PainPointDiscoveryOutput{
		PainPoints: []PainPoint{{ProblemDescription: "Returns processing is slow"}},
	}

	prompt := businessModelCompose(st, nil)
	for _, want := range []string{
		"E-commerce Returns Automation",
		"Returns processing is slow",
		"- Personas: None",
		"- Market trends: None",
		"IMPORTANT RULE:",
		"Recommend ONE idea as the best validated opportunity",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBusinessModelFallbackShape(t *testing.T) {
	rec := businessModelFallback(testFallbacks())(NewPipelineState(testInput()), NewEvidence())

	out := rec.BusinessModelGenerator
	if out == nil {
		t.Fatalf("expected idea slot to be filled")
	}
	if len(out.Ideas) != 1 {
		t.Fatalf("expected the single canned idea, got %d", len(out.Ideas))
	}
	idea := out.Ideas[0]
	if idea.IdeaName != "Agent-powered Compliance Monitor" {
		t.Fatalf("unexpected idea name: %q", idea.IdeaName)
	}
	if out.RecommendedIdea != idea.IdeaName {
		t.Fatalf("expected recommendation to name the idea, got %q", out.RecommendedIdea)
	}
	if idea.FeasibilityScore != 7.5 {
		t.Fatalf("unexpected feasibility score: %v", idea.FeasibilityScore)
	}
	if out.ConfidenceScore != 6.5 {
		t.Fatalf("expected configured synthesis confidence, got %v", out.ConfidenceScore)
	}
}
