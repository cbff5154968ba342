package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"ideaforge/config"
)

const businessModelName = "business_model_generator"

// The generator stage has no gather step: it works entirely off the
// slots the previous stages accumulated.
func newBusinessModelStage(client InferenceClient, fb config.FallbacksConfig) Stage {
	return Stage{
		Name:         businessModelName,
		Schema:       BusinessModelSchema,
		SuccessStep:  StepBusinessModelComplete,
		FallbackStep: StepBusinessModelFallback,
		ErrorPrefix:  "Business model generator failed",
		Compose:      businessModelCompose,
		Decode:       businessModelDecode,
		Fallback:     businessModelFallback(fb),
		client:       client,
		logger:       stageLogger(businessModelName),
	}
}

func businessModelCompose(st PipelineState, _ *Evidence) string {
	record := st.ResearchOutput

	niches := "None"
	if record.NicheOpportunity != nil {
		niches = jsonBlock(record.NicheOpportunity.Niches)
	}
	painPoints := "None"
	if record.PainPointDiscovery != nil {
		painPoints = jsonBlock(record.PainPointDiscovery.PainPoints)
	}
	personas := "None"
	if record.UserPersonaAnalysis != nil {
		personas = jsonBlock(record.UserPersonaAnalysis.PrimaryPersonas)
	}
	trends := "None"
	if record.MarketResearch != nil {
		trends = jsonBlock(record.MarketResearch.MarketTrends)
	}

	var b strings.Builder
	b.WriteString("You are a business model generation agent specialized in creating LLM-powered SaaS solutions that leverage multi-agent workflows.\n\n")
	b.WriteString("Context from research:\n")
	fmt.Fprintf(&b, "- Niche opportunities: %s\n", niches)
	fmt.Fprintf(&b, "- Pain points: %s\n", painPoints)
	fmt.Fprintf(&b, "- Personas: %s\n", personas)
	fmt.Fprintf(&b, "- Market trends: %s\n\n", trends)
	b.WriteString("IMPORTANT RULE:\n")
	b.WriteString("- Only generate business ideas if they are clearly supported by evidence from the research above (personas, pain points, or trends).\n")
	b.WriteString("- If no strong evidence exists, respond with:\n")
	b.WriteString("\"No sufficiently validated opportunities identified from the current research. Recommend expanding research scope before generating ideas.\"\n\n")
	b.WriteString("For each validated idea, provide:\n")
	b.WriteString("1. Problem Statement - a specific, evidence-backed pain point in the niche.\n")
	b.WriteString("2. Evidence - quote or summarize the supporting research (persona insight, trend, or pain point).\n")
	b.WriteString("3. Why Agents/Workflows are Required - why this solution requires multi-agent systems, not just a chatbot.\n")
	b.WriteString("4. Workflow Design - example multi-agent architecture (agents, tools, interactions).\n")
	b.WriteString("5. Unique Value Proposition - why this solution is different and valuable.\n")
	b.WriteString("6. Target Persona - who pays for this and why.\n")
	b.WriteString("7. Monetization Strategy - SaaS model, API, enterprise, etc.\n")
	b.WriteString("8. Feasibility Score (0-10) - based on today's LLM/agent ecosystem.\n\n")
	b.WriteString("Finally:\n")
	b.WriteString("- Recommend ONE idea as the best validated opportunity, with clear justification.\n")
	b.WriteString("- Reject all generic chatbot-style ideas.\n")
	b.WriteString("- Only output grounded, niche, high-value SaaS opportunities.\n")
	return b.String()
}

func businessModelDecode(raw json.RawMessage, _ *Evidence) (ResearchRecord, error) {
	var out BusinessModelOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return ResearchRecord{}, err
	}
	return ResearchRecord{BusinessModelGenerator: &out}, nil
}

func businessModelFallback(fb config.FallbacksConfig) FallbackFunc {
	return func(PipelineState, *Evidence) ResearchRecord {
		idea := BusinessIdea{
			IdeaName:             "Agent-powered Compliance Monitor",
			Niche:                "B2B Transportation SaaS",
			Description:          "A system that uses multiple LLM agents to monitor regulations, contracts, and compliance updates across regions.",
			WorkflowDesign:       "One agent monitors government feeds, another parses contracts, and a third alerts operators with actionable summaries.",
			UniqueValueProp:      "Automates compliance tracking in highly regulated industries where manual monitoring is costly.",
			MonetizationStrategy: "Enterprise SaaS subscriptions.",
			TargetPersona:        "Operations managers in transportation companies.",
			FeasibilityScore:     7.5,
			SupportingEvidence:   []string{"trend: compliance automation", "pain_point: regulatory overhead"},
		}
		return ResearchRecord{BusinessModelGenerator: &BusinessModelOutput{
			Ideas:           []BusinessIdea{idea},
			RecommendedIdea: idea.IdeaName,
			ConfidenceScore: fb.SynthesisConfidence,
		}}
	}
}
