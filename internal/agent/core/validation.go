package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ideaforge/tools/signals"
	"ideaforge/utils"
)

const validationName = "business_model_validation"

// newValidationStage builds the terminal stage. It owns no slot of its
// own: it fills the record's synthesis fields and marks the phase
// complete whichever way inference went, because by this point every
// slot is populated (by model or by fallback) and the chain is done.
func newValidationStage(reg *signals.Registry, client InferenceClient) Stage {
	return Stage{
		Name:               validationName,
		Schema:             ValidationSchema,
		SuccessStep:        StepValidationComplete,
		FallbackStep:       StepValidationFailed,
		ErrorPrefix:        "Business model validation failed",
		Tools:              []string{signals.NameSerper},
		MarksPhaseComplete: true,
		Gather:             validationGather(reg),
		Compose:            validationCompose,
		Decode:             validationDecode,
		Fallback:           validationFallback,
		client:             client,
		logger:             stageLogger(validationName),
	}
}

func validationGather(reg *signals.Registry) GatherFunc {
	return func(ctx context.Context, st PipelineState) (*Evidence, error) {
		ev := NewEvidence()
		serper, err := reg.Get(signals.NameSerper)
		if err != nil {
			return ev, nil
		}
		query := st.UserInput.IndustryMarket + " automation market"
		if generated := st.ResearchOutput.BusinessModelGenerator; generated != nil && generated.RecommendedIdea != "" {
			query = generated.RecommendedIdea
		}
		payload, err := serper.Search(ctx, query, nil)
		if err != nil {
			ev.AddFailure(validationName, query, err)
			return ev, nil
		}
		ev.AddPayload(webPrefix+query, utils.Truncate(payload, payloadLimit))
		return ev, nil
	}
}

func validationCompose(st PipelineState, ev *Evidence) string {
	record := st.ResearchOutput

	marketResearch, painPoints, personas, niches, ideas := "absent", "absent", "absent", "absent", "absent"
	if record.MarketResearch != nil {
		marketResearch = jsonBlock(record.MarketResearch)
	}
	if record.PainPointDiscovery != nil {
		painPoints = jsonBlock(record.PainPointDiscovery)
	}
	if record.UserPersonaAnalysis != nil {
		personas = jsonBlock(record.UserPersonaAnalysis)
	}
	if record.NicheOpportunity != nil {
		niches = jsonBlock(record.NicheOpportunity)
	}
	if record.BusinessModelGenerator != nil {
		ideas = jsonBlock(record.BusinessModelGenerator)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are validating the completed research for the %s industry in %s.\n\n", st.UserInput.IndustryMarket, st.UserInput.CountryRegion)
	b.WriteString("RESEARCH RECORD:\n")
	fmt.Fprintf(&b, "Market research:\n%s\n\n", marketResearch)
	fmt.Fprintf(&b, "Pain points:\n%s\n\n", painPoints)
	fmt.Fprintf(&b, "Personas:\n%s\n\n", personas)
	fmt.Fprintf(&b, "Niches:\n%s\n\n", niches)
	fmt.Fprintf(&b, "Business ideas:\n%s\n\n", ideas)
	b.WriteString("WEB VALIDATION SIGNALS:\n")
	b.WriteString(ev.Section(webPrefix))
	b.WriteString("\n\nProduce:\n")
	b.WriteString("- research_summary: a concise summary of what the research found\n")
	b.WriteString("- key_opportunities: the strongest opportunities, best first\n")
	b.WriteString("- research_quality_score: a 0-10 judgment of the evidence quality\n")
	b.WriteString("- next_steps_recommendation: the single most useful next action\n")
	return b.String()
}

// validationDecode writes only the synthesis fields; the five slots
// stay whatever the earlier stages made them.
func validationDecode(raw json.RawMessage, _ *Evidence) (ResearchRecord, error) {
	var out ValidationOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return ResearchRecord{}, err
	}
	return ResearchRecord{
		ResearchSummary:         out.ResearchSummary,
		KeyOpportunities:        out.KeyOpportunities,
		ResearchQualityScore:    &out.ResearchQualityScore,
		NextStepsRecommendation: out.NextStepsRecommendation,
	}, nil
}

func validationFallback(st PipelineState, _ *Evidence) ResearchRecord {
	record := st.ResearchOutput
	industry := st.UserInput.IndustryMarket

	var b strings.Builder
	fmt.Fprintf(&b, "Research completed for %s industry:\n", industry)
	if record.MarketResearch != nil {
		fmt.Fprintf(&b, "- Found %d market trends\n", len(record.MarketResearch.MarketTrends))
		fmt.Fprintf(&b, "- Market saturation: %s\n", record.MarketResearch.MarketSaturationLevel)
	}
	if record.PainPointDiscovery != nil {
		fmt.Fprintf(&b, "- Identified %d pain points\n", len(record.PainPointDiscovery.PainPoints))
	}
	if record.UserPersonaAnalysis != nil {
		fmt.Fprintf(&b, "- Profiled %d primary personas\n", len(record.UserPersonaAnalysis.PrimaryPersonas))
	}
	if record.NicheOpportunity != nil {
		fmt.Fprintf(&b, "- Scanned %d niche opportunities\n", len(record.NicheOpportunity.Niches))
	}
	if record.BusinessModelGenerator != nil {
		fmt.Fprintf(&b, "- Generated %d business ideas\n", len(record.BusinessModelGenerator.Ideas))
	}
	b.WriteString("- Key opportunities in automation and AI integration")

	quality := slotQuality(record)
	return ResearchRecord{
		ResearchSummary:         b.String(),
		KeyOpportunities:        keyOpportunities(record),
		ResearchQualityScore:    &quality,
		NextStepsRecommendation: "Proceed to prototype scoping and customer interviews for the recommended idea.",
	}
}

// slotQuality is the best confidence any stage reported, or the bare
// signal-quality floor when no slot was filled at all.
func slotQuality(record ResearchRecord) float64 {
	var scores []float64
	if record.MarketResearch != nil {
		scores = append(scores, record.MarketResearch.ConfidenceScore)
	}
	if record.PainPointDiscovery != nil {
		scores = append(scores, record.PainPointDiscovery.ConfidenceScore)
	}
	if record.UserPersonaAnalysis != nil {
		scores = append(scores, record.UserPersonaAnalysis.ConfidenceScore)
	}
	if record.NicheOpportunity != nil {
		scores = append(scores, record.NicheOpportunity.ConfidenceScore)
	}
	if record.BusinessModelGenerator != nil {
		scores = append(scores, record.BusinessModelGenerator.ConfidenceScore)
	}
	if len(scores) == 0 {
		return signals.ResearchQuality("", 0)
	}
	best := scores[0]
	for _, score := range scores[1:] {
		if score > best {
			best = score
		}
	}
	return best
}

func keyOpportunities(record ResearchRecord) []string {
	var out []string
	if record.MarketResearch != nil {
		out = append(out, record.MarketResearch.GrowthOpportunities...)
	}
	if record.NicheOpportunity != nil {
		for _, niche := range record.NicheOpportunity.Niches {
			out = append(out, niche.NicheName)
		}
	}
	if len(out) > 5 {
		out = out[:5]
	}
	if len(out) == 0 {
		out = []string{"Automation opportunities require further research"}
	}
	return out
}
