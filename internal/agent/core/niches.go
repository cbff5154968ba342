package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ideaforge/config"
	"ideaforge/tools/signals"
	"ideaforge/utils"
)

const nicheName = "niche_opportunity"

func newNicheStage(reg *signals.Registry, client InferenceClient, fb config.FallbacksConfig) Stage {
	tools := []string{signals.NameReddit, signals.NameGoogleTrends}
	if reg.Has(signals.NameOpenAlex) {
		tools = append(tools, signals.NameOpenAlex)
	}
	if reg.Has(signals.NameProductHunt) {
		tools = append(tools, signals.NameProductHunt)
	}
	return Stage{
		Name:         nicheName,
		Schema:       NicheSchema,
		SuccessStep:  StepNicheScannerComplete,
		FallbackStep: StepNicheScannerFailed,
		ErrorPrefix:  "Niche opportunity scanner failed",
		Tools:        tools,
		Gather:       nicheGather(reg),
		Compose:      nicheCompose,
		Decode:       nicheDecode,
		Fallback:     nicheFallback(fb),
		client:       client,
		logger:       stageLogger(nicheName),
	}
}

func nicheQueries(industry string) []string {
	return []string{
		industry + " unmet needs",
		industry + " alternatives",
		industry + " competitors",
		"best tools for " + industry,
		industry + " gaps in market",
	}
}

// nicheGather reads prior slots tolerantly: missing pain points simply
// mean no per-pain trend lookups.
func nicheGather(reg *signals.Registry) GatherFunc {
	return func(ctx context.Context, st PipelineState) (*Evidence, error) {
		industry := st.UserInput.IndustryMarket
		ev := NewEvidence()

		if reddit, err := reg.Get(signals.NameReddit); err == nil {
			for _, query := range nicheQueries(industry) {
				payload, err := reddit.Search(ctx, query, map[string]interface{}{signals.OptLimit: 3})
				if err != nil {
					ev.AddFailure(nicheName, query, err)
					continue
				}
				ev.AddPayload(redditPrefix+query, utils.Truncate(payload, payloadLimit))
			}
		}

		if trends, ok := reg.GoogleTrends(); ok {
			payload, err := trends.RisingTrends(ctx, industry)
			if err != nil {
				ev.AddFailure(nicheName, industry, err)
			} else {
				ev.AddPayload(trendPrefix+"rising "+industry, payload)
				ev.Hints[hintRisingQueries] = signals.ParseTrendPayload(payload).RisingQueries
			}
			for _, problem := range topPainDescriptions(st.ResearchOutput.PainPointDiscovery, 4) {
				payload, err := trends.Search(ctx, problem, nil)
				if err != nil {
					ev.AddFailure(nicheName, problem, err)
					continue
				}
				ev.AddPayload(trendPrefix+utils.Truncate(problem, 80), utils.Truncate(payload, payloadLimit))
			}
		}

		if alex, err := reg.Get(signals.NameOpenAlex); err == nil {
			query := industry + " automation"
			payload, err := alex.Search(ctx, query, nil)
			if err != nil {
				ev.AddFailure(nicheName, query, err)
			} else {
				ev.AddPayload(paperPrefix+query, utils.Truncate(payload, payloadLimit))
			}
		}

		if hunt, err := reg.Get(signals.NameProductHunt); err == nil {
			payload, err := hunt.Search(ctx, industry, nil)
			if err != nil {
				ev.AddFailure(nicheName, industry, err)
			} else {
				ev.AddPayload(launchPrefix+industry, utils.Truncate(payload, payloadLimit))
			}
		}

		return ev, nil
	}
}

func topPainDescriptions(discovery *PainPointDiscoveryOutput, limit int) []string {
	if discovery == nil {
		return nil
	}
	out := make([]string, 0, limit)
	for _, point := range discovery.PainPoints {
		if len(out) == limit {
			break
		}
		if strings.TrimSpace(point.ProblemDescription) == "" {
			continue
		}
		out = append(out, point.ProblemDescription)
	}
	return out
}

func nicheCompose(st PipelineState, ev *Evidence) string {
	industry := st.UserInput.IndustryMarket
	record := st.ResearchOutput

	personas := "None"
	if record.UserPersonaAnalysis != nil {
		personas = jsonBlock(record.UserPersonaAnalysis.PrimaryPersonas)
	}
	painPoints := "None"
	if record.PainPointDiscovery != nil {
		painPoints = jsonBlock(record.PainPointDiscovery.PainPoints)
	}

	var b strings.Builder
	b.WriteString("You are a niche opportunity analysis agent.\n")
	fmt.Fprintf(&b, "Analyze the %s market and identify emerging or underserved niches.\n\n", industry)
	b.WriteString("PERSONAS:\n")
	b.WriteString(personas)
	b.WriteString("\n\nPAIN POINTS:\n")
	b.WriteString(painPoints)
	b.WriteString("\n\nREDDIT SIGNALS:\n")
	b.WriteString(ev.Section(redditPrefix))
	b.WriteString("\n\nGOOGLE TRENDS DATA:\n")
	b.WriteString(ev.Section(trendPrefix))
	if rising, ok := ev.Hints[hintRisingQueries].([]string); ok && len(rising) > 0 {
		fmt.Fprintf(&b, "\nRising queries observed: %s\n", strings.Join(rising, ", "))
	}
	b.WriteString("\n\nRESEARCH LITERATURE SIGNALS:\n")
	b.WriteString(ev.Section(paperPrefix))
	b.WriteString("\n\nRECENT PRODUCT LAUNCHES:\n")
	b.WriteString(ev.Section(launchPrefix))
	b.WriteString("\n\nTask:\n")
	b.WriteString("- Identify at least 3 niche opportunities.\n")
	b.WriteString("- For each: describe the opportunity, target persona, why demand exists, and why it is underserved.\n")
	b.WriteString("- Rate demand level (Low/Medium/High), trend score (1-10), competition level (Low/Medium/High).\n")
	b.WriteString("- Recommend which niches should be prioritized.\n")
	return b.String()
}

func nicheDecode(raw json.RawMessage, _ *Evidence) (ResearchRecord, error) {
	var out NicheOpportunityOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return ResearchRecord{}, err
	}
	return ResearchRecord{NicheOpportunity: &out}, nil
}

func nicheFallback(fb config.FallbacksConfig) FallbackFunc {
	return func(st PipelineState, ev *Evidence) ResearchRecord {
		industry := st.UserInput.IndustryMarket

		niche := NicheOpportunity{
			NicheName:           fmt.Sprintf("%s Automation Tools", industry),
			Description:         fmt.Sprintf("Tools to automate repetitive tasks in %s.", industry),
			TargetPersona:       "Mid-level professionals",
			DemandLevel:         "High",
			TrendScore:          7.5,
			CompetitionLevel:    "Medium",
			PainPointsAddressed: []string{"Efficiency", "Time management"},
		}
		return ResearchRecord{NicheOpportunity: &NicheOpportunityOutput{
			Niches:          []NicheOpportunity{niche},
			Prioritization:  map[string]string{"top_opportunity": niche.NicheName},
			ConfidenceScore: fb.SynthesisConfidence,
			ResearchSources: []string{"reddit_search", "google_trends"},
		}}
	}
}
