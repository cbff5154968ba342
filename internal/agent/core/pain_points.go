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

const painPointName = "pain_point_discovery"

func newPainPointStage(reg *signals.Registry, client InferenceClient, fb config.FallbacksConfig) Stage {
	tools := []string{signals.NameReddit}
	if reg.Has(signals.NameTwitter) {
		tools = append(tools, signals.NameTwitter)
	}
	return Stage{
		Name:         painPointName,
		Schema:       PainPointSchema,
		SuccessStep:  StepPainPointDiscoveryComplete,
		FallbackStep: StepPainPointDiscoveryFailed,
		ErrorPrefix:  "Pain point discovery failed",
		Tools:        tools,
		Gather:       painPointGather(reg),
		Compose:      painPointCompose,
		Decode:       painPointDecode,
		Fallback:     painPointFallback(fb),
		client:       client,
		logger:       stageLogger(painPointName),
	}
}

func painPointQueries(industry string) []string {
	return []string{
		industry + " problems",
		industry + " frustrations",
		industry + " complaints",
	}
}

func painPointGather(reg *signals.Registry) GatherFunc {
	return func(ctx context.Context, st PipelineState) (*Evidence, error) {
		industry := st.UserInput.IndustryMarket
		ev := NewEvidence()

		if reddit, err := reg.Get(signals.NameReddit); err == nil {
			for _, query := range painPointQueries(industry) {
				payload, err := reddit.Search(ctx, query, map[string]interface{}{signals.OptLimit: 3})
				if err != nil {
					ev.AddFailure(painPointName, query, err)
					continue
				}
				ev.AddPayload(redditPrefix+query, utils.Truncate(payload, payloadLimit))
			}
		}

		if twitter, err := reg.Get(signals.NameTwitter); err == nil {
			query := industry + " problems"
			payload, err := twitter.Search(ctx, query, nil)
			if err != nil {
				ev.AddFailure(painPointName, query, err)
			} else {
				ev.AddPayload(twitterPrefix+query, utils.Truncate(payload, payloadLimit))
			}
		}

		results := map[string]string{}
		for _, key := range ev.Keys(redditPrefix) {
			results[strings.TrimPrefix(key, redditPrefix)] = ev.Payloads[key]
		}
		ev.Hints[hintPainCandidates] = signals.PainPointHints(results)
		return ev, nil
	}
}

func painPointCompose(st PipelineState, ev *Evidence) string {
	industry := st.UserInput.IndustryMarket

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze Reddit discussions about %s to identify pain points and problems.\n", industry)
	b.WriteString("Focus on repetitive tasks, manual processes, and efficiency issues.\n\n")
	b.WriteString("REDDIT DISCUSSIONS:\n")
	b.WriteString(ev.Section(redditPrefix))
	if len(ev.Keys(twitterPrefix)) > 0 {
		b.WriteString("\n\nTWITTER MENTIONS:\n")
		b.WriteString(ev.Section(twitterPrefix))
	}
	if hints, ok := ev.Hints[hintPainCandidates].([]signals.PainPointHint); ok && len(hints) > 0 {
		b.WriteString("\n\nHeuristic candidates from the raw signals:\n")
		for _, hint := range hints {
			fmt.Fprintf(&b, "- %s (query: %s)\n", hint.Description, hint.Query)
		}
	}
	b.WriteString("\nExtract:\n")
	b.WriteString("- Specific pain points with frequency and urgency scores\n")
	b.WriteString("- Categories of problems\n")
	b.WriteString("- Real user complaints and needs\n")
	return b.String()
}

func painPointDecode(raw json.RawMessage, _ *Evidence) (ResearchRecord, error) {
	var out PainPointDiscoveryOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return ResearchRecord{}, err
	}
	return ResearchRecord{PainPointDiscovery: &out}, nil
}

func painPointFallback(fb config.FallbacksConfig) FallbackFunc {
	return func(st PipelineState, ev *Evidence) ResearchRecord {
		industry := st.UserInput.IndustryMarket
		insights := len(ev.Keys(redditPrefix))

		return ResearchRecord{PainPointDiscovery: &PainPointDiscoveryOutput{
			PainPoints: []PainPoint{{
				ProblemDescription:  fmt.Sprintf("Manual processes in %s", industry),
				FrequencyScore:      8,
				UrgencyScore:        7,
				ImpactLevel:         "high",
				AffectedAudience:    fmt.Sprintf("%s professionals", industry),
				SourceMentions:      10,
				SourcePlatforms:     []string{"reddit"},
				AutomationPotential: 8.0,
				CurrentSolutions:    []string{"Manual processes", "Basic tools"},
			}},
			TopPainCategories: []string{
				fmt.Sprintf("%s manual processes", industry),
				fmt.Sprintf("%s data entry", industry),
				fmt.Sprintf("%s reporting tasks", industry),
			},
			DataSources:           []string{"reddit"},
			TotalMentionsAnalyzed: insights * 3,
			AnalysisDateRange:     "past month",
			ConfidenceScore:       fb.Confidence,
		}}
	}
}
