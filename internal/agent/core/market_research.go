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

const marketResearchName = "market_research"

func newMarketResearchStage(reg *signals.Registry, client InferenceClient, fb config.FallbacksConfig) Stage {
	return Stage{
		Name:         marketResearchName,
		Schema:       MarketResearchSchema,
		SuccessStep:  StepMarketResearchComplete,
		FallbackStep: StepMarketResearchFailed,
		ErrorPrefix:  "Market research failed",
		Tools:        []string{signals.NameGoogleTrends, signals.NameReddit},
		Gather:       marketResearchGather(reg),
		Compose:      marketResearchCompose,
		Decode:       marketResearchDecode,
		Fallback:     marketResearchFallback(fb),
		client:       client,
		logger:       stageLogger(marketResearchName),
	}
}

func marketResearchTrendQueries(industry string) []string {
	return []string{
		industry + " automation AI",
		industry + " machine learning",
		industry + " software tools",
		industry + " productivity",
		industry + " workflow automation",
	}
}

func marketResearchRedditQueries(industry string) []string {
	return []string{
		industry + " problems",
		industry + " automation challenges",
		industry + " manual work issues",
	}
}

func marketResearchGather(reg *signals.Registry) GatherFunc {
	return func(ctx context.Context, st PipelineState) (*Evidence, error) {
		industry := st.UserInput.IndustryMarket
		ev := NewEvidence()

		if trends, ok := reg.GoogleTrends(); ok {
			for _, query := range marketResearchTrendQueries(industry) {
				payload, err := trends.Search(ctx, query, nil)
				if err != nil {
					ev.AddFailure(marketResearchName, query, err)
					continue
				}
				ev.AddPayload(trendPrefix+query, utils.Truncate(payload, payloadLimit))
			}
		}

		if reddit, err := reg.Get(signals.NameReddit); err == nil {
			for _, query := range marketResearchRedditQueries(industry) {
				payload, err := reddit.Search(ctx, query, map[string]interface{}{signals.OptLimit: 3})
				if err != nil {
					ev.AddFailure(marketResearchName, query, err)
					continue
				}
				ev.AddPayload(redditPrefix+query, utils.Truncate(payload, payloadLimit))
			}
		}

		ev.Hints[hintResearchQuality] = signals.ResearchQuality(ev.Section(trendPrefix), len(ev.Keys(redditPrefix)))
		return ev, nil
	}
}

func marketResearchCompose(st PipelineState, ev *Evidence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the market data for %s in %s and extract structured insights.\n", st.UserInput.IndustryMarket, st.UserInput.CountryRegion)
	b.WriteString("Focus on automation opportunities, AI integration, and productivity improvements.\n\n")
	b.WriteString("GOOGLE TRENDS DATA:\n")
	b.WriteString(ev.Section(trendPrefix))
	b.WriteString("\n\nREDDIT DISCUSSIONS:\n")
	b.WriteString(ev.Section(redditPrefix))
	if quality, ok := ev.Hints[hintResearchQuality].(float64); ok {
		fmt.Fprintf(&b, "\n\nSignal quality estimate: %.1f/10", quality)
	}
	b.WriteString("\n\nIdentify:\n")
	b.WriteString("- Market trends with growth potential\n")
	b.WriteString("- Key competitors in the space\n")
	b.WriteString("- Growth opportunities for AI/automation solutions\n")
	b.WriteString("- Market saturation level assessment\n")
	return b.String()
}

func marketResearchDecode(raw json.RawMessage, _ *Evidence) (ResearchRecord, error) {
	var out MarketResearchOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return ResearchRecord{}, err
	}
	return ResearchRecord{MarketResearch: &out}, nil
}

// marketResearchFallback synthesizes a conservative market picture from
// whatever the gather step managed to collect. Trends are derived from
// the queries that returned data, or from the canonical query list when
// nothing did, so the slot always holds cfg.TrendCount trends at most
// and at least one.
func marketResearchFallback(fb config.FallbacksConfig) FallbackFunc {
	return func(st PipelineState, ev *Evidence) ResearchRecord {
		industry := st.UserInput.IndustryMarket

		queries := ev.Queries(trendPrefix)
		if len(queries) == 0 {
			queries = marketResearchTrendQueries(industry)
		}
		if len(queries) > fb.TrendCount {
			queries = queries[:fb.TrendCount]
		}
		trends := make([]MarketTrend, 0, len(queries))
		for i, query := range queries {
			trends = append(trends, MarketTrend{
				TrendName:      fmt.Sprintf("%s Trend %d", industry, i+1),
				Description:    fmt.Sprintf("Rising interest in %s based on search data", query),
				RelevanceScore: 8.0 - float64(i),
				TimeHorizon:    "medium-term",
				KeyDrivers:     []string{"Digital transformation", "Efficiency needs", "Cost reduction"},
			})
		}

		return ResearchRecord{MarketResearch: &MarketResearchOutput{
			MarketTrends: trends,
			Competitors: []CompetitorInfo{{
				Name:           industry + " Leader",
				Description:    fmt.Sprintf("Major player in %s automation", industry),
				MarketPosition: "leader",
				Strengths:      []string{"Established user base", "Feature rich"},
				Weaknesses:     []string{"High cost", "Complex setup"},
			}},
			MarketSaturationLevel: "medium",
			GrowthOpportunities: []string{
				fmt.Sprintf("AI-powered automation in %s", industry),
				fmt.Sprintf("SMB-focused %s tools", industry),
				fmt.Sprintf("Integration solutions for %s", industry),
			},
			ResearchSources: []string{"google_trends", "reddit"},
			ConfidenceScore: fb.Confidence,
		}}
	}
}
