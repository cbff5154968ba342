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

const personaName = "user_persona_analysis"

func newPersonaStage(reg *signals.Registry, client InferenceClient, fb config.FallbacksConfig) Stage {
	return Stage{
		Name:         personaName,
		Schema:       UserPersonaSchema,
		SuccessStep:  StepUserPersonaAnalysisComplete,
		FallbackStep: StepUserPersonaAnalysisFailed,
		ErrorPrefix:  "User persona analysis failed",
		Tools:        []string{signals.NameReddit},
		Gather:       personaGather(reg),
		Compose:      personaCompose,
		Decode:       personaDecode,
		Fallback:     personaFallback(fb),
		client:       client,
		logger:       stageLogger(personaName),
	}
}

func personaQueries(industry string) []string {
	return []string{
		industry + " customer demographics",
		industry + " buyer behavior",
		industry + " decision makers",
		"who uses " + industry + " tools",
		industry + " budget authority",
	}
}

func personaGather(reg *signals.Registry) GatherFunc {
	return func(ctx context.Context, st PipelineState) (*Evidence, error) {
		ev := NewEvidence()
		reddit, err := reg.Get(signals.NameReddit)
		if err != nil {
			return ev, nil
		}
		for _, query := range personaQueries(st.UserInput.IndustryMarket) {
			payload, err := reddit.Search(ctx, query, map[string]interface{}{signals.OptLimit: 3})
			if err != nil {
				ev.AddFailure(personaName, query, err)
				continue
			}
			ev.AddPayload(redditPrefix+query, utils.Truncate(payload, payloadLimit))
		}
		return ev, nil
	}
}

func personaCompose(st PipelineState, ev *Evidence) string {
	industry := st.UserInput.IndustryMarket

	audience := "None provided"
	if st.UserInput.TargetAudience != nil {
		if encoded, err := json.Marshal(st.UserInput.TargetAudience); err == nil {
			audience = string(encoded)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are refining the persona analysis for the %s industry.\n\n", industry)
	b.WriteString("Take the research data and transform it into a structured and prioritized persona framework.\n")
	b.WriteString("Focus on clarity, segmentation, and decision-making relevance.\n\n")
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Industry: %s\n", industry)
	fmt.Fprintf(&b, "- Target Market: %s\n", st.UserInput.TargetMarketType)
	fmt.Fprintf(&b, "- Existing Audience Info: %s\n\n", audience)
	b.WriteString("RESEARCH INSIGHTS:\n")
	b.WriteString(ev.Section(redditPrefix))
	b.WriteString("\n\nRequirements for refined output:\n")
	b.WriteString("1. Persona Profiles\n")
	b.WriteString("- Create at least 1 primary persona (main buyer/user) and 2-3 secondary personas (influencers, blockers, or niche users).\n")
	b.WriteString("- For each persona, include demographics (age, income, education, role, company size, geography),\n")
	b.WriteString("  behavioral traits (decision-making, buying process, adoption speed), pain points and key motivations,\n")
	b.WriteString("  budget authority and procurement role, preferred communication and research channels, price sensitivity.\n")
	b.WriteString("2. Persona Prioritization\n")
	b.WriteString("- Clearly indicate which persona is the most critical for go-to-market and justify why\n")
	b.WriteString("  (market size, budget control, adoption likelihood).\n")
	b.WriteString("3. Cross-Persona Insights\n")
	b.WriteString("- Identify common motivators across personas, highlight key differences, and note conflicts\n")
	b.WriteString("  or blockers in the buying journey.\n")
	b.WriteString("4. Market Segmentation\n")
	b.WriteString("- Break down personas by company size, role, and purchasing influence, with insight into how\n")
	b.WriteString("  personas interact during B2B or B2C decision-making.\n")
	b.WriteString("5. Confidence and Gaps\n")
	b.WriteString("- Assign a confidence score based on available data and list missing data points that would\n")
	b.WriteString("  improve persona accuracy.\n\n")
	b.WriteString("Output should be structured, consistent, and concise enough to use directly in a go-to-market strategy document.\n")
	return b.String()
}

// personaDecode tolerates the two shapes models actually return for
// market_segmentation (object or array, coerced by the type) and fills
// the sample size from the gathered insight count when the model left
// it out.
func personaDecode(raw json.RawMessage, ev *Evidence) (ResearchRecord, error) {
	var out UserPersonaAnalysisOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return ResearchRecord{}, err
	}
	if out.SampleSize == 0 {
		out.SampleSize = len(ev.Keys(redditPrefix)) * 3
	}
	return ResearchRecord{UserPersonaAnalysis: &out}, nil
}

func personaFallback(fb config.FallbacksConfig) FallbackFunc {
	return func(st PipelineState, ev *Evidence) ResearchRecord {
		industry := st.UserInput.IndustryMarket

		primary := UserPersona{
			PersonaName:        fmt.Sprintf("%s Professional", industry),
			PersonaDescription: fmt.Sprintf("Primary user of %s tools and solutions", industry),
			Demographics: PersonaDemographics{
				AgeRange:       "28-45",
				IncomeRange:    "$50k-$100k",
				EducationLevel: "Bachelor's degree or higher",
				JobTitles: []string{
					fmt.Sprintf("%s Manager", industry),
					fmt.Sprintf("%s Specialist", industry),
					fmt.Sprintf("%s Coordinator", industry),
				},
				CompanySize:  "10-500 employees",
				LocationType: "Urban and suburban areas",
			},
			Behavior: PersonaBehavior{
				PreferredCommunicationChannels: []string{"Email", "Professional networks", "Industry forums"},
				DecisionMakingProcess:          "Research-driven, compares multiple options",
				BudgetAuthority:                "Recommends purchases, needs approval for large expenses",
				TechnologyAdoption:             "Early majority, adopts proven solutions",
				ResearchHabits:                 []string{"Online reviews", "Peer recommendations", "Free trials"},
				ObjectionsConcerns:             []string{"Cost", "Learning curve", "Integration challenges"},
			},
			PainPoints: []string{
				fmt.Sprintf("Manual processes in %s", industry),
				"Time-consuming tasks",
				"Lack of automation",
			},
			GoalsMotivations:  []string{"Increase efficiency", "Reduce manual work", "Improve results"},
			PreferredFeatures: []string{"Easy to use", "Good integration", "Reliable support"},
		}

		return ResearchRecord{UserPersonaAnalysis: &UserPersonaAnalysisOutput{
			PrimaryPersonas:       []UserPersona{primary},
			SecondaryPersonas:     []UserPersona{},
			PersonaPrioritization: map[string]string{"primary": primary.PersonaName},
			CrossPersonaInsights: []string{
				fmt.Sprintf("Most %s users value efficiency over features", industry),
				"Price sensitivity varies by company size",
				"Integration capabilities are crucial",
			},
			MarketSegmentation: MarketSegmentation{
				"by_company_size": "Small (1-50), Medium (51-500), Large (500+)",
				"by_role":         "Managers, Specialists, Decision makers",
			},
			ResearchMethodology: []string{"reddit_analysis", "demographic_research"},
			SampleSize:          len(ev.Keys(redditPrefix)) * 3,
			ConfidenceScore:     fb.Confidence,
		}}
	}
}
