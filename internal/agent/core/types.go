package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TargetMarketType is the business model orientation of the research run
type TargetMarketType string

const (
	MarketB2B   TargetMarketType = "B2B"
	MarketB2C   TargetMarketType = "B2C"
	MarketB2B2C TargetMarketType = "B2B2C"
)

func (t TargetMarketType) Validate() error {
	switch t {
	case MarketB2B, MarketB2C, MarketB2B2C:
		return nil
	}
	return fmt.Errorf("invalid target market type: %q", string(t))
}

// TargetAudience narrows the research to a specific buyer profile
type TargetAudience struct {
	Demographic    string   `json:"demographic"`
	AgeRange       string   `json:"age_range,omitempty"`
	IncomeLevel    string   `json:"income_level,omitempty"`
	TechLiteracy   string   `json:"tech_literacy"`
	PainPoints     []string `json:"pain_points,omitempty"`
	BuyingBehavior string   `json:"buying_behavior,omitempty"`
}

// UserInput describes the market a research run targets
type UserInput struct {
	CountryRegion    string           `json:"country_region"`
	IndustryMarket   string           `json:"industry_market"`
	TargetMarketType TargetMarketType `json:"target_market_type"`
	TargetAudience   *TargetAudience  `json:"target_audience,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func (u UserInput) Validate() error {
	if strings.TrimSpace(u.IndustryMarket) == "" {
		return fmt.Errorf("industry_market must not be empty")
	}
	if strings.TrimSpace(u.CountryRegion) == "" {
		return fmt.Errorf("country_region must not be empty")
	}
	return u.TargetMarketType.Validate()
}

// MarketTrend is a single market movement worth tracking
type MarketTrend struct {
	TrendName      string   `json:"trend_name"`
	Description    string   `json:"description"`
	GrowthRate     float64  `json:"growth_rate,omitempty"`
	MarketSize     string   `json:"market_size,omitempty"`
	ProjectedSize  string   `json:"projected_size,omitempty"`
	KeyDrivers     []string `json:"key_drivers,omitempty"`
	TimeHorizon    string   `json:"time_horizon"`
	RelevanceScore float64  `json:"relevance_score"` // 0-10
}

// CompetitorInfo describes one player already serving the market
type CompetitorInfo struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Pricing        string   `json:"pricing,omitempty"`
	MarketPosition string   `json:"market_position"`
	Strengths      []string `json:"strengths,omitempty"`
	Weaknesses     []string `json:"weaknesses,omitempty"`
	FundingStage   string   `json:"funding_stage,omitempty"`
	URL            string   `json:"url,omitempty"`
}

// MarketResearchOutput is the market-research stage's slot content
type MarketResearchOutput struct {
	MarketTrends          []MarketTrend    `json:"market_trends"`
	Competitors           []CompetitorInfo `json:"competitors"`
	MarketSaturationLevel string           `json:"market_saturation_level"`
	GrowthOpportunities   []string         `json:"growth_opportunities"`
	MarketSizeEstimate    string           `json:"market_size_estimate,omitempty"`
	SeasonalPatterns      string           `json:"seasonal_patterns,omitempty"`
	GeographicInsights    string           `json:"geographic_insights,omitempty"`
	ResearchSources       []string         `json:"research_sources"`
	ConfidenceScore       float64          `json:"confidence_score"` // 0-10
}

// PainPoint is a single discovered problem
type PainPoint struct {
	ProblemDescription  string   `json:"problem_description"`
	FrequencyScore      int      `json:"frequency_score"` // 1-10
	UrgencyScore        int      `json:"urgency_score"`   // 1-10
	ImpactLevel         string   `json:"impact_level"`
	AffectedAudience    string   `json:"affected_audience"`
	CurrentSolutions    []string `json:"current_solutions,omitempty"`
	SourceMentions      int      `json:"source_mentions"`
	SourcePlatforms     []string `json:"source_platforms,omitempty"`
	ExampleQuotes       []string `json:"example_quotes,omitempty"`
	AutomationPotential float64  `json:"automation_potential"` // 0-10
}

// PainPointDiscoveryOutput is the pain-point stage's slot content
type PainPointDiscoveryOutput struct {
	PainPoints            []PainPoint `json:"pain_points"`
	TopPainCategories     []string    `json:"top_pain_categories"`
	SentimentAnalysis     string      `json:"sentiment_analysis,omitempty"`
	DataSources           []string    `json:"data_sources"`
	TotalMentionsAnalyzed int         `json:"total_mentions_analyzed"`
	AnalysisDateRange     string      `json:"analysis_date_range"`
	ConfidenceScore       float64     `json:"confidence_score"` // 0-10
}

// PersonaDemographics describes who a persona is
type PersonaDemographics struct {
	AgeRange           string   `json:"age_range"`
	GenderDistribution string   `json:"gender_distribution,omitempty"`
	IncomeRange        string   `json:"income_range"`
	EducationLevel     string   `json:"education_level"`
	JobTitles          []string `json:"job_titles,omitempty"`
	CompanySize        string   `json:"company_size,omitempty"`
	LocationType       string   `json:"location_type"`
}

// PersonaBehavior describes how a persona researches and buys
type PersonaBehavior struct {
	PreferredCommunicationChannels []string `json:"preferred_communication_channels,omitempty"`
	DecisionMakingProcess          string   `json:"decision_making_process"`
	BudgetAuthority                string   `json:"budget_authority"`
	TechnologyAdoption             string   `json:"technology_adoption"`
	ResearchHabits                 []string `json:"research_habits,omitempty"`
	ObjectionsConcerns             []string `json:"objections_concerns,omitempty"`
}

// UserPersona is a complete buyer profile
type UserPersona struct {
	PersonaName        string              `json:"persona_name"`
	PersonaDescription string              `json:"persona_description"`
	Demographics       PersonaDemographics `json:"demographics"`
	Behavior           PersonaBehavior     `json:"behavior"`
	PainPoints         []string            `json:"pain_points,omitempty"`
	GoalsMotivations   []string            `json:"goals_motivations,omitempty"`
	PreferredFeatures  []string            `json:"preferred_features,omitempty"`
	AccessibilityNeeds []string            `json:"accessibility_needs,omitempty"`
}

// MarketSegmentation is a map in the well-formed case, but models
// sometimes return an array of segment objects; those are folded into
// segment_N keys so the record keeps a single shape.
type MarketSegmentation map[string]any

func (m *MarketSegmentation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		out := make(map[string]any, len(items))
		for i, item := range items {
			out[fmt.Sprintf("segment_%d", i+1)] = item
		}
		*m = out
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// UserPersonaAnalysisOutput is the persona stage's slot content
type UserPersonaAnalysisOutput struct {
	PrimaryPersonas       []UserPersona      `json:"primary_personas"`
	SecondaryPersonas     []UserPersona      `json:"secondary_personas,omitempty"`
	PersonaPrioritization map[string]string  `json:"persona_prioritization,omitempty"`
	CrossPersonaInsights  []string           `json:"cross_persona_insights,omitempty"`
	MarketSegmentation    MarketSegmentation `json:"market_segmentation,omitempty"`
	ResearchMethodology   []string           `json:"research_methodology,omitempty"`
	SampleSize            int                `json:"sample_size,omitempty"`
	ConfidenceScore       float64            `json:"confidence_score"` // 0-10
}

// NicheOpportunity is a single underserved market pocket
type NicheOpportunity struct {
	NicheName           string   `json:"niche_name"`
	Description         string   `json:"description"`
	TargetPersona       string   `json:"target_persona"`
	DemandLevel         string   `json:"demand_level"`
	TrendScore          float64  `json:"trend_score"` // 0-10
	CompetitionLevel    string   `json:"competition_level"`
	PainPointsAddressed []string `json:"pain_points_addressed,omitempty"`
	SupportingEvidence  []string `json:"supporting_evidence,omitempty"`
	EstimatedMarketSize string   `json:"estimated_market_size,omitempty"`
}

// NicheOpportunityOutput is the niche-scanner stage's slot content
type NicheOpportunityOutput struct {
	Niches             []NicheOpportunity `json:"niches"`
	Prioritization     map[string]string  `json:"prioritization,omitempty"`
	CrossNicheInsights []string           `json:"cross_niche_insights,omitempty"`
	ConfidenceScore    float64            `json:"confidence_score"` // 0-10
	ResearchSources    []string           `json:"research_sources,omitempty"`
}

// BusinessIdea is one agent-workflow product concept
type BusinessIdea struct {
	IdeaName             string   `json:"idea_name"`
	Niche                string   `json:"niche"`
	Description          string   `json:"description"`
	WorkflowDesign       string   `json:"workflow_design"`
	UniqueValueProp      string   `json:"unique_value_prop"`
	MonetizationStrategy string   `json:"monetization_strategy"`
	TargetPersona        string   `json:"target_persona"`
	FeasibilityScore     float64  `json:"feasibility_score"` // 0-10
	SupportingEvidence   []string `json:"supporting_evidence,omitempty"`
}

// BusinessModelOutput is the idea-generator stage's slot content
type BusinessModelOutput struct {
	Ideas           []BusinessIdea `json:"ideas"`
	RecommendedIdea string         `json:"recommended_idea,omitempty"`
	ConfidenceScore float64        `json:"confidence_score"` // 0-10
}

// ValidationOutput carries the synthesis fields the terminal stage adds
// to the record. It is not a slot of its own.
type ValidationOutput struct {
	ResearchSummary         string   `json:"research_summary"`
	KeyOpportunities        []string `json:"key_opportunities"`
	ResearchQualityScore    float64  `json:"research_quality_score"` // 0-10
	NextStepsRecommendation string   `json:"next_steps_recommendation"`
}
