package core

import (
	"time"
)

// Step labels recorded in current_step and step_timestamps. Every stage
// lands on exactly one of its two labels; the generator stage keeps a
// distinct fallback label so downstream readers can tell a synthesized
// record from a model-produced one.
const (
	StepInitialization = "initialization"

	StepMarketResearchComplete = "market_research_complete"
	StepMarketResearchFailed   = "market_research_failed"

	StepPainPointDiscoveryComplete = "pain_point_discovery_complete"
	StepPainPointDiscoveryFailed   = "pain_point_discovery_failed"

	StepUserPersonaAnalysisComplete = "user_persona_analysis_complete"
	StepUserPersonaAnalysisFailed   = "user_persona_analysis_failed"

	StepNicheScannerComplete = "niche_opportunity_scanner_complete"
	StepNicheScannerFailed   = "niche_opportunity_scanner_failed"

	StepBusinessModelComplete = "business_model_generator_complete"
	StepBusinessModelFallback = "business_model_generator_fallback"

	StepValidationComplete = "business_model_validation_complete"
	StepValidationFailed   = "business_model_validation_failed"
)

// ResearchRecord accumulates the pipeline's findings. Five named slots,
// one per producing stage, plus the synthesis fields the terminal
// validation stage fills in.
type ResearchRecord struct {
	MarketResearch         *MarketResearchOutput      `json:"market_research,omitempty"`
	PainPointDiscovery     *PainPointDiscoveryOutput  `json:"pain_point_discovery,omitempty"`
	UserPersonaAnalysis    *UserPersonaAnalysisOutput `json:"user_persona_analysis,omitempty"`
	NicheOpportunity       *NicheOpportunityOutput    `json:"niche_opportunity,omitempty"`
	BusinessModelGenerator *BusinessModelOutput       `json:"business_model_generator,omitempty"`

	ResearchSummary         string   `json:"research_summary,omitempty"`
	KeyOpportunities        []string `json:"key_opportunities,omitempty"`
	ResearchQualityScore    *float64 `json:"research_quality_score,omitempty"`
	NextStepsRecommendation string   `json:"next_steps_recommendation,omitempty"`
}

// Merge folds in onto r and returns the result. Only populated parts of
// in overwrite: nil slots and empty synthesis fields leave the existing
// value in place, so a stage can never erase another stage's work.
func (r ResearchRecord) Merge(in ResearchRecord) ResearchRecord {
	out := r
	if in.MarketResearch != nil {
		out.MarketResearch = in.MarketResearch
	}
	if in.PainPointDiscovery != nil {
		out.PainPointDiscovery = in.PainPointDiscovery
	}
	if in.UserPersonaAnalysis != nil {
		out.UserPersonaAnalysis = in.UserPersonaAnalysis
	}
	if in.NicheOpportunity != nil {
		out.NicheOpportunity = in.NicheOpportunity
	}
	if in.BusinessModelGenerator != nil {
		out.BusinessModelGenerator = in.BusinessModelGenerator
	}
	if in.ResearchSummary != "" {
		out.ResearchSummary = in.ResearchSummary
	}
	if len(in.KeyOpportunities) > 0 {
		out.KeyOpportunities = in.KeyOpportunities
	}
	if in.ResearchQualityScore != nil {
		out.ResearchQualityScore = in.ResearchQualityScore
	}
	if in.NextStepsRecommendation != "" {
		out.NextStepsRecommendation = in.NextStepsRecommendation
	}
	return out
}

// FilledSlots lists the populated research slots in pipeline order.
func (r ResearchRecord) FilledSlots() []string {
	var out []string
	if r.MarketResearch != nil {
		out = append(out, "market_research")
	}
	if r.PainPointDiscovery != nil {
		out = append(out, "pain_point_discovery")
	}
	if r.UserPersonaAnalysis != nil {
		out = append(out, "user_persona_analysis")
	}
	if r.NicheOpportunity != nil {
		out = append(out, "niche_opportunity")
	}
	if r.BusinessModelGenerator != nil {
		out = append(out, "business_model_generator")
	}
	return out
}

// PipelineState is the full run state threaded through the stage chain.
// Stages never mutate it; they emit a StateDelta and the orchestrator
// folds it in with Apply.
type PipelineState struct {
	UserInput               UserInput            `json:"user_input"`
	Phase1Complete          bool                 `json:"phase1_complete"`
	ResearchOutput          ResearchRecord       `json:"research_output"`
	CurrentStep             string               `json:"current_step"`
	Errors                  []string             `json:"errors"`
	ToolsUsed               []string             `json:"tools_used"`
	ProcessingStartTime     time.Time            `json:"processing_start_time"`
	StepTimestamps          map[string]time.Time `json:"step_timestamps"`
	DebugMode               bool                 `json:"debug_mode"`
	SaveIntermediateResults bool                 `json:"save_intermediate_results"`
}

// NewPipelineState seeds a run at the initialization step.
func NewPipelineState(input UserInput) PipelineState {
	return PipelineState{
		UserInput:               input,
		CurrentStep:             StepInitialization,
		Errors:                  []string{},
		ToolsUsed:               []string{},
		ProcessingStartTime:     time.Now().UTC(),
		StepTimestamps:          map[string]time.Time{},
		SaveIntermediateResults: true,
	}
}

// StateDelta is a stage's contribution to the run state.
type StateDelta struct {
	Record         ResearchRecord
	CurrentStep    string
	Errors         []string
	Tools          []string
	Phase1Complete bool
}

// Apply returns a new state with delta folded in. The receiver is left
// untouched: error and tool slices are reallocated, the timestamp map is
// copied, and the record merge is non-destructive. The delta's step is
// stamped into step_timestamps. Phase1Complete only ever latches on.
func (s PipelineState) Apply(delta StateDelta) PipelineState {
	next := s
	next.ResearchOutput = s.ResearchOutput.Merge(delta.Record)
	next.Errors = append(append([]string{}, s.Errors...), delta.Errors...)
	next.ToolsUsed = append(append([]string{}, s.ToolsUsed...), delta.Tools...)
	next.StepTimestamps = make(map[string]time.Time, len(s.StepTimestamps)+1)
	for step, at := range s.StepTimestamps {
		next.StepTimestamps[step] = at
	}
	if delta.CurrentStep != "" {
		next.CurrentStep = delta.CurrentStep
		next.StepTimestamps[delta.CurrentStep] = time.Now().UTC()
	}
	if delta.Phase1Complete {
		next.Phase1Complete = true
	}
	return next
}

// Elapsed is the wall time since the run started.
func (s PipelineState) Elapsed() time.Duration {
	return time.Since(s.ProcessingStartTime)
}
