package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ideaforge/internal/agent/telemetry"
	"ideaforge/utils"
)

func stageLogger(name string) *log.Logger {
	return log.New(log.Writer(), fmt.Sprintf("[%s] ", strings.ToUpper(name)), log.LstdFlags)
}

// jsonBlock renders a record fragment for prompt embedding, truncated
// to the payload budget.
func jsonBlock(v any) string {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "None"
	}
	return utils.Truncate(string(encoded), payloadLimit)
}

// The four pluggable steps of a research stage. Gather talks to signal
// providers and may be nil for stages that work purely off prior state.
// Compose turns state plus evidence into the inference prompt. Decode
// turns schema-valid JSON into a record contribution. Fallback builds
// the deterministic substitute record when inference fails.
type (
	GatherFunc   func(ctx context.Context, st PipelineState) (*Evidence, error)
	ComposeFunc  func(st PipelineState, ev *Evidence) string
	DecodeFunc   func(raw json.RawMessage, ev *Evidence) (ResearchRecord, error)
	FallbackFunc func(st PipelineState, ev *Evidence) ResearchRecord
)

// Stage is the one template every research stage instantiates: guarded
// gather, prompt composition, guarded inference, decode into the
// record. Inference failures of any kind produce the stage's fallback
// record under its fallback step label plus an error entry; everything
// else is fatal and aborts the run.
type Stage struct {
	Name               string
	Schema             Schema
	SuccessStep        string
	FallbackStep       string
	ErrorPrefix        string
	Tools              []string
	MarksPhaseComplete bool

	Gather   GatherFunc
	Compose  ComposeFunc
	Decode   DecodeFunc
	Fallback FallbackFunc

	client    InferenceClient
	logger    *log.Logger
	telemetry *telemetry.Telemetry
}

// Run executes the stage against a snapshot of the run state and
// returns the stage's contribution. The input state is never mutated.
func (s *Stage) Run(ctx context.Context, st PipelineState) (StateDelta, error) {
	started := time.Now()
	s.logger.Printf("starting for industry %q in %q", st.UserInput.IndustryMarket, st.UserInput.CountryRegion)

	var ev *Evidence
	if s.Gather != nil {
		var err error
		ev, err = s.Gather(ctx, st)
		if err != nil {
			return StateDelta{}, fmt.Errorf("%s gather: %w", s.Name, err)
		}
	}
	if ev == nil {
		ev = NewEvidence()
	}
	if s.telemetry != nil && s.Gather != nil {
		s.telemetry.RecordSignalEvent(ctx, telemetry.SignalEvent{Stage: s.Name, Payloads: len(ev.Payloads), Failures: len(ev.Failures)})
	}

	delta := StateDelta{
		CurrentStep:    s.SuccessStep,
		Errors:         append([]string{}, ev.Failures...),
		Tools:          append(append([]string{}, s.Tools...), s.client.ToolID()),
		Phase1Complete: s.MarksPhaseComplete,
	}

	prompt := s.Compose(st, ev)
	invokeStart := time.Now()
	raw, err := s.client.Invoke(ctx, prompt, s.Schema)
	if s.telemetry != nil {
		s.telemetry.RecordInferenceEvent(ctx, telemetry.InferenceEvent{Tool: s.client.ToolID(), Success: err == nil, Duration: time.Since(invokeStart)})
	}
	if err == nil {
		record, decodeErr := s.Decode(raw, ev)
		if decodeErr == nil {
			delta.Record = record
			s.logger.Printf("completed in %s", time.Since(started).Round(time.Millisecond))
			return delta, nil
		}
		err = &InferenceFailure{Cause: fmt.Errorf("decode: %w", decodeErr), Output: string(raw)}
	}

	var failure *InferenceFailure
	if !errors.As(err, &failure) {
		return StateDelta{}, fmt.Errorf("%s inference: %w", s.Name, err)
	}

	s.logger.Printf("falling back after %s: %v", time.Since(started).Round(time.Millisecond), failure.Cause)
	delta.Record = s.Fallback(st, ev)
	delta.CurrentStep = s.FallbackStep
	delta.Errors = append(delta.Errors, fmt.Sprintf("%s: %v", s.ErrorPrefix, failure.Cause))
	return delta, nil
}
