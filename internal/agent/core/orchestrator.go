package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ideaforge/config"
	"ideaforge/internal/agent/telemetry"
	"ideaforge/tools/signals"
)

// Snapshotter persists a state snapshot after each stage. Implemented
// by the file store; nil disables snapshots entirely.
type Snapshotter interface {
	SaveSnapshot(runID, step string, st PipelineState) (string, error)
}

var pipelineTracer trace.Tracer = otel.Tracer("ideaforge/internal/agent/pipeline")

// Orchestrator runs the research stages strictly in order, folding each
// stage's contribution into the pipeline state. A stage error aborts
// the run; stage fallbacks do not, they are part of normal operation.
type Orchestrator struct {
	config    *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry
	stages    []Stage
	store     Snapshotter
}

// NewOrchestrator creates a new orchestrator instance
func NewOrchestrator(cfg *config.Config, logger *log.Logger, tel *telemetry.Telemetry, store Snapshotter) (*Orchestrator, error) {
	client, err := newLLMBackedClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference client: %w", err)
	}

	registry := signals.NewRegistry(cfg.Signals)
	stages := buildStages(registry, client, cfg.Fallbacks.Normalize())
	for i := range stages {
		stages[i].telemetry = tel
	}

	return &Orchestrator{
		config:    cfg,
		logger:    logger,
		telemetry: tel,
		stages:    stages,
		store:     store,
	}, nil
}

// Execute runs the full pipeline for one research request and returns
// the final state. The returned state is also valid when err is
// non-nil: it holds everything folded in before the failing stage.
func (o *Orchestrator) Execute(ctx context.Context, input UserInput) (PipelineState, error) {
	if err := input.Validate(); err != nil {
		return PipelineState{}, fmt.Errorf("invalid input: %w", err)
	}

	runID := uuid.NewString()
	startTime := time.Now()

	st := NewPipelineState(input)
	st.DebugMode = o.config.General.Debug
	st.SaveIntermediateResults = o.config.Storage.File.SaveIntermediate

	ctx, span := pipelineTracer.Start(ctx, "pipeline.execute",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("input.industry", input.IndustryMarket),
			attribute.String("input.region", input.CountryRegion),
		))
	defer span.End()

	o.logger.Printf("Starting research run %s for industry %q in %q", runID, input.IndustryMarket, input.CountryRegion)

	for i := range o.stages {
		stage := &o.stages[i]
		stageStart := time.Now()
		stageCtx, stageSpan := pipelineTracer.Start(ctx, "stage."+stage.Name)

		delta, err := stage.Run(stageCtx, st)
		if err != nil {
			stageSpan.RecordError(err)
			stageSpan.SetStatus(codes.Error, err.Error())
			stageSpan.End()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if o.telemetry != nil {
				o.telemetry.RecordStageEvent(ctx, telemetry.StageEvent{Stage: stage.Name, Outcome: "fatal", Duration: time.Since(stageStart)})
			}
			return st, fmt.Errorf("stage %s: %w", stage.Name, err)
		}

		st = st.Apply(delta)

		outcome := "success"
		if delta.CurrentStep == stage.FallbackStep {
			outcome = "fallback"
		}
		if o.telemetry != nil {
			o.telemetry.RecordStageEvent(ctx, telemetry.StageEvent{Stage: stage.Name, Outcome: outcome, Duration: time.Since(stageStart)})
		}
		stageSpan.SetAttributes(attribute.String("stage.outcome", outcome))
		stageSpan.SetStatus(codes.Ok, "completed")
		stageSpan.End()

		if st.SaveIntermediateResults && o.store != nil {
			path, err := o.store.SaveSnapshot(runID, st.CurrentStep, st)
			if err != nil {
				o.logger.Printf("saving snapshot after %s failed: %v", stage.Name, err)
			} else {
				o.logger.Printf("saved snapshot: %s", path)
			}
		}
	}

	span.SetAttributes(
		attribute.String("run.final_step", st.CurrentStep),
		attribute.Int("run.error_count", len(st.Errors)),
		attribute.Int("run.filled_slots", len(st.ResearchOutput.FilledSlots())),
	)
	span.SetStatus(codes.Ok, "completed")
	o.logger.Printf("Completed research run %s in %v (final step %s, %d errors)",
		runID, time.Since(startTime).Round(time.Millisecond), st.CurrentStep, len(st.Errors))

	return st, nil
}
