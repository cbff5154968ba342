package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ideaforge/config"
)

// Telemetry tracks pipeline performance: stage outcomes, signal
// provider activity and inference latency. Counters live in-memory for
// the shutdown report and are mirrored into a private prometheus
// registry served on /metrics when enabled.
type Telemetry struct {
	config  config.TelemetryConfig
	logger  *log.Logger
	metrics *Metrics
	server  *http.Server
	mu      sync.RWMutex

	registry           *prometheus.Registry
	stageExecutions    *prometheus.CounterVec
	stageDurations     *prometheus.HistogramVec
	signalPayloads     *prometheus.CounterVec
	signalFailures     *prometheus.CounterVec
	inferenceRequests  *prometheus.CounterVec
	inferenceDurations *prometheus.HistogramVec
}

// Metrics holds the in-memory counters behind the shutdown report
type Metrics struct {
	StageExecutions   map[string]int64
	StageSuccesses    map[string]int64
	StageAverageTimes map[string]time.Duration

	SignalPayloads map[string]int64
	SignalFailures map[string]int64

	InferenceRequests       map[string]int64
	InferenceFailures       map[string]int64
	InferenceAverageLatency map[string]time.Duration
}

// StageEvent records one stage run. Outcome is success, fallback or
// fatal; success and fallback both count as completed executions.
type StageEvent struct {
	Stage    string
	Outcome  string
	Duration time.Duration
}

// SignalEvent records the gather tallies of one stage run.
type SignalEvent struct {
	Stage    string
	Payloads int
	Failures int
}

// InferenceEvent records a single model invocation.
type InferenceEvent struct {
	Tool     string
	Success  bool
	Duration time.Duration
}

// NewTelemetry creates a new telemetry instance
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	t := &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: &Metrics{
			StageExecutions:         make(map[string]int64),
			StageSuccesses:          make(map[string]int64),
			StageAverageTimes:       make(map[string]time.Duration),
			SignalPayloads:          make(map[string]int64),
			SignalFailures:          make(map[string]int64),
			InferenceRequests:       make(map[string]int64),
			InferenceFailures:       make(map[string]int64),
			InferenceAverageLatency: make(map[string]time.Duration),
		},
		registry: prometheus.NewRegistry(),
	}

	t.stageExecutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideaforge",
		Name:      "stage_executions_total",
		Help:      "Stage executions by outcome.",
	}, []string{"stage", "outcome"})
	t.stageDurations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ideaforge",
		Name:      "stage_duration_seconds",
		Help:      "Wall time per stage run.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})
	t.signalPayloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideaforge",
		Name:      "signal_payloads_total",
		Help:      "Provider payloads gathered per stage.",
	}, []string{"stage"})
	t.signalFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideaforge",
		Name:      "signal_failures_total",
		Help:      "Provider failures recorded per stage.",
	}, []string{"stage"})
	t.inferenceRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideaforge",
		Name:      "inference_requests_total",
		Help:      "Inference invocations by outcome.",
	}, []string{"tool", "outcome"})
	t.inferenceDurations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ideaforge",
		Name:      "inference_duration_seconds",
		Help:      "Latency per inference invocation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})
	t.registry.MustRegister(t.stageExecutions, t.stageDurations, t.signalPayloads, t.signalFailures, t.inferenceRequests, t.inferenceDurations)

	if cfg.Enabled && cfg.MetricsPort > 0 {
		t.serveMetrics()
	}
	if cfg.Enabled && cfg.PeriodicLogs {
		go t.startMetricsCollection()
	}

	return t
}

// RecordStageEvent records a stage run outcome
func (t *Telemetry) RecordStageEvent(ctx context.Context, event StageEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.StageExecutions[event.Stage]++
	if event.Outcome == "success" {
		t.metrics.StageSuccesses[event.Stage]++
	}
	executions := t.metrics.StageExecutions[event.Stage]
	currentAvg := t.metrics.StageAverageTimes[event.Stage]
	if executions == 1 {
		t.metrics.StageAverageTimes[event.Stage] = event.Duration
	} else {
		total := currentAvg * time.Duration(executions-1)
		t.metrics.StageAverageTimes[event.Stage] = (total + event.Duration) / time.Duration(executions)
	}

	t.stageExecutions.WithLabelValues(event.Stage, event.Outcome).Inc()
	t.stageDurations.WithLabelValues(event.Stage).Observe(event.Duration.Seconds())

	t.logger.Printf("Stage Event: Stage=%s, Outcome=%s, Duration=%v", event.Stage, event.Outcome, event.Duration)
}

// RecordSignalEvent records the gather tallies of a stage run
func (t *Telemetry) RecordSignalEvent(ctx context.Context, event SignalEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.SignalPayloads[event.Stage] += int64(event.Payloads)
	t.metrics.SignalFailures[event.Stage] += int64(event.Failures)

	t.signalPayloads.WithLabelValues(event.Stage).Add(float64(event.Payloads))
	t.signalFailures.WithLabelValues(event.Stage).Add(float64(event.Failures))
}

// RecordInferenceEvent records a model invocation
func (t *Telemetry) RecordInferenceEvent(ctx context.Context, event InferenceEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.InferenceRequests[event.Tool]++
	outcome := "success"
	if !event.Success {
		t.metrics.InferenceFailures[event.Tool]++
		outcome = "failure"
	}
	requests := t.metrics.InferenceRequests[event.Tool]
	currentAvg := t.metrics.InferenceAverageLatency[event.Tool]
	if requests == 1 {
		t.metrics.InferenceAverageLatency[event.Tool] = event.Duration
	} else {
		total := currentAvg * time.Duration(requests-1)
		t.metrics.InferenceAverageLatency[event.Tool] = (total + event.Duration) / time.Duration(requests)
	}

	t.inferenceRequests.WithLabelValues(event.Tool, outcome).Inc()
	t.inferenceDurations.WithLabelValues(event.Tool).Observe(event.Duration.Seconds())

	t.logger.Printf("Inference Event: Tool=%s, Success=%t, Duration=%v", event.Tool, event.Success, event.Duration)
}

// GetMetrics returns current metrics snapshot
func (t *Telemetry) GetMetrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	metrics := Metrics{
		StageExecutions:         make(map[string]int64),
		StageSuccesses:          make(map[string]int64),
		StageAverageTimes:       make(map[string]time.Duration),
		SignalPayloads:          make(map[string]int64),
		SignalFailures:          make(map[string]int64),
		InferenceRequests:       make(map[string]int64),
		InferenceFailures:       make(map[string]int64),
		InferenceAverageLatency: make(map[string]time.Duration),
	}
	for k, v := range t.metrics.StageExecutions {
		metrics.StageExecutions[k] = v
	}
	for k, v := range t.metrics.StageSuccesses {
		metrics.StageSuccesses[k] = v
	}
	for k, v := range t.metrics.StageAverageTimes {
		metrics.StageAverageTimes[k] = v
	}
	for k, v := range t.metrics.SignalPayloads {
		metrics.SignalPayloads[k] = v
	}
	for k, v := range t.metrics.SignalFailures {
		metrics.SignalFailures[k] = v
	}
	for k, v := range t.metrics.InferenceRequests {
		metrics.InferenceRequests[k] = v
	}
	for k, v := range t.metrics.InferenceFailures {
		metrics.InferenceFailures[k] = v
	}
	for k, v := range t.metrics.InferenceAverageLatency {
		metrics.InferenceAverageLatency[k] = v
	}
	return metrics
}

// Summary returns a detailed performance report
func (t *Telemetry) Summary() string {
	metrics := t.GetMetrics()

	report := "\n=== PIPELINE REPORT ===\nStage Performance:\n"
	for stage, executions := range metrics.StageExecutions {
		successes := metrics.StageSuccesses[stage]
		avgTime := metrics.StageAverageTimes[stage]
		report += fmt.Sprintf("  %s: %d executions, %.2f%% success, %v avg time\n",
			stage, executions, float64(successes)/float64(executions)*100, avgTime)
	}

	report += "\nSignal Activity:\n"
	for stage, payloads := range metrics.SignalPayloads {
		report += fmt.Sprintf("  %s: %d payloads, %d failures\n", stage, payloads, metrics.SignalFailures[stage])
	}

	report += "\nInference Usage:\n"
	for tool, requests := range metrics.InferenceRequests {
		failures := metrics.InferenceFailures[tool]
		avgLatency := metrics.InferenceAverageLatency[tool]
		report += fmt.Sprintf("  %s: %d requests, %d failures, %v avg latency\n", tool, requests, failures, avgLatency)
	}
	return report
}

// serveMetrics exposes the private registry on /metrics.
func (t *Telemetry) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}))
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.config.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		t.logger.Printf("serving metrics on :%d", t.config.MetricsPort)
		if err := t.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Printf("metrics server: %v", err)
		}
	}()
}

// startMetricsCollection logs a metrics snapshot once a minute
func (t *Telemetry) startMetricsCollection() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		metrics := t.GetMetrics()
		var executions, successes int64
		for stage, n := range metrics.StageExecutions {
			executions += n
			successes += metrics.StageSuccesses[stage]
		}
		t.logger.Printf("Metrics Snapshot: Stages=%d/%d successful", successes, executions)
	}
}

// Shutdown gracefully shuts down the telemetry system
func (t *Telemetry) Shutdown() {
	if !t.config.Enabled {
		return
	}
	t.logger.Println("Shutting down telemetry system...")
	t.logger.Print(t.Summary())
	if t.server != nil {
		_ = t.server.Close()
	}
}
