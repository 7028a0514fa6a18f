package service

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UseCaseEvent is what a service reports once per call: its outcome, how
// long it took and any identifiers worth logging.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
}

type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// useCaseObserverOrNoop picks the first non-nil observer so constructors
// can take observers as an optional trailing argument.
func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

// useCase times one service call. Fields set along the way are reported by
// end, which callers defer with their named error.
type useCase struct {
	observer UseCaseObserver
	clock    func() time.Time
	event    UseCaseEvent
}

func startUseCase(observer UseCaseObserver, clock func() time.Time, name string) *useCase {
	return &useCase{
		observer: observer,
		clock:    clock,
		event:    UseCaseEvent{Name: name, StartedAt: clock(), Fields: map[string]any{}},
	}
}

func (u *useCase) set(key string, value any) {
	u.event.Fields[key] = value
}

func (u *useCase) end(ctx context.Context, err error) {
	u.event.Duration = u.clock().Sub(u.event.StartedAt)
	u.event.Success = err == nil
	u.event.Err = err
	u.observer.ObserveUseCase(ctx, u.event)
}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver logs each use case as one "service_use_case" line,
// at error level when it failed.
func NewLogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := []slog.Attr{
		slog.String("use_case", event.Name),
		slog.Int64("duration_ms", event.Duration.Milliseconds()),
		slog.Bool("success", event.Success),
	}
	for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
		attrs = append(attrs, slog.Any(k, event.Fields[k]))
	}
	level := slog.LevelInfo
	if event.Err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	o.logger.LogAttrs(ctx, level, "service_use_case", attrs...)
}

// Pipeline stages and outcomes reported by PipelineMetrics.
const (
	StageExtract  = "extract"
	StagePersist  = "persist"
	StageFollowup = "followup"

	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// PipelineMetrics counts pipeline stage outcomes. A nil *PipelineMetrics
// records nothing.
type PipelineMetrics struct {
	runs *prometheus.CounterVec
}

// NewPipelineMetrics registers dealnotes_pipeline_runs_total on reg.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	return &PipelineMetrics{
		runs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dealnotes_pipeline_runs_total",
			Help: "Pipeline stage executions by outcome.",
		}, []string{"stage", "outcome"}),
	}
}

func (m *PipelineMetrics) record(stage string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailed
	}
	m.runs.WithLabelValues(stage, outcome).Inc()
}
