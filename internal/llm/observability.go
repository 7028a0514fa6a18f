package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LLMCallEvent records metadata about a single LLM invocation.
type LLMCallEvent struct {
	Task      TaskType
	Model     string
	LatencyMs int64
	Attempts  int
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes LLM call events as structured log records.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events through logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	status := "ok"
	level := slog.LevelInfo
	if !event.Success {
		status = "err:" + event.ErrorCode
		level = slog.LevelWarn
	}
	o.logger.Log(context.Background(), level, "llm_call",
		"task", string(event.Task),
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"attempts", event.Attempts,
		"status", status,
	)
}

// PrometheusObserver records LLM call counts and latencies.
type PrometheusObserver struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusObserver registers the LLM collectors on reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	factory := promauto.With(reg)
	return &PrometheusObserver{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealnotes_llm_calls_total",
				Help: "Total number of language model calls by task and status",
			},
			[]string{"task", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dealnotes_llm_call_duration_seconds",
				Help:    "Language model call duration in seconds, retries included",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"task"},
		),
	}
}

func (o *PrometheusObserver) OnCallComplete(event LLMCallEvent) {
	status := "success"
	if !event.Success {
		status = "error"
		if event.ErrorCode == "TIMEOUT" {
			status = "timeout"
		}
	}
	o.calls.WithLabelValues(string(event.Task), status).Inc()
	o.duration.WithLabelValues(string(event.Task)).Observe(
		(time.Duration(event.LatencyMs) * time.Millisecond).Seconds(),
	)
}

// MultiObserver fans an event out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event LLMCallEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallComplete(event)
		}
	}
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}
