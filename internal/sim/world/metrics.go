package world

import "time"

// TickStats is what one tick did, handed to the metrics sink from the world
// loop goroutine.
type TickStats struct {
	Tick uint64

	Players   int
	Observers int
	Bodies    int
	Joints    int
	Segments  int

	Deploys        int
	Splices        int
	StaleTelemetry int
	SpliceAborts   int

	StepDuration time.Duration
}

type MetricsSink interface {
	ObserveTick(s TickStats)
}

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Players   int `json:"players"`
	Clients   int `json:"clients"`
	Observers int `json:"observers"`
	Bodies    int `json:"bodies"`
	Joints    int `json:"joints"`
	Segments  int `json:"segments"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Inputs int `json:"inputs"`
	Join   int `json:"join"`
	Leave  int `json:"leave"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}
