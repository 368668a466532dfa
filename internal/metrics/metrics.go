// Package metrics exports world tick statistics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tetherline.dev/internal/sim/world"
)

// Recorder implements world.MetricsSink. Each Recorder owns its registry so
// tests and multiple servers in one process do not collide.
type Recorder struct {
	reg *prometheus.Registry

	ticks          prometheus.Counter
	deploys        prometheus.Counter
	splices        prometheus.Counter
	staleTelemetry prometheus.Counter
	spliceAborts   prometheus.Counter

	players   prometheus.Gauge
	observers prometheus.Gauge
	bodies    prometheus.Gauge
	joints    prometheus.Gauge
	segments  prometheus.Gauge

	stepSeconds prometheus.Histogram
}

func New(worldID string) *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(reg)
	labels := prometheus.Labels{"world": worldID}
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{Namespace: "tetherline", Name: name, Help: help, ConstLabels: labels})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Namespace: "tetherline", Name: name, Help: help, ConstLabels: labels})
	}

	return &Recorder{
		reg:            reg,
		ticks:          counter("ticks_total", "Simulation ticks completed."),
		deploys:        counter("deploys_total", "Tethers deployed."),
		splices:        counter("splices_total", "Segments spliced into tethers."),
		staleTelemetry: counter("stale_telemetry_total", "Tether updates whose distance could not be measured."),
		spliceAborts:   counter("splice_aborts_total", "Splices skipped because a handle no longer resolved."),
		players:        gauge("players", "Joined players."),
		observers:      gauge("observers", "Connected observer sessions."),
		bodies:         gauge("bodies", "Live bodies in the physics space."),
		joints:         gauge("joints", "Live joints in the physics space."),
		segments:       gauge("segments", "Segments across all tethers."),
		stepSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "tetherline",
			Name:        "step_duration_seconds",
			Help:        "Wall time of one world step.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.00005, 2, 14),
		}),
	}
}

func (r *Recorder) ObserveTick(s world.TickStats) {
	r.ticks.Inc()
	r.deploys.Add(float64(s.Deploys))
	r.splices.Add(float64(s.Splices))
	r.staleTelemetry.Add(float64(s.StaleTelemetry))
	r.spliceAborts.Add(float64(s.SpliceAborts))

	r.players.Set(float64(s.Players))
	r.observers.Set(float64(s.Observers))
	r.bodies.Set(float64(s.Bodies))
	r.joints.Set(float64(s.Joints))
	r.segments.Set(float64(s.Segments))

	r.stepSeconds.Observe(s.StepDuration.Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
