package world

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"tetherline.dev/internal/sim/physics"
)

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg WorldConfig

	tick atomic.Uint64

	space   *physics.Space
	players map[string]*Player
	clients map[string]*clientState

	observers map[string]*observerClient

	inputs        chan InputEnvelope
	join          chan JoinRequest
	leave         chan string
	observerJoin  chan ObserverJoinRequest
	observerLeave chan string
	stop          chan struct{}

	nextPlayerNum atomic.Uint64

	// Optional sinks (may be nil). Implemented in internal/persistence/* and
	// internal/metrics.
	tickLogger  TickLogger
	auditLogger AuditLogger
	metricsSink MetricsSink

	logger *log.Logger

	metrics atomic.Value // WorldMetrics
	latest  atomic.Value // []byte, last WORLD frame
}

func New(cfg WorldConfig) (*World, error) {
	cfg.applyDefaults()
	w := &World{
		cfg:           cfg,
		space:         physics.NewSpace(cfg.Physics),
		players:       map[string]*Player{},
		clients:       map[string]*clientState{},
		observers:     map[string]*observerClient{},
		inputs:        make(chan InputEnvelope, 1024),
		join:          make(chan JoinRequest, 64),
		leave:         make(chan string, 64),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerLeave: make(chan string, 16),
		stop:          make(chan struct{}),
	}
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger)   { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }
func (w *World) SetMetricsSink(m MetricsSink) { w.metricsSink = m }
func (w *World) SetLogger(l *log.Logger)      { w.logger = l }

func (w *World) Inputs() chan<- InputEnvelope             { return w.inputs }
func (w *World) Join() chan<- JoinRequest                 { return w.join }
func (w *World) Leave() chan<- string                     { return w.leave }
func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }
func (w *World) ObserverLeave() chan<- string             { return w.observerLeave }

func (w *World) ID() string            { return w.cfg.ID }
func (w *World) Config() WorldConfig   { return w.cfg }
func (w *World) CurrentTick() uint64   { return w.tick.Load() }
func (w *World) Space() *physics.Space { return w.space }

func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.TickDuration())
	defer ticker.Stop()

	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var pendingInputs []InputEnvelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inputs:
			pendingInputs = append(pendingInputs, env)
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingInputs)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingInputs = pendingInputs[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce runs exactly one tick outside Run, for replay and tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, inputs []InputEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.step(joins, leaves, inputs)
	return tick, w.stateDigest(tick)
}

// Player looks up a joined player. Only safe when the world loop is not
// running.
func (w *World) Player(id string) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

func (w *World) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
