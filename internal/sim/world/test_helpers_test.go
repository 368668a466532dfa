package world

import (
	"testing"

	"tetherline.dev/internal/protocol"
	"tetherline.dev/internal/sim/tuning"
)

func newTestWorld(t *testing.T, mutate func(*WorldConfig)) *World {
	t.Helper()
	cfg := ConfigFromTuning("test", tuning.Defaults())
	if mutate != nil {
		mutate(&cfg)
	}
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

// joinNow joins a player on the current tick and returns its id.
func joinNow(t *testing.T, w *World, name string, out chan []byte) string {
	t.Helper()
	resp := make(chan JoinResponse, 1)
	w.StepOnce([]JoinRequest{{Name: name, Out: out, Resp: resp}}, nil, nil)
	r := <-resp
	if r.Welcome.PlayerID == "" {
		t.Fatalf("empty player id")
	}
	return r.Welcome.PlayerID
}

func input(id string, activate, lock bool, move [3]float64) InputEnvelope {
	return InputEnvelope{PlayerID: id, Input: protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Activate:        activate,
		Lock:            lock,
		Move:            move,
	}}
}

type captureLogs struct {
	ticks  []TickLogEntry
	audits []AuditEntry
}

func (c *captureLogs) WriteTick(e TickLogEntry) error {
	c.ticks = append(c.ticks, e)
	return nil
}

func (c *captureLogs) WriteAudit(e AuditEntry) error {
	c.audits = append(c.audits, e)
	return nil
}

type captureMetrics struct {
	stats []TickStats
}

func (c *captureMetrics) ObserveTick(s TickStats) { c.stats = append(c.stats, s) }
