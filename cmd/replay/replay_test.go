package main

import (
	"strings"
	"testing"

	persistlog "tetherline.dev/internal/persistence/log"
	"tetherline.dev/internal/protocol"
	"tetherline.dev/internal/sim/tuning"
	"tetherline.dev/internal/sim/world"
)

func recordRun(t *testing.T, dir string, cfg world.WorldConfig, ticks int) {
	t.Helper()
	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	tl := persistlog.NewTickLogger(dir)
	w.SetTickLogger(tl)

	w.StepOnce([]world.JoinRequest{{Name: "a"}, {Name: "b"}}, nil, nil)
	for i := 1; i < ticks; i++ {
		var inputs []world.InputEnvelope
		switch {
		case i == 1:
			inputs = append(inputs, in("P1", true, [3]float64{1, 0, 0}))
		case i == 5:
			inputs = append(inputs, in("P2", true, [3]float64{0, 0, -0.7}))
		case i == 40:
			inputs = append(inputs, in("P1", false, [3]float64{0.3, 0, 0.9}))
		}
		var leaves []string
		if i == ticks-2 {
			leaves = []string{"P2"}
		}
		w.StepOnce(nil, leaves, inputs)
	}
	if err := tl.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func in(id string, activate bool, move [3]float64) world.InputEnvelope {
	return world.InputEnvelope{PlayerID: id, Input: protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Activate:        activate,
		Move:            move,
	}}
}

func TestReplayDir_VerifiesDigests(t *testing.T) {
	dir := t.TempDir()
	cfg := world.ConfigFromTuning("replay", tuning.Defaults())
	recordRun(t, dir, cfg, 120)

	res, err := replayDir(cfg, dir, 0, 0)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Runs != 1 || res.Checked != 120 || res.LastTick != 119 {
		t.Fatalf("res=%+v", res)
	}

	res, err = replayDir(cfg, dir, 50, 80)
	if err != nil {
		t.Fatalf("replay window: %v", err)
	}
	if res.Checked != 31 || res.LastTick != 80 {
		t.Fatalf("window res=%+v", res)
	}
}

func TestReplayDir_DetectsDivergence(t *testing.T) {
	dir := t.TempDir()
	cfg := world.ConfigFromTuning("replay", tuning.Defaults())
	recordRun(t, dir, cfg, 120)

	other := cfg
	other.Tether.MaxSegments = 1
	_, err := replayDir(other, dir, 0, 0)
	if err == nil || !strings.Contains(err.Error(), "digest mismatch") {
		t.Fatalf("err=%v", err)
	}
}

func TestReplayDir_Empty(t *testing.T) {
	if _, err := replayDir(world.ConfigFromTuning("x", tuning.Defaults()), t.TempDir(), 0, 0); err == nil {
		t.Fatalf("expected error for missing events")
	}
}
