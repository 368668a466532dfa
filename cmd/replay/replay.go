package main

import (
	"errors"
	"fmt"

	persistlog "tetherline.dev/internal/persistence/log"
	"tetherline.dev/internal/sim/world"
)

var errStop = errors.New("stop")

type result struct {
	// Runs counts server runs found in the log; each starts again at tick 0.
	Runs     int
	Checked  uint64
	LastTick uint64
}

type replayer struct {
	cfg        world.WorldConfig
	verifyFrom uint64
	toTick     uint64

	w   *world.World
	res result
}

func replayDir(cfg world.WorldConfig, worldDir string, verifyFrom, toTick uint64) (result, error) {
	r := &replayer{cfg: cfg, verifyFrom: verifyFrom, toTick: toTick}
	err := persistlog.ReadTicks(worldDir, r.apply)
	if errors.Is(err, errStop) {
		err = nil
	}
	if err == nil && r.res.Runs == 0 {
		err = fmt.Errorf("no tick entries under %s", worldDir)
	}
	return r.res, err
}

func (r *replayer) apply(entry world.TickLogEntry) error {
	if entry.Tick == 0 {
		w, err := world.New(r.cfg)
		if err != nil {
			return err
		}
		r.w = w
		r.res.Runs++
	}
	if r.w == nil {
		return fmt.Errorf("log starts at tick %d, want 0", entry.Tick)
	}
	if r.toTick != 0 && entry.Tick > r.toTick {
		return errStop
	}
	if entry.Tick != r.w.CurrentTick() {
		return fmt.Errorf("tick mismatch: want=%d got=%d", r.w.CurrentTick(), entry.Tick)
	}

	joins := make([]world.JoinRequest, 0, len(entry.Joins))
	resps := make([]chan world.JoinResponse, 0, len(entry.Joins))
	for _, j := range entry.Joins {
		resp := make(chan world.JoinResponse, 1)
		joins = append(joins, world.JoinRequest{Name: j.Name, Resp: resp})
		resps = append(resps, resp)
	}
	inputs := make([]world.InputEnvelope, 0, len(entry.Inputs))
	for _, in := range entry.Inputs {
		inputs = append(inputs, world.InputEnvelope{PlayerID: in.PlayerID, Input: in.Input()})
	}

	tick, digest := r.w.StepOnce(joins, entry.Leaves, inputs)
	if tick != entry.Tick {
		return fmt.Errorf("internal tick mismatch: stepped=%d entry=%d", tick, entry.Tick)
	}
	for i, resp := range resps {
		if got := (<-resp).Welcome.PlayerID; got != entry.Joins[i].PlayerID {
			return fmt.Errorf("tick %d: join %q got id %s want %s", tick, entry.Joins[i].Name, got, entry.Joins[i].PlayerID)
		}
	}
	r.res.LastTick = tick
	if tick >= r.verifyFrom {
		r.res.Checked++
		if digest != entry.Digest {
			return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, digest, entry.Digest)
		}
	}
	return nil
}
