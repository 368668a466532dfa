package tether

import (
	"fmt"
	"time"

	"tetherline.dev/internal/sim/physics"
)

// Solver is the part of the physics collaborator a tether needs.
// *physics.Space satisfies it.
type Solver interface {
	CreateBody(def physics.BodyDef) physics.BodyHandle
	RemoveBody(h physics.BodyHandle) error
	Transform(h physics.BodyHandle) (physics.Transform, bool)
	CreateJoint(def physics.JointDef) (physics.JointHandle, error)
	Joint(h physics.JointHandle) (physics.JointDef, bool)
	RetargetJoint(h physics.JointHandle, b physics.BodyHandle) error
}

// Input is the per-tick signal from the owning player. Both fields are edges:
// true only on the tick the button went down.
type Input struct {
	Activate   bool
	ToggleLock bool
}

// Outcome describes what one Update did.
type Outcome struct {
	Deployed bool
	Spliced  bool
	// Body is the stake on deployment or the new segment on a splice.
	Body physics.BodyHandle
	Pos  physics.Vec3

	StaleTelemetry bool
	SpliceAborted  bool
	Err            error
}

type Tether struct {
	cfg    Config
	player physics.BodyHandle

	State State
}

// New returns an idle tether that will chase player once deployed.
func New(cfg Config, player physics.BodyHandle) *Tether {
	cfg.applyDefaults()
	return &Tether{
		cfg:    cfg,
		player: player,
		State: State{
			MaxSegments: cfg.MaxSegments,
			Threshold:   cfg.Threshold,
			Cooldown:    Cooldown{Interval: cfg.Cooldown},
		},
	}
}

func (t *Tether) Config() Config             { return t.cfg }
func (t *Tether) Player() physics.BodyHandle { return t.player }

// Update runs one tick: cooldown, deployment, telemetry, decision, splice, in
// that order. Every solver mutation it makes is complete when it returns, so
// the caller must step the solver only between Updates.
func (t *Tether) Update(s Solver, in Input, dt time.Duration) Outcome {
	var out Outcome
	st := &t.State

	st.Cooldown.Advance(dt)
	if in.ToggleLock && st.Deployed {
		st.Locked = !st.Locked
	}
	if in.Activate {
		t.deploy(s, &out)
	}
	if !t.measure(s) && st.Deployed {
		out.StaleTelemetry = true
	}
	if st.ShouldExtend() {
		t.splice(s, &out)
	}
	return out
}

func (t *Tether) deploy(s Solver, out *Outcome) {
	st := &t.State
	if st.Deployed {
		return
	}
	pt, ok := s.Transform(t.player)
	if !ok {
		return
	}

	stake := s.CreateBody(physics.BodyDef{
		Pos:    pt.Pos,
		Kind:   physics.Static,
		Radius: t.cfg.StakeRadius,
		Label:  "stake",
	})
	final, err := s.CreateJoint(t.cfg.StakeJoint.def(stake, t.player, "stake"))
	if err != nil {
		_ = s.RemoveBody(stake)
		return
	}
	var leash physics.JointHandle
	if t.cfg.LeashLength > 0 {
		leash, err = s.CreateJoint(physics.JointDef{
			A:          stake,
			B:          t.player,
			OffsetA:    t.cfg.StakeJoint.OffsetA,
			OffsetB:    t.cfg.StakeJoint.OffsetB,
			MaxLength:  t.cfg.LeashLength,
			Compliance: t.cfg.LeashCompliance,
			Label:      "leash",
		})
		if err != nil {
			_ = s.RemoveBody(stake)
			return
		}
	}

	st.Deployed = true
	st.Segments = 0
	st.Stake = stake
	st.Anchor = stake
	st.Target = t.player
	st.FinalJoint = final
	st.Leash = leash

	out.Deployed = true
	out.Body = stake
	out.Pos = pt.Pos
}

// measure refreshes Distance. It reports false and leaves the previous value
// when either end does not resolve.
func (t *Tether) measure(s Solver) bool {
	st := &t.State
	if !st.Anchor.Valid() || !st.Target.Valid() {
		return false
	}
	a, ok := s.Transform(st.Anchor)
	if !ok {
		return false
	}
	b, ok := s.Transform(st.Target)
	if !ok {
		return false
	}
	st.Distance = a.Pos.Dist(b.Pos)
	return true
}

// splice inserts one segment between the anchor and the target. All handles
// are resolved before anything is created; a failure after that undoes the
// new body (and with it any joint attached to it).
func (t *Tether) splice(s Solver, out *Outcome) {
	st := &t.State
	abort := func(err error) {
		out.SpliceAborted = true
		out.Err = err
	}

	at, ok := s.Transform(st.Anchor)
	if !ok {
		abort(fmt.Errorf("anchor %s: %w", st.Anchor, physics.ErrStaleBody))
		return
	}
	tt, ok := s.Transform(st.Target)
	if !ok {
		abort(fmt.Errorf("target %s: %w", st.Target, physics.ErrStaleBody))
		return
	}
	if _, ok := s.Joint(st.FinalJoint); !ok {
		abort(fmt.Errorf("final joint %s: %w", st.FinalJoint, physics.ErrStaleJoint))
		return
	}

	pos := SpawnPoint(at.Pos, tt.Pos, t.cfg.RestLength)
	seg := s.CreateBody(physics.BodyDef{
		Pos:    pos,
		Kind:   physics.Dynamic,
		Mass:   t.cfg.SegmentMass,
		Radius: t.cfg.SegmentRadius,
		Label:  "segment",
	})
	next, err := s.CreateJoint(t.cfg.SegmentJoint.def(seg, st.Target, "segment"))
	if err != nil {
		_ = s.RemoveBody(seg)
		abort(fmt.Errorf("segment joint: %w", err))
		return
	}
	if err := s.RetargetJoint(st.FinalJoint, seg); err != nil {
		_ = s.RemoveBody(seg)
		abort(fmt.Errorf("retarget final joint: %w", err))
		return
	}

	st.Anchor = seg
	st.FinalJoint = next
	st.Segments++
	st.Cooldown.Reset()

	out.Spliced = true
	out.Body = seg
	out.Pos = pos
}

// SpawnPoint places a new segment restLength along anchor->target, but never
// past the midpoint of the span.
func SpawnPoint(anchor, target physics.Vec3, restLength float64) physics.Vec3 {
	span := target.Sub(anchor)
	half := span.Len() / 2
	off := restLength
	if off <= 0 || off > half {
		off = half
	}
	return anchor.Add(span.NormalizeOrZero().Scale(off))
}
