package physics

import (
	"errors"
	"math"
	"testing"
)

func TestSpace_StaleHandleAfterRemoveAndReuse(t *testing.T) {
	s := NewSpace(Config{})
	h1 := s.CreateBody(BodyDef{Pos: V3(1, 0, 0)})
	if err := s.RemoveBody(h1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Transform(h1); ok {
		t.Fatalf("expected removed body to stop resolving")
	}

	h2 := s.CreateBody(BodyDef{Pos: V3(2, 0, 0)})
	if h2.Index != h1.Index {
		t.Fatalf("expected slot reuse: h1=%s h2=%s", h1, h2)
	}
	if h2.Gen == h1.Gen {
		t.Fatalf("expected generation bump on reuse: %s", h2)
	}
	if _, ok := s.Transform(h1); ok {
		t.Fatalf("old handle resolved against reused slot")
	}
	tr, ok := s.Transform(h2)
	if !ok || tr.Pos.X != 2 {
		t.Fatalf("new handle: ok=%v pos=%v", ok, tr.Pos)
	}
	if err := s.RemoveBody(h1); !errors.Is(err, ErrStaleBody) {
		t.Fatalf("double remove err=%v", err)
	}
}

func TestSpace_ZeroHandlesNeverResolve(t *testing.T) {
	s := NewSpace(Config{})
	s.CreateBody(BodyDef{})
	if _, ok := s.Transform(BodyHandle{}); ok {
		t.Fatalf("zero body handle resolved")
	}
	if _, ok := s.Joint(JointHandle{}); ok {
		t.Fatalf("zero joint handle resolved")
	}
}

func TestSpace_RemoveBodyDropsAttachedJoints(t *testing.T) {
	s := NewSpace(Config{})
	a := s.CreateBody(BodyDef{Kind: Static})
	b := s.CreateBody(BodyDef{Pos: V3(1, 0, 0)})
	c := s.CreateBody(BodyDef{Pos: V3(2, 0, 0)})
	jab, err := s.CreateJoint(JointDef{A: a, B: b, MaxLength: 1})
	if err != nil {
		t.Fatalf("joint ab: %v", err)
	}
	jbc, err := s.CreateJoint(JointDef{A: b, B: c, MaxLength: 1})
	if err != nil {
		t.Fatalf("joint bc: %v", err)
	}

	if err := s.RemoveBody(b); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Joint(jab); ok {
		t.Fatalf("joint a-b survived body removal")
	}
	if _, ok := s.Joint(jbc); ok {
		t.Fatalf("joint b-c survived body removal")
	}
	if s.JointCount() != 0 || s.BodyCount() != 2 {
		t.Fatalf("joints=%d bodies=%d", s.JointCount(), s.BodyCount())
	}
}

func TestSpace_CreateJointRejectsStaleAndSameBody(t *testing.T) {
	s := NewSpace(Config{})
	a := s.CreateBody(BodyDef{})
	b := s.CreateBody(BodyDef{})
	_ = s.RemoveBody(b)

	if _, err := s.CreateJoint(JointDef{A: a, B: b}); !errors.Is(err, ErrStaleBody) {
		t.Fatalf("stale b: err=%v", err)
	}
	if _, err := s.CreateJoint(JointDef{A: a, B: a}); !errors.Is(err, ErrSameBody) {
		t.Fatalf("same body: err=%v", err)
	}
	if s.JointCount() != 0 {
		t.Fatalf("failed creates left joints behind: %d", s.JointCount())
	}
}

func TestSpace_RetargetJointKeepsHandleAndLimits(t *testing.T) {
	s := NewSpace(Config{})
	a := s.CreateBody(BodyDef{Kind: Static})
	b := s.CreateBody(BodyDef{Pos: V3(0.4, 0, 0)})
	c := s.CreateBody(BodyDef{Pos: V3(0.2, 0, 0)})
	j, err := s.CreateJoint(JointDef{A: a, B: b, MinLength: 0, MaxLength: 0.5, Compliance: 0.001})
	if err != nil {
		t.Fatalf("joint: %v", err)
	}

	if err := s.RetargetJoint(j, c); err != nil {
		t.Fatalf("retarget: %v", err)
	}
	def, ok := s.Joint(j)
	if !ok {
		t.Fatalf("joint handle stopped resolving after retarget")
	}
	if def.A != a || def.B != c || def.MaxLength != 0.5 || def.Compliance != 0.001 {
		t.Fatalf("unexpected joint after retarget: %+v", def)
	}
	if got := s.JointsTo(b); len(got) != 0 {
		t.Fatalf("old target still has incoming joints: %v", got)
	}
	if err := s.RetargetJoint(j, a); !errors.Is(err, ErrSameBody) {
		t.Fatalf("retarget onto own A end: err=%v", err)
	}
}

func TestStep_ProjectsStretchedJointToMaxLength(t *testing.T) {
	s := NewSpace(Config{Iterations: 4})
	anchor := s.CreateBody(BodyDef{Kind: Static})
	bob := s.CreateBody(BodyDef{Pos: V3(2, 0, 0), Mass: 1})
	if _, err := s.CreateJoint(JointDef{A: anchor, B: bob, MaxLength: 1}); err != nil {
		t.Fatalf("joint: %v", err)
	}

	s.Step(1.0 / 60)

	at, _ := s.Transform(anchor)
	bt, _ := s.Transform(bob)
	if at.Pos != (Vec3{}) {
		t.Fatalf("static anchor moved: %v", at.Pos)
	}
	if d := at.Pos.Dist(bt.Pos); math.Abs(d-1) > 1e-6 {
		t.Fatalf("distance after projection = %f, want 1", d)
	}
}

func TestStep_SlackJointAppliesNoCorrection(t *testing.T) {
	s := NewSpace(Config{})
	anchor := s.CreateBody(BodyDef{Kind: Static})
	bob := s.CreateBody(BodyDef{Pos: V3(0.3, 0, 0)})
	if _, err := s.CreateJoint(JointDef{A: anchor, B: bob, MaxLength: 0.5}); err != nil {
		t.Fatalf("joint: %v", err)
	}
	s.Step(1.0 / 60)
	b, _ := s.Body(bob)
	if b.Pos != V3(0.3, 0, 0) || b.Vel != (Vec3{}) {
		t.Fatalf("slack joint moved body: pos=%v vel=%v", b.Pos, b.Vel)
	}
}

func TestStep_GroundClampsFallingBodies(t *testing.T) {
	s := NewSpace(Config{Gravity: V3(0, -30, 0), Ground: true, GroundY: 0})
	h := s.CreateBody(BodyDef{Pos: V3(0, 0.1, 0), Radius: 0.1})
	for i := 0; i < 30; i++ {
		s.Step(1.0 / 60)
	}
	b, _ := s.Body(h)
	if b.Pos.Y < 0.1-1e-9 {
		t.Fatalf("body sank below ground: y=%f", b.Pos.Y)
	}
	if b.Vel.Y < 0 {
		t.Fatalf("resting body keeps falling velocity: %f", b.Vel.Y)
	}
}
