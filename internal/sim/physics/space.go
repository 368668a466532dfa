package physics

import "fmt"

type BodyKind uint8

const (
	Dynamic BodyKind = iota
	Static
)

func (k BodyKind) String() string {
	switch k {
	case Static:
		return "STATIC"
	default:
		return "DYNAMIC"
	}
}

// BodyDef describes a body to create. Bodies are spheres for ground contact;
// the solver has no other collision.
type BodyDef struct {
	Pos    Vec3
	Kind   BodyKind
	Mass   float64
	Radius float64
	Label  string
}

type Body struct {
	Pos    Vec3
	Vel    Vec3
	Kind   BodyKind
	Radius float64
	Label  string

	invMass float64
	prev    Vec3
}

type Transform struct {
	Pos Vec3
}

// JointDef is a length-bounded distance constraint between two bodies. A is the
// end nearer the anchor by convention; the solver treats both ends alike.
type JointDef struct {
	A          BodyHandle
	B          BodyHandle
	OffsetA    Vec3
	OffsetB    Vec3
	MinLength  float64
	MaxLength  float64
	Compliance float64
	Label      string
}

type Config struct {
	Gravity    Vec3
	Iterations int
	Ground     bool
	GroundY    float64
}

func (c *Config) applyDefaults() {
	if c.Iterations <= 0 {
		c.Iterations = 8
	}
}

// Space is the body registry and joint directory. It is not safe for
// concurrent use; the world loop owns it.
type Space struct {
	cfg    Config
	bodies arena[Body]
	joints arena[JointDef]
}

func NewSpace(cfg Config) *Space {
	cfg.applyDefaults()
	return &Space{cfg: cfg}
}

func (s *Space) Config() Config { return s.cfg }

func (s *Space) CreateBody(def BodyDef) BodyHandle {
	b := Body{
		Pos:    def.Pos,
		Kind:   def.Kind,
		Radius: def.Radius,
		Label:  def.Label,
		prev:   def.Pos,
	}
	if def.Kind == Dynamic {
		m := def.Mass
		if m <= 0 {
			m = 1
		}
		b.invMass = 1 / m
	}
	idx, gen := s.bodies.insert(b)
	return BodyHandle{Index: idx, Gen: gen}
}

// RemoveBody despawns a body and every joint attached to it.
func (s *Space) RemoveBody(h BodyHandle) error {
	if _, ok := s.bodies.get(h.Index, h.Gen); !ok {
		return fmt.Errorf("remove %s: %w", h, ErrStaleBody)
	}
	var dead []JointHandle
	s.joints.each(func(idx, gen uint32, j *JointDef) {
		if j.A == h || j.B == h {
			dead = append(dead, JointHandle{Index: idx, Gen: gen})
		}
	})
	for _, jh := range dead {
		s.joints.remove(jh.Index, jh.Gen)
	}
	s.bodies.remove(h.Index, h.Gen)
	return nil
}

func (s *Space) Body(h BodyHandle) (Body, bool) {
	b, ok := s.bodies.get(h.Index, h.Gen)
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// Transform returns false once the body has been despawned.
func (s *Space) Transform(h BodyHandle) (Transform, bool) {
	b, ok := s.bodies.get(h.Index, h.Gen)
	if !ok {
		return Transform{}, false
	}
	return Transform{Pos: b.Pos}, true
}

func (s *Space) SetVelocity(h BodyHandle, v Vec3) error {
	b, ok := s.bodies.get(h.Index, h.Gen)
	if !ok {
		return fmt.Errorf("set velocity %s: %w", h, ErrStaleBody)
	}
	if b.Kind == Static {
		return nil
	}
	b.Vel = v
	return nil
}

// Teleport moves a body without giving it velocity.
func (s *Space) Teleport(h BodyHandle, pos Vec3) error {
	b, ok := s.bodies.get(h.Index, h.Gen)
	if !ok {
		return fmt.Errorf("teleport %s: %w", h, ErrStaleBody)
	}
	b.Pos = pos
	b.prev = pos
	return nil
}

func (s *Space) CreateJoint(def JointDef) (JointHandle, error) {
	if def.A == def.B {
		return JointHandle{}, ErrSameBody
	}
	if _, ok := s.bodies.get(def.A.Index, def.A.Gen); !ok {
		return JointHandle{}, fmt.Errorf("create joint: body a %s: %w", def.A, ErrStaleBody)
	}
	if _, ok := s.bodies.get(def.B.Index, def.B.Gen); !ok {
		return JointHandle{}, fmt.Errorf("create joint: body b %s: %w", def.B, ErrStaleBody)
	}
	if def.MaxLength < def.MinLength {
		def.MinLength, def.MaxLength = def.MaxLength, def.MinLength
	}
	idx, gen := s.joints.insert(def)
	return JointHandle{Index: idx, Gen: gen}, nil
}

func (s *Space) Joint(h JointHandle) (JointDef, bool) {
	j, ok := s.joints.get(h.Index, h.Gen)
	if !ok {
		return JointDef{}, false
	}
	return *j, true
}

// RetargetJoint moves the B end of a joint to another body in place. The joint
// keeps its handle, limits and compliance.
func (s *Space) RetargetJoint(h JointHandle, b BodyHandle) error {
	j, ok := s.joints.get(h.Index, h.Gen)
	if !ok {
		return fmt.Errorf("retarget %s: %w", h, ErrStaleJoint)
	}
	if _, ok := s.bodies.get(b.Index, b.Gen); !ok {
		return fmt.Errorf("retarget %s -> %s: %w", h, b, ErrStaleBody)
	}
	if j.A == b {
		return fmt.Errorf("retarget %s -> %s: %w", h, b, ErrSameBody)
	}
	j.B = b
	return nil
}

func (s *Space) RemoveJoint(h JointHandle) error {
	if !s.joints.remove(h.Index, h.Gen) {
		return fmt.Errorf("remove %s: %w", h, ErrStaleJoint)
	}
	return nil
}

func (s *Space) BodyCount() int  { return s.bodies.live }
func (s *Space) JointCount() int { return s.joints.live }

// JointsTo lists joints whose B end is h, in handle order.
func (s *Space) JointsTo(h BodyHandle) []JointHandle {
	var out []JointHandle
	s.joints.each(func(idx, gen uint32, j *JointDef) {
		if j.B == h {
			out = append(out, JointHandle{Index: idx, Gen: gen})
		}
	})
	return out
}

func (s *Space) EachBody(fn func(h BodyHandle, b Body)) {
	s.bodies.each(func(idx, gen uint32, b *Body) {
		fn(BodyHandle{Index: idx, Gen: gen}, *b)
	})
}

func (s *Space) EachJoint(fn func(h JointHandle, j JointDef)) {
	s.joints.each(func(idx, gen uint32, j *JointDef) {
		fn(JointHandle{Index: idx, Gen: gen}, *j)
	})
}
