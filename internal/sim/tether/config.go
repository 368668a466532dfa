package tether

import (
	"time"

	"tetherline.dev/internal/sim/physics"
)

// JointSpec is the shape of every joint of one role (stake, segment, leash).
type JointSpec struct {
	MinLength  float64
	MaxLength  float64
	Compliance float64
	OffsetA    physics.Vec3
	OffsetB    physics.Vec3
}

func (j JointSpec) def(a, b physics.BodyHandle, label string) physics.JointDef {
	return physics.JointDef{
		A:          a,
		B:          b,
		OffsetA:    j.OffsetA,
		OffsetB:    j.OffsetB,
		MinLength:  j.MinLength,
		MaxLength:  j.MaxLength,
		Compliance: j.Compliance,
		Label:      label,
	}
}

type Config struct {
	MaxSegments int
	Threshold   float64
	// RestLength is how far from the anchor a new segment spawns, clamped to
	// the anchor/target midpoint.
	RestLength float64
	Cooldown   time.Duration

	StakeJoint   JointSpec
	SegmentJoint JointSpec

	// LeashLength > 0 adds a hard stake-to-target joint on deployment.
	LeashLength     float64
	LeashCompliance float64

	StakeRadius   float64
	SegmentRadius float64
	SegmentMass   float64
}

func DefaultConfig() Config {
	return Config{
		MaxSegments: 10,
		Threshold:   0.25,
		RestLength:  0.25,
		Cooldown:    200 * time.Millisecond,
		StakeJoint: JointSpec{
			MinLength:  0,
			MaxLength:  0.5,
			Compliance: 0.001,
		},
		SegmentJoint: JointSpec{
			MinLength: 0,
			MaxLength: 0.51,
		},
		StakeRadius:   0.25,
		SegmentRadius: 0.125,
		SegmentMass:   0.2,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.MaxSegments < 0 {
		c.MaxSegments = 0
	}
	if c.Threshold < 0 {
		c.Threshold = 0
	}
	if c.StakeJoint.MaxLength <= 0 {
		c.StakeJoint = d.StakeJoint
	}
	if c.SegmentJoint.MaxLength <= 0 {
		c.SegmentJoint = d.SegmentJoint
	}
	if c.SegmentMass <= 0 {
		c.SegmentMass = d.SegmentMass
	}
	if c.Cooldown < 0 {
		c.Cooldown = 0
	}
}
