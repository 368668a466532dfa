package world

import (
	"time"

	"tetherline.dev/internal/sim/physics"
	"tetherline.dev/internal/sim/tether"
	"tetherline.dev/internal/sim/tuning"
)

type WorldConfig struct {
	ID         string
	TickRateHz int

	Physics physics.Config
	Tether  tether.Config

	// Players spawn along +X from Spawn, SpawnSpacing apart, in join order.
	Spawn        physics.Vec3
	SpawnSpacing float64
	PlayerMass   float64
	PlayerRadius float64
	MoveSpeed    float64
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 60
	}
	if c.Physics.Iterations <= 0 {
		c.Physics.Iterations = 8
	}
	if c.SpawnSpacing <= 0 {
		c.SpawnSpacing = 3
	}
	if c.PlayerMass <= 0 {
		c.PlayerMass = 5
	}
	if c.PlayerRadius <= 0 {
		c.PlayerRadius = 0.5
	}
	if c.MoveSpeed < 0 {
		c.MoveSpeed = 0
	}
}

// TickDuration is the fixed simulated time per tick.
func (c WorldConfig) TickDuration() time.Duration {
	hz := c.TickRateHz
	if hz <= 0 {
		hz = 60
	}
	return time.Second / time.Duration(hz)
}

// ConfigFromTuning maps a loaded tuning file onto a world config.
func ConfigFromTuning(id string, t tuning.Tuning) WorldConfig {
	joint := func(j tuning.Joint) tether.JointSpec {
		return tether.JointSpec{
			MinLength:  j.MinLength,
			MaxLength:  j.MaxLength,
			Compliance: j.Compliance,
			OffsetA:    physics.Vec3FromArray(j.OffsetA),
			OffsetB:    physics.Vec3FromArray(j.OffsetB),
		}
	}
	return WorldConfig{
		ID:         id,
		TickRateHz: t.TickRateHz,
		Physics: physics.Config{
			Gravity:    physics.Vec3FromArray(t.Physics.Gravity),
			Iterations: t.Physics.Iterations,
			Ground:     t.Physics.Ground,
			GroundY:    t.Physics.GroundY,
		},
		Tether: tether.Config{
			MaxSegments:     t.Tether.MaxSegments,
			Threshold:       t.Tether.DistanceThreshold,
			RestLength:      t.Tether.RestLength,
			Cooldown:        time.Duration(t.Tether.SpawnCooldownMs) * time.Millisecond,
			StakeJoint:      joint(t.Tether.StakeJoint),
			SegmentJoint:    joint(t.Tether.SegmentJoint),
			LeashLength:     t.Tether.LeashLength,
			LeashCompliance: t.Tether.LeashCompliance,
			StakeRadius:     t.Tether.StakeRadius,
			SegmentRadius:   t.Tether.SegmentRadius,
			SegmentMass:     t.Tether.SegmentMass,
		},
		Spawn:        physics.Vec3FromArray(t.Player.Spawn),
		SpawnSpacing: t.Player.SpawnSpacing,
		PlayerMass:   t.Player.Mass,
		PlayerRadius: t.Player.Radius,
		MoveSpeed:    t.Player.MoveSpeed,
	}
}
