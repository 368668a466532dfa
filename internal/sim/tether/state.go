package tether

import (
	"time"

	"tetherline.dev/internal/sim/physics"
)

// State is everything that drives one tether. It only references bodies and
// joints by handle; the solver owns their lifetime.
type State struct {
	Deployed bool `json:"deployed"`
	Locked   bool `json:"locked"`

	Segments    int     `json:"segments"`
	MaxSegments int     `json:"max_segments"`
	Distance    float64 `json:"distance"`
	Threshold   float64 `json:"threshold"`

	Stake      physics.BodyHandle  `json:"stake"`
	Anchor     physics.BodyHandle  `json:"anchor"`
	Target     physics.BodyHandle  `json:"target"`
	FinalJoint physics.JointHandle `json:"final_joint"`
	Leash      physics.JointHandle `json:"leash,omitempty"`

	Cooldown Cooldown `json:"cooldown"`
}

// ShouldExtend reports whether a segment may be spliced this tick. It has no
// side effects; the cap and the deployment precondition are ordinary false
// results, not errors.
func (s *State) ShouldExtend() bool {
	return s.Deployed &&
		!s.Locked &&
		s.Distance > s.Threshold &&
		s.Segments < s.MaxSegments &&
		s.Anchor.Valid() &&
		s.Target.Valid() &&
		s.FinalJoint.Valid() &&
		s.Cooldown.Finished()
}

// Terminal is true once the chain can never grow again.
func (s *State) Terminal() bool {
	return s.Deployed && s.Segments >= s.MaxSegments
}

// Cooldown is a countdown that limits splices to one per Interval. A zero
// Interval disables it.
type Cooldown struct {
	Interval  time.Duration `json:"interval"`
	Remaining time.Duration `json:"remaining"`
}

func (c *Cooldown) Enabled() bool { return c.Interval > 0 }

func (c *Cooldown) Finished() bool { return !c.Enabled() || c.Remaining <= 0 }

func (c *Cooldown) Advance(dt time.Duration) {
	if dt <= 0 || c.Remaining <= 0 {
		return
	}
	c.Remaining -= dt
	if c.Remaining < 0 {
		c.Remaining = 0
	}
}

func (c *Cooldown) Reset() {
	if c.Enabled() {
		c.Remaining = c.Interval
	}
}
