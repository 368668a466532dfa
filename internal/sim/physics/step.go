package physics

// Step advances the space by dt seconds: explicit integration followed by
// position-based projection of every joint, in joint index order.
func (s *Space) Step(dt float64) {
	if dt <= 0 {
		return
	}
	g := s.cfg.Gravity
	s.bodies.each(func(_, _ uint32, b *Body) {
		if b.Kind == Static {
			return
		}
		b.Vel = b.Vel.Add(g.Scale(dt))
		b.prev = b.Pos
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	})

	alphaScale := 1 / (dt * dt)
	for i := 0; i < s.cfg.Iterations; i++ {
		s.joints.each(func(_, _ uint32, j *JointDef) {
			s.solveJoint(j, j.Compliance*alphaScale)
		})
	}

	inv := 1 / dt
	s.bodies.each(func(_, _ uint32, b *Body) {
		if b.Kind == Static {
			return
		}
		b.Vel = b.Pos.Sub(b.prev).Scale(inv)
		if s.cfg.Ground {
			floor := s.cfg.GroundY + b.Radius
			if b.Pos.Y < floor {
				b.Pos.Y = floor
				if b.Vel.Y < 0 {
					b.Vel.Y = 0
				}
			}
		}
	})
}

func (s *Space) solveJoint(j *JointDef, alpha float64) {
	a, okA := s.bodies.get(j.A.Index, j.A.Gen)
	b, okB := s.bodies.get(j.B.Index, j.B.Gen)
	if !okA || !okB {
		return
	}
	wa, wb := a.invMass, b.invMass
	w := wa + wb
	if w == 0 {
		return
	}

	pa := a.Pos.Add(j.OffsetA)
	pb := b.Pos.Add(j.OffsetB)
	d := pb.Sub(pa)
	l := d.Len()
	if l < 1e-9 {
		return
	}

	var c float64
	switch {
	case l > j.MaxLength:
		c = l - j.MaxLength
	case l < j.MinLength:
		c = l - j.MinLength
	default:
		return
	}

	n := d.Scale(1 / l)
	lambda := c / (w + alpha)
	a.Pos = a.Pos.Add(n.Scale(lambda * wa))
	b.Pos = b.Pos.Sub(n.Scale(lambda * wb))
}
