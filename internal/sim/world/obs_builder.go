package world

import (
	"encoding/json"

	"tetherline.dev/internal/protocol"
	"tetherline.dev/internal/sim/physics"
)

func (w *World) buildState(p *Player, nowTick uint64) ([]byte, error) {
	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		PlayerID:        p.ID,
		Self:            w.bodyObs(p.Body),
		Tether:          w.tetherObs(p),
		Events:          p.takeEvents(),
	}
	return json.Marshal(msg)
}

func (w *World) bodyObs(h physics.BodyHandle) protocol.BodyObs {
	b, ok := w.space.Body(h)
	if !ok {
		return protocol.BodyObs{ID: h.String(), Kind: physics.Dynamic.String(), Pos: [3]float64{}}
	}
	return protocol.BodyObs{ID: h.String(), Kind: b.Kind.String(), Label: b.Label, Pos: b.Pos.ToArray()}
}

// tetherObs lists the chain bodies that still resolve and every joint
// anchored on one of them.
func (w *World) tetherObs(p *Player) protocol.TetherObs {
	st := p.Tether.State
	obs := protocol.TetherObs{
		Deployed:            st.Deployed,
		Locked:              st.Locked,
		Segments:            st.Segments,
		MaxSegments:         st.MaxSegments,
		Distance:            st.Distance,
		Threshold:           st.Threshold,
		CooldownRemainingMs: st.Cooldown.Remaining.Milliseconds(),
		Terminal:            st.Terminal(),
		Bodies:              []protocol.BodyObs{},
		Joints:              []protocol.JointObs{},
	}
	if !st.Deployed {
		return obs
	}
	obs.Anchor = st.Anchor.String()
	obs.Target = st.Target.String()

	inChain := make(map[physics.BodyHandle]bool, len(p.Chain))
	for _, h := range p.Chain {
		b, ok := w.space.Body(h)
		if !ok {
			continue
		}
		inChain[h] = true
		obs.Bodies = append(obs.Bodies, protocol.BodyObs{ID: h.String(), Kind: b.Kind.String(), Label: b.Label, Pos: b.Pos.ToArray()})
	}
	w.space.EachJoint(func(jh physics.JointHandle, j physics.JointDef) {
		if !inChain[j.A] {
			return
		}
		length := 0.0
		if a, ok := w.space.Transform(j.A); ok {
			if b, ok := w.space.Transform(j.B); ok {
				length = a.Pos.Add(j.OffsetA).Dist(b.Pos.Add(j.OffsetB))
			}
		}
		obs.Joints = append(obs.Joints, protocol.JointObs{
			ID:        jh.String(),
			A:         j.A.String(),
			B:         j.B.String(),
			MinLength: j.MinLength,
			MaxLength: j.MaxLength,
			Length:    length,
		})
	})
	return obs
}
