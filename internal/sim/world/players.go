package world

import (
	"fmt"
	"math"
	"sort"

	"tetherline.dev/internal/protocol"
	"tetherline.dev/internal/sim/physics"
	"tetherline.dev/internal/sim/tether"
)

func (w *World) joinPlayer(name string, out chan []byte) JoinResponse {
	if name == "" {
		name = "player"
	}
	n := w.nextPlayerNum.Add(1)
	id := fmt.Sprintf("P%d", n)

	spawn := w.cfg.Spawn.Add(physics.V3(float64(n-1)*w.cfg.SpawnSpacing, 0, 0))
	body := w.space.CreateBody(physics.BodyDef{
		Pos:    spawn,
		Kind:   physics.Dynamic,
		Mass:   w.cfg.PlayerMass,
		Radius: w.cfg.PlayerRadius,
		Label:  "player",
	})
	p := &Player{
		ID:     id,
		Name:   name,
		Body:   body,
		Tether: tether.New(w.cfg.Tether, body),
	}
	w.players[id] = p
	if out != nil {
		w.clients[id] = &clientState{Out: out}
	}
	w.logf("join %s name=%q body=%s", id, name, body)

	tc := p.Tether.Config()
	return JoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        id,
		WorldParams: protocol.WorldParams{
			WorldID:    w.cfg.ID,
			TickRateHz: w.cfg.TickRateHz,
			MoveSpeed:  w.cfg.MoveSpeed,
		},
		Tether: protocol.TetherParams{
			MaxSegments:       tc.MaxSegments,
			DistanceThreshold: tc.Threshold,
			RestLength:        tc.RestLength,
			SpawnCooldownMs:   tc.Cooldown.Milliseconds(),
			LeashLength:       tc.LeashLength,
		},
	}}
}

// leavePlayer despawns the player body and its whole chain.
func (w *World) leavePlayer(id string) bool {
	p, ok := w.players[id]
	if !ok {
		return false
	}
	for _, h := range p.Chain {
		_ = w.space.RemoveBody(h)
	}
	_ = w.space.RemoveBody(p.Body)
	delete(w.players, id)
	delete(w.clients, id)
	w.logf("leave %s segments=%d", id, p.Tether.State.Segments)
	return true
}

// mergeInputs folds a tick's INPUT frames into one per player: button edges
// are OR-ed, the last move wins. Unknown players are dropped.
func (w *World) mergeInputs(inputs []InputEnvelope) map[string]pendingInput {
	merged := map[string]pendingInput{}
	for _, env := range inputs {
		if _, ok := w.players[env.PlayerID]; !ok {
			continue
		}
		cur := merged[env.PlayerID]
		cur.activate = cur.activate || env.Input.Activate
		cur.lock = cur.lock || env.Input.Lock
		cur.raw = physics.Vec3FromArray(env.Input.Move)
		cur.move = clampMove(cur.raw)
		merged[env.PlayerID] = cur
	}
	return merged
}

// clampMove keeps movement intent in the XZ plane with length at most 1.
func clampMove(v physics.Vec3) physics.Vec3 {
	v.Y = 0
	if math.IsNaN(v.X) || math.IsNaN(v.Z) || math.IsInf(v.X, 0) || math.IsInf(v.Z, 0) {
		return physics.Vec3{}
	}
	if l := v.Len(); l > 1 {
		v = v.Scale(1 / l)
	}
	return v
}

func recordInputs(ids []string, merged map[string]pendingInput) []RecordedInput {
	out := make([]RecordedInput, 0, len(merged))
	for _, id := range ids {
		in, ok := merged[id]
		if !ok {
			continue
		}
		out = append(out, RecordedInput{
			PlayerID: id,
			Activate: in.activate,
			Lock:     in.lock,
			Move:     in.raw.ToArray(),
		})
	}
	return out
}

// locomotion drives the player body horizontally; gravity keeps Y.
func (w *World) locomotion(p *Player) {
	b, ok := w.space.Body(p.Body)
	if !ok {
		return
	}
	v := p.Move.Scale(w.cfg.MoveSpeed)
	_ = w.space.SetVelocity(p.Body, physics.V3(v.X, b.Vel.Y, v.Z))
}

func (w *World) sortedPlayerIDs() []string {
	ids := make([]string, 0, len(w.players))
	for id := range w.players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return playerLess(ids[i], ids[j]) })
	return ids
}

// playerLess orders "P2" before "P10".
func playerLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
