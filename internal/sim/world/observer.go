package world

import (
	"encoding/json"

	"tetherline.dev/internal/protocol"
)

type observerClient struct {
	id  string
	out chan []byte
	// players is nil when the session follows everyone.
	players map[string]bool
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.Out == nil {
		return
	}
	c := &observerClient{id: req.SessionID, out: req.Out}
	if len(req.Players) > 0 {
		c.players = make(map[string]bool, len(req.Players))
		for _, id := range req.Players {
			c.players[id] = true
		}
	}
	w.observers[req.SessionID] = c
	w.logf("observer join %s players=%d", req.SessionID, len(req.Players))
}

func (w *World) handleObserverLeave(id string) {
	if _, ok := w.observers[id]; !ok {
		return
	}
	delete(w.observers, id)
	w.logf("observer leave %s", id)
}

// stepObservers publishes the WORLD frame for bootstrap readers and sends each
// observer its filtered view.
func (w *World) stepObservers(nowTick uint64, ids []string) {
	all := make([]protocol.PlayerTether, 0, len(ids))
	for _, id := range ids {
		p := w.players[id]
		all = append(all, protocol.PlayerTether{
			PlayerID: p.ID,
			Name:     p.Name,
			Self:     w.bodyObs(p.Body),
			Tether:   w.tetherObs(p),
		})
	}
	full, err := json.Marshal(w.worldMsg(nowTick, all))
	if err != nil {
		return
	}
	w.latest.Store(full)

	for _, c := range w.observers {
		if c.players == nil {
			sendLatest(c.out, full)
			continue
		}
		subset := make([]protocol.PlayerTether, 0, len(c.players))
		for _, pt := range all {
			if c.players[pt.PlayerID] {
				subset = append(subset, pt)
			}
		}
		b, err := json.Marshal(w.worldMsg(nowTick, subset))
		if err != nil {
			continue
		}
		sendLatest(c.out, b)
	}
}

func (w *World) worldMsg(nowTick uint64, players []protocol.PlayerTether) protocol.WorldMsg {
	return protocol.WorldMsg{
		Type:            protocol.TypeWorld,
		ProtocolVersion: protocol.Version,
		WorldID:         w.cfg.ID,
		Tick:            nowTick,
		Players:         players,
	}
}

// LatestWorldFrame returns the last WORLD frame the loop produced, or nil
// before the first tick. Safe to call from any goroutine.
func (w *World) LatestWorldFrame() []byte {
	v := w.latest.Load()
	if v == nil {
		return nil
	}
	b, _ := v.([]byte)
	return b
}
