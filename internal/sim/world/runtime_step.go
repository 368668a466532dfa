package world

import (
	"time"

	"tetherline.dev/internal/protocol"
	"tetherline.dev/internal/sim/tether"
)

func (w *World) step(joins []JoinRequest, leaves []string, inputs []InputEnvelope) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	dt := w.cfg.TickDuration()

	// Apply leaves and joins deterministically at tick boundary.
	recordedLeaves := make([]string, 0, len(leaves))
	for _, id := range leaves {
		if w.leavePlayer(id) {
			recordedLeaves = append(recordedLeaves, id)
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		resp := w.joinPlayer(req.Name, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
		recordedJoins = append(recordedJoins, RecordedJoin{PlayerID: resp.Welcome.PlayerID, Name: req.Name})
	}

	ids := w.sortedPlayerIDs()
	merged := w.mergeInputs(inputs)
	recordedInputs := recordInputs(ids, merged)

	stats := TickStats{Tick: nowTick}

	// Tethers: every structural change happens here, before the solver steps.
	for _, id := range ids {
		p := w.players[id]
		in := merged[id]
		if _, ok := merged[id]; ok {
			p.Move = in.move
		}
		w.locomotion(p)

		wasLocked := p.Tether.State.Locked
		out := p.Tether.Update(w.space, tether.Input{Activate: in.activate, ToggleLock: in.lock}, dt)
		w.applyOutcome(nowTick, p, wasLocked, out, &stats)
	}

	w.space.Step(dt.Seconds())

	// Build + send STATE for each player.
	for _, id := range ids {
		p := w.players[id]
		stats.Segments += p.Tether.State.Segments
		cl := w.clients[id]
		if cl == nil {
			p.events = nil
			continue
		}
		if b, err := w.buildState(p, nowTick); err == nil {
			sendLatest(cl.Out, b)
		}
	}

	// Observer stream (read-only).
	w.stepObservers(nowTick, ids)

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil {
		if err := w.tickLogger.WriteTick(TickLogEntry{Tick: nowTick, Joins: recordedJoins, Leaves: recordedLeaves, Inputs: recordedInputs, Digest: digest}); err != nil {
			w.logf("tick log: %v", err)
		}
	}

	nextTick := w.tick.Add(1)

	stats.Players = len(w.players)
	stats.Observers = len(w.observers)
	stats.Bodies = w.space.BodyCount()
	stats.Joints = w.space.JointCount()
	stats.StepDuration = time.Since(stepStart)
	if w.metricsSink != nil {
		w.metricsSink.ObserveTick(stats)
	}
	w.metrics.Store(WorldMetrics{
		Tick:      nextTick,
		Players:   len(w.players),
		Clients:   len(w.clients),
		Observers: len(w.observers),
		Bodies:    stats.Bodies,
		Joints:    stats.Joints,
		Segments:  stats.Segments,
		QueueDepths: QueueDepths{
			Inputs: len(w.inputs),
			Join:   len(w.join),
			Leave:  len(w.leave),
		},
		StepMS: float64(stats.StepDuration.Microseconds()) / 1000.0,
	})
}

func (w *World) applyOutcome(nowTick uint64, p *Player, wasLocked bool, out tether.Outcome, stats *TickStats) {
	st := &p.Tether.State
	if st.Locked != wasLocked {
		p.addEvent(protocol.Event{"t": nowTick, "type": "LOCK", "locked": st.Locked})
	}
	if out.Deployed {
		stats.Deploys++
		p.Chain = append(p.Chain, out.Body)
		p.addEvent(protocol.Event{"t": nowTick, "type": "DEPLOY", "stake": out.Body.String(), "pos": out.Pos.ToArray()})
		w.audit(AuditEntry{Tick: nowTick, PlayerID: p.ID, Action: AuditDeploy, Segment: 0, Body: out.Body.String(), Pos: out.Pos.ToArray()})
	}
	if out.StaleTelemetry {
		stats.StaleTelemetry++
	}
	if out.Spliced {
		stats.Splices++
		p.Chain = append(p.Chain, out.Body)
		p.addEvent(protocol.Event{"t": nowTick, "type": "SPLICE", "segment": st.Segments, "body": out.Body.String(), "pos": out.Pos.ToArray()})
		w.audit(AuditEntry{Tick: nowTick, PlayerID: p.ID, Action: AuditSplice, Segment: st.Segments, Body: out.Body.String(), Pos: out.Pos.ToArray()})
		if st.Terminal() {
			p.addEvent(protocol.Event{"t": nowTick, "type": "TERMINAL", "segments": st.Segments})
		}
	}
	if out.SpliceAborted {
		stats.SpliceAborts++
		p.addEvent(protocol.Event{"t": nowTick, "type": "SPLICE_ABORTED", "code": protocol.ErrStale})
		w.logf("tick %d %s splice aborted: %v", nowTick, p.ID, out.Err)
	}
}

func (w *World) audit(e AuditEntry) {
	if w.auditLogger == nil {
		return
	}
	if err := w.auditLogger.WriteAudit(e); err != nil {
		w.logf("audit log: %v", err)
	}
}
