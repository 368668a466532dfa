package indexdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tetherline.dev/internal/sim/world"
)

func TestSQLiteIndex_WritesTicksAndAudits(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index", "world.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	_ = idx.WriteTick(world.TickLogEntry{
		Tick:   0,
		Digest: "aa",
		Joins:  []world.RecordedJoin{{PlayerID: "P1", Name: "walker"}},
	})
	_ = idx.WriteTick(world.TickLogEntry{
		Tick:   1,
		Digest: "bb",
		Inputs: []world.RecordedInput{{PlayerID: "P1", Activate: true}},
	})
	_ = idx.WriteAudit(world.AuditEntry{Tick: 1, PlayerID: "P1", Action: world.AuditDeploy, Body: "B1.1", Pos: [3]float64{0, 0.5, 0}})
	_ = idx.WriteAudit(world.AuditEntry{Tick: 5, PlayerID: "P1", Action: world.AuditSplice, Segment: 1, Body: "B2.1", Pos: [3]float64{0.15, 0.5, 0}})
	_ = idx.WriteAudit(world.AuditEntry{Tick: 5, PlayerID: "P2", Action: world.AuditDeploy, Body: "B4.1"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := idx.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	ticks, err := RecentTicks(ctx, idx.DB(), 10)
	if err != nil {
		t.Fatalf("ticks: %v", err)
	}
	if len(ticks) != 2 || ticks[0].Tick != 1 || ticks[0].Inputs != 1 || ticks[1].Joins != 1 {
		t.Fatalf("ticks=%+v", ticks)
	}

	audits, err := Audits(ctx, idx.DB(), "P1", 0)
	if err != nil {
		t.Fatalf("audits: %v", err)
	}
	if len(audits) != 2 || audits[0].Action != world.AuditDeploy || audits[1].Segment != 1 || audits[1].Pos[0] != 0.15 {
		t.Fatalf("audits=%+v", audits)
	}
	all, _ := Audits(ctx, idx.DB(), "", 0)
	if len(all) != 3 || all[2].Seq != 1 {
		t.Fatalf("all audits=%+v", all)
	}

	if st := idx.Stats(); st.WrittenTotal < 5 || st.DropTickTotal != 0 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestSQLiteIndex_Meta(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "world.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	if _, ok, err := idx.Meta("run_id"); err != nil || ok {
		t.Fatalf("unexpected meta: ok=%v err=%v", ok, err)
	}
	if err := idx.SetMeta("run_id", "r1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, err := idx.Meta("run_id"); err != nil || !ok || v != "r1" {
		t.Fatalf("meta=%q ok=%v err=%v", v, ok, err)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick, tick: world.TickLogEntry{Tick: 1}}

	_ = s.WriteTick(world.TickLogEntry{Tick: 2})
	_ = s.WriteAudit(world.AuditEntry{Tick: 2})

	st := s.Stats()
	if st.DropTickTotal != 1 || st.DropAuditTotal != 1 {
		t.Fatalf("drops: %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected error")
	}
}
