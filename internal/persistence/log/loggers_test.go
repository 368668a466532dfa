package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tetherline.dev/internal/sim/world"
)

func TestTickLogger_RoundTripInOrder(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	for i := uint64(0); i < 5; i++ {
		e := world.TickLogEntry{Tick: i, Digest: "d"}
		if i == 1 {
			e.Joins = []world.RecordedJoin{{PlayerID: "P1", Name: "walker"}}
			e.Inputs = []world.RecordedInput{{PlayerID: "P1", Activate: true, Move: [3]float64{1, 0, 0}}}
		}
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var got []world.TickLogEntry
	if err := ReadTicks(dir, func(e world.TickLogEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("entries=%d", len(got))
	}
	for i, e := range got {
		if e.Tick != uint64(i) {
			t.Fatalf("entry %d tick=%d", i, e.Tick)
		}
	}
	if len(got[1].Inputs) != 1 || !got[1].Inputs[0].Activate || got[1].Joins[0].Name != "walker" {
		t.Fatalf("entry 1: %+v", got[1])
	}
}

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "audit")
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	if err := w.Write(world.AuditEntry{Tick: 1, Action: world.AuditDeploy}); err != nil {
		t.Fatalf("write: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := w.Write(world.AuditEntry{Tick: 2, Action: world.AuditSplice, Segment: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListFiles(dir, "audit")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{
		filepath.Join(dir, "audit-2026-03-01-10.jsonl.zst"),
		filepath.Join(dir, "audit-2026-03-01-11.jsonl.zst"),
	}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("files=%v", files)
	}

	var e world.AuditEntry
	if err := ScanFile(files[1], func(line []byte) error { return json.Unmarshal(line, &e) }); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if e.Tick != 2 || e.Segment != 1 {
		t.Fatalf("entry=%+v", e)
	}
}

func TestListFiles_IgnoresOtherNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"events-2026-01-01-00.jsonl.zst", "audit-2026-01-01-00.jsonl.zst", "events.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := ListFiles(dir, "events")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files=%v", files)
	}
}
