package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults_Validate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := `
tick_rate_hz: 30
tether:
  max_segments: 3
  spawn_cooldown_ms: 0
`
	if err := os.WriteFile(p, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TickRateHz != 30 || got.Tether.MaxSegments != 3 || got.Tether.SpawnCooldownMs != 0 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Tether.DistanceThreshold != 0.25 || got.Tether.SegmentJoint.MaxLength != 0.51 {
		t.Fatalf("defaults lost: %+v", got.Tether)
	}
}

func TestLoad_RejectsOutOfRange(t *testing.T) {
	cases := map[string]string{
		"negative threshold": "tether:\n  distance_threshold: -1\n",
		"zero tick rate":     "tick_rate_hz: 0\n",
		"zero joint max":     "tether:\n  segment_joint:\n    max_length: 0\n",
		"inverted limits":    "tether:\n  stake_joint:\n    min_length: 2\n    max_length: 1\n",
	}
	for name, raw := range cases {
		p := filepath.Join(t.TempDir(), "tuning.yaml")
		if err := os.WriteFile(p, []byte(raw), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(p); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	_ = os.WriteFile(p, []byte("tether: [1, 2"), 0o644)
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "tuning.yaml") {
		t.Fatalf("expected wrapped yaml error, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoad_RepoConfig(t *testing.T) {
	got, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load configs/tuning.yaml: %v", err)
	}
	if got.Tether.MaxSegments <= 0 {
		t.Fatalf("unexpected max_segments: %d", got.Tether.MaxSegments)
	}
}
