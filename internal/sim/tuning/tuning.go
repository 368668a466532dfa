package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz" json:"tick_rate_hz"`

	Physics Physics `yaml:"physics" json:"physics"`
	Player  Player  `yaml:"player" json:"player"`
	Tether  Tether  `yaml:"tether" json:"tether"`
}

type Physics struct {
	Gravity    [3]float64 `yaml:"gravity" json:"gravity"`
	Iterations int        `yaml:"iterations" json:"iterations"`
	Ground     bool       `yaml:"ground" json:"ground"`
	GroundY    float64    `yaml:"ground_y" json:"ground_y"`
}

type Player struct {
	Spawn        [3]float64 `yaml:"spawn" json:"spawn"`
	SpawnSpacing float64    `yaml:"spawn_spacing" json:"spawn_spacing"`
	Mass         float64    `yaml:"mass" json:"mass"`
	Radius       float64    `yaml:"radius" json:"radius"`
	MoveSpeed    float64    `yaml:"move_speed" json:"move_speed"`
}

type Tether struct {
	MaxSegments       int     `yaml:"max_segments" json:"max_segments"`
	DistanceThreshold float64 `yaml:"distance_threshold" json:"distance_threshold"`
	RestLength        float64 `yaml:"rest_length" json:"rest_length"`
	SpawnCooldownMs   int     `yaml:"spawn_cooldown_ms" json:"spawn_cooldown_ms"`

	StakeJoint   Joint `yaml:"stake_joint" json:"stake_joint"`
	SegmentJoint Joint `yaml:"segment_joint" json:"segment_joint"`

	LeashLength     float64 `yaml:"leash_length" json:"leash_length"`
	LeashCompliance float64 `yaml:"leash_compliance" json:"leash_compliance"`

	StakeRadius   float64 `yaml:"stake_radius" json:"stake_radius"`
	SegmentRadius float64 `yaml:"segment_radius" json:"segment_radius"`
	SegmentMass   float64 `yaml:"segment_mass" json:"segment_mass"`
}

type Joint struct {
	MinLength  float64    `yaml:"min_length" json:"min_length"`
	MaxLength  float64    `yaml:"max_length" json:"max_length"`
	Compliance float64    `yaml:"compliance" json:"compliance"`
	OffsetA    [3]float64 `yaml:"offset_a" json:"offset_a"`
	OffsetB    [3]float64 `yaml:"offset_b" json:"offset_b"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      60,
		Physics: Physics{
			Gravity:    [3]float64{0, -30, 0},
			Iterations: 8,
			Ground:     true,
		},
		Player: Player{
			Spawn:        [3]float64{0, 0.5, 0},
			SpawnSpacing: 3,
			Mass:         5,
			Radius:       0.5,
			MoveSpeed:    4,
		},
		Tether: Tether{
			MaxSegments:       10,
			DistanceThreshold: 0.25,
			RestLength:        0.25,
			SpawnCooldownMs:   200,
			StakeJoint:        Joint{MaxLength: 0.5, Compliance: 0.001},
			SegmentJoint:      Joint{MaxLength: 0.51},
			StakeRadius:       0.25,
			SegmentRadius:     0.125,
			SegmentMass:       0.2,
		},
	}
}

// Load reads a tuning file over the defaults, so a file only needs the keys it
// changes, then validates the result.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

//go:embed tuning.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("tuning.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// Validate checks the effective values against the embedded JSON schema.
func (t Tuning) Validate() error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return err
	}
	if t.Tether.StakeJoint.MinLength > t.Tether.StakeJoint.MaxLength {
		return fmt.Errorf("stake_joint: min_length > max_length")
	}
	if t.Tether.SegmentJoint.MinLength > t.Tether.SegmentJoint.MaxLength {
		return fmt.Errorf("segment_joint: min_length > max_length")
	}
	return nil
}
