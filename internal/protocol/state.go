package protocol

// STATE (server -> player): the player's own tether plus the bodies and
// joints that make it up.
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	PlayerID        string `json:"player_id"`

	Self   BodyObs   `json:"self"`
	Tether TetherObs `json:"tether"`
	Events []Event   `json:"events"`
}

type TetherObs struct {
	Deployed            bool    `json:"deployed"`
	Locked              bool    `json:"locked"`
	Segments            int     `json:"segments"`
	MaxSegments         int     `json:"max_segments"`
	Distance            float64 `json:"distance"`
	Threshold           float64 `json:"threshold"`
	CooldownRemainingMs int64   `json:"cooldown_remaining_ms"`
	Terminal            bool    `json:"terminal"`

	Anchor string `json:"anchor,omitempty"`
	Target string `json:"target,omitempty"`

	Bodies []BodyObs  `json:"bodies"`
	Joints []JointObs `json:"joints"`
}

type BodyObs struct {
	ID    string     `json:"id"`
	Kind  string     `json:"kind"`
	Label string     `json:"label,omitempty"`
	Pos   [3]float64 `json:"pos"`
}

type JointObs struct {
	ID        string  `json:"id"`
	A         string  `json:"a"`
	B         string  `json:"b"`
	MinLength float64 `json:"min_length"`
	MaxLength float64 `json:"max_length"`
	Length    float64 `json:"length"`
}

// WORLD (server -> observer): every tether in the world.
type WorldMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	WorldID         string         `json:"world_id"`
	Tick            uint64         `json:"tick"`
	Players         []PlayerTether `json:"players"`
}

type PlayerTether struct {
	PlayerID string    `json:"player_id"`
	Name     string    `json:"name"`
	Self     BodyObs   `json:"self"`
	Tether   TetherObs `json:"tether"`
}

// SUBSCRIBE (observer -> server)
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// Players limits the stream to these ids; empty means all.
	Players []string `json:"players,omitempty"`
}

type Event map[string]interface{}
