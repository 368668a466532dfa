package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	SessionID       string       `json:"session_id,omitempty"`
	PlayerID        string       `json:"player_id"`
	WorldParams     WorldParams  `json:"world_params"`
	Tether          TetherParams `json:"tether"`
}

type WorldParams struct {
	WorldID    string  `json:"world_id"`
	TickRateHz int     `json:"tick_rate_hz"`
	MoveSpeed  float64 `json:"move_speed"`
}

type TetherParams struct {
	MaxSegments       int     `json:"max_segments"`
	DistanceThreshold float64 `json:"distance_threshold"`
	RestLength        float64 `json:"rest_length"`
	SpawnCooldownMs   int64   `json:"spawn_cooldown_ms"`
	LeashLength       float64 `json:"leash_length,omitempty"`
}

// INPUT (client -> server). Activate and Lock are button edges; Move is the
// current movement intent in the XZ plane (Y is ignored).
type InputMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Tick            uint64     `json:"tick,omitempty"`
	Activate        bool       `json:"activate,omitempty"`
	Lock            bool       `json:"lock,omitempty"`
	Move            [3]float64 `json:"move"`
}

type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

func NewError(code, message string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, Code: code, Message: message}
}
