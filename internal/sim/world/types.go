package world

import (
	"tetherline.dev/internal/protocol"
	"tetherline.dev/internal/sim/physics"
	"tetherline.dev/internal/sim/tether"
)

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type InputEnvelope struct {
	PlayerID string
	Input    protocol.InputMsg
}

// ObserverJoinRequest registers a read-only session that receives a WORLD
// frame every tick. All observer state is kept by the world loop goroutine.
type ObserverJoinRequest struct {
	SessionID string
	Out       chan []byte
	// Players limits the stream to these ids; empty means all.
	Players []string
}

type RecordedJoin struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// RecordedInput is one player's merged input for a tick.
type RecordedInput struct {
	PlayerID string     `json:"player_id"`
	Activate bool       `json:"activate,omitempty"`
	Lock     bool       `json:"lock,omitempty"`
	Move     [3]float64 `json:"move"`
}

// Input rebuilds the wire message a recorded input was merged from.
func (r RecordedInput) Input() protocol.InputMsg {
	return protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Activate:        r.Activate,
		Lock:            r.Lock,
		Move:            r.Move,
	}
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick   uint64          `json:"tick"`
	Joins  []RecordedJoin  `json:"joins,omitempty"`
	Leaves []string        `json:"leaves,omitempty"`
	Inputs []RecordedInput `json:"inputs,omitempty"`
	Digest string          `json:"digest"`
}

const (
	AuditDeploy = "DEPLOY"
	AuditSplice = "SPLICE"
)

type AuditEntry struct {
	Tick     uint64     `json:"tick"`
	PlayerID string     `json:"player_id"`
	Action   string     `json:"action"` // DEPLOY or SPLICE
	Segment  int        `json:"segment"`
	Body     string     `json:"body"`
	Pos      [3]float64 `json:"pos"`
}

// Player is a connected body plus the tether it owns.
type Player struct {
	ID   string
	Name string
	Body physics.BodyHandle

	Tether *tether.Tether
	// Move is the last movement intent; it persists until the next INPUT.
	Move physics.Vec3

	// Chain lists the stake and segments in creation order.
	Chain []physics.BodyHandle

	events []protocol.Event
}

func (p *Player) addEvent(e protocol.Event) {
	p.events = append(p.events, e)
	if len(p.events) > 64 {
		p.events = p.events[len(p.events)-64:]
	}
}

func (p *Player) takeEvents() []protocol.Event {
	out := p.events
	p.events = nil
	if out == nil {
		out = []protocol.Event{}
	}
	return out
}

type clientState struct {
	Out chan []byte
}

type pendingInput struct {
	activate bool
	lock     bool
	move     physics.Vec3
	// raw is the move as received, so a replay merges to the same value.
	raw physics.Vec3
}
