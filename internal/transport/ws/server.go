package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tetherline.dev/internal/protocol"
	"tetherline.dev/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	s := &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, out := s.handshake(conn)
		if playerID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Frames produced by this goroutine (errors) go through the writer too;
		// a websocket conn takes one writer at a time.
		ctrl := make(chan []byte, 4)

		// Writer goroutine.
		go func() {
			for {
				var b []byte
				select {
				case <-ctx.Done():
					return
				case b = <-ctrl:
				case msg, ok := <-out:
					if !ok {
						return
					}
					b = msg
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}()

		sendErr := func(code, message string) {
			b, _ := json.Marshal(protocol.NewError(code, message))
			select {
			case ctrl <- b:
			default:
			}
		}

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeInput {
				sendErr(protocol.ErrProtoBadRequest, "expected INPUT")
				continue
			}
			if base.ProtocolVersion != protocol.Version {
				sendErr(protocol.ErrProtoBadRequest, "bad protocol_version")
				continue
			}
			in, err := protocol.DecodeInput(msg)
			if err != nil {
				sendErr(protocol.ErrBadRequest, err.Error())
				continue
			}
			select {
			case s.world.Inputs() <- world.InputEnvelope{PlayerID: playerID, Input: in}:
			default:
				sendErr(protocol.ErrWorldBusy, "input queue full")
			}
		}

		// Cleanup.
		s.world.Leave() <- playerID
		s.logf("disconnect %s", playerID)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (playerID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}
	if err := protocol.ValidateRaw("hello.schema.json", msg); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad HELLO"), time.Now().Add(time.Second))
		return "", nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}

	out = make(chan []byte, 8)
	respCh := make(chan world.JoinResponse, 1)
	select {
	case s.world.Join() <- world.JoinRequest{Name: hello.PlayerName, Out: out, Resp: respCh}:
	default:
		_ = writeJSON(conn, protocol.NewError(protocol.ErrWorldBusy, "join queue full"))
		return "", nil
	}
	resp := <-respCh

	resp.Welcome.SessionID = uuid.NewString()
	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.world.Leave() <- resp.Welcome.PlayerID
		return "", nil
	}
	s.logf("join %s session=%s name=%q", resp.Welcome.PlayerID, resp.Welcome.SessionID, hello.PlayerName)
	return resp.Welcome.PlayerID, out
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
