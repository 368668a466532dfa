package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tetherline.dev/internal/protocol"
	"tetherline.dev/internal/sim/world"
)

// BootstrapResponse is what a viewer fetches before opening the stream.
type BootstrapResponse struct {
	ProtocolVersion string                `json:"protocol_version"`
	WorldID         string                `json:"world_id"`
	Tick            uint64                `json:"tick"`
	TickRateHz      int                   `json:"tick_rate_hz"`
	Tether          protocol.TetherParams `json:"tether"`
	// Latest is the most recent WORLD frame, absent before the first tick.
	Latest json.RawMessage `json:"latest,omitempty"`
}

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // loopback only anyway
		},
	}
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		cfg := s.world.Config()
		resp := BootstrapResponse{
			ProtocolVersion: protocol.Version,
			WorldID:         cfg.ID,
			Tick:            s.world.CurrentTick(),
			TickRateHz:      cfg.TickRateHz,
			Tether: protocol.TetherParams{
				MaxSegments:       cfg.Tether.MaxSegments,
				DistanceThreshold: cfg.Tether.Threshold,
				RestLength:        cfg.Tether.RestLength,
				SpawnCooldownMs:   cfg.Tether.Cooldown.Milliseconds(),
				LeashLength:       cfg.Tether.LeashLength,
			},
			Latest: s.world.LatestWorldFrame(),
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		sub, err := decodeSubscribe(msg)
		if err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sid := uuid.NewString()
		out := make(chan []byte, 8)
		if !s.join(sid, out, sub.Players) {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"), time.Now().Add(time.Second))
			return
		}
		s.logf("observer %s subscribed players=%v", sid, sub.Players)
		defer func() {
			select {
			case s.world.ObserverLeave() <- sid:
			default:
				// World loop is stopping; nothing else to do.
			}
		}()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b, ok := <-out:
					if !ok {
						writeErr <- nil
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: a later SUBSCRIBE replaces the player filter.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			sub, err := decodeSubscribe(msg)
			if err != nil {
				continue
			}
			s.join(sid, out, sub.Players)
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// join registers (or re-registers) the session; the world replaces an
// existing session with the same id.
func (s *Server) join(sid string, out chan []byte, players []string) bool {
	select {
	case s.world.ObserverJoin() <- world.ObserverJoinRequest{SessionID: sid, Out: out, Players: players}:
		return true
	default:
		return false
	}
}

func decodeSubscribe(msg []byte) (protocol.SubscribeMsg, error) {
	var sub protocol.SubscribeMsg
	if err := protocol.ValidateRaw("subscribe.schema.json", msg); err != nil {
		return sub, err
	}
	if err := json.Unmarshal(msg, &sub); err != nil {
		return sub, err
	}
	if sub.ProtocolVersion != protocol.Version {
		return sub, fmt.Errorf("protocol_version %q", sub.ProtocolVersion)
	}
	return sub, nil
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
