package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"tetherline.dev/internal/protocol"
)

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name   = flag.String("name", "bot", "player name")
		seed   = flag.Int64("seed", 1, "heading seed")
		period = flag.Uint64("turn_every", 120, "ticks between heading changes")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	p := newPilot(*seed, *period)
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME player_id=%s tick_rate=%d max_segments=%d", w.PlayerID, w.WorldParams.TickRateHz, w.Tether.MaxSegments)

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			for _, ev := range st.Events {
				logger.Printf("tick=%d event=%v segments=%d", st.Tick, ev["type"], st.Tether.Segments)
			}
			if in, ok := p.next(&st); ok {
				_ = conn.WriteJSON(in)
			}

		case protocol.TypeError:
			logger.Printf("ERROR %s", msg)
		}
	}
}

// pilot walks away from its stake, turning every period ticks, and deploys
// as soon as it sees it has no tether.
type pilot struct {
	rng     *rand.Rand
	period  uint64
	heading float64
	sent    bool
}

func newPilot(seed int64, period uint64) *pilot {
	if period == 0 {
		period = 120
	}
	return &pilot{rng: rand.New(rand.NewSource(seed)), period: period}
}

func (p *pilot) next(st *protocol.StateMsg) (protocol.InputMsg, bool) {
	in := protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Tick:            st.Tick,
	}
	send := false
	if !st.Tether.Deployed && !p.sent {
		in.Activate = true
		p.sent = true
		send = true
	}
	if st.Tether.Deployed {
		p.sent = false
	}
	if st.Tick%p.period == 0 || in.Activate {
		p.heading = p.rng.Float64() * 2 * math.Pi
		send = true
	}
	in.Move = [3]float64{math.Cos(p.heading), 0, math.Sin(p.heading)}
	return in, send
}
