package observer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tetherline.dev/internal/protocol"
	"tetherline.dev/internal/sim/tuning"
	"tetherline.dev/internal/sim/world"
)

func startWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New(world.ConfigFromTuning("obs", tuning.Defaults()))
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func TestWSHandler_StreamsWorldFrames(t *testing.T) {
	w := startWorld(t)
	resp := make(chan world.JoinResponse, 1)
	w.Join() <- world.JoinRequest{Name: "walker", Resp: resp}
	<-resp

	s := NewServer(w, nil)
	srv := httptest.NewServer(s.WSHandler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub, _ := json.Marshal(protocol.SubscribeMsg{Type: protocol.TypeSubscribe, ProtocolVersion: protocol.Version})
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg protocol.WorldMsg
		if err := json.Unmarshal(b, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type != protocol.TypeWorld || msg.WorldID != "obs" {
			t.Fatalf("unexpected frame: %s", b)
		}
		if len(msg.Players) == 1 && msg.Players[0].PlayerID == "P1" {
			return
		}
	}
}

func TestWSHandler_RejectsBadSubscribe(t *testing.T) {
	w := startWorld(t)
	srv := httptest.NewServer(NewServer(w, nil).WSHandler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"HELLO","protocol_version":"1.0"}`))

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestBootstrapHandler(t *testing.T) {
	w, err := world.New(world.ConfigFromTuning("obs", tuning.Defaults()))
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	w.StepOnce([]world.JoinRequest{{Name: "a"}}, nil, nil)
	h := NewServer(w, nil).BootstrapHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/observer/bootstrap", nil)
	req.RemoteAddr = "127.0.0.1:5000"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var resp BootstrapResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.WorldID != "obs" || resp.Tick != 1 || resp.Tether.MaxSegments != 10 || len(resp.Latest) == 0 {
		t.Fatalf("bootstrap=%+v", resp)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/observer/bootstrap", nil)
	req.RemoteAddr = "10.1.2.3:5000"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-loopback status=%d", rec.Code)
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:80": true,
		"[::1]:80":     true,
		"10.0.0.1:80":  false,
		"garbage":      false,
	}
	for in, want := range cases {
		if got := isLoopbackRemote(in); got != want {
			t.Fatalf("isLoopbackRemote(%q)=%v want %v", in, got, want)
		}
	}
}
