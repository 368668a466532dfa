package protocol_test

import (
	"encoding/json"
	"testing"

	"tetherline.dev/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	validate := func(name string, v any) {
		t.Helper()
		s, err := protocol.Schema(name)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		b, _ := json.Marshal(v)
		var doc any
		_ = json.Unmarshal(b, &doc)
		if err := s.Validate(doc); err != nil {
			t.Fatalf("validate %s: %v", name, err)
		}
	}

	validate("hello.schema.json", protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      "walker",
	})

	validate("welcome.schema.json", protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "3c6f1f3e-7d8b-4ad4-9d0c-0b8a8d3f2f10",
		PlayerID:        "P1",
		WorldParams:     protocol.WorldParams{WorldID: "world_1", TickRateHz: 60, MoveSpeed: 4},
		Tether: protocol.TetherParams{
			MaxSegments:       10,
			DistanceThreshold: 0.25,
			RestLength:        0.25,
			SpawnCooldownMs:   200,
		},
	})

	validate("input.schema.json", protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Activate:        true,
		Move:            [3]float64{1, 0, 0},
	})

	validate("state.schema.json", protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            12,
		PlayerID:        "P1",
		Self:            protocol.BodyObs{ID: "B0.1", Kind: "DYNAMIC", Label: "player", Pos: [3]float64{0.3, 0.5, 0}},
		Tether: protocol.TetherObs{
			Deployed:    true,
			Segments:    1,
			MaxSegments: 10,
			Distance:    0.3,
			Threshold:   0.25,
			Anchor:      "B2.1",
			Target:      "B0.1",
			Bodies: []protocol.BodyObs{
				{ID: "B1.1", Kind: "STATIC", Label: "stake", Pos: [3]float64{0, 0.5, 0}},
				{ID: "B2.1", Kind: "DYNAMIC", Label: "segment", Pos: [3]float64{0.15, 0.5, 0}},
			},
			Joints: []protocol.JointObs{
				{ID: "J0.1", A: "B1.1", B: "B2.1", MaxLength: 0.5, Length: 0.15},
				{ID: "J1.1", A: "B2.1", B: "B0.1", MaxLength: 0.51, Length: 0.15},
			},
		},
		Events: []protocol.Event{{"t": 12, "type": "SPLICE", "segment": 1}},
	})

	validate("subscribe.schema.json", protocol.SubscribeMsg{
		Type:            protocol.TypeSubscribe,
		ProtocolVersion: protocol.Version,
	})
}

func TestDecodeInput(t *testing.T) {
	in, err := protocol.DecodeInput([]byte(`{"type":"INPUT","protocol_version":"1.0","activate":true,"move":[0.5,0,-1]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !in.Activate || in.Lock || in.Move != [3]float64{0.5, 0, -1} {
		t.Fatalf("unexpected input: %+v", in)
	}

	bad := []string{
		`{"type":"INPUT","protocol_version":"1.0"}`,
		`{"type":"INPUT","protocol_version":"1.0","move":[2,0,0]}`,
		`{"type":"INPUT","protocol_version":"1.0","move":[0,0]}`,
		`{"type":"INPUT","protocol_version":"1.0","move":[0,0,0],"teleport":true}`,
		`{"type":"HELLO","protocol_version":"1.0","move":[0,0,0]}`,
		`not json`,
	}
	for _, raw := range bad {
		if _, err := protocol.DecodeInput([]byte(raw)); err == nil {
			t.Fatalf("expected rejection: %s", raw)
		}
	}
}
