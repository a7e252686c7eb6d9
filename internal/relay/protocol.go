package relay

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Upstream envelope types.
const (
	TypeGameTickPacket    = "game_tick_packet"
	TypePlayerSpectate    = "player_spectate"
	TypePlayerInputChange = "player_input_change"
)

// ErrUnknownMessage is returned for envelopes with an unrecognised type.
var ErrUnknownMessage = errors.New("unknown upstream message type")

// envelope is the JSON wrapper every upstream message arrives in.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// parseMessage decodes an upstream envelope into *Frame, SpectateEvent or
// InputChangeEvent.
func parseMessage(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%s message has no data", env.Type)
	}

	switch env.Type {
	case TypeGameTickPacket:
		var frame Frame
		if err := json.Unmarshal(env.Data, &frame); err != nil {
			return nil, fmt.Errorf("unmarshal game tick packet: %w", err)
		}
		return &frame, nil

	case TypePlayerSpectate:
		var ev SpectateEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("unmarshal player spectate: %w", err)
		}
		return ev, nil

	case TypePlayerInputChange:
		var ev InputChangeEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("unmarshal player input change: %w", err)
		}
		return ev, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
}

// TypeReady is sent once after connecting to tell the source what to stream.
const TypeReady = "ready"

// ReadyOptions selects the optional upstream streams.
type ReadyOptions struct {
	WantsQuickChat       bool `json:"wants_quick_chat"`
	WantsGameMessages    bool `json:"wants_game_messages"`
	WantsBallPredictions bool `json:"wants_ball_predictions"`
}

// DefaultReadyOptions asks for game messages and quick chat, not ball predictions.
var DefaultReadyOptions = ReadyOptions{
	WantsQuickChat:       true,
	WantsGameMessages:    true,
	WantsBallPredictions: false,
}

func buildReadyMessage(opts ReadyOptions) ([]byte, error) {
	data, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: TypeReady, Data: data})
}
