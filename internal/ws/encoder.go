package ws

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/twobackfromtheend/rlbot-overlay-script/internal/ingest"
)

// Protocol is the wire format negotiated with a viewer.
type Protocol string

const (
	ProtocolJSON     Protocol = "json"     // text frames, JSON envelope
	ProtocolZstd     Protocol = "zstd"     // binary frames, zstd-compressed JSON envelope
	ProtocolProtobuf Protocol = "protobuf" // binary frames, google.protobuf.Struct envelope
)

// WebSocket subprotocol names.
const (
	SubprotocolJSON     = "overlay.json.v1"
	SubprotocolZstd     = "overlay.json.zstd.v1"
	SubprotocolProtobuf = "overlay.protobuf.v1"
)

// wireMessage is the envelope every viewer receives.
type wireMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encoder converts messages to each protocol's wire format.
// Safe for concurrent use.
type Encoder struct {
	zstdEncoder *zstd.Encoder
}

// NewEncoder creates a new Encoder with Zstd compression.
func NewEncoder() (*Encoder, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Encoder{zstdEncoder: enc}, nil
}

// Encode builds the frame for every protocol in protocols. Either all
// requested frames are returned or an error.
func (e *Encoder) Encode(msg ingest.Message, protocols map[Protocol]bool) (map[Protocol][]byte, error) {
	jsonData, err := encodeJSON(msg)
	if err != nil {
		return nil, err
	}

	frames := make(map[Protocol][]byte, len(protocols))
	for p := range protocols {
		switch p {
		case ProtocolJSON:
			frames[p] = jsonData
		case ProtocolZstd:
			frames[p] = e.zstdEncoder.EncodeAll(jsonData, nil)
		case ProtocolProtobuf:
			pb, err := encodeProtobuf(jsonData)
			if err != nil {
				return nil, err
			}
			frames[p] = pb
		default:
			return nil, fmt.Errorf("unknown protocol: %s", p)
		}
	}
	return frames, nil
}

// Close releases encoder resources.
func (e *Encoder) Close() {
	if e.zstdEncoder != nil {
		e.zstdEncoder.Close()
	}
}

// encodeJSON marshals msg into the JSON envelope. Float rounding happens here.
func encodeJSON(msg ingest.Message) ([]byte, error) {
	data, err := json.Marshal(wireMessage{Event: msg.Event, Data: msg.Payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s message: %w", msg.Event, err)
	}
	return data, nil
}

// encodeProtobuf converts a JSON envelope into a serialized google.protobuf.Struct
// with the same fields, so rounding and key names match the JSON protocol.
func encodeProtobuf(jsonData []byte) ([]byte, error) {
	var fields map[string]any
	if err := json.Unmarshal(jsonData, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}

	data, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal protobuf: %w", err)
	}
	return data, nil
}
