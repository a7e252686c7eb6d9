package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// EventPong answers a viewer's ping.
const EventPong = "pong"

// Viewer message types for internal routing
type pingRequest struct{}

// parseViewerMessage parses a JSON message sent by a viewer.
// Viewers only send pings; everything else is rejected.
func parseViewerMessage(data []byte) (any, error) {
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal viewer message: %w", err)
	}

	switch msg.Type {
	case "ping":
		return &pingRequest{}, nil
	default:
		return nil, fmt.Errorf("unknown viewer message type: %q", msg.Type)
	}
}

// negotiateProtocol picks the first supported subprotocol the viewer asked
// for, in the viewer's order. Viewers that ask for none get JSON and no
// response header. The returned header is the only place the choice is
// announced.
func negotiateProtocol(requested []string) (Protocol, http.Header) {
	for _, proto := range requested {
		var p Protocol
		switch proto {
		case SubprotocolJSON:
			p = ProtocolJSON
		case SubprotocolZstd:
			p = ProtocolZstd
		case SubprotocolProtobuf:
			p = ProtocolProtobuf
		default:
			continue
		}
		return p, http.Header{http.CanonicalHeaderKey("Sec-WebSocket-Protocol"): {proto}}
	}
	return ProtocolJSON, nil
}
