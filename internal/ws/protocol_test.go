package ws

import (
	"testing"
)

func TestNegotiateProtocol(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		want      Protocol
		header    string
	}{
		{"none", nil, ProtocolJSON, ""},
		{"json", []string{SubprotocolJSON}, ProtocolJSON, SubprotocolJSON},
		{"zstd", []string{SubprotocolZstd}, ProtocolZstd, SubprotocolZstd},
		{"protobuf", []string{SubprotocolProtobuf}, ProtocolProtobuf, SubprotocolProtobuf},
		{"first supported wins", []string{SubprotocolZstd, SubprotocolJSON}, ProtocolZstd, SubprotocolZstd},
		{"unknown skipped", []string{"graphql-ws", SubprotocolProtobuf}, ProtocolProtobuf, SubprotocolProtobuf},
		{"only unknown", []string{"graphql-ws"}, ProtocolJSON, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, header := negotiateProtocol(tt.requested)
			if got != tt.want {
				t.Errorf("expected protocol %s, got %s", tt.want, got)
			}
			if tt.header == "" {
				if header != nil {
					t.Errorf("expected no response header, got %v", header)
				}
				return
			}
			if h := header.Get("Sec-WebSocket-Protocol"); h != tt.header {
				t.Errorf("expected header %q, got %q", tt.header, h)
			}
		})
	}
}

func TestParseViewerMessage(t *testing.T) {
	msg, err := parseViewerMessage([]byte(`{"type":"ping"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := msg.(*pingRequest); !ok {
		t.Errorf("expected *pingRequest, got %T", msg)
	}

	for _, input := range []string{`{"type":"subscribe"}`, `{}`, `not json`} {
		if _, err := parseViewerMessage([]byte(input)); err == nil {
			t.Errorf("expected error for %s", input)
		}
	}
}
