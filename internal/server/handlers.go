package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/twobackfromtheend/rlbot-overlay-script/internal/ingest"
)

// ViewerCounter reports connected viewers.
type ViewerCounter interface {
	SubscriberCount() int
}

// IngestStatser reports ingestion state.
type IngestStatser interface {
	Stats() ingest.Stats
}

// RelayStatus reports the upstream connection.
type RelayStatus interface {
	Connected() bool
	Received() uint64
}

// Status is the /api/status response body.
type Status struct {
	Subscribers     int             `json:"subscribers"`
	BroadcastRateHz int             `json:"broadcast_rate_hz"`
	Relay           RelayStatusBody `json:"relay"`
	Ingest          ingest.Stats    `json:"ingest"`
}

// RelayStatusBody describes the upstream connection in Status.
type RelayStatusBody struct {
	Connected        bool   `json:"connected"`
	MessagesReceived uint64 `json:"messages_received"`
}

type Server struct {
	viewers ViewerCounter
	ingest  IngestStatser
	relay   RelayStatus
	rateHz  int
	logger  *zap.Logger
}

func NewServer(viewers ViewerCounter, stats IngestStatser, upstream RelayStatus, rateHz int, logger *zap.Logger) *Server {
	return &Server{
		viewers: viewers,
		ingest:  stats,
		relay:   upstream,
		rateHz:  rateHz,
		logger:  logger,
	}
}

// GetStatus reports viewers, relay connection and ingestion progress.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := Status{
		Subscribers:     s.viewers.SubscriberCount(),
		BroadcastRateHz: s.rateHz,
		Relay: RelayStatusBody{
			Connected:        s.relay.Connected(),
			MessagesReceived: s.relay.Received(),
		},
		Ingest: s.ingest.Stats(),
	}
	s.writeJSON(w, http.StatusOK, status)
}

// Health is a liveness probe.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}
