// Package ingest holds the game state derived from upstream telemetry and
// turns it into messages for viewers.
package ingest

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/twobackfromtheend/rlbot-overlay-script/internal/relay"
	"github.com/twobackfromtheend/rlbot-overlay-script/internal/state"
)

// Broadcast event names.
const (
	EventPacket   = "packet"
	EventSpectate = "spectate"
)

// ErrUnsupported is returned for player input changes, which are not handled.
var ErrUnsupported = errors.New("player input changes are not supported")

// Message is one event to publish to every viewer.
type Message struct {
	Event   string
	Payload any
}

// scoreAccumulator tracks one team's score across packets. The raw score
// from the game wraps, so every change counts as one goal.
type scoreAccumulator struct {
	lastRaw    int
	reconciled int
}

// observe applies a raw score and reports whether it changed.
func (a *scoreAccumulator) observe(raw int) bool {
	if raw == a.lastRaw {
		return false
	}
	a.lastRaw = raw
	a.reconciled++
	a.reconciled = max(a.reconciled, a.lastRaw)
	return true
}

// TeamScore is a team's reconciled score.
type TeamScore struct {
	TeamIndex int `json:"team_index"`
	Score     int `json:"score"`
	RawScore  int `json:"raw_score"`
}

// Stats is a point-in-time view of the handler for status reporting.
type Stats struct {
	FramesIngested  uint64      `json:"frames_ingested"`
	HasFrame        bool        `json:"has_frame"`
	FrameNum        int         `json:"frame_num"`
	Scores          []TeamScore `json:"scores"`
	PendingSpectate bool        `json:"pending_spectate"`
}

// Handler consumes game tick packets and spectate changes and produces
// outbound messages. Safe for concurrent use.
type Handler struct {
	mu       sync.Mutex
	frame    *relay.Frame
	scores   map[int]*scoreAccumulator // team index -> accumulator
	spectate *state.Spectate
	frames   uint64

	hooked bool
	logger *zap.Logger
}

// NewHandler creates a Handler with no state.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		scores: make(map[int]*scoreAccumulator),
		logger: logger,
	}
}

// Hook registers the handler's frame and spectate callbacks on r.
// Input changes are not hooked. Hooking twice is a no-op.
func (h *Handler) Hook(r *relay.Relay) {
	h.mu.Lock()
	if h.hooked {
		h.mu.Unlock()
		h.logger.Warn("relay handlers already hooked, skipping")
		return
	}
	h.hooked = true
	h.mu.Unlock()

	r.OnFrame(h.OnFrame)
	r.OnSpectate(h.OnSpectate)

	h.logger.Info("hooked relay handlers")
}

// OnFrame reconciles team scores and stores frame as the latest packet.
// The handler keeps a reference to frame; callers must not modify it afterwards.
func (h *Handler) OnFrame(frame *relay.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, team := range frame.Teams {
		acc, ok := h.scores[team.TeamIndex]
		if !ok {
			acc = &scoreAccumulator{}
			h.scores[team.TeamIndex] = acc
		}
		if acc.observe(team.Score) {
			h.logger.Info("team score changed",
				zap.Int("team", team.TeamIndex),
				zap.Int("rawScore", team.Score),
				zap.Int("score", acc.reconciled),
			)
		}
	}

	h.frame = frame
	h.frames++
}

// OnSpectate records the spectated player so the next Messages call
// announces it.
func (h *Handler) OnSpectate(ev relay.SpectateEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ev.PlayerIndex == relay.NoPlayer {
		h.logger.Info("spectating player changed: no player")
		h.spectate = &state.Spectate{}
		return
	}

	if h.frame == nil {
		h.logger.Warn("spectating player changed: unknown player as no packets received",
			zap.Int("playerIndex", ev.PlayerIndex),
		)
		return
	}

	if ev.PlayerIndex < 0 || ev.PlayerIndex >= len(h.frame.Players) {
		h.logger.Warn("spectating player changed: index not in latest packet",
			zap.Int("playerIndex", ev.PlayerIndex),
			zap.Int("players", len(h.frame.Players)),
		)
		return
	}

	index := ev.PlayerIndex
	player := state.PlayerFromFrame(h.frame.Players[index])
	h.spectate = &state.Spectate{PlayerIndex: &index, Player: &player}

	h.logger.Info("spectating player changed",
		zap.String("name", player.Name),
		zap.Int("playerIndex", index),
	)
}

// OnPlayerInputChange always fails with ErrUnsupported.
func (h *Handler) OnPlayerInputChange(ev relay.InputChangeEvent) error {
	return fmt.Errorf("player %d at frame %d: %w", ev.PlayerIndex, ev.FrameNum, ErrUnsupported)
}

// Messages returns the messages to broadcast this tick: a "packet" built
// from the latest frame, followed by a "spectate" if one is pending. A
// pending spectate is returned once and then cleared. Returns nil before
// the first frame, leaving any pending spectate in place.
func (h *Handler) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.frame == nil {
		return nil
	}

	gs := state.FromFrame(h.frame)
	for i := range gs.Teams {
		// Positions map to team indexes 0 and 1 in every real match.
		if acc, ok := h.scores[i]; ok {
			gs.Teams[i].Score = acc.reconciled
		}
	}
	messages := []Message{{Event: EventPacket, Payload: gs}}

	if h.spectate != nil {
		messages = append(messages, Message{Event: EventSpectate, Payload: *h.spectate})
		h.spectate = nil
	}

	return messages
}

// Stats returns a snapshot of the handler's counters and scores.
func (h *Handler) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := Stats{
		FramesIngested:  h.frames,
		HasFrame:        h.frame != nil,
		Scores:          make([]TeamScore, 0, len(h.scores)),
		PendingSpectate: h.spectate != nil,
	}
	if h.frame != nil {
		st.FrameNum = h.frame.GameInfo.FrameNum
	}
	for team, acc := range h.scores {
		st.Scores = append(st.Scores, TeamScore{
			TeamIndex: team,
			Score:     acc.reconciled,
			RawScore:  acc.lastRaw,
		})
	}
	sort.Slice(st.Scores, func(i, j int) bool {
		return st.Scores[i].TeamIndex < st.Scores[j].TeamIndex
	})
	return st
}
