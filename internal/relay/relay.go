package relay

import (
	"sync"

	"go.uber.org/zap"
)

// FrameHandler receives every game tick packet.
type FrameHandler func(frame *Frame)

// SpectateHandler receives spectate changes.
type SpectateHandler func(ev SpectateEvent)

// InputChangeHandler receives player input changes. A returned error is
// handed back to whoever dispatched the event.
type InputChangeHandler func(ev InputChangeEvent) error

// Relay fans upstream events out to registered handlers.
// Handlers run synchronously on the dispatching goroutine.
type Relay struct {
	mu           sync.RWMutex
	frames       []FrameHandler
	spectates    []SpectateHandler
	inputChanges []InputChangeHandler
	logger       *zap.Logger
}

// New creates an empty Relay.
func New(logger *zap.Logger) *Relay {
	return &Relay{logger: logger}
}

// OnFrame registers a frame handler.
func (r *Relay) OnFrame(h FrameHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, h)
}

// OnSpectate registers a spectate handler.
func (r *Relay) OnSpectate(h SpectateHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spectates = append(r.spectates, h)
}

// OnPlayerInputChange registers an input change handler.
func (r *Relay) OnPlayerInputChange(h InputChangeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputChanges = append(r.inputChanges, h)
}

// DispatchFrame delivers a frame to all frame handlers.
func (r *Relay) DispatchFrame(frame *Frame) {
	r.mu.RLock()
	handlers := r.frames
	r.mu.RUnlock()

	for _, h := range handlers {
		h(frame)
	}
}

// DispatchSpectate delivers a spectate change to all spectate handlers.
func (r *Relay) DispatchSpectate(ev SpectateEvent) {
	r.mu.RLock()
	handlers := r.spectates
	r.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// DispatchPlayerInputChange delivers an input change to all input change
// handlers and returns the first error. Events with no handler are dropped.
func (r *Relay) DispatchPlayerInputChange(ev InputChangeEvent) error {
	r.mu.RLock()
	handlers := r.inputChanges
	r.mu.RUnlock()

	if len(handlers) == 0 {
		r.logger.Debug("no input change handler registered, dropping event",
			zap.Int("playerIndex", ev.PlayerIndex),
			zap.Int("frameNum", ev.FrameNum),
		)
		return nil
	}

	for _, h := range handlers {
		if err := h(ev); err != nil {
			return err
		}
	}
	return nil
}

// HandlerCounts returns how many frame, spectate and input change handlers
// are registered.
func (r *Relay) HandlerCounts() (frames, spectates, inputChanges int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames), len(r.spectates), len(r.inputChanges)
}
