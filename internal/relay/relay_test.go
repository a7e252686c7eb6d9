package relay

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestRelayDispatchesToAllHandlers(t *testing.T) {
	r := New(zaptest.NewLogger(t))

	var frames, spectates int
	r.OnFrame(func(*Frame) { frames++ })
	r.OnFrame(func(*Frame) { frames++ })
	r.OnSpectate(func(ev SpectateEvent) {
		if ev.PlayerIndex != 2 {
			t.Errorf("expected player index 2, got %d", ev.PlayerIndex)
		}
		spectates++
	})

	r.DispatchFrame(&Frame{})
	r.DispatchSpectate(SpectateEvent{PlayerIndex: 2})

	if frames != 2 {
		t.Errorf("expected 2 frame deliveries, got %d", frames)
	}
	if spectates != 1 {
		t.Errorf("expected 1 spectate delivery, got %d", spectates)
	}
}

func TestRelayInputChangeWithoutHandlerIsDropped(t *testing.T) {
	r := New(zaptest.NewLogger(t))

	if err := r.DispatchPlayerInputChange(InputChangeEvent{PlayerIndex: 1}); err != nil {
		t.Errorf("expected no error without handlers, got %v", err)
	}
}

func TestRelayInputChangeReturnsHandlerError(t *testing.T) {
	r := New(zaptest.NewLogger(t))
	errBoom := errors.New("boom")
	r.OnPlayerInputChange(func(InputChangeEvent) error { return errBoom })

	err := r.DispatchPlayerInputChange(InputChangeEvent{})
	if !errors.Is(err, errBoom) {
		t.Errorf("expected handler error, got %v", err)
	}
}

func TestRelayHandlerCounts(t *testing.T) {
	r := New(zaptest.NewLogger(t))
	r.OnFrame(func(*Frame) {})
	r.OnSpectate(func(SpectateEvent) {})

	frames, spectates, inputs := r.HandlerCounts()
	if frames != 1 || spectates != 1 || inputs != 0 {
		t.Errorf("unexpected counts: frames=%d spectates=%d inputs=%d", frames, spectates, inputs)
	}
}
