package ingest

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/twobackfromtheend/rlbot-overlay-script/internal/relay"
	"github.com/twobackfromtheend/rlbot-overlay-script/internal/state"
)

func frameWithScores(blue, orange int, players ...string) *relay.Frame {
	f := &relay.Frame{
		Teams: []relay.TeamFrame{
			{TeamIndex: 0, Score: blue},
			{TeamIndex: 1, Score: orange},
		},
	}
	for i, name := range players {
		f.Players = append(f.Players, relay.PlayerFrame{Name: name, Team: i % 2, Boost: 33})
	}
	return f
}

func packetOf(t *testing.T, msgs []Message) state.GameState {
	t.Helper()
	if len(msgs) == 0 || msgs[0].Event != EventPacket {
		t.Fatalf("expected packet message first, got %+v", msgs)
	}
	gs, ok := msgs[0].Payload.(state.GameState)
	if !ok {
		t.Fatalf("expected state.GameState payload, got %T", msgs[0].Payload)
	}
	return gs
}

func spectatesIn(msgs []Message) []state.Spectate {
	var out []state.Spectate
	for _, m := range msgs {
		if m.Event == EventSpectate {
			out = append(out, m.Payload.(state.Spectate))
		}
	}
	return out
}

func teamScores(gs state.GameState) []int {
	scores := make([]int, len(gs.Teams))
	for i, team := range gs.Teams {
		scores[i] = team.Score
	}
	return scores
}

func TestMessagesBeforeFirstFrameIsEmpty(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))

	if msgs := h.Messages(); len(msgs) != 0 {
		t.Errorf("expected no messages, got %+v", msgs)
	}
}

func TestScoreReconciliation(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))

	steps := []struct {
		raw  [2]int
		want []int
	}{
		{[2]int{0, 0}, []int{0, 0}},
		{[2]int{1, 0}, []int{1, 0}},
		{[2]int{1, 0}, []int{1, 0}},
		{[2]int{2, 0}, []int{2, 0}},
	}

	for i, step := range steps {
		h.OnFrame(frameWithScores(step.raw[0], step.raw[1]))
		got := teamScores(packetOf(t, h.Messages()))
		if got[0] != step.want[0] || got[1] != step.want[1] {
			t.Errorf("step %d: raw %v, expected %v, got %v", i, step.raw, step.want, got)
		}
	}
}

func TestScoreReconciliationHandlesWraparound(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))

	// The raw byte wraps from 255 to 0; the reconciled score keeps counting.
	for _, raw := range []int{250, 251, 255, 0, 1} {
		h.OnFrame(frameWithScores(raw, 0))
	}

	got := teamScores(packetOf(t, h.Messages()))
	if got[0] != 257 {
		t.Errorf("expected reconciled score 257, got %d", got[0])
	}
}

func TestScoreReconciliationTakesLargerRawScore(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))

	// Joining mid-match: first packet already shows 3 goals.
	h.OnFrame(frameWithScores(3, 1))
	got := teamScores(packetOf(t, h.Messages()))
	if got[0] != 3 || got[1] != 1 {
		t.Errorf("expected [3 1], got %v", got)
	}

	// A multi-goal jump counts as one change, then max with raw.
	h.OnFrame(frameWithScores(7, 1))
	got = teamScores(packetOf(t, h.Messages()))
	if got[0] != 7 {
		t.Errorf("expected 7, got %d", got[0])
	}
}

func TestScoreNeverDecreases(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))

	prev := 0
	for _, raw := range []int{0, 1, 2, 0, 0, 5, 3, 3, 4, 255, 0} {
		h.OnFrame(frameWithScores(raw, 0))
		got := teamScores(packetOf(t, h.Messages()))[0]
		if got < prev {
			t.Fatalf("score decreased from %d to %d at raw %d", prev, got, raw)
		}
		if got < raw {
			t.Fatalf("score %d below raw %d", got, raw)
		}
		prev = got
	}
}

func TestScoreChangeAlwaysIncrements(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))

	prevRaw, prevScore := 0, 0
	for _, raw := range []int{1, 1, 0, 3, 2, 2, 9} {
		h.OnFrame(frameWithScores(raw, 0))
		got := teamScores(packetOf(t, h.Messages()))[0]
		if raw != prevRaw && got < prevScore+1 {
			t.Errorf("raw %d->%d: expected score to grow from %d, got %d", prevRaw, raw, prevScore, got)
		}
		if raw == prevRaw && got != prevScore {
			t.Errorf("raw unchanged at %d: expected score %d, got %d", raw, prevScore, got)
		}
		prevRaw, prevScore = raw, got
	}
}

func TestPacketDoesNotChangeRawFrame(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))
	frame := frameWithScores(0, 0)
	h.OnFrame(frame)
	h.OnFrame(frameWithScores(1, 0))
	h.OnFrame(frame)

	_ = h.Messages()
	if frame.Teams[0].Score != 0 {
		t.Errorf("raw frame was modified: %+v", frame.Teams)
	}
}

func TestSpectateEmittedOnce(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))
	h.OnFrame(frameWithScores(0, 0, "Kamael", "Bumblebee", "Stinger"))

	h.OnSpectate(relay.SpectateEvent{PlayerIndex: 2})

	first := spectatesIn(h.Messages())
	if len(first) != 1 {
		t.Fatalf("expected 1 spectate message, got %d", len(first))
	}
	if first[0].PlayerIndex == nil || *first[0].PlayerIndex != 2 {
		t.Errorf("expected player index 2, got %+v", first[0].PlayerIndex)
	}
	if first[0].Player == nil || first[0].Player.Name != "Stinger" {
		t.Errorf("expected Stinger, got %+v", first[0].Player)
	}

	second := h.Messages()
	if got := spectatesIn(second); len(got) != 0 {
		t.Errorf("spectate sent twice: %+v", got)
	}
	if len(second) != 1 {
		t.Errorf("expected only the packet on the second tick, got %d messages", len(second))
	}
}

func TestSpectateNoPlayer(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))
	h.OnFrame(frameWithScores(0, 0, "Kamael"))

	h.OnSpectate(relay.SpectateEvent{PlayerIndex: relay.NoPlayer})

	got := spectatesIn(h.Messages())
	if len(got) != 1 {
		t.Fatalf("expected 1 spectate message, got %d", len(got))
	}
	if got[0].PlayerIndex != nil || got[0].Player != nil {
		t.Errorf("expected empty spectate, got %+v", got[0])
	}
	if again := spectatesIn(h.Messages()); len(again) != 0 {
		t.Errorf("spectate sent twice: %+v", again)
	}
}

func TestSpectateBeforeFirstFrameIsDiscarded(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := NewHandler(zap.New(core))

	h.OnSpectate(relay.SpectateEvent{PlayerIndex: 1})
	h.OnFrame(frameWithScores(0, 0, "Kamael", "Bumblebee"))

	if got := spectatesIn(h.Messages()); len(got) != 0 {
		t.Errorf("expected no spectate, got %+v", got)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}
}

func TestNoPlayerSpectateBeforeFirstFrameWaitsForPacket(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))

	h.OnSpectate(relay.SpectateEvent{PlayerIndex: relay.NoPlayer})

	if msgs := h.Messages(); msgs != nil {
		t.Fatalf("expected nothing before the first frame, got %+v", msgs)
	}
	if !h.Stats().PendingSpectate {
		t.Fatal("expected spectate to stay pending until the first frame")
	}

	h.OnFrame(frameWithScores(0, 0, "Kamael"))

	msgs := h.Messages()
	packetOf(t, msgs)
	got := spectatesIn(msgs)
	if len(got) != 1 {
		t.Fatalf("expected 1 spectate message, got %d", len(got))
	}
	if got[0].PlayerIndex != nil || got[0].Player != nil {
		t.Errorf("expected empty spectate, got %+v", got[0])
	}
	if again := spectatesIn(h.Messages()); len(again) != 0 {
		t.Errorf("spectate sent twice: %+v", again)
	}
}

func TestSpectateOutOfRangeKeepsPending(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))
	h.OnFrame(frameWithScores(0, 0, "Kamael"))

	h.OnSpectate(relay.SpectateEvent{PlayerIndex: 0})
	h.OnSpectate(relay.SpectateEvent{PlayerIndex: 5})

	got := spectatesIn(h.Messages())
	if len(got) != 1 || got[0].Player == nil || got[0].Player.Name != "Kamael" {
		t.Errorf("expected earlier spectate to survive, got %+v", got)
	}
}

func TestSpectateLatestWins(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))
	h.OnFrame(frameWithScores(0, 0, "Kamael", "Bumblebee"))

	h.OnSpectate(relay.SpectateEvent{PlayerIndex: 0})
	h.OnSpectate(relay.SpectateEvent{PlayerIndex: 1})

	got := spectatesIn(h.Messages())
	if len(got) != 1 || *got[0].PlayerIndex != 1 {
		t.Errorf("expected only the latest spectate, got %+v", got)
	}
}

func TestPlayerInputChangeUnsupported(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))

	err := h.OnPlayerInputChange(relay.InputChangeEvent{PlayerIndex: 1})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestHookIsIdempotent(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := NewHandler(zap.New(core))
	r := relay.New(zap.NewNop())

	h.Hook(r)
	h.Hook(r)

	frames, spectates, inputs := r.HandlerCounts()
	if frames != 1 || spectates != 1 {
		t.Errorf("expected one frame and one spectate handler, got %d and %d", frames, spectates)
	}
	if inputs != 0 {
		t.Errorf("input change handler should not be hooked, got %d", inputs)
	}
	if logs.FilterMessage("relay handlers already hooked, skipping").Len() != 1 {
		t.Error("expected a warning for the second hook")
	}

	r.DispatchFrame(frameWithScores(1, 0))
	if st := h.Stats(); st.FramesIngested != 1 {
		t.Errorf("expected 1 frame ingested through relay, got %d", st.FramesIngested)
	}
}

func TestStats(t *testing.T) {
	h := NewHandler(zaptest.NewLogger(t))
	if st := h.Stats(); st.HasFrame || st.FramesIngested != 0 || len(st.Scores) != 0 {
		t.Errorf("unexpected initial stats: %+v", st)
	}

	f := frameWithScores(1, 2, "Kamael")
	f.GameInfo.FrameNum = 900
	h.OnFrame(f)
	h.OnSpectate(relay.SpectateEvent{PlayerIndex: 0})

	st := h.Stats()
	if !st.HasFrame || st.FramesIngested != 1 || st.FrameNum != 900 || !st.PendingSpectate {
		t.Errorf("unexpected stats: %+v", st)
	}
	if len(st.Scores) != 2 || st.Scores[0].TeamIndex != 0 || st.Scores[1].Score != 2 {
		t.Errorf("unexpected scores: %+v", st.Scores)
	}
}

func TestConcurrentIngestAndMessages(t *testing.T) {
	h := NewHandler(zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			h.OnFrame(frameWithScores(i%256, 0, "Kamael", "Bumblebee"))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			h.OnSpectate(relay.SpectateEvent{PlayerIndex: i%3 - 1})
		}
	}()

	var spectates int
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			spectates += len(spectatesIn(h.Messages()))
		}
	}()
	wg.Wait()

	if st := h.Stats(); st.FramesIngested != 500 {
		t.Errorf("expected 500 frames, got %d", st.FramesIngested)
	}
	if spectates > 500 {
		t.Errorf("more spectates emitted than received: %d", spectates)
	}
}
