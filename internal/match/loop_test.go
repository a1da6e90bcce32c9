package match

import (
	"testing"
	"time"

	"ringside/internal/arena"
	"ringside/internal/character"
	"ringside/internal/lockstep"
	"ringside/internal/stats"
)

type loopbackSender struct {
	sync *lockstep.Synchronizer
}

// SendInput feeds the local input straight back as the remote side, which
// simulates a zero-latency peer and keeps the loop advancing.
func (l *loopbackSender) SendInput(frame uint32, mask arena.InputMask) error {
	l.sync.HandleRemoteInput(frame, mask)
	return nil
}

func (l *loopbackSender) SendResendRequest(uint32) error { return nil }

type silentSender struct{}

func (silentSender) SendInput(uint32, arena.InputMask) error { return nil }
func (silentSender) SendResendRequest(uint32) error          { return nil }

func newTestArena() *arena.Arena {
	derived := stats.Derive(character.Default("test"))
	return arena.New(arena.Config{
		Seed: 1,
		Fighters: [2]arena.FighterSetup{
			{Name: "a", Derived: derived},
			{Name: "b", Derived: derived},
		},
	})
}

func newLoopbackLoop(cfg Config) *Loop {
	sender := &loopbackSender{}
	sync := lockstep.New(lockstep.Config{LocalIndex: 0, Delay: 0, ResendThreshold: 60}, sender, nil, nil)
	sender.sync = sync
	return New(cfg, newTestArena(), sync, nil, nil)
}

func TestTickDrainsWholeTimesteps(t *testing.T) {
	loop := newLoopbackLoop(Config{TickRate: 60, CatchUpMax: 5})
	start := time.Unix(100, 0)

	loop.Tick(start, 0)

	results := loop.Tick(start.Add(50*time.Millisecond), 0)
	if len(results) != 3 {
		t.Fatalf("50ms at 60Hz should drain 3 frames, got %d", len(results))
	}
	if loop.Status() != StatusRunning {
		t.Fatalf("status = %q, want %q", loop.Status(), StatusRunning)
	}
}

func TestTickCapsCatchUpBurst(t *testing.T) {
	loop := newLoopbackLoop(Config{TickRate: 60, CatchUpMax: 5})
	start := time.Unix(100, 0)

	loop.Tick(start, 0)

	// A two-second suspend must not burst 120 frames.
	results := loop.Tick(start.Add(2*time.Second), 0)
	if len(results) != 5 {
		t.Fatalf("catch-up should cap at 5 frames, got %d", len(results))
	}

	// The capped backlog does not carry over as another full burst.
	results = loop.Tick(start.Add(2*time.Second+time.Millisecond), 0)
	if len(results) > 5 {
		t.Fatalf("leftover backlog exceeded the cap: %d", len(results))
	}
}

func TestLoopReportsStallWithoutRemoteInput(t *testing.T) {
	sync := lockstep.New(lockstep.Config{LocalIndex: 0, Delay: 0, ResendThreshold: 60}, silentSender{}, nil, nil)
	loop := New(Config{TickRate: 60, CatchUpMax: 5}, newTestArena(), sync, nil, nil)
	start := time.Unix(100, 0)

	loop.Tick(start, 0)
	results := loop.Tick(start.Add(100*time.Millisecond), 0)
	if len(results) != 0 {
		t.Fatalf("no remote input, loop should not simulate, got %d frames", len(results))
	}
	if loop.Status() != StatusStalled {
		t.Fatalf("status = %q, want %q", loop.Status(), StatusStalled)
	}

	// The stalled frames become simulable once the remote inputs show up.
	for frame := uint32(0); frame <= 10; frame++ {
		sync.HandleRemoteInput(frame, 0)
	}
	results = loop.Tick(start.Add(117*time.Millisecond), 0)
	if len(results) == 0 {
		t.Fatalf("loop should resume after the remote input arrives")
	}
	if loop.Status() != StatusRunning {
		t.Fatalf("status after recovery = %q, want %q", loop.Status(), StatusRunning)
	}
}

func TestLoopEndsWhenMatchDecided(t *testing.T) {
	sender := &loopbackSender{}
	sync := lockstep.New(lockstep.Config{LocalIndex: 0, Delay: 0, ResendThreshold: 60}, sender, nil, nil)
	sender.sync = sync

	derived := stats.Derive(character.Default("test"))
	weak := derived
	weak.MaxHealth = 1
	a := arena.New(arena.Config{
		Seed: 1,
		Fighters: [2]arena.FighterSetup{
			{Name: "a", Derived: derived},
			{Name: "b", Derived: weak},
		},
	})
	loop := New(Config{TickRate: 60, CatchUpMax: 5}, a, sync, nil, nil)

	now := time.Unix(100, 0)
	loop.Tick(now, 0)
	// Walk fighter 0 forward and jab until the one-health defender drops.
	for i := 0; i < 60*60 && !loop.Ended(); i++ {
		now = now.Add(17 * time.Millisecond)
		intent := arena.InputRight
		if i%20 == 0 {
			intent |= arena.InputLight
		}
		loop.Tick(now, intent)
	}

	if !loop.Ended() {
		t.Fatalf("match never ended")
	}
	if loop.Status() != StatusEnded {
		t.Fatalf("status = %q, want %q", loop.Status(), StatusEnded)
	}
	if got := loop.Snapshot().Outcome; got != arena.OutcomeWinner0 {
		t.Fatalf("outcome = %s, want %s", got, arena.OutcomeWinner0)
	}
}
