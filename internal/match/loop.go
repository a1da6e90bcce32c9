// Package match drives the simulation at a fixed timestep. Real elapsed time
// only decides when frames are drained, never what they compute: the arena is
// frame-indexed and the synchronizer decides whether a frame may run at all.
package match

import (
	"time"

	"ringside/internal/arena"
	"ringside/internal/lockstep"
	"ringside/internal/telemetry"
)

// Status strings surfaced to the presentation layer.
const (
	StatusRunning = "running"
	StatusStalled = "stalled"
	StatusEnded   = "ended"
)

// Metric keys recorded by the loop.
const (
	MetricFramesSimulated = "match_frames_simulated"
	MetricTicksCapped     = "match_ticks_capped"
)

// Config tunes the timestep driver. TickRate is simulation frames per
// second; CatchUpMax caps how many frames one real-time tick may drain after
// a stall or suspend, to avoid an unbounded burst.
type Config struct {
	TickRate   int
	CatchUpMax int
}

// DefaultConfig matches the shipped tuning.
func DefaultConfig() Config {
	return Config{TickRate: 60, CatchUpMax: 5}
}

// Loop owns the accumulator and glues the synchronizer to the arena. Not
// threadsafe: one goroutine serializes Tick with inbound message handling.
type Loop struct {
	arena   *arena.Arena
	sync    *lockstep.Synchronizer
	logger  telemetry.Logger
	metrics telemetry.Metrics

	step       time.Duration
	catchUpMax int

	acc     time.Duration
	last    time.Time
	started bool
	ended   bool
}

// New wires a loop over an arena and synchronizer.
func New(cfg Config, a *arena.Arena, synchronizer *lockstep.Synchronizer, logger telemetry.Logger, metrics telemetry.Metrics) *Loop {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.CatchUpMax <= 0 {
		cfg.CatchUpMax = DefaultConfig().CatchUpMax
	}
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	return &Loop{
		arena:      a,
		sync:       synchronizer,
		logger:     logger,
		metrics:    metrics,
		step:       time.Second / time.Duration(cfg.TickRate),
		catchUpMax: cfg.CatchUpMax,
	}
}

// Tick accumulates real time and drains whole simulation frames, sampling
// the provided local intent once per drained frame. It returns the step
// results produced this tick, possibly none.
func (l *Loop) Tick(now time.Time, intent arena.InputMask) []arena.StepResult {
	if l.ended {
		return nil
	}
	if !l.started {
		l.started = true
		l.last = now
		return nil
	}

	l.acc += now.Sub(l.last)
	l.last = now

	// Cap the backlog so a resumed peer bursts at most CatchUpMax frames.
	if limit := time.Duration(l.catchUpMax) * l.step; l.acc > limit {
		l.acc = limit
		l.metrics.Add(MetricTicksCapped, 1)
	}

	var results []arena.StepResult
	for frames := 0; l.acc >= l.step && frames < l.catchUpMax; frames++ {
		if err := l.sync.RecordLocalIntent(intent); err != nil {
			l.logger.Printf("match: record local intent: %v", err)
		}
		inputs, ready := l.sync.TryAdvance()
		if !ready {
			// A stall is a state, not an error: hold the accumulated
			// time and retry on the next tick.
			break
		}
		l.acc -= l.step

		result := l.arena.Step(inputs)
		l.metrics.Add(MetricFramesSimulated, 1)
		results = append(results, result)
		if result.Over {
			l.ended = true
			l.logger.Printf("match: ended on frame %d with outcome %s", result.Frame, result.Outcome)
			break
		}
	}
	return results
}

// Status reports the loop's externally visible state.
func (l *Loop) Status() string {
	switch {
	case l.ended:
		return StatusEnded
	case l.sync.Stalled():
		return StatusStalled
	default:
		return StatusRunning
	}
}

// Snapshot exposes the renderable arena state.
func (l *Loop) Snapshot() arena.Snapshot {
	return l.arena.Snapshot()
}

// Ended reports whether the match reached a terminal outcome.
func (l *Loop) Ended() bool { return l.ended }
