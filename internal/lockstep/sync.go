// Package lockstep reconciles two independently clocked peers into one agreed
// sequence of simulation frames. Each peer buffers its own input a fixed
// number of frames ahead, transmits it, and only advances a frame once both
// sides' samples for that frame are present. Missing input stalls the match
// and, past a threshold, triggers a resend request; it never diverges it.
package lockstep

import (
	"fmt"

	"ringside/internal/arena"
	"ringside/internal/telemetry"
)

// Metric keys recorded by the synchronizer.
const (
	MetricFramesAdvanced   = "lockstep_frames_advanced"
	MetricStalledTicks     = "lockstep_stalled_ticks"
	MetricResendRequests   = "lockstep_resend_requests"
	MetricDuplicateRemotes = "lockstep_duplicate_remote_inputs"
)

// Sender transmits lockstep traffic to the peer. Implemented by the
// websocket channel; tests substitute a recorder.
type Sender interface {
	SendInput(frame uint32, mask arena.InputMask) error
	SendResendRequest(frame uint32) error
}

// Config tunes the synchronizer. Delay is the input-latency/jitter
// trade-off; ResendThreshold is the number of consecutive stalled attempts
// before a retransmission request goes out.
type Config struct {
	LocalIndex      int
	Delay           uint32
	ResendThreshold uint32
}

// Synchronizer owns the two frame->mask maps and the advancement rule.
// Not threadsafe: the owning loop serializes all calls.
type Synchronizer struct {
	cfg     Config
	sender  Sender
	logger  telemetry.Logger
	metrics telemetry.Metrics

	frame      uint32
	nextLocal  uint32
	local      map[uint32]arena.InputMask
	remote     map[uint32]arena.InputMask
	stallCount uint32
}

// New builds a synchronizer. Frames below the input delay are pre-filled
// with neutral input on both sides and the local half is transmitted: the
// peer only pre-fills its own delay window, so with differing configured
// delays it would otherwise stall on these frames until a resend interval
// elapsed.
func New(cfg Config, sender Sender, logger telemetry.Logger, metrics telemetry.Metrics) *Synchronizer {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	s := &Synchronizer{
		cfg:       cfg,
		sender:    sender,
		logger:    logger,
		metrics:   metrics,
		nextLocal: cfg.Delay,
		local:     make(map[uint32]arena.InputMask),
		remote:    make(map[uint32]arena.InputMask),
	}
	for f := uint32(0); f < cfg.Delay; f++ {
		s.local[f] = 0
		s.remote[f] = 0
	}
	for f := uint32(0); f < cfg.Delay; f++ {
		if err := sender.SendInput(f, 0); err != nil {
			// Best effort: the peer's resend request recovers the rest.
			logger.Printf("lockstep: prefill send of frame %d failed: %v", f, err)
			break
		}
	}
	return s
}

// Frame returns the next frame awaiting simulation.
func (s *Synchronizer) Frame() uint32 { return s.frame }

// Stalled reports whether the last TryAdvance failed for missing input.
func (s *Synchronizer) Stalled() bool { return s.stallCount > 0 }

// RecordLocalIntent samples the current local intent for the next unsent
// frame and transmits it. At most one sample is buffered per frame, so a
// stalled match does not run local input ahead unboundedly.
func (s *Synchronizer) RecordLocalIntent(mask arena.InputMask) error {
	target := s.frame + s.cfg.Delay
	if s.nextLocal > target {
		return nil
	}
	s.local[s.nextLocal] = mask
	frame := s.nextLocal
	s.nextLocal++
	if err := s.sender.SendInput(frame, mask); err != nil {
		return fmt.Errorf("send input for frame %d: %w", frame, err)
	}
	return nil
}

// HandleRemoteInput records the peer's input for one frame. First write
// wins: a duplicate is counted and ignored, never overwritten, since
// divergent values for an already simulated frame would break determinism.
func (s *Synchronizer) HandleRemoteInput(frame uint32, mask arena.InputMask) {
	if _, exists := s.remote[frame]; exists {
		s.metrics.Add(MetricDuplicateRemotes, 1)
		return
	}
	s.remote[frame] = mask
}

// HandleResendRequest retransmits every buffered local input from the named
// frame onward, in frame order.
func (s *Synchronizer) HandleResendRequest(from uint32) {
	for f := from; f < s.nextLocal; f++ {
		mask, ok := s.local[f]
		if !ok {
			continue
		}
		if err := s.sender.SendInput(f, mask); err != nil {
			s.logger.Printf("lockstep: resend of frame %d failed: %v", f, err)
			return
		}
	}
}

// TryAdvance returns the input pair for the next frame when both maps hold
// it, indexed by fighter. Otherwise it reports a stall, and each time the
// consecutive-stall count crosses the configured threshold it emits one
// resend request naming the stalled frame.
func (s *Synchronizer) TryAdvance() ([2]arena.InputMask, bool) {
	localMask, localOK := s.local[s.frame]
	remoteMask, remoteOK := s.remote[s.frame]
	if !localOK || !remoteOK {
		s.stallCount++
		s.metrics.Add(MetricStalledTicks, 1)
		if s.cfg.ResendThreshold > 0 && s.stallCount%s.cfg.ResendThreshold == 0 {
			s.metrics.Add(MetricResendRequests, 1)
			s.logger.Printf("lockstep: frame %d stalled for %d ticks, requesting resend", s.frame, s.stallCount)
			if err := s.sender.SendResendRequest(s.frame); err != nil {
				s.logger.Printf("lockstep: resend request for frame %d failed: %v", s.frame, err)
			}
		}
		return [2]arena.InputMask{}, false
	}

	var inputs [2]arena.InputMask
	inputs[s.cfg.LocalIndex] = localMask
	inputs[1-s.cfg.LocalIndex] = remoteMask

	// Consumed frames stay buffered: the peer may lag behind us and ask
	// for them again via a resend request.
	s.frame++
	s.stallCount = 0
	s.metrics.Add(MetricFramesAdvanced, 1)
	return inputs, true
}
