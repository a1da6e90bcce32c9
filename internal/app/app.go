// Package app wires a complete peer: transport, handshake, synchronizer,
// arena, and the single goroutine that serializes inbound messages with the
// timestep tick. The rendering/input collaborator plugs in through Hooks.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ringside/internal/arena"
	"ringside/internal/character"
	"ringside/internal/config"
	"ringside/internal/lockstep"
	"ringside/internal/match"
	"ringside/internal/net/proto"
	"ringside/internal/net/ws"
	"ringside/internal/stats"
	"ringside/internal/telemetry"
)

const handshakeTimeout = 30 * time.Second

// Hooks is the collaborator boundary: the host application samples local
// intent and consumes presentable state. Nil hooks mean neutral input and no
// presentation, which is how the protocol tests run headless.
type Hooks struct {
	SampleIntent func() arena.InputMask
	Present      func(status string, snapshot arena.Snapshot, results []arena.StepResult)
}

// Config assembles one peer.
type Config struct {
	Runtime   config.Runtime
	Host      bool
	Addr      string // listen address when hosting, ws:// URL when joining
	User      string
	Character character.Definition
	Hooks     Hooks
	Logger    telemetry.Logger
	Metrics   *telemetry.MemoryMetrics
}

// Session is the agreed match context produced by the handshake. Both peers
// hold identical seeds and definitions; localIndex is the only asymmetry.
type Session struct {
	Seed       int32
	Users      [2]string
	Characters [2]character.Definition
	LocalIndex int
}

// Run connects to the peer, performs the handshake, and drives the match to
// its outcome or until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NewMemoryMetrics()
	}
	if err := cfg.Character.Validate(); err != nil {
		return fmt.Errorf("local character rejected: %w", err)
	}

	peer, err := connect(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer peer.Close()

	messages := make(chan proto.Message, 256)
	matchDone := make(chan struct{})
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(messages)
		err := peer.ReadLoop(func(msg proto.Message) {
			select {
			case messages <- msg:
			case <-ctx.Done():
			}
		})
		// A read error after the match goroutine finished or the context
		// was cancelled is just our own teardown.
		select {
		case <-matchDone:
			return nil
		default:
		}
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
	group.Go(func() error {
		defer peer.Close() // unblocks the read pump when this side is done
		defer close(matchDone)
		session, err := handshake(ctx, cfg, peer, messages)
		if err != nil {
			return err
		}
		return runMatch(ctx, cfg, session, peer, messages, logger, metrics)
	})
	return group.Wait()
}

func connect(ctx context.Context, cfg Config, logger telemetry.Logger, metrics telemetry.Metrics) (*ws.Peer, error) {
	if cfg.Host {
		logger.Printf("hosting match on %s as %q", cfg.Addr, cfg.User)
		return ws.Host(ctx, cfg.Addr, logger, metrics)
	}
	logger.Printf("joining match at %s as %q", cfg.Addr, cfg.User)
	return ws.Dial(ctx, cfg.Addr, logger, metrics)
}

// handshake agrees the session. The joiner announces itself with hello; the
// host answers with the authoritative start carrying the seed and both
// validated definitions.
func handshake(ctx context.Context, cfg Config, peer *ws.Peer, messages <-chan proto.Message) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	if cfg.Host {
		hello, err := waitFor[proto.Hello](ctx, messages)
		if err != nil {
			return Session{}, fmt.Errorf("waiting for challenger: %w", err)
		}
		if err := hello.Character.Validate(); err != nil {
			return Session{}, fmt.Errorf("challenger character rejected: %w", err)
		}
		start := proto.Start{
			T:      proto.TypeStart,
			Seed:   int32(time.Now().UnixNano()),
			P1User: cfg.User,
			P2User: hello.User,
			P1Char: cfg.Character,
			P2Char: hello.Character,
		}
		if err := peer.Send(start); err != nil {
			return Session{}, fmt.Errorf("send start: %w", err)
		}
		return sessionFromStart(start, 0)
	}

	if err := peer.Send(proto.Hello{T: proto.TypeHello, User: cfg.User, Character: cfg.Character}); err != nil {
		return Session{}, fmt.Errorf("send hello: %w", err)
	}
	start, err := waitFor[proto.Start](ctx, messages)
	if err != nil {
		return Session{}, fmt.Errorf("waiting for match start: %w", err)
	}
	return sessionFromStart(start, 1)
}

func sessionFromStart(start proto.Start, localIndex int) (Session, error) {
	for i, def := range []character.Definition{start.P1Char, start.P2Char} {
		if err := def.Validate(); err != nil {
			return Session{}, fmt.Errorf("start carries invalid character %d: %w", i, err)
		}
	}
	return Session{
		Seed:       start.Seed,
		Users:      [2]string{start.P1User, start.P2User},
		Characters: [2]character.Definition{start.P1Char, start.P2Char},
		LocalIndex: localIndex,
	}, nil
}

// waitFor discards other traffic until a message of the wanted type arrives.
func waitFor[T proto.Message](ctx context.Context, messages <-chan proto.Message) (T, error) {
	var zero T
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return zero, fmt.Errorf("peer disconnected")
			}
			if wanted, isWanted := msg.(T); isWanted {
				return wanted, nil
			}
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// runMatch is the single serialized owner of all simulation state: ticks and
// inbound messages interleave here and nowhere else.
func runMatch(ctx context.Context, cfg Config, session Session, peer *ws.Peer, messages <-chan proto.Message, logger telemetry.Logger, metrics *telemetry.MemoryMetrics) error {
	combat := arena.New(arena.Config{
		Seed: session.Seed,
		Fighters: [2]arena.FighterSetup{
			{Name: session.Users[0], Derived: stats.Derive(session.Characters[0])},
			{Name: session.Users[1], Derived: stats.Derive(session.Characters[1])},
		},
	})
	inputSync := lockstep.New(lockstep.Config{
		LocalIndex:      session.LocalIndex,
		Delay:           uint32(cfg.Runtime.InputDelay),
		ResendThreshold: uint32(cfg.Runtime.ResendThreshold),
	}, peer, logger, metrics)
	loop := match.New(match.Config{
		TickRate:   cfg.Runtime.TickRate,
		CatchUpMax: cfg.Runtime.CatchUpMax,
	}, combat, inputSync, logger, metrics)

	logger.Printf("match started: %q vs %q, seed %d, fighter index %d",
		session.Users[0], session.Users[1], session.Seed, session.LocalIndex)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Runtime.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("peer disconnected mid-match")
			}
			switch m := msg.(type) {
			case proto.Input:
				inputSync.HandleRemoteInput(m.Frame, arena.InputMask(m.Mask))
			case proto.ResendRequest:
				inputSync.HandleResendRequest(m.Frame)
			default:
				// hello/start after the match began carry no meaning.
			}
		case now := <-ticker.C:
			var intent arena.InputMask
			if cfg.Hooks.SampleIntent != nil {
				intent = cfg.Hooks.SampleIntent()
			}
			results := loop.Tick(now, intent)
			if cfg.Hooks.Present != nil {
				cfg.Hooks.Present(loop.Status(), loop.Snapshot(), results)
			}
			if loop.Ended() {
				logDiagnostics(logger, metrics)
				return nil
			}
		}
	}
}

func logDiagnostics(logger telemetry.Logger, metrics *telemetry.MemoryMetrics) {
	for _, key := range metrics.Keys() {
		logger.Printf("diagnostic %s=%d", key, metrics.Get(key))
	}
}
