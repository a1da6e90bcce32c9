// ringside is one peer of a two-player lockstep match. One side hosts, the
// other joins; both run the identical simulation and merely exchange inputs.
// Rendering and input devices belong to the embedding client; this binary
// runs headless and logs hits, stalls, and the outcome.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"ringside/internal/app"
	"ringside/internal/arena"
	"ringside/internal/character"
	"ringside/internal/config"
	"ringside/internal/telemetry"
)

var (
	host       = flag.Bool("host", false, "Host the match instead of joining one.")
	addr       = flag.String("addr", "", "Listen address when hosting, ws:// URL when joining.")
	configPath = flag.String("config", "", "Optional config file path.")
	fighter    = flag.String("character", "", "Roster name of the character to play.")
	user       = flag.String("name", "anonymous", "Display name sent to the peer.")
	demo       = flag.Bool("demo", false, "Feed a scripted advance-and-punch intent instead of neutral input.")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run() error {
	runtime, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(runtime.LogLevel)
	if err != nil {
		return err
	}

	def := character.Default(*user)
	if *fighter != "" {
		roster := character.NewRoster(runtime.DataDir)
		def, err = roster.Load(*fighter)
		if err != nil {
			return err
		}
	}

	peerAddr := *addr
	if peerAddr == "" {
		if *host {
			peerAddr = runtime.ListenAddr
		} else {
			return fmt.Errorf("-addr is required when joining")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.NewMemoryMetrics()
	return app.Run(ctx, app.Config{
		Runtime:   runtime,
		Host:      *host,
		Addr:      peerAddr,
		User:      *user,
		Character: def,
		Logger:    logger,
		Metrics:   metrics,
		Hooks: app.Hooks{
			SampleIntent: intentSource(*demo),
			Present:      presenter(logger),
		},
	})
}

func newLogger(level string) (*logrus.Logger, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	logger := logrus.New()
	logger.SetLevel(parsed)
	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	return logger, nil
}

// intentSource returns the local input sampler. The scripted demo intent
// walks toward the opponent and jabs; real clients replace this through
// app.Hooks with device input.
func intentSource(demo bool) func() arena.InputMask {
	if !demo {
		return nil
	}
	var tick int
	return func() arena.InputMask {
		tick++
		intent := arena.InputRight
		if tick%30 == 0 {
			intent |= arena.InputLight
		}
		return intent
	}
}

// presenter logs state transitions a renderer would animate.
func presenter(logger *logrus.Logger) func(string, arena.Snapshot, []arena.StepResult) {
	lastStatus := ""
	return func(status string, snapshot arena.Snapshot, results []arena.StepResult) {
		if status != lastStatus {
			logger.WithField("frame", snapshot.Frame).Infof("match %s", status)
			lastStatus = status
		}
		for _, result := range results {
			for _, hit := range result.Hits {
				logger.WithFields(logrus.Fields{
					"frame":    result.Frame,
					"attacker": hit.Attacker,
					"kind":     hit.Kind.String(),
					"damage":   hit.Damage,
					"blocked":  hit.Blocked,
				}).Info("hit confirmed")
			}
			if result.Over {
				logger.WithField("outcome", result.Outcome.String()).Info("match over")
			}
		}
	}
}
