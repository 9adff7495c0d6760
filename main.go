// Command cadence is a small demo player for the session layer: it loads
// the files given on the command line into a beep-backed engine and prints
// the snapshot stream while they play.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/llehouerou/cadence/internal/config"
	"github.com/llehouerou/cadence/internal/engine"
	"github.com/llehouerou/cadence/internal/engine/beepengine"
	"github.com/llehouerou/cadence/internal/mpris"
	"github.com/llehouerou/cadence/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: %s <file> [file...]", os.Args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s := session.New(beepengine.New(), session.WithLogger(logger))
	defer s.Release()

	if cfg.Mpris {
		bridge, err := mpris.New(s)
		if err != nil {
			logger.Warn("mpris unavailable", "err", err)
		} else {
			defer bridge.Close()
		}
	}

	<-s.Ready()

	items := make([]engine.Source, 0, len(os.Args)-1)
	for _, arg := range os.Args[1:] {
		items = append(items, engine.URISource{URI: arg})
	}

	if err := s.SetVolume(cfg.InitialVolume); err != nil {
		return err
	}
	if err := s.SetSpeed(cfg.InitialSpeed); err != nil {
		return err
	}
	if err := s.SetLoopMode(parseLoopMode(cfg.LoopMode)); err != nil {
		return err
	}
	if cfg.Shuffle {
		if err := s.SetShuffleMode(session.ShuffleAll); err != nil {
			return err
		}
	}

	if _, err := s.Load(engine.PlaylistSource{Items: items}, 0, 0); err != nil {
		return fmt.Errorf("load playlist: %w", err)
	}

	sub := s.Subscribe()
	if err := s.Play(); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sig:
			fmt.Println("\ninterrupted")
			return nil
		case <-sub.Done:
			return nil
		case snap := <-sub.Snapshots:
			fmt.Printf("\r[%d] %s / %s  %-10s", snap.CurrentIndex,
				clock(snap.Position), clock(snap.Duration), snap.State)
			if snap.State == session.Completed {
				fmt.Println()
				return nil
			}
		case e := <-sub.Ancillary:
			switch {
			case e.Playing != nil:
				logger.Info("playing", "value", *e.Playing)
			case e.Volume != nil:
				logger.Info("volume", "value", *e.Volume)
			case e.Speed != nil:
				logger.Info("speed", "value", *e.Speed)
			case e.Pitch != nil:
				logger.Info("pitch", "value", *e.Pitch)
			}
		}
	}
}

func parseLoopMode(mode string) session.LoopMode {
	switch mode {
	case "one":
		return session.LoopOne
	case "all":
		return session.LoopAll
	default:
		return session.LoopOff
	}
}

func clock(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
