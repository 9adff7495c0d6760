package session

import (
	"fmt"
	"math"
	"time"

	"github.com/llehouerou/cadence/internal/engine"
)

// LoopMode is the repeat behavior exposed to the higher-level API.
type LoopMode int

const (
	LoopOff LoopMode = iota
	LoopOne
	LoopAll
)

// String returns the mode name.
func (m LoopMode) String() string {
	switch m {
	case LoopOff:
		return "off"
	case LoopOne:
		return "one"
	case LoopAll:
		return "all"
	default:
		return "unknown"
	}
}

// ShuffleMode is the shuffle behavior exposed to the higher-level API.
// Only the binary distinction is supported by the engine: anything other
// than ShuffleOff collapses to "shuffle all".
type ShuffleMode int

const (
	ShuffleOff ShuffleMode = iota
	ShuffleAll
)

type command struct {
	name string
	run  func() error
	res  chan error
}

// submit admits one command into the FIFO queue and blocks until the
// executor has run it to completion, including all its sub-steps and
// snapshot writes. This is what gives commands a total order per session.
func (s *Session) submit(name string, run func() error) error {
	s.submitMu.RLock()
	if s.closed {
		s.submitMu.RUnlock()
		return ErrSessionClosed
	}
	cmd := &command{name: name, run: run, res: make(chan error, 1)}
	s.cmds <- cmd
	s.submitMu.RUnlock()
	return <-cmd.res
}

// runCommands executes admitted commands strictly one at a time. Once
// Release begins draining, remaining queued commands are answered with
// ErrSessionClosed instead of executing.
func (s *Session) runCommands() {
	defer close(s.execDone)
	for cmd := range s.cmds {
		select {
		case <-s.draining:
			cmd.res <- ErrSessionClosed
			continue
		default:
		}
		cmd.res <- cmd.run()
	}
}

// Load replaces the engine playlist with src and reports the duration if
// the engine has already delivered one (zero otherwise).
//
// Position, buffered position and current index reset to zero before the
// engine sees the new source; the load's own effects (initial index,
// initial position) are applied before the post-load snapshot emission. An
// initialPosition of zero means "start of item" and issues no explicit
// seek. Out-of-range initialIndex values are clamped into the playlist.
func (s *Session) Load(src engine.Source, initialIndex int, initialPosition time.Duration) (time.Duration, error) {
	var dur time.Duration
	err := s.submit("load", func() error {
		var length, index int
		switch v := src.(type) {
		case engine.URISource:
			length, index = 1, 0
		case engine.PlaylistSource:
			for _, item := range v.Items {
				if _, ok := item.(engine.URISource); !ok {
					return fmt.Errorf("load playlist item: %w", ErrUnsupportedSource)
				}
			}
			length = len(v.Items)
			index = clampIndex(initialIndex, length)
		default:
			return fmt.Errorf("load: %w", ErrUnsupportedSource)
		}

		s.snapMu.Lock()
		s.snap.BufferedPosition = 0
		s.snap.Position = 0
		s.snap.CurrentIndex = 0
		s.snap.Duration = 0
		s.playlistLen = length
		s.snapMu.Unlock()

		if err := s.engine.Open(src, index); err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		if initialPosition > 0 {
			if err := s.engine.Seek(initialPosition); err != nil {
				return fmt.Errorf("seek to initial position: %w", err)
			}
		}

		s.snapMu.Lock()
		s.snap.CurrentIndex = index
		if initialPosition > 0 {
			s.snap.Position = initialPosition
		}
		dur = s.snap.Duration // set if telemetry already reported it
		s.emitLocked()
		s.snapMu.Unlock()
		return nil
	})
	return dur, err
}

// Play forwards to the engine; state changes arrive via telemetry.
func (s *Session) Play() error {
	return s.submit("play", s.engine.Play)
}

// Pause forwards to the engine; state changes arrive via telemetry.
func (s *Session) Pause() error {
	return s.submit("pause", s.engine.Pause)
}

// SetVolume takes the API scale 0.0..1.0 and forwards the engine-native
// 0..100 value. The ancillary volume echo arrives via telemetry.
func (s *Session) SetVolume(volume float64) error {
	volume = min(max(volume, 0), 1)
	return s.submit("setVolume", func() error {
		return s.engine.SetVolume(int(math.Round(volume * 100)))
	})
}

// SetSpeed forwards the playback rate unscaled.
func (s *Session) SetSpeed(speed float64) error {
	return s.submit("setSpeed", func() error {
		return s.engine.SetRate(speed)
	})
}

// SetPitch forwards the pitch factor unscaled.
func (s *Session) SetPitch(pitch float64) error {
	return s.submit("setPitch", func() error {
		return s.engine.SetPitch(pitch)
	})
}

// SetLoopMode maps the API loop mode onto the engine's playlist modes.
// An unknown mode is a programming error and panics.
func (s *Session) SetLoopMode(mode LoopMode) error {
	var engineMode engine.PlaylistMode
	switch mode {
	case LoopOff:
		engineMode = engine.ModeNone
	case LoopOne:
		engineMode = engine.ModeSingle
	case LoopAll:
		engineMode = engine.ModeLoop
	default:
		panic(fmt.Sprintf("session: unknown loop mode %d", mode))
	}
	return s.submit("setLoopMode", func() error {
		return s.engine.SetPlaylistMode(engineMode)
	})
}

// SetShuffleMode reduces the mode to the engine's binary shuffle flag.
func (s *Session) SetShuffleMode(mode ShuffleMode) error {
	enabled := mode != ShuffleOff
	return s.submit("setShuffleMode", func() error {
		return s.engine.SetShuffle(enabled)
	})
}

// Seek moves the position within the current item.
func (s *Session) Seek(position time.Duration) error {
	return s.seek("seek", nil, &position)
}

// SeekIndex jumps to a playlist item. The position is defined as "start of
// item": it is set to zero without issuing an engine seek.
func (s *Session) SeekIndex(index int) error {
	return s.seek("seekIndex", &index, nil)
}

// SeekTo jumps to a playlist item and seeks within it. The jump happens
// first; both effects are applied before the final snapshot emission.
func (s *Session) SeekTo(index int, position time.Duration) error {
	return s.seek("seekTo", &index, &position)
}

func (s *Session) seek(name string, index *int, position *time.Duration) error {
	return s.submit(name, func() error {
		// Buffered extent resets unconditionally at the start of any seek.
		s.snapMu.Lock()
		s.snap.BufferedPosition = 0
		s.snapMu.Unlock()

		if index != nil {
			if err := s.engine.Jump(*index); err != nil {
				return fmt.Errorf("jump to %d: %w", *index, err)
			}
		}
		if position != nil {
			if err := s.engine.Seek(*position); err != nil {
				return fmt.Errorf("seek to %s: %w", *position, err)
			}
		}

		s.snapMu.Lock()
		if index != nil {
			s.snap.CurrentIndex = *index
		}
		if position != nil {
			s.snap.Position = *position
		} else {
			s.snap.Position = 0
		}
		s.emitLocked()
		s.snapMu.Unlock()
		return nil
	})
}

// InsertAll inserts items at index, preserving their relative order. The
// engine has no insert-at-index primitive, so each item is appended and
// then moved into place, with the insertion cursor advancing so subsequent
// items land immediately after. Snapshot fields only change through
// whatever telemetry the engine reports.
func (s *Session) InsertAll(index int, items ...engine.Source) error {
	return s.submit("insertAll", func() error {
		for _, item := range items {
			if _, ok := item.(engine.URISource); !ok {
				return fmt.Errorf("insert item: %w", ErrUnsupportedSource)
			}
		}
		cursor := index
		for _, item := range items {
			if err := s.engine.Add(item); err != nil {
				return fmt.Errorf("append item: %w", err)
			}
			s.snapMu.Lock()
			s.playlistLen++
			length := s.playlistLen
			s.snapMu.Unlock()
			if length > 1 && cursor >= 0 && cursor < length-1 {
				if err := s.engine.Move(length-1, cursor); err != nil {
					return fmt.Errorf("move item into place: %w", err)
				}
			}
			cursor++
		}
		return nil
	})
}

// RemoveRange removes the items in [start, end). Each removal shifts later
// items down by one, so deleting at the fixed start index clears the whole
// range. A range with start >= end is a no-op, not an error.
func (s *Session) RemoveRange(start, end int) error {
	if start >= end {
		return nil
	}
	return s.submit("removeRange", func() error {
		for i := start; i < end; i++ {
			if err := s.engine.Remove(start); err != nil {
				return fmt.Errorf("remove item %d: %w", start, err)
			}
			s.snapMu.Lock()
			s.playlistLen--
			s.snapMu.Unlock()
		}
		return nil
	})
}

// Move forwards a playlist reorder directly.
func (s *Session) Move(from, to int) error {
	return s.submit("move", func() error {
		return s.engine.Move(from, to)
	})
}

func clampIndex(index, length int) int {
	if length == 0 {
		return 0
	}
	return min(max(index, 0), length-1)
}
