// Package session is the playback-state synchronization and
// command-serialization layer over an engine.Handle. It aggregates the
// engine's uncoordinated telemetry channels into one coherent snapshot
// stream and serializes playlist/transport commands so that concurrent
// commands and concurrent telemetry never observe a torn state.
package session

import "time"

// ProcessingState classifies what the engine is doing with the current
// item, independent of the play/pause flag.
type ProcessingState int

const (
	Idle ProcessingState = iota
	Buffering
	Ready
	Completed
)

// String returns the state name.
func (s ProcessingState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Buffering:
		return "buffering"
	case Ready:
		return "ready"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Snapshot is the complete, consistent playback state at one instant.
// Snapshots are values: mutating a received snapshot affects nothing.
//
// Duration is zero until the engine has reported one.
type Snapshot struct {
	State            ProcessingState
	Position         time.Duration
	BufferedPosition time.Duration
	Duration         time.Duration
	CurrentIndex     int
	UpdateTime       time.Time
}

// AncillaryEvent carries one independently-timed secondary value. Exactly
// one field is non-nil per event; nil fields mean "unchanged", never zero.
type AncillaryEvent struct {
	Playing *bool
	Volume  *float64 // 0.0 .. 1.0
	Pitch   *float64
	Speed   *float64
}
