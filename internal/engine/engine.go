// Package engine defines the contract between the playback session layer
// and an underlying media engine. An engine executes primitive operations
// (open, seek, playlist edits, parameter changes) and reports its internal
// state back through the uncoordinated telemetry channels in Telemetry.
package engine

import "time"

// PlaylistMode controls what the engine does when an item finishes.
type PlaylistMode int

const (
	ModeNone   PlaylistMode = iota // stop after the current item
	ModeSingle                     // repeat the current item
	ModeLoop                       // wrap around to the first item
)

// String returns the mode name.
func (m PlaylistMode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeSingle:
		return "single"
	case ModeLoop:
		return "loop"
	default:
		return "unknown"
	}
}

// Handle is the primitive command surface of a media engine.
//
// Every method is a single engine-level operation. Calls are not safe for
// concurrent use: the session layer serializes them. Index-based operations
// (Jump, Remove, Move) refer to the engine's current playlist ordering and
// are not index-stable under concurrent mutation, which is exactly why the
// caller must serialize.
type Handle interface {
	// Open replaces the engine playlist with the given source and starts
	// buffering at item index. A singular source behaves as a one-item
	// playlist.
	Open(src Source, index int) error

	Play() error
	Pause() error

	// Seek moves the position within the current item.
	Seek(pos time.Duration) error

	// Jump switches playback to the item at index without touching the
	// playlist contents.
	Jump(index int) error

	// Add appends one item to the end of the playlist.
	Add(item Source) error

	// Remove deletes the item at index; later items shift down by one.
	Remove(index int) error

	// Move relocates the item at from to position to.
	Move(from, to int) error

	// SetVolume takes the engine-native 0..100 scale.
	SetVolume(volume int) error

	SetRate(rate float64) error
	SetPitch(pitch float64) error
	SetShuffle(enabled bool) error
	SetPlaylistMode(mode PlaylistMode) error

	// Telemetry returns the engine's telemetry channel bundle. The same
	// bundle is returned on every call.
	Telemetry() *Telemetry

	// Close releases engine resources. No telemetry is emitted afterwards.
	Close() error
}
