package engine

import (
	"fmt"
	"sync"
	"time"
)

// Mock is a test double for Handle. It keeps an in-memory playlist that
// honors the real index semantics of Add/Remove/Move/Jump, records every
// primitive call in order, and lets tests drive telemetry by hand.
type Mock struct {
	mu        sync.Mutex
	telemetry *Telemetry

	playlist []Source
	index    int

	ops       []string // ordered primitive call log
	openErr   error
	openGate  chan struct{} // when set, Open blocks until the gate closes
	volume    int
	rate      float64
	pitch     float64
	shuffle   bool
	mode      PlaylistMode
	closed    bool
	seekCalls []time.Duration
}

// NewMock creates a new mock engine.
func NewMock() *Mock {
	return &Mock{
		telemetry: NewTelemetry(),
		volume:    100,
		rate:      1.0,
		pitch:     1.0,
	}
}

func (m *Mock) record(format string, args ...any) {
	m.ops = append(m.ops, fmt.Sprintf(format, args...))
}

func (m *Mock) Open(src Source, index int) error {
	m.mu.Lock()
	m.record("open %d", index)
	gate := m.openGate
	openErr := m.openErr
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if openErr != nil {
		return openErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch s := src.(type) {
	case PlaylistSource:
		m.playlist = append([]Source(nil), s.Items...)
	default:
		m.playlist = []Source{src}
	}
	m.index = index
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("play")
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("pause")
	return nil
}

func (m *Mock) Seek(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("seek %s", pos)
	m.seekCalls = append(m.seekCalls, pos)
	return nil
}

func (m *Mock) Jump(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("jump %d", index)
	m.index = index
	return nil
}

func (m *Mock) Add(item Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("add")
	m.playlist = append(m.playlist, item)
	return nil
}

func (m *Mock) Remove(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("remove %d", index)
	if index < 0 || index >= len(m.playlist) {
		return fmt.Errorf("remove: index %d out of range", index)
	}
	m.playlist = append(m.playlist[:index], m.playlist[index+1:]...)
	return nil
}

func (m *Mock) Move(from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("move %d %d", from, to)
	if from < 0 || from >= len(m.playlist) || to < 0 || to >= len(m.playlist) {
		return fmt.Errorf("move: %d -> %d out of range", from, to)
	}
	item := m.playlist[from]
	m.playlist = append(m.playlist[:from], m.playlist[from+1:]...)
	m.playlist = append(m.playlist[:to], append([]Source{item}, m.playlist[to:]...)...)
	return nil
}

func (m *Mock) SetVolume(volume int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("setvolume %d", volume)
	m.volume = volume
	return nil
}

func (m *Mock) SetRate(rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("setrate %g", rate)
	m.rate = rate
	return nil
}

func (m *Mock) SetPitch(pitch float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("setpitch %g", pitch)
	m.pitch = pitch
	return nil
}

func (m *Mock) SetShuffle(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("setshuffle %t", enabled)
	m.shuffle = enabled
	return nil
}

func (m *Mock) SetPlaylistMode(mode PlaylistMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("setmode %s", mode)
	m.mode = mode
	return nil
}

func (m *Mock) Telemetry() *Telemetry {
	return m.telemetry
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("close")
	m.closed = true
	return nil
}

// Test helpers

// Ops returns the ordered log of primitive calls.
func (m *Mock) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

// Playlist returns a copy of the current playlist.
func (m *Mock) Playlist() []Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Source(nil), m.playlist...)
}

// URIs returns the URI of every URISource in the playlist, in order.
func (m *Mock) URIs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	uris := make([]string, 0, len(m.playlist))
	for _, s := range m.playlist {
		if u, ok := s.(URISource); ok {
			uris = append(uris, u.URI)
		}
	}
	return uris
}

// Index returns the engine's current playlist position.
func (m *Mock) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Volume returns the last volume set on the engine.
func (m *Mock) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Mode returns the last playlist mode set on the engine.
func (m *Mock) Mode() PlaylistMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Shuffle returns the last shuffle flag set on the engine.
func (m *Mock) Shuffle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shuffle
}

// SeekCalls returns every Seek argument in order.
func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SetOpenError makes subsequent Open calls fail with err.
func (m *Mock) SetOpenError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
}

// BlockOpen makes Open block until the returned function is called.
// Used to test command serialization against a slow primitive.
func (m *Mock) BlockOpen() (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.openGate = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.openGate = nil
			m.mu.Unlock()
			close(gate)
		})
	}
}

// Verify Mock implements Handle at compile time.
var _ Handle = (*Mock)(nil)
