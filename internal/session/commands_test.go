package session

import (
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/cadence/internal/engine"
)

func uris(names ...string) []engine.Source {
	out := make([]engine.Source, len(names))
	for i, n := range names {
		out[i] = engine.URISource{URI: n}
	}
	return out
}

func loadPlaylist(t *testing.T, s *Session, names ...string) {
	t.Helper()
	_, err := s.Load(engine.PlaylistSource{Items: uris(names...)}, 0, 0)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

func TestLoad_ResetsAndAppliesInitialEffects(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()

	_, err := s.Load(engine.PlaylistSource{Items: uris("a", "b", "c")}, 1, 5*time.Second)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	snap := s.Snapshot()
	if snap.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", snap.CurrentIndex)
	}
	if snap.Position != 5*time.Second {
		t.Errorf("Position = %v, want 5s", snap.Position)
	}
	if snap.BufferedPosition != 0 {
		t.Errorf("BufferedPosition = %v, want 0", snap.BufferedPosition)
	}
	if m.Index() != 1 {
		t.Errorf("engine index = %d, want 1", m.Index())
	}
	if got := m.SeekCalls(); len(got) != 1 || got[0] != 5*time.Second {
		t.Errorf("SeekCalls() = %v, want [5s]", got)
	}
}

func TestLoad_SingularSourceOpensDirectly(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()

	_, err := s.Load(engine.URISource{URI: "single.mp3"}, 0, 0)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := m.URIs(); len(got) != 1 || got[0] != "single.mp3" {
		t.Errorf("engine playlist = %v, want [single.mp3]", got)
	}
	if got := m.SeekCalls(); len(got) != 0 {
		t.Errorf("SeekCalls() = %v, want none for zero initial position", got)
	}
}

type bogusSource struct{ engine.Source }

func TestLoad_UnsupportedSourceKeepsSessionUsable(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()

	_, err := s.Load(bogusSource{}, 0, 0)
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("Load() error = %v, want ErrUnsupportedSource", err)
	}

	// The failed load must not poison the session.
	if _, err := s.Load(engine.URISource{URI: "ok.mp3"}, 0, 0); err != nil {
		t.Fatalf("subsequent Load() error: %v", err)
	}
}

func TestInsertAll_EmulatesArbitraryPositionInsert(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()
	loadPlaylist(t, s, "x", "y", "z")

	err := s.InsertAll(1, uris("a", "b", "c")...)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "a", "b", "c", "y", "z"}, m.URIs(),
		"inserted items must be contiguous at index 1 in original order")
}

func TestInsertAll_AppendNeedsNoMove(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()
	loadPlaylist(t, s, "x", "y")

	require.NoError(t, s.InsertAll(2, uris("a", "b")...))

	assert.Equal(t, []string{"x", "y", "a", "b"}, m.URIs())
	for _, op := range m.Ops() {
		assert.NotContains(t, op, "move", "append at end must not emit moves")
	}
}

func TestInsertAll_IntoEmptyPlaylist(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()
	loadPlaylist(t, s) // empty playlist

	require.NoError(t, s.InsertAll(0, uris("a", "b")...))
	assert.Equal(t, []string{"a", "b"}, m.URIs())
}

func TestInsertAll_RejectsUnsupportedItems(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()
	loadPlaylist(t, s, "x")

	err := s.InsertAll(0, bogusSource{})
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("InsertAll() error = %v, want ErrUnsupportedSource", err)
	}
	if got := m.URIs(); len(got) != 1 {
		t.Errorf("playlist mutated by rejected insert: %v", got)
	}
}

func TestRemoveRange_RemovesContiguousRange(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()
	loadPlaylist(t, s, "e0", "e1", "e2", "e3", "e4")

	if err := s.RemoveRange(1, 3); err != nil {
		t.Fatalf("RemoveRange() error: %v", err)
	}

	got := m.URIs()
	want := []string{"e0", "e3", "e4"}
	if len(got) != len(want) {
		t.Fatalf("playlist = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("playlist[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRemoveRange_EmptyRangeIsNoOp(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()
	loadPlaylist(t, s, "a", "b")
	before := len(m.Ops())

	if err := s.RemoveRange(2, 2); err != nil {
		t.Fatalf("RemoveRange() error: %v", err)
	}
	if err := s.RemoveRange(3, 1); err != nil {
		t.Fatalf("RemoveRange() error: %v", err)
	}

	if got := len(m.Ops()); got != before {
		t.Errorf("no-op range issued %d engine ops", got-before)
	}
}

func TestSeekIndex_ResetsBufferAndPosition(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()
	loadPlaylist(t, s, "a", "b", "c")

	if err := s.SeekIndex(2); err != nil {
		t.Fatalf("SeekIndex() error: %v", err)
	}

	snap := s.Snapshot()
	if snap.BufferedPosition != 0 {
		t.Errorf("BufferedPosition = %v, want 0", snap.BufferedPosition)
	}
	if snap.CurrentIndex != 2 {
		t.Errorf("CurrentIndex = %d, want 2", snap.CurrentIndex)
	}
	if snap.Position != 0 {
		t.Errorf("Position = %v, want 0", snap.Position)
	}
	if m.Index() != 2 {
		t.Errorf("engine index = %d, want 2", m.Index())
	}
	// "Seek to start" is defined, not an engine call.
	if got := m.SeekCalls(); len(got) != 0 {
		t.Errorf("SeekCalls() = %v, want none", got)
	}
}

func TestSeek_PositionOnly(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()
	loadPlaylist(t, s, "a")

	if err := s.Seek(10 * time.Second); err != nil {
		t.Fatalf("Seek() error: %v", err)
	}

	snap := s.Snapshot()
	if snap.Position != 10*time.Second {
		t.Errorf("Position = %v, want 10s", snap.Position)
	}
	if got := m.SeekCalls(); len(got) != 1 || got[0] != 10*time.Second {
		t.Errorf("SeekCalls() = %v, want [10s]", got)
	}
}

func TestSetVolume_ScalesToEngineRange(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()

	if err := s.SetVolume(0.5); err != nil {
		t.Fatalf("SetVolume() error: %v", err)
	}
	if m.Volume() != 50 {
		t.Errorf("engine volume = %d, want 50", m.Volume())
	}

	// Out-of-range input clamps.
	if err := s.SetVolume(1.7); err != nil {
		t.Fatalf("SetVolume() error: %v", err)
	}
	if m.Volume() != 100 {
		t.Errorf("engine volume = %d, want 100", m.Volume())
	}
}

func TestSetSpeedAndPitch_PassThroughUnscaled(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()

	if err := s.SetSpeed(1.25); err != nil {
		t.Fatalf("SetSpeed() error: %v", err)
	}
	if err := s.SetPitch(0.9); err != nil {
		t.Fatalf("SetPitch() error: %v", err)
	}

	ops := m.Ops()
	assert.Contains(t, ops, "setrate 1.25")
	assert.Contains(t, ops, "setpitch 0.9")
}

func TestSetLoopMode_MapsToEngineModes(t *testing.T) {
	tests := []struct {
		mode LoopMode
		want engine.PlaylistMode
	}{
		{LoopOff, engine.ModeNone},
		{LoopOne, engine.ModeSingle},
		{LoopAll, engine.ModeLoop},
	}
	for _, tt := range tests {
		m := engine.NewMock()
		s := New(m)
		if err := s.SetLoopMode(tt.mode); err != nil {
			t.Fatalf("SetLoopMode(%v) error: %v", tt.mode, err)
		}
		if m.Mode() != tt.want {
			t.Errorf("SetLoopMode(%v): engine mode = %v, want %v", tt.mode, m.Mode(), tt.want)
		}
		s.Release()
	}
}

func TestSetLoopMode_UnknownModePanics(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()

	defer func() {
		if recover() == nil {
			t.Error("SetLoopMode(99) did not panic")
		}
	}()
	_ = s.SetLoopMode(LoopMode(99))
}

func TestSetShuffleMode_CollapsesToBinary(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()

	if err := s.SetShuffleMode(ShuffleAll); err != nil {
		t.Fatalf("SetShuffleMode() error: %v", err)
	}
	if !m.Shuffle() {
		t.Error("shuffle not enabled on engine")
	}
	if err := s.SetShuffleMode(ShuffleOff); err != nil {
		t.Fatalf("SetShuffleMode() error: %v", err)
	}
	if m.Shuffle() {
		t.Error("shuffle not disabled on engine")
	}
}

func TestMove_ForwardsDirectly(t *testing.T) {
	m := engine.NewMock()
	s := New(m)
	defer s.Release()
	loadPlaylist(t, s, "a", "b", "c")

	if err := s.Move(0, 2); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	got := m.URIs()
	if got[0] != "b" || got[1] != "c" || got[2] != "a" {
		t.Errorf("playlist = %v, want [b c a]", got)
	}
}

func TestCommands_SerializeAgainstSlowLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := engine.NewMock()
		s := New(m)
		release := m.BlockOpen()

		loadErr := make(chan error, 1)
		seekErr := make(chan error, 1)
		go func() {
			_, err := s.Load(engine.PlaylistSource{Items: uris("a", "b")}, 0, 0)
			loadErr <- err
		}()
		synctest.Wait() // load is now blocked inside the engine open

		go func() {
			seekErr <- s.SeekTo(1, 3*time.Second)
		}()
		synctest.Wait()

		// The seek submitted mid-load must not have touched the engine yet.
		for _, op := range m.Ops() {
			if op == "jump 1" {
				t.Fatal("seek interleaved with in-flight load")
			}
		}

		release()
		if err := <-loadErr; err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if err := <-seekErr; err != nil {
			t.Fatalf("SeekTo() error: %v", err)
		}

		// Load's full effects applied before the seek's.
		snap := s.Snapshot()
		if snap.CurrentIndex != 1 || snap.Position != 3*time.Second {
			t.Errorf("snapshot = index %d pos %v, want index 1 pos 3s",
				snap.CurrentIndex, snap.Position)
		}
		s.Release()
	})
}

func TestRelease_FailsQueuedCommands(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := engine.NewMock()
		s := New(m)
		release := m.BlockOpen()

		loadErr := make(chan error, 1)
		go func() {
			_, err := s.Load(engine.URISource{URI: "a"}, 0, 0)
			loadErr <- err
		}()
		synctest.Wait()

		queuedErr := make(chan error, 1)
		go func() {
			queuedErr <- s.Play()
		}()
		synctest.Wait()

		releaseErr := make(chan error, 1)
		go func() {
			releaseErr <- s.Release()
		}()
		synctest.Wait()

		// Release waits for the in-flight load instead of aborting it.
		release()

		if err := <-loadErr; err != nil {
			t.Errorf("in-flight Load() error = %v, want nil", err)
		}
		if err := <-queuedErr; !errors.Is(err, ErrSessionClosed) {
			t.Errorf("queued Play() error = %v, want ErrSessionClosed", err)
		}
		if err := <-releaseErr; err != nil {
			t.Errorf("Release() error: %v", err)
		}
	})
}
