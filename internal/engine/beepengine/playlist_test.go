package beepengine

import (
	"testing"

	"github.com/gopxl/beep/v2/effects"

	"github.com/llehouerou/cadence/internal/engine"
)

func items(names ...string) []engine.URISource {
	out := make([]engine.URISource, len(names))
	for i, n := range names {
		out[i] = engine.URISource{URI: n}
	}
	return out
}

func TestPlaylist_ReplaceClampsIndex(t *testing.T) {
	p := newPlaylist()
	p.replace(items("a", "b", "c"), 5)
	if p.current != 0 {
		t.Errorf("current = %d, want 0 for out-of-range index", p.current)
	}

	p.replace(items("a", "b", "c"), 2)
	if p.current != 2 {
		t.Errorf("current = %d, want 2", p.current)
	}

	p.replace(nil, 0)
	if p.current != -1 {
		t.Errorf("current = %d, want -1 for empty playlist", p.current)
	}
}

func TestPlaylist_RemoveAdjustsCurrent(t *testing.T) {
	p := newPlaylist()
	p.replace(items("a", "b", "c"), 2)

	// Removing before current shifts it down.
	if !p.remove(0) {
		t.Fatal("remove(0) failed")
	}
	if p.current != 1 {
		t.Errorf("current = %d, want 1", p.current)
	}

	// Removing the last current clamps.
	if !p.remove(1) {
		t.Fatal("remove(1) failed")
	}
	if p.current != 0 {
		t.Errorf("current = %d, want 0", p.current)
	}

	if p.remove(9) {
		t.Error("remove(9) out of range succeeded")
	}
}

func TestPlaylist_MoveTracksCurrent(t *testing.T) {
	p := newPlaylist()
	p.replace(items("a", "b", "c", "d"), 1)

	// Moving the current item carries the pointer with it.
	p.move(1, 3)
	if cur, _ := p.currentItem(); cur.URI != "b" {
		t.Errorf("current item = %q, want b", cur.URI)
	}
	if p.current != 3 {
		t.Errorf("current = %d, want 3", p.current)
	}

	// Moving another item across the current one shifts it.
	p.replace(items("a", "b", "c", "d"), 2)
	p.move(0, 3)
	if cur, _ := p.currentItem(); cur.URI != "c" {
		t.Errorf("current item = %q, want c", cur.URI)
	}
}

func TestPlaylist_NextRespectsMode(t *testing.T) {
	p := newPlaylist()
	p.replace(items("a", "b"), 1)

	// ModeNone at the end stops.
	p.mode = engine.ModeNone
	if _, ok := p.next(); ok {
		t.Error("next() advanced past the end in ModeNone")
	}

	// ModeSingle repeats the current item.
	p.mode = engine.ModeSingle
	if next, ok := p.next(); !ok || next != 1 {
		t.Errorf("next() = %d/%t, want 1/true in ModeSingle", next, ok)
	}

	// ModeLoop wraps around.
	p.mode = engine.ModeLoop
	if next, ok := p.next(); !ok || next != 0 {
		t.Errorf("next() = %d/%t, want 0/true in ModeLoop", next, ok)
	}
}

func TestPlaylist_NextMidList(t *testing.T) {
	p := newPlaylist()
	p.replace(items("a", "b", "c"), 0)
	p.mode = engine.ModeNone

	if next, ok := p.next(); !ok || next != 1 {
		t.Errorf("next() = %d/%t, want 1/true", next, ok)
	}
}

func TestPlaylist_ShuffleKeepsAllItems(t *testing.T) {
	p := newPlaylist()
	p.replace(items("a", "b", "c", "d", "e"), 0)
	p.setShuffle(true)

	seen := make(map[int]bool)
	for _, idx := range p.order {
		seen[idx] = true
	}
	if len(seen) != 5 {
		t.Errorf("shuffle order covers %d items, want 5", len(seen))
	}
}

func TestUriToPath(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{"/music/track.mp3", "/music/track.mp3", false},
		{"file:///music/track.mp3", "/music/track.mp3", false},
		{"https://example.com/stream", "", true},
	}
	for _, tt := range tests {
		got, err := uriToPath(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("uriToPath(%q) error = %v, wantErr %t", tt.uri, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("uriToPath(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestFlatten(t *testing.T) {
	got, err := flatten(engine.PlaylistSource{Items: []engine.Source{
		engine.URISource{URI: "a"},
		engine.URISource{URI: "b"},
	}})
	if err != nil {
		t.Fatalf("flatten() error: %v", err)
	}
	if len(got) != 2 || got[1].URI != "b" {
		t.Errorf("flatten() = %v", got)
	}

	if _, err := flatten(engine.PlaylistSource{Items: []engine.Source{
		engine.PlaylistSource{},
	}}); err == nil {
		t.Error("flatten() accepted a nested playlist")
	}
}

func TestApplyVolume_LogScale(t *testing.T) {
	tests := []struct {
		level      int
		wantVolume float64
		wantSilent bool
	}{
		{100, 0, false},
		{50, -1, false},
		{25, -2, false},
		{0, 0, true},
	}
	for _, tt := range tests {
		e := New()
		e.volumeLevel = tt.level
		e.volume = &effects.Volume{Base: 2}
		e.applyVolumeLocked()
		if e.volume.Silent != tt.wantSilent {
			t.Errorf("level %d: Silent = %t, want %t", tt.level, e.volume.Silent, tt.wantSilent)
		}
		if !tt.wantSilent && e.volume.Volume != tt.wantVolume {
			t.Errorf("level %d: Volume = %g, want %g", tt.level, e.volume.Volume, tt.wantVolume)
		}
		e.Close()
	}
}
