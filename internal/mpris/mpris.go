//go:build linux

// Package mpris exposes a playback session as an MPRIS media player on
// D-Bus, so desktop media keys and applets drive the session API.
package mpris

import (
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/cadence/internal/session"
)

// Adapter connects a session to MPRIS over D-Bus. It mirrors the session's
// event channels into a local cache that the property getters read from.
type Adapter struct {
	session *session.Session
	server  *server.Server
	sub     *session.Subscription

	mu       sync.Mutex
	snap     session.Snapshot
	playing  bool
	volume   float64
	speed    float64
	loopMode session.LoopMode
	shuffle  bool
}

// New creates and starts a new MPRIS adapter.
func New(s *session.Session) (*Adapter, error) {
	a := &Adapter{
		session: s,
		sub:     s.Subscribe(),
		volume:  1.0,
		speed:   1.0,
	}

	a.server = server.NewServer("cadence", &rootAdapter{}, &playerAdapter{a: a})

	go func() {
		_ = a.server.Listen()
	}()
	go a.watch()

	return a, nil
}

// watch mirrors session events into the cache until the session releases.
func (a *Adapter) watch() {
	for {
		select {
		case <-a.sub.Done:
			return
		case snap := <-a.sub.Snapshots:
			a.mu.Lock()
			a.snap = snap
			a.mu.Unlock()
		case e := <-a.sub.Ancillary:
			a.mu.Lock()
			if e.Playing != nil {
				a.playing = *e.Playing
			}
			if e.Volume != nil {
				a.volume = *e.Volume
			}
			if e.Speed != nil {
				a.speed = *e.Speed
			}
			a.mu.Unlock()
		}
	}
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - the owner manages the session lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // Track list interface not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "Cadence", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional
// interfaces.
type playerAdapter struct {
	a *Adapter
}

func (p *playerAdapter) state() (session.Snapshot, bool, float64, float64) {
	p.a.mu.Lock()
	defer p.a.mu.Unlock()
	return p.a.snap, p.a.playing, p.a.volume, p.a.speed
}

func (p *playerAdapter) Next() error {
	snap, _, _, _ := p.state()
	return p.a.session.SeekIndex(snap.CurrentIndex + 1)
}

func (p *playerAdapter) Previous() error {
	snap, _, _, _ := p.state()
	return p.a.session.SeekIndex(max(snap.CurrentIndex-1, 0))
}

func (p *playerAdapter) Pause() error {
	return p.a.session.Pause()
}

func (p *playerAdapter) PlayPause() error {
	if _, playing, _, _ := p.state(); playing {
		return p.a.session.Pause()
	}
	return p.a.session.Play()
}

func (p *playerAdapter) Stop() error {
	if err := p.a.session.Pause(); err != nil {
		return err
	}
	return p.a.session.Seek(0)
}

func (p *playerAdapter) Play() error {
	return p.a.session.Play()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	snap, _, _, _ := p.state()
	pos := snap.Position + time.Duration(offset)*time.Microsecond
	return p.a.session.Seek(max(pos, 0))
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.a.session.Seek(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	_, err := p.a.session.Load(sourceFor(uri), 0, 0)
	return err
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	snap, playing, _, _ := p.state()
	return statusFor(snap.State, playing), nil
}

func (p *playerAdapter) Rate() (float64, error) {
	_, _, _, speed := p.state()
	return speed, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	return p.a.session.SetSpeed(rate)
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap, _, _, _ := p.state()
	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(snap.CurrentIndex)),
		Length:  types.Microseconds(snap.Duration.Microseconds()),
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	_, _, volume, _ := p.state()
	return volume, nil
}

func (p *playerAdapter) SetVolume(volume float64) error {
	return p.a.session.SetVolume(volume)
}

func (p *playerAdapter) Position() (int64, error) {
	snap, _, _, _ := p.state()
	return snap.Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 0.25, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 4.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	snap, _, _, _ := p.state()
	return snap.CurrentIndex > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	p.a.mu.Lock()
	defer p.a.mu.Unlock()
	switch p.a.loopMode {
	case session.LoopOne:
		return types.LoopStatusTrack, nil
	case session.LoopAll:
		return types.LoopStatusPlaylist, nil
	default:
		return types.LoopStatusNone, nil
	}
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	var mode session.LoopMode
	switch status {
	case types.LoopStatusNone:
		mode = session.LoopOff
	case types.LoopStatusTrack:
		mode = session.LoopOne
	case types.LoopStatusPlaylist:
		mode = session.LoopAll
	}
	if err := p.a.session.SetLoopMode(mode); err != nil {
		return err
	}
	p.a.mu.Lock()
	p.a.loopMode = mode
	p.a.mu.Unlock()
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	p.a.mu.Lock()
	defer p.a.mu.Unlock()
	return p.a.shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	mode := session.ShuffleOff
	if shuffle {
		mode = session.ShuffleAll
	}
	if err := p.a.session.SetShuffleMode(mode); err != nil {
		return err
	}
	p.a.mu.Lock()
	p.a.shuffle = shuffle
	p.a.mu.Unlock()
	return nil
}

