// Package beepengine implements engine.Handle on top of gopxl/beep for
// local files. It exists so the session layer can run against a real engine
// with genuine asynchronous telemetry rather than only the mock.
package beepengine

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/cadence/internal/engine"
)

const (
	resampleQuality = 4
	positionTick    = 200 * time.Millisecond
)

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
)

// Engine plays local files through the beep speaker. Primitive calls are
// serialized by the session layer; only the position ticker and the track
// completion callback run concurrently with them.
type Engine struct {
	mu        sync.Mutex
	telemetry *engine.Telemetry
	list      *playlist

	file      *os.File
	streamer  beep.StreamSeekCloser
	format    beep.Format
	resampler *beep.Resampler
	ctrl      *beep.Ctrl
	volume    *effects.Volume

	volumeLevel int // engine-native 0..100
	rate        float64
	pitch       float64
	paused      bool
	gen         int // load generation; stale completion callbacks are ignored
	closed      bool
	quit        chan struct{}
}

// New creates an idle engine. The speaker is initialized lazily on the
// first open, at that file's sample rate.
func New() *Engine {
	e := &Engine{
		telemetry:   engine.NewTelemetry(),
		list:        newPlaylist(),
		volumeLevel: 100,
		rate:        1.0,
		pitch:       1.0,
		paused:      true,
		quit:        make(chan struct{}),
	}
	e.telemetry.EmitReady()
	go e.positionLoop()
	return e
}

func (e *Engine) Telemetry() *engine.Telemetry {
	return e.telemetry
}

func (e *Engine) Open(src engine.Source, index int) error {
	items, err := flatten(src)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.telemetry.EmitBuffering(true)
	e.stopLocked()
	e.list.replace(items, index)
	e.paused = true
	if err := e.loadCurrentLocked(); err != nil {
		e.telemetry.EmitBuffering(false)
		return err
	}
	e.telemetry.EmitBuffering(false)
	e.telemetry.EmitIndex(e.list.current)
	return nil
}

func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		if err := e.loadCurrentLocked(); err != nil {
			return err
		}
	}
	if e.ctrl != nil {
		speaker.Lock()
		e.ctrl.Paused = false
		speaker.Unlock()
	}
	e.paused = false
	e.telemetry.EmitPlaying(true)
	return nil
}

func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl != nil {
		speaker.Lock()
		e.ctrl.Paused = true
		speaker.Unlock()
	}
	e.paused = true
	e.telemetry.EmitPlaying(false)
	return nil
}

func (e *Engine) Seek(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return fmt.Errorf("seek: nothing loaded")
	}
	n := e.format.SampleRate.N(pos)
	n = min(max(n, 0), e.streamer.Len()-1)
	speaker.Lock()
	err := e.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek to %s: %w", pos, err)
	}
	e.telemetry.EmitPosition(e.format.SampleRate.D(n))
	return nil
}

func (e *Engine) Jump(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.list.jump(index) {
		return fmt.Errorf("jump: index %d out of range", index)
	}
	e.stopLocked()
	if err := e.loadCurrentLocked(); err != nil {
		return err
	}
	e.telemetry.EmitIndex(index)
	return nil
}

func (e *Engine) Add(item engine.Source) error {
	u, ok := item.(engine.URISource)
	if !ok {
		return fmt.Errorf("add: unsupported item")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list.add(u)
	return nil
}

func (e *Engine) Remove(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	removingCurrent := index == e.list.current
	if !e.list.remove(index) {
		return fmt.Errorf("remove: index %d out of range", index)
	}
	if removingCurrent {
		e.stopLocked()
		if _, ok := e.list.currentItem(); ok {
			if err := e.loadCurrentLocked(); err != nil {
				return err
			}
			e.telemetry.EmitIndex(e.list.current)
		}
	}
	return nil
}

func (e *Engine) Move(from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.list.move(from, to) {
		return fmt.Errorf("move: %d -> %d out of range", from, to)
	}
	return nil
}

func (e *Engine) SetVolume(volume int) error {
	volume = min(max(volume, 0), 100)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volumeLevel = volume
	if e.volume != nil {
		speaker.Lock()
		e.applyVolumeLocked()
		speaker.Unlock()
	}
	e.telemetry.EmitVolume(volume)
	return nil
}

func (e *Engine) SetRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("set rate: %g out of range", rate)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rate = rate
	e.applyRatioLocked()
	e.telemetry.EmitRate(rate)
	return nil
}

// SetPitch approximates pitch shifting by resampling, which also changes
// tempo. Good enough for a reference engine.
func (e *Engine) SetPitch(pitch float64) error {
	if pitch <= 0 {
		return fmt.Errorf("set pitch: %g out of range", pitch)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pitch = pitch
	e.applyRatioLocked()
	e.telemetry.EmitPitch(pitch)
	return nil
}

func (e *Engine) SetShuffle(enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list.setShuffle(enabled)
	return nil
}

func (e *Engine) SetPlaylistMode(mode engine.PlaylistMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list.mode = mode
	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	close(e.quit)
	e.stopLocked()
	return nil
}

// stopLocked tears down the current streamer chain. Caller holds e.mu.
func (e *Engine) stopLocked() {
	e.gen++
	if e.ctrl != nil {
		speaker.Clear()
	}
	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	if e.file != nil {
		e.file.Close()
		e.file = nil
	}
	e.ctrl = nil
	e.volume = nil
	e.resampler = nil
}

// loadCurrentLocked decodes the current playlist item and hands the chain
// to the speaker, honoring the paused flag. Caller holds e.mu.
func (e *Engine) loadCurrentLocked() error {
	item, ok := e.list.currentItem()
	if !ok {
		return fmt.Errorf("open: empty playlist")
	}
	path, err := uriToPath(item.URI)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return fmt.Errorf("unsupported format: %s", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}

	var initErr error
	speakerOnce.Do(func() {
		speakerRate = format.SampleRate
		initErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	if initErr != nil {
		streamer.Close()
		f.Close()
		return fmt.Errorf("init speaker: %w", initErr)
	}

	e.file = f
	e.streamer = streamer
	e.format = format
	e.resampler = beep.ResampleRatio(resampleQuality, 1, streamer)
	e.ctrl = &beep.Ctrl{Streamer: e.resampler, Paused: e.paused}
	e.volume = &effects.Volume{Streamer: e.ctrl, Base: 2}
	e.applyVolumeLocked()
	e.applyRatioLocked()

	gen := e.gen
	speaker.Play(beep.Seq(e.volume, beep.Callback(func() {
		go e.onTrackDone(gen)
	})))

	dur := format.SampleRate.D(streamer.Len())
	e.telemetry.EmitLog(fmt.Sprintf("opened %s", path))
	e.telemetry.EmitDuration(dur)
	// Local files are fully available.
	e.telemetry.EmitBuffered(dur)
	return nil
}

// onTrackDone advances or completes after the current item drains.
func (e *Engine) onTrackDone(gen int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.gen {
		return
	}
	next, ok := e.list.next()
	if !ok {
		e.stopLocked()
		e.paused = true
		e.telemetry.EmitCompleted(true)
		e.telemetry.EmitPlaying(false)
		return
	}
	e.list.jump(next)
	e.stopLocked()
	if err := e.loadCurrentLocked(); err != nil {
		e.telemetry.EmitError(err)
		return
	}
	e.telemetry.EmitIndex(next)
	e.telemetry.EmitCompleted(false)
}

// positionLoop ticks transport positions out while something is playing.
func (e *Engine) positionLoop() {
	ticker := time.NewTicker(positionTick)
	defer ticker.Stop()
	for {
		select {
		case <-e.quit:
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.streamer != nil && !e.paused {
				speaker.Lock()
				pos := e.streamer.Position()
				speaker.Unlock()
				e.telemetry.EmitPosition(e.format.SampleRate.D(pos))
			}
			e.mu.Unlock()
		}
	}
}

// applyVolumeLocked maps the 0..100 level onto beep's log scale where 0 is
// unity gain and each step of -1 halves the amplitude.
func (e *Engine) applyVolumeLocked() {
	if e.volume == nil {
		return
	}
	level := float64(e.volumeLevel) / 100
	if level <= 0 {
		e.volume.Silent = true
		return
	}
	e.volume.Silent = false
	if level >= 1 {
		e.volume.Volume = 0
		return
	}
	e.volume.Volume = math.Log2(level)
}

// applyRatioLocked folds sample-rate conversion, rate and pitch into the
// single resampler ratio.
func (e *Engine) applyRatioLocked() {
	if e.resampler == nil {
		return
	}
	ratio := float64(e.format.SampleRate) / float64(speakerRate) * e.rate * e.pitch
	speaker.Lock()
	e.resampler.SetRatio(ratio)
	speaker.Unlock()
}

// uriToPath resolves a direct URI to a local filesystem path. Plain paths
// pass through; file:// URIs are unwrapped; anything else is not playable
// by this engine.
func uriToPath(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
	return u.Path, nil
}

func flatten(src engine.Source) ([]engine.URISource, error) {
	switch v := src.(type) {
	case engine.URISource:
		return []engine.URISource{v}, nil
	case engine.PlaylistSource:
		items := make([]engine.URISource, 0, len(v.Items))
		for _, item := range v.Items {
			u, ok := item.(engine.URISource)
			if !ok {
				return nil, fmt.Errorf("unsupported playlist item")
			}
			items = append(items, u)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported source kind")
	}
}

// Verify Engine implements Handle at compile time.
var _ engine.Handle = (*Engine)(nil)
