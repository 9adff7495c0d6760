package engine

import (
	"sync"
	"time"
)

const telemetryBufferSize = 16

// Telemetry bundles the asynchronous channels an engine reports state on.
// Each channel delivers discrete partial updates; none of them are
// coordinated with each other. Emits are non-blocking: when a consumer
// falls behind, older updates of the same kind are dropped.
type Telemetry struct {
	Ready     <-chan struct{} // closed once, on initial engine readiness
	Duration  <-chan time.Duration
	Position  <-chan time.Duration
	Buffering <-chan bool
	Buffered  <-chan time.Duration // buffered extent
	Playing   <-chan bool
	Volume    <-chan int // engine-native 0..100
	Completed <-chan bool
	Err       <-chan error
	Index     <-chan int // playlist position
	Pitch     <-chan float64
	Rate      <-chan float64
	Log       <-chan string

	// Internal write channels
	readyCh     chan struct{}
	readyOnce   sync.Once
	durationCh  chan time.Duration
	positionCh  chan time.Duration
	bufferingCh chan bool
	bufferedCh  chan time.Duration
	playingCh   chan bool
	volumeCh    chan int
	completedCh chan bool
	errCh       chan error
	indexCh     chan int
	pitchCh     chan float64
	rateCh      chan float64
	logCh       chan string
}

// NewTelemetry creates a telemetry bundle with buffered channels.
func NewTelemetry() *Telemetry {
	t := &Telemetry{
		readyCh:     make(chan struct{}),
		durationCh:  make(chan time.Duration, telemetryBufferSize),
		positionCh:  make(chan time.Duration, telemetryBufferSize),
		bufferingCh: make(chan bool, telemetryBufferSize),
		bufferedCh:  make(chan time.Duration, telemetryBufferSize),
		playingCh:   make(chan bool, telemetryBufferSize),
		volumeCh:    make(chan int, telemetryBufferSize),
		completedCh: make(chan bool, telemetryBufferSize),
		errCh:       make(chan error, telemetryBufferSize),
		indexCh:     make(chan int, telemetryBufferSize),
		pitchCh:     make(chan float64, telemetryBufferSize),
		rateCh:      make(chan float64, telemetryBufferSize),
		logCh:       make(chan string, telemetryBufferSize),
	}
	t.Ready = t.readyCh
	t.Duration = t.durationCh
	t.Position = t.positionCh
	t.Buffering = t.bufferingCh
	t.Buffered = t.bufferedCh
	t.Playing = t.playingCh
	t.Volume = t.volumeCh
	t.Completed = t.completedCh
	t.Err = t.errCh
	t.Index = t.indexCh
	t.Pitch = t.pitchCh
	t.Rate = t.rateCh
	t.Log = t.logCh
	return t
}

// EmitReady signals initial readiness. Safe to call more than once; only
// the first call has an effect.
func (t *Telemetry) EmitReady() {
	t.readyOnce.Do(func() { close(t.readyCh) })
}

// EmitDuration reports the duration of the current item.
func (t *Telemetry) EmitDuration(d time.Duration) {
	select {
	case t.durationCh <- d:
	default:
	}
}

// EmitPosition reports the transport position.
func (t *Telemetry) EmitPosition(pos time.Duration) {
	select {
	case t.positionCh <- pos:
	default:
	}
}

// EmitBuffering reports whether the engine is currently buffering.
func (t *Telemetry) EmitBuffering(buffering bool) {
	select {
	case t.bufferingCh <- buffering:
	default:
	}
}

// EmitBuffered reports the buffered extent.
func (t *Telemetry) EmitBuffered(pos time.Duration) {
	select {
	case t.bufferedCh <- pos:
	default:
	}
}

// EmitPlaying reports the play/pause flag.
func (t *Telemetry) EmitPlaying(playing bool) {
	select {
	case t.playingCh <- playing:
	default:
	}
}

// EmitVolume reports the engine-native volume (0..100).
func (t *Telemetry) EmitVolume(volume int) {
	select {
	case t.volumeCh <- volume:
	default:
	}
}

// EmitCompleted reports the completion flag.
func (t *Telemetry) EmitCompleted(completed bool) {
	select {
	case t.completedCh <- completed:
	default:
	}
}

// EmitError reports an engine fault.
func (t *Telemetry) EmitError(err error) {
	select {
	case t.errCh <- err:
	default:
	}
}

// EmitIndex reports the playlist position.
func (t *Telemetry) EmitIndex(index int) {
	select {
	case t.indexCh <- index:
	default:
	}
}

// EmitPitch reports the pitch factor.
func (t *Telemetry) EmitPitch(pitch float64) {
	select {
	case t.pitchCh <- pitch:
	default:
	}
}

// EmitRate reports the playback rate.
func (t *Telemetry) EmitRate(rate float64) {
	select {
	case t.rateCh <- rate:
	default:
	}
}

// EmitLog reports a diagnostic line from the engine.
func (t *Telemetry) EmitLog(line string) {
	select {
	case t.logCh <- line:
	default:
	}
}
