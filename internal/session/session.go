package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/cadence/internal/engine"
)

const commandQueueSize = 16

// Session owns the canonical playback snapshot for one engine handle. All
// snapshot mutations, whether telemetry-driven or command-driven, go through
// the single snapshot lock; commands additionally execute strictly
// one-at-a-time in submission order.
type Session struct {
	engine engine.Handle
	log    *slog.Logger

	pub publisher

	// snapMu guards snap, playlistLen and lastEmit. It is the single
	// serialized context for snapshot mutation: telemetry application and
	// command snapshot-writes both take it directly, so telemetry never
	// queues behind a long-running command.
	snapMu      sync.Mutex
	snap        Snapshot
	playlistLen int
	lastEmit    time.Time

	// submitMu guards closed and excludes submitters while Release closes
	// the command channel.
	submitMu sync.RWMutex
	closed   bool

	cmds     chan *command
	draining chan struct{} // closed when Release starts; queued commands fail
	execDone chan struct{}

	quit    chan struct{} // stops the aggregator and readiness watcher
	aggDone chan struct{}

	ready     chan struct{}
	readyOnce sync.Once
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for engine faults and diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New wires a session onto an engine handle and starts its telemetry and
// command loops. The initial snapshot is Idle with zero durations and
// index 0. Ready() resolves once the engine signals initial readiness.
func New(h engine.Handle, opts ...Option) *Session {
	s := &Session{
		engine:   h,
		log:      slog.Default(),
		cmds:     make(chan *command, commandQueueSize),
		draining: make(chan struct{}),
		execDone: make(chan struct{}),
		quit:     make(chan struct{}),
		aggDone:  make(chan struct{}),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.runCommands()
	go s.runAggregator()
	go s.watchReady()
	return s
}

func (s *Session) watchReady() {
	select {
	case <-s.engine.Telemetry().Ready:
		s.readyOnce.Do(func() { close(s.ready) })
	case <-s.quit:
	}
}

// Ready returns a channel that is closed once the engine has signaled
// initial readiness. Release also closes it so waiters never leak; use
// Closed to tell the two apart.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Closed reports whether Release has begun.
func (s *Session) Closed() bool {
	s.submitMu.RLock()
	defer s.submitMu.RUnlock()
	return s.closed
}

// Snapshot returns a copy of the current playback snapshot.
func (s *Session) Snapshot() Snapshot {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	return s.snap
}

// Subscribe registers a new event consumer. Subscribers see only events
// emitted after subscription; there is no replay. After Release the
// returned subscription's Done channel is already closed.
func (s *Session) Subscribe() *Subscription {
	if sub := s.pub.subscribe(); sub != nil {
		return sub
	}
	sub := newSubscription()
	sub.close()
	return sub
}

// Release tears the session down: no further commands are admitted, the
// in-flight command (if any) runs to completion, commands still queued fail
// with ErrSessionClosed, telemetry processing stops, the engine handle is
// closed and every subscription's Done channel closes. No events are
// observable after Release returns. Calling Release again returns nil.
func (s *Session) Release() error {
	s.submitMu.Lock()
	if s.closed {
		s.submitMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.draining)
	// Safe: submitters hold submitMu.RLock across their channel send, so
	// none can be mid-send here.
	close(s.cmds)
	s.submitMu.Unlock()

	<-s.execDone

	close(s.quit)
	<-s.aggDone

	s.readyOnce.Do(func() { close(s.ready) })

	err := s.engine.Close()
	s.pub.close()
	return err
}

// emitLocked stamps the snapshot with a non-decreasing update time and
// broadcasts it. Caller must hold snapMu; publishing under the lock is what
// keeps emission order consistent with application order.
func (s *Session) emitLocked() {
	now := time.Now()
	if now.Before(s.lastEmit) {
		now = s.lastEmit
	}
	s.lastEmit = now
	s.snap.UpdateTime = now
	s.pub.emitSnapshot(s.snap)
}
