package session

const eventBufferSize = 16

// Subscription provides the two event channels for one subscriber: the
// primary snapshot stream and the secondary ancillary-data stream. Both are
// replay-free; a subscriber sees only events emitted after it subscribed.
type Subscription struct {
	Snapshots <-chan Snapshot
	Ancillary <-chan AncillaryEvent
	Done      <-chan struct{}

	// Internal write channels
	snapshotCh  chan Snapshot
	ancillaryCh chan AncillaryEvent
	doneCh      chan struct{}
}

// newSubscription creates a subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		snapshotCh:  make(chan Snapshot, eventBufferSize),
		ancillaryCh: make(chan AncillaryEvent, eventBufferSize),
		doneCh:      make(chan struct{}),
	}
	s.Snapshots = s.snapshotCh
	s.Ancillary = s.ancillaryCh
	s.Done = s.doneCh
	return s
}

// close signals the subscriber to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendSnapshot delivers a snapshot (non-blocking).
func (s *Subscription) sendSnapshot(snap Snapshot) {
	select {
	case s.snapshotCh <- snap:
	default:
		// Drop if buffer full
	}
}

// sendAncillary delivers an ancillary event (non-blocking).
func (s *Subscription) sendAncillary(e AncillaryEvent) {
	select {
	case s.ancillaryCh <- e:
	default:
	}
}
