package session

import "sync"

// publisher fans snapshots and ancillary events out to every live
// subscription. Emissions after close are silently discarded, which is what
// guarantees that nothing is observable once Release has finished.
type publisher struct {
	mu     sync.RWMutex
	subs   []*Subscription
	closed bool
}

// subscribe registers a new subscriber. Returns nil after close.
func (p *publisher) subscribe() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	sub := newSubscription()
	p.subs = append(p.subs, sub)
	return sub
}

// emitSnapshot broadcasts on the primary channel.
func (p *publisher) emitSnapshot(snap Snapshot) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	for _, sub := range p.subs {
		sub.sendSnapshot(snap)
	}
}

// emitAncillary broadcasts on the secondary channel.
func (p *publisher) emitAncillary(e AncillaryEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	for _, sub := range p.subs {
		sub.sendAncillary(e)
	}
}

// close signals every subscriber and drops them.
func (p *publisher) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, sub := range p.subs {
		sub.close()
	}
	p.subs = nil
}
