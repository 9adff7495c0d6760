package session

import "time"

// runAggregator consumes every engine telemetry channel and folds each
// update into the snapshot. Handling is O(1), never blocks on subscribers
// and never calls engine primitives, so it stays responsive while a
// long-running command is in flight.
func (s *Session) runAggregator() {
	defer close(s.aggDone)
	t := s.engine.Telemetry()
	for {
		select {
		case <-s.quit:
			return
		case d := <-t.Duration:
			s.applyDuration(d)
		case pos := <-t.Position:
			s.applyPosition(pos)
		case buffering := <-t.Buffering:
			s.applyBuffering(buffering)
		case ext := <-t.Buffered:
			s.applyBuffered(ext)
		case playing := <-t.Playing:
			s.applyPlaying(playing)
		case v := <-t.Volume:
			// Engine scale 0..100 back to the API's 0..1. Ancillary only.
			s.pub.emitAncillary(AncillaryEvent{Volume: ptr(float64(v) / 100)})
		case completed := <-t.Completed:
			s.applyCompleted(completed)
		case err := <-t.Err:
			s.applyError(err)
		case idx := <-t.Index:
			s.applyIndex(idx)
		case p := <-t.Pitch:
			s.pub.emitAncillary(AncillaryEvent{Pitch: ptr(p)})
		case r := <-t.Rate:
			s.pub.emitAncillary(AncillaryEvent{Speed: ptr(r)})
		case line := <-t.Log:
			s.log.Debug("engine log", "line", line)
		}
	}
}

func (s *Session) applyDuration(d time.Duration) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	s.snap.Duration = d
	s.snap.State = Ready
	s.emitLocked()
}

func (s *Session) applyPosition(pos time.Duration) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	s.snap.Position = pos
	s.emitLocked()
}

func (s *Session) applyBuffering(buffering bool) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if buffering {
		s.snap.State = Buffering
	} else {
		s.snap.State = Ready
	}
	s.emitLocked()
}

func (s *Session) applyBuffered(ext time.Duration) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	s.snap.BufferedPosition = ext
	s.emitLocked()
}

func (s *Session) applyPlaying(playing bool) {
	s.snapMu.Lock()
	s.snap.State = Ready
	s.emitLocked()
	s.snapMu.Unlock()
	s.pub.emitAncillary(AncillaryEvent{Playing: ptr(playing)})
}

func (s *Session) applyCompleted(completed bool) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if completed {
		s.snap.State = Completed
	} else {
		s.snap.State = Ready
	}
	s.emitLocked()
}

// applyError folds an engine fault into state: processing drops to Idle and
// the error is logged. The session stays usable for subsequent loads.
func (s *Session) applyError(err error) {
	s.snapMu.Lock()
	s.snap.State = Idle
	s.emitLocked()
	s.snapMu.Unlock()
	s.log.Error("engine fault", "err", err)
}

func (s *Session) applyIndex(idx int) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	s.snap.CurrentIndex = idx
	s.emitLocked()
}

func ptr[T any](v T) *T {
	return &v
}
