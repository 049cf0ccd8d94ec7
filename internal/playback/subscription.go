package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	ActiveTrackChanged <-chan ActiveTrackChanged
	QueueChanged       <-chan QueueChanged
	QueueEnded         <-chan QueueEnded
	StateChanged       <-chan StateChange
	Done               <-chan struct{}

	// Internal write channels
	activeCh chan ActiveTrackChanged
	queueCh  chan QueueChanged
	endedCh  chan QueueEnded
	stateCh  chan StateChange
	doneCh   chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		activeCh: make(chan ActiveTrackChanged, eventBufferSize),
		queueCh:  make(chan QueueChanged, eventBufferSize),
		endedCh:  make(chan QueueEnded, eventBufferSize),
		stateCh:  make(chan StateChange, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.ActiveTrackChanged = s.activeCh
	s.QueueChanged = s.queueCh
	s.QueueEnded = s.endedCh
	s.StateChanged = s.stateCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendActive sends an active track change event (non-blocking).
func (s *Subscription) sendActive(e ActiveTrackChanged) {
	select {
	case s.activeCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendQueue sends a queue change event (non-blocking).
func (s *Subscription) sendQueue() {
	select {
	case s.queueCh <- QueueChanged{}:
	default:
	}
}

// sendEnded sends a queue ended event (non-blocking).
func (s *Subscription) sendEnded() {
	select {
	case s.endedCh <- QueueEnded{}:
	default:
	}
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
	}
}
