// internal/playback/engine.go
package playback

import (
	"context"
	"fmt"
	"sync"

	"github.com/llehouerou/upnext/internal/playlist"
)

// Verify QueueEngine implements Engine at compile time.
var _ Engine = (*QueueEngine)(nil)

// QueueEngine is an in-memory Engine. It keeps the authoritative queue and
// publishes events, but produces no audio.
type QueueEngine struct {
	mu sync.RWMutex

	queue   *playlist.PlayingQueue
	state   State
	started bool

	subs       []*Subscription
	subsMu     sync.RWMutex
	subsClosed bool

	closed bool
}

// New creates a new engine. Queue reads fail with ErrNotInitialized until
// Start is called.
func New() *QueueEngine {
	return &QueueEngine{
		queue: playlist.NewQueue(),
	}
}

// Start initializes the engine with an initial queue. The first track becomes
// active.
func (e *QueueEngine) Start(tracks ...AddPayload) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	e.started = true
	e.queue.Clear()
	for _, p := range tracks {
		if e.queue.Contains(p.ID) {
			continue
		}
		e.queue.Add(fromPayload(p))
	}
	activated := e.queue.JumpTo(0) != nil
	e.mu.Unlock()

	e.broadcast(func(s *Subscription) { s.sendQueue() })
	if activated {
		e.broadcast(func(s *Subscription) { s.sendActive(ActiveTrackChanged{Index: 0}) })
	}
	return nil
}

// GetQueue returns a copy of the queue and the active index.
func (e *QueueEngine) GetQueue() (QueueSnapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.started {
		return QueueSnapshot{}, ErrNotInitialized
	}
	tracks := e.queue.Tracks()
	result := make([]Entry, len(tracks))
	for i, t := range tracks {
		result[i] = Entry{
			ID:       t.ID,
			URL:      t.URL,
			Title:    t.Title,
			Artist:   t.Artist,
			Artwork:  t.Artwork,
			Duration: t.Duration,
		}
	}
	return QueueSnapshot{Tracks: result, ActiveIndex: e.queue.CurrentIndex()}, nil
}

// Add appends a track at the tail of the queue.
func (e *QueueEngine) Add(ctx context.Context, payload AddPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	if e.queue.Contains(payload.ID) {
		e.mu.Unlock()
		return fmt.Errorf("add %q: %w", payload.ID, ErrDuplicateTrack)
	}
	e.queue.Add(fromPayload(payload))
	activated := false
	if e.queue.CurrentIndex() < 0 {
		activated = e.queue.JumpTo(0) != nil
	}
	e.mu.Unlock()

	e.broadcast(func(s *Subscription) { s.sendQueue() })
	if activated {
		e.broadcast(func(s *Subscription) { s.sendActive(ActiveTrackChanged{Index: 0}) })
	}
	return nil
}

// Remove deletes the track at index.
func (e *QueueEngine) Remove(index int) error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	prevIndex := e.queue.CurrentIndex()
	if !e.queue.RemoveAt(index) {
		e.mu.Unlock()
		return fmt.Errorf("remove %d: %w", index, ErrIndexOutOfRange)
	}
	newIndex := e.queue.CurrentIndex()
	activeChanged := index == prevIndex && newIndex >= 0
	e.mu.Unlock()

	e.broadcast(func(s *Subscription) { s.sendQueue() })
	if activeChanged {
		e.broadcast(func(s *Subscription) { s.sendActive(ActiveTrackChanged{Index: newIndex}) })
	}
	return nil
}

// Skip makes the track at index active.
func (e *QueueEngine) Skip(index int) error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	prevIndex := e.queue.CurrentIndex()
	if e.queue.JumpTo(index) == nil {
		e.mu.Unlock()
		return fmt.Errorf("skip to %d: %w", index, ErrIndexOutOfRange)
	}
	e.mu.Unlock()

	if index != prevIndex {
		e.broadcast(func(s *Subscription) { s.sendActive(ActiveTrackChanged{Index: index}) })
	}
	return nil
}

// Next advances to the following track. On the last track it stops playback
// and emits QueueEnded.
func (e *QueueEngine) Next() error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	if e.queue.Next() == nil {
		prev := e.state
		e.state = StateStopped
		e.mu.Unlock()

		e.broadcast(func(s *Subscription) { s.sendEnded() })
		if prev != StateStopped {
			e.broadcast(func(s *Subscription) {
				s.sendState(StateChange{Previous: prev, Current: StateStopped})
			})
		}
		return nil
	}
	index := e.queue.CurrentIndex()
	e.mu.Unlock()

	e.broadcast(func(s *Subscription) { s.sendActive(ActiveTrackChanged{Index: index}) })
	return nil
}

// Play starts playback of the active track.
func (e *QueueEngine) Play() error {
	return e.setState(StatePlaying)
}

// Pause pauses playback.
func (e *QueueEngine) Pause() error {
	return e.setState(StatePaused)
}

func (e *QueueEngine) setState(next State) error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	if next == StatePlaying && e.queue.Current() == nil {
		e.mu.Unlock()
		return fmt.Errorf("play: %w", ErrIndexOutOfRange)
	}
	prev := e.state
	e.state = next
	e.mu.Unlock()

	if prev != next {
		e.broadcast(func(s *Subscription) { s.sendState(StateChange{Previous: prev, Current: next}) })
	}
	return nil
}

// State returns the current playback state.
func (e *QueueEngine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Subscribe creates a new event subscription.
func (e *QueueEngine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	if e.subsClosed {
		sub.close()
		return sub
	}
	e.subs = append(e.subs, sub)
	return sub
}

// Close shuts down the engine and closes all subscriptions.
func (e *QueueEngine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.started = false
	e.mu.Unlock()

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsClosed = true
	e.subsMu.Unlock()

	return nil
}

func (e *QueueEngine) broadcast(send func(*Subscription)) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		send(sub)
	}
}

func fromPayload(p AddPayload) playlist.Track {
	return playlist.Track{
		ID:       p.ID,
		URL:      p.URL,
		Title:    p.Title,
		Artist:   p.Artist,
		Artwork:  p.Artwork,
		Duration: p.Duration,
	}
}
