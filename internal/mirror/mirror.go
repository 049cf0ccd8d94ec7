// Package mirror keeps a read-only copy of the engine queue for the rest of
// the application.
package mirror

import (
	"slices"
	"sync"

	"github.com/llehouerou/upnext/internal/playback"
	"github.com/llehouerou/upnext/internal/track"
)

// QueueReader reads the engine's authoritative queue.
type QueueReader interface {
	GetQueue() (playback.QueueSnapshot, error)
}

// Snapshot is a copy of the queue as last read from the engine.
type Snapshot struct {
	Tracks      []track.Track
	ActiveIndex int // -1 when the queue is empty
}

// Active returns the active track, or false when nothing is active.
func (s Snapshot) Active() (track.Track, bool) {
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Tracks) {
		return track.Track{}, false
	}
	return s.Tracks[s.ActiveIndex], true
}

// Remaining returns the number of tracks after the active one.
func (s Snapshot) Remaining() int {
	return len(s.Tracks) - (s.ActiveIndex + 1)
}

// View is what subscribers receive: the snapshot plus the loading flag.
type View struct {
	Snapshot
	Fetching bool
}

// Subscription delivers the newest View. Pending views that were not read are
// replaced by newer ones. C is closed by Unsubscribe.
type Subscription struct {
	C <-chan View

	ch chan View
}

// Mirror holds the latest snapshot. Writes happen on the prefetch loop;
// reads may happen from any goroutine.
type Mirror struct {
	mu       sync.RWMutex
	snapshot Snapshot
	fetching bool

	subsMu sync.Mutex
	subs   []*Subscription
}

// New creates an empty mirror.
func New() *Mirror {
	return &Mirror{snapshot: emptySnapshot()}
}

func emptySnapshot() Snapshot {
	return Snapshot{ActiveIndex: -1}
}

// Refresh re-reads the queue from r and publishes it. When the engine cannot
// be read the snapshot becomes empty; the next event retries.
func (m *Mirror) Refresh(r QueueReader) error {
	q, err := r.GetQueue()
	snap := emptySnapshot()
	if err == nil {
		snap = fromQueue(q)
	}

	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	m.publish()
	return err
}

// SetFetching updates the loading flag. Subscribers are notified only when it
// changes.
func (m *Mirror) SetFetching(fetching bool) {
	m.mu.Lock()
	changed := m.fetching != fetching
	m.fetching = fetching
	m.mu.Unlock()

	if changed {
		m.publish()
	}
}

// Snapshot returns the latest view.
func (m *Mirror) Snapshot() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewLocked()
}

// Subscribe registers a subscriber. The current view is delivered immediately.
func (m *Mirror) Subscribe() *Subscription {
	ch := make(chan View, 1)
	sub := &Subscription{C: ch, ch: ch}

	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	m.subs = append(m.subs, sub)
	deliver(sub, m.Snapshot())
	return sub
}

// Unsubscribe removes sub and closes its channel. A pending view is dropped.
// Calling it again for the same subscription is a no-op.
func (m *Mirror) Unsubscribe(sub *Subscription) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	i := slices.Index(m.subs, sub)
	if i < 0 {
		return
	}
	m.subs = slices.Delete(m.subs, i, i+1)
	select {
	case <-sub.ch:
	default:
	}
	close(sub.ch)
}

func (m *Mirror) viewLocked() View {
	return View{
		Snapshot: Snapshot{
			Tracks:      slices.Clone(m.snapshot.Tracks),
			ActiveIndex: m.snapshot.ActiveIndex,
		},
		Fetching: m.fetching,
	}
}

func (m *Mirror) publish() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	if len(m.subs) == 0 {
		return
	}
	v := m.Snapshot()
	for _, sub := range m.subs {
		deliver(sub, v)
	}
}

// deliver replaces any pending view with v. Callers serialize deliveries.
func deliver(sub *Subscription, v View) {
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- v:
	default:
	}
}

func fromQueue(q playback.QueueSnapshot) Snapshot {
	tracks := make([]track.Track, len(q.Tracks))
	for i, e := range q.Tracks {
		tracks[i] = track.Track{
			ID:              e.ID,
			SourceURL:       e.URL,
			Title:           e.Title,
			Artist:          e.Artist,
			ArtworkURL:      e.Artwork,
			DurationSeconds: e.Duration,
		}
	}
	active := q.ActiveIndex
	if len(tracks) == 0 || active >= len(tracks) {
		active = -1
	}
	return Snapshot{Tracks: tracks, ActiveIndex: active}
}
