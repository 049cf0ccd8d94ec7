package mirror

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/upnext/internal/playback"
	"github.com/llehouerou/upnext/internal/track"
)

type fakeReader struct {
	snap playback.QueueSnapshot
	err  error
}

func (f *fakeReader) GetQueue() (playback.QueueSnapshot, error) {
	return f.snap, f.err
}

func queueOf(active int, ids ...string) playback.QueueSnapshot {
	entries := make([]playback.Entry, len(ids))
	for i, id := range ids {
		entries[i] = playback.Entry{ID: id, URL: "https://cdn/" + id, Title: id, Duration: 100 + i}
	}
	return playback.QueueSnapshot{Tracks: entries, ActiveIndex: active}
}

func TestNew_Empty(t *testing.T) {
	m := New()

	v := m.Snapshot()

	assert.Empty(t, v.Tracks)
	assert.Equal(t, -1, v.ActiveIndex)
	assert.False(t, v.Fetching)
	_, ok := v.Active()
	assert.False(t, ok)
}

func TestRefresh(t *testing.T) {
	m := New()
	r := &fakeReader{snap: queueOf(1, "a", "b", "c")}

	require.NoError(t, m.Refresh(r))
	v := m.Snapshot()

	require.Len(t, v.Tracks, 3)
	assert.Equal(t, 1, v.ActiveIndex)
	assert.Equal(t, 1, v.Remaining())
	assert.Equal(t, track.Track{ID: "b", SourceURL: "https://cdn/b", Title: "b", DurationSeconds: 101}, v.Tracks[1])
	active, ok := v.Active()
	require.True(t, ok)
	assert.Equal(t, "b", active.ID)
}

func TestRefresh_ClassificationFollowsEngineURL(t *testing.T) {
	m := New()
	r := &fakeReader{snap: playback.QueueSnapshot{
		Tracks: []playback.Entry{{
			ID:  "https://www.youtube.com/watch?v=abc",
			URL: "https://api.example.com/stream?url=https%3A%2F%2Fwww.youtube.com%2Fwatch%3Fv%3Dabc",
		}},
		ActiveIndex: 0,
	}}

	require.NoError(t, m.Refresh(r))

	assert.Equal(t, track.StreamA, m.Snapshot().Tracks[0].Kind())
}

func TestRefresh_ErrorYieldsEmptySnapshot(t *testing.T) {
	m := New()
	r := &fakeReader{snap: queueOf(0, "a", "b")}
	require.NoError(t, m.Refresh(r))

	r.err = playback.ErrNotInitialized
	err := m.Refresh(r)

	require.ErrorIs(t, err, playback.ErrNotInitialized)
	v := m.Snapshot()
	assert.Empty(t, v.Tracks)
	assert.Equal(t, -1, v.ActiveIndex)
}

func TestRefresh_ClampsActiveIndex(t *testing.T) {
	m := New()

	require.NoError(t, m.Refresh(&fakeReader{snap: queueOf(0)}))
	assert.Equal(t, -1, m.Snapshot().ActiveIndex)

	require.NoError(t, m.Refresh(&fakeReader{snap: queueOf(5, "a")}))
	assert.Equal(t, -1, m.Snapshot().ActiveIndex)
}

func TestSnapshot_ReturnsCopy(t *testing.T) {
	m := New()
	require.NoError(t, m.Refresh(&fakeReader{snap: queueOf(0, "a")}))

	v := m.Snapshot()
	v.Tracks[0].ID = "mutated"

	assert.Equal(t, "a", m.Snapshot().Tracks[0].ID)
}

func TestSubscribe_DeliversCurrentView(t *testing.T) {
	m := New()
	require.NoError(t, m.Refresh(&fakeReader{snap: queueOf(0, "a")}))

	sub := m.Subscribe()

	select {
	case v := <-sub.C:
		require.Len(t, v.Tracks, 1)
	default:
		t.Fatal("expected initial view")
	}
}

func TestSubscribe_KeepsNewestOnly(t *testing.T) {
	m := New()
	sub := m.Subscribe()
	r := &fakeReader{}

	r.snap = queueOf(0, "a")
	require.NoError(t, m.Refresh(r))
	r.snap = queueOf(0, "a", "b")
	require.NoError(t, m.Refresh(r))
	m.SetFetching(true)

	v := <-sub.C
	assert.Len(t, v.Tracks, 2)
	assert.True(t, v.Fetching)

	select {
	case <-sub.C:
		t.Fatal("expected no further views")
	default:
	}
}

func TestSetFetching_NotifiesOnChangeOnly(t *testing.T) {
	m := New()
	sub := m.Subscribe()
	<-sub.C

	m.SetFetching(false)
	select {
	case <-sub.C:
		t.Fatal("unchanged flag should not notify")
	default:
	}

	m.SetFetching(true)
	v := <-sub.C
	assert.True(t, v.Fetching)
	assert.True(t, m.Snapshot().Fetching)
}

func TestUnsubscribe(t *testing.T) {
	m := New()
	sub := m.Subscribe()
	<-sub.C

	m.Unsubscribe(sub)
	m.SetFetching(true)

	_, ok := <-sub.C
	assert.False(t, ok, "channel is closed without a pending view")

	// A second call is a no-op.
	m.Unsubscribe(sub)
}

func TestUnsubscribe_DropsPendingView(t *testing.T) {
	m := New()
	sub := m.Subscribe()

	m.Unsubscribe(sub)

	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestUnsubscribe_WakesBlockedReader(t *testing.T) {
	m := New()
	sub := m.Subscribe()
	<-sub.C

	done := make(chan bool)
	go func() {
		_, ok := <-sub.C
		done <- ok
	}()

	m.Unsubscribe(sub)
	assert.False(t, <-done)
}

func TestMirror_ConcurrentReaders(t *testing.T) {
	m := New()
	r := &fakeReader{snap: queueOf(0, "a", "b")}

	var wg sync.WaitGroup
	for range 4 {
		wg.Go(func() {
			for range 100 {
				v := m.Snapshot()
				_ = v.Remaining()
			}
		})
	}
	for range 100 {
		_ = m.Refresh(r)
		m.SetFetching(true)
		m.SetFetching(false)
	}
	wg.Wait()
}
