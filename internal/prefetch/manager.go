package prefetch

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/llehouerou/upnext/internal/errmsg"
	"github.com/llehouerou/upnext/internal/logging"
	"github.com/llehouerou/upnext/internal/mirror"
	"github.com/llehouerou/upnext/internal/playback"
	"github.com/llehouerou/upnext/internal/related"
	"github.com/llehouerou/upnext/internal/track"
)

// DefaultFetchTimeout bounds one resolver call.
const DefaultFetchTimeout = 20 * time.Second

// Engine is the part of the playback engine the manager observes.
type Engine interface {
	GetQueue() (playback.QueueSnapshot, error)
	Subscribe() *playback.Subscription
}

// Merger appends candidates that are not already queued.
type Merger interface {
	Merge(ctx context.Context, existing, candidates []track.Track) []track.Track
}

// Options configures a Manager.
type Options struct {
	Threshold    int           // < 0 uses DefaultThreshold
	FetchTimeout time.Duration // 0 disables the timeout
	Logger       *log.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, FetchTimeout: DefaultFetchTimeout}
}

// fetchResult is posted back to the loop when a resolver call returns.
type fetchResult struct {
	pipeline string
	index    int
	active   track.Track
	tracks   []track.Track
	elapsed  time.Duration
}

// Manager runs the prefetch pipeline. All state is owned by the Run loop;
// only resolver calls run on other goroutines.
type Manager struct {
	engine   Engine
	resolver related.Resolver
	merger   Merger
	mirror   *mirror.Mirror
	trigger  *Trigger
	timeout  time.Duration
	log      *log.Logger

	results chan fetchResult
	wg      sync.WaitGroup
}

// New creates a Manager. Call Run to start it.
func New(engine Engine, resolver related.Resolver, merger Merger, mir *mirror.Mirror, opts Options) *Manager {
	return &Manager{
		engine:   engine,
		resolver: resolver,
		merger:   merger,
		mirror:   mir,
		trigger:  NewTrigger(opts.Threshold),
		timeout:  max(opts.FetchTimeout, 0),
		log:      logging.Component(opts.Logger, "prefetch"),
		// Single-flight: at most one result is ever pending.
		results: make(chan fetchResult, 1),
	}
}

// Run subscribes to the engine and processes events until ctx is cancelled or
// the engine closes the subscription. An in-flight fetch is cancelled and
// waited for before Run returns.
func (m *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		m.wg.Wait()
	}()

	sub := m.engine.Subscribe()
	m.log.Debug("prefetch loop started", "threshold", m.trigger.Threshold(), "fetch_timeout", m.timeout)

	// The queue may already be short when the loop starts.
	m.refresh()
	m.evaluate(ctx)

	for {
		select {
		case <-ctx.Done():
			m.log.Debug("prefetch loop stopped")
			return nil

		case <-sub.Done:
			m.log.Debug("engine subscription closed")
			return nil

		case ev := <-sub.ActiveTrackChanged:
			m.log.Debug("active track changed", "index", ev.Index)
			m.refresh()
			m.evaluate(ctx)

		case <-sub.QueueChanged:
			m.refresh()

		case <-sub.QueueEnded:
			m.log.Info("queue ended")
			m.refresh()

		case ev := <-sub.StateChanged:
			m.log.Debug("playback state changed", "from", ev.Previous, "to", ev.Current)

		case res := <-m.results:
			m.complete(ctx, res)
		}
	}
}

// refresh re-reads the engine queue into the mirror.
func (m *Manager) refresh() {
	if err := m.mirror.Refresh(m.engine); err != nil {
		m.log.Debug(errmsg.Format(errmsg.OpQueueRead, err))
	}
}

// evaluate runs the trigger against the mirrored queue and starts a fetch
// when it fires.
func (m *Manager) evaluate(ctx context.Context) {
	snap := m.mirror.Snapshot()
	index, fire := m.trigger.Evaluate(len(snap.Tracks), snap.ActiveIndex)
	if !fire {
		return
	}
	m.mirror.SetFetching(true)
	m.startFetch(ctx, index, snap.Tracks[index])
}

func (m *Manager) startFetch(ctx context.Context, index int, active track.Track) {
	pipeline := uuid.NewString()
	logger := m.log.With("pipeline", pipeline)
	logger.Info("fetching related tracks",
		"index", index, "kind", active.Kind(), "track", active.ID, "remaining_threshold", m.trigger.Threshold())

	fctx, cancel := ctx, context.CancelFunc(func() {})
	if m.timeout > 0 {
		fctx, cancel = context.WithTimeout(ctx, m.timeout)
	}

	m.wg.Go(func() {
		defer cancel()
		start := time.Now()
		tracks := m.resolver.Resolve(fctx, active)
		m.results <- fetchResult{
			pipeline: pipeline,
			index:    index,
			active:   active,
			tracks:   tracks,
			elapsed:  time.Since(start),
		}
	})
}

// complete merges a fetch result and settles the trigger.
func (m *Manager) complete(ctx context.Context, res fetchResult) {
	logger := m.log.With("pipeline", res.pipeline)
	defer func() {
		m.trigger.Settle()
		m.mirror.SetFetching(false)
	}()

	if ctx.Err() != nil {
		return
	}

	m.refresh()
	snap := m.mirror.Snapshot()
	if snap.ActiveIndex != res.index {
		// Still merged: dedup keeps the queue consistent.
		logger.Info("merging stale related tracks", "triggered_index", res.index, "active_index", snap.ActiveIndex)
	}

	if len(res.tracks) == 0 {
		logger.Info("no related tracks", "track", res.active.ID, "elapsed", res.elapsed)
		return
	}

	appended := m.merger.Merge(ctx, snap.Tracks, res.tracks)
	logger.Info("related tracks merged",
		"candidates", len(res.tracks), "appended", len(appended), "elapsed", res.elapsed)
}
