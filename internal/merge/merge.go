// Package merge appends related-track candidates to the engine queue.
package merge

import (
	"context"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/upnext/internal/errmsg"
	"github.com/llehouerou/upnext/internal/logging"
	"github.com/llehouerou/upnext/internal/playback"
	"github.com/llehouerou/upnext/internal/track"
)

// DefaultCap is the maximum number of tracks appended per merge.
const DefaultCap = 5

// Adder appends one track to the engine queue.
type Adder interface {
	Add(ctx context.Context, payload playback.AddPayload) error
}

// Options configures a Merger.
type Options struct {
	Cap            int    // <= 0 uses DefaultCap
	StreamABaseURL string // base for StreamA playable URLs
	Logger         *log.Logger
}

// Merger dedups candidates against the queue, caps them and appends them in
// order.
type Merger struct {
	engine  Adder
	cap     int
	baseURL string
	log     *log.Logger
}

// New creates a Merger appending to engine.
func New(engine Adder, opts Options) *Merger {
	limit := opts.Cap
	if limit <= 0 {
		limit = DefaultCap
	}
	return &Merger{
		engine:  engine,
		cap:     limit,
		baseURL: strings.TrimSuffix(opts.StreamABaseURL, "/"),
		log:     logging.Component(opts.Logger, "merge"),
	}
}

// Cap returns the per-merge append limit.
func (m *Merger) Cap() int {
	return m.cap
}

// Select returns the candidates to append: those whose ID is not in existing,
// first occurrence only, at most Cap of them, in candidate order.
func (m *Merger) Select(existing, candidates []track.Track) []track.Track {
	seen := track.IDs(existing)
	out := make([]track.Track, 0, min(len(candidates), m.cap))
	for _, c := range candidates {
		if len(out) == m.cap {
			break
		}
		if c.ID == "" {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Merge appends the selected candidates one at a time, each Add completing
// before the next starts. An Add error stops the batch. It returns the tracks
// that were appended.
func (m *Merger) Merge(ctx context.Context, existing, candidates []track.Track) []track.Track {
	selected := m.Select(existing, candidates)
	appended := make([]track.Track, 0, len(selected))
	for _, t := range selected {
		if err := m.engine.Add(ctx, m.Payload(t)); err != nil {
			m.log.Warn(errmsg.FormatWith(errmsg.OpQueueAdd, t.ID, err))
			break
		}
		appended = append(appended, t)
	}
	if len(appended) > 0 {
		m.log.Debug("appended related tracks", "count", len(appended), "candidates", len(candidates))
	}
	return appended
}

// Payload builds the engine payload for t, resolving its playable URL.
func (m *Merger) Payload(t track.Track) playback.AddPayload {
	return playback.AddPayload{
		ID:       t.ID,
		URL:      m.playableURL(t),
		Title:    t.Title,
		Artist:   t.Artist,
		Artwork:  t.ArtworkURL,
		Duration: max(t.DurationSeconds, 0),
	}
}

func (m *Merger) playableURL(t track.Track) string {
	switch t.Kind() {
	case track.StreamA:
		if m.baseURL == "" || !track.IsDirectVideoURL(t.SourceURL) {
			return t.SourceURL
		}
		return m.baseURL + "/stream?url=" + url.QueryEscape(t.SourceURL)
	case track.StreamB:
		if best, ok := t.BestVariant(); ok {
			return best.URL
		}
		return t.SourceURL
	default:
		return t.SourceURL
	}
}
