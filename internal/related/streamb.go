package related

import (
	"context"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/upnext/internal/errmsg"
	"github.com/llehouerou/upnext/internal/logging"
	"github.com/llehouerou/upnext/internal/track"
)

// StreamBResolver resolves related tracks from the catalog backend.
type StreamBResolver struct {
	client *Client
	log    *log.Logger
}

// NewStreamB creates a StreamB resolver.
func NewStreamB(client *Client, logger *log.Logger) *StreamBResolver {
	return &StreamBResolver{
		client: client,
		log:    logging.Component(logger, "streamb"),
	}
}

// Resolve fetches related songs for the active track's catalog id. Any
// failure yields nil.
func (r *StreamBResolver) Resolve(ctx context.Context, active track.Track) []track.Track {
	if active.ID == "" {
		return nil
	}

	tracks, err := r.Fetch(ctx, active.ID)
	if err != nil {
		r.log.Warn(errmsg.FormatWith(errmsg.OpRelatedFetch, active.ID, err))
		return nil
	}
	return tracks
}

// Fetch calls GET /related-songs-jio-savan/<catalogID>.
func (r *StreamBResolver) Fetch(ctx context.Context, catalogID string) ([]track.Track, error) {
	var songs []streamBSong
	if err := r.client.getJSON(ctx, "/related-songs-jio-savan/"+url.PathEscape(catalogID), nil, &songs); err != nil {
		return nil, err
	}

	tracks := make([]track.Track, 0, len(songs))
	for _, s := range songs {
		if s.ID == "" {
			continue
		}
		t := track.Track{
			ID:              s.ID,
			Title:           s.Title,
			Artist:          s.Author,
			ArtworkURL:      string(s.Thumbnail),
			DurationSeconds: s.Duration.Seconds(),
			Variants:        []track.QualityVariant(s.DownloadURL),
		}
		// The best variant is the locator; fall back to the catalog id.
		t.SourceURL = t.ID
		if best, ok := t.BestVariant(); ok {
			t.SourceURL = best.URL
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}
