package related

import (
	"context"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/upnext/internal/errmsg"
	"github.com/llehouerou/upnext/internal/logging"
	"github.com/llehouerou/upnext/internal/track"
)

// StreamAResolver resolves related tracks from the video backend.
type StreamAResolver struct {
	client *Client
	log    *log.Logger
}

// NewStreamA creates a StreamA resolver.
func NewStreamA(client *Client, logger *log.Logger) *StreamAResolver {
	return &StreamAResolver{
		client: client,
		log:    logging.Component(logger, "streama"),
	}
}

// Resolve extracts the video id from the active track and fetches its related
// songs. Any failure yields nil.
func (r *StreamAResolver) Resolve(ctx context.Context, active track.Track) []track.Track {
	videoID, err := track.ExtractVideoID(active.SourceURL)
	if err != nil {
		r.log.Debug(errmsg.FormatWith(errmsg.OpExtractID, active.SourceURL, err))
		return nil
	}

	tracks, err := r.Fetch(ctx, videoID)
	if err != nil {
		r.log.Warn(errmsg.FormatWith(errmsg.OpRelatedFetch, videoID, err))
		return nil
	}
	return tracks
}

// Fetch calls GET /related-songs?videoId=<id>.
func (r *StreamAResolver) Fetch(ctx context.Context, videoID string) ([]track.Track, error) {
	params := url.Values{}
	params.Set("videoId", videoID)

	var resp streamAResponse
	if err := r.client.getJSON(ctx, "/related-songs", params, &resp); err != nil {
		return nil, err
	}
	if resp.RelatedSongs == nil {
		return nil, fmt.Errorf("%w: missing relatedSongs", ErrUpstreamMalformed)
	}

	songs := *resp.RelatedSongs
	tracks := make([]track.Track, 0, len(songs))
	for _, s := range songs {
		if s.URL == "" {
			continue
		}
		tracks = append(tracks, track.Track{
			ID:              s.URL,
			SourceURL:       s.URL,
			Title:           s.Title,
			Artist:          s.Author,
			ArtworkURL:      string(s.Thumbnail),
			DurationSeconds: s.Duration.Seconds(),
		})
	}
	return tracks, nil
}
