// Package track defines the canonical queued track and the source classifier.
package track

// SourceKind identifies the backend that resolves related tracks for a track.
type SourceKind int

const (
	// StreamB is the catalog-backed source. Unrecognized locators fall here.
	StreamB SourceKind = iota
	// StreamA is the video-backed source (YouTube-like locators).
	StreamA
)

// String returns the source kind name.
func (k SourceKind) String() string {
	switch k {
	case StreamA:
		return "StreamA"
	case StreamB:
		return "StreamB"
	default:
		return "Unknown"
	}
}

// QualityVariant is one playable URL at a given quality label (e.g. "320kbps").
type QualityVariant struct {
	Label string
	URL   string
}

// Track is one playable item in the queue.
type Track struct {
	ID              string
	SourceURL       string
	Title           string
	Artist          string
	ArtworkURL      string
	DurationSeconds int
	Variants        []QualityVariant // ascending bitrate, StreamB only
}

// Kind classifies the track from its source URL.
func (t Track) Kind() SourceKind {
	return Classify(t.SourceURL)
}

// BestVariant returns the highest quality variant, or false if there is none.
func (t Track) BestVariant() (QualityVariant, bool) {
	for i := len(t.Variants) - 1; i >= 0; i-- {
		if t.Variants[i].URL != "" {
			return t.Variants[i], true
		}
	}
	return QualityVariant{}, false
}

// IDs returns the set of identities present in tracks.
func IDs(tracks []Track) map[string]struct{} {
	ids := make(map[string]struct{}, len(tracks))
	for i := range tracks {
		ids[tracks[i].ID] = struct{}{}
	}
	return ids
}
