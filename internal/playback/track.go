package playback

// AddPayload is the track description handed to the engine when queueing.
type AddPayload struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Artwork  string `json:"artwork,omitempty"`
	Duration int    `json:"duration"` // seconds
}

// Entry is a track in the engine's queue.
// This is a copy of the data, not a reference to playlist.Track.
type Entry struct {
	ID       string
	URL      string
	Title    string
	Artist   string
	Artwork  string
	Duration int
}

// QueueSnapshot is a copy of the engine's queue at one point in time.
type QueueSnapshot struct {
	Tracks      []Entry
	ActiveIndex int // -1 when nothing is active
}
