package related

import (
	"bytes"
	"cmp"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/llehouerou/upnext/internal/track"
)

// streamAResponse is the StreamA related-songs body.
type streamAResponse struct {
	RelatedSongs *[]streamASong `json:"relatedSongs"`
}

type streamASong struct {
	URL       string         `json:"url"`
	Title     string         `json:"title"`
	Author    string         `json:"author"`
	Thumbnail artwork        `json:"thumbnail"`
	Duration  track.Duration `json:"duration"`
}

// streamBSong is one item of the StreamB related-songs array.
type streamBSong struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Author      string         `json:"author"`
	Thumbnail   artwork        `json:"thumbnail"`
	Duration    track.Duration `json:"duration"`
	DownloadURL variants       `json:"downloadUrl"`
}

// artwork accepts a URL string or an array of {url} objects (largest last).
type artwork string

// UnmarshalJSON implements json.Unmarshaler.
func (a *artwork) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = ""
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = artwork(s)
	case '[':
		var items []struct {
			URL  string `json:"url"`
			Link string `json:"link"`
		}
		if err := json.Unmarshal(data, &items); err != nil {
			return nil //nolint:nilerr // artwork is optional
		}
		for i := len(items) - 1; i >= 0; i-- {
			if u := cmp.Or(items[i].URL, items[i].Link); u != "" {
				*a = artwork(u)
				break
			}
		}
	}
	return nil
}

// variants decodes a multi-bitrate map ({"320kbps": url}) or an array of
// {quality, url} objects into quality variants sorted by ascending bitrate.
type variants []track.QualityVariant

// UnmarshalJSON implements json.Unmarshaler.
func (v *variants) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = nil
	if len(data) == 0 {
		return nil
	}

	var out []track.QualityVariant
	switch data[0] {
	case '{':
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return nil //nolint:nilerr // unusable map means no variants
		}
		for label, u := range m {
			if u != "" {
				out = append(out, track.QualityVariant{Label: label, URL: u})
			}
		}
	case '[':
		var items []struct {
			Quality string `json:"quality"`
			URL     string `json:"url"`
			Link    string `json:"link"`
		}
		if err := json.Unmarshal(data, &items); err != nil {
			return nil //nolint:nilerr // unusable list means no variants
		}
		for _, it := range items {
			if u := cmp.Or(it.URL, it.Link); u != "" {
				out = append(out, track.QualityVariant{Label: it.Quality, URL: u})
			}
		}
	default:
		return nil
	}

	sortVariants(out)
	*v = out
	return nil
}

// sortVariants orders variants by ascending bitrate. Labels without a number
// sort first; equal bitrates sort by label.
func sortVariants(vs []track.QualityVariant) {
	slices.SortStableFunc(vs, func(a, b track.QualityVariant) int {
		if c := cmp.Compare(bitrate(a.Label), bitrate(b.Label)); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
}

// bitrate parses the leading number of a label such as "320kbps", or -1.
func bitrate(label string) int {
	label = strings.TrimSpace(label)
	end := 0
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	if end == 0 {
		return -1
	}
	n, err := strconv.Atoi(label[:end])
	if err != nil {
		return -1
	}
	return n
}
