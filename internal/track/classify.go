package track

import (
	"errors"
	"net/url"
	"strings"
)

// ErrIdentifierExtraction is returned when a StreamA locator carries no video id.
var ErrIdentifierExtraction = errors.New("video id not found in locator")

// Classify returns the source kind for a locator. It is total: empty,
// malformed or unknown locators are StreamB.
func Classify(sourceURL string) SourceKind {
	s := strings.TrimSpace(sourceURL)
	switch {
	case s == "":
		return StreamB
	case isVideoLocator(s):
		return StreamA
	default:
		return StreamB
	}
}

// ExtractVideoID pulls the video id out of a StreamA locator. The locator is
// either a direct video URL or a stream URL whose "url" query parameter holds
// the URL-encoded video URL.
func ExtractVideoID(sourceURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil {
		return "", errors.Join(ErrIdentifierExtraction, err)
	}

	if !isVideoHost(u.Hostname()) {
		nested := u.Query().Get("url")
		if nested == "" {
			return "", ErrIdentifierExtraction
		}
		u, err = url.Parse(nested)
		if err != nil {
			return "", errors.Join(ErrIdentifierExtraction, err)
		}
		if !isVideoHost(u.Hostname()) {
			return "", ErrIdentifierExtraction
		}
	}

	id := videoIDFromURL(u)
	if id == "" {
		return "", ErrIdentifierExtraction
	}
	return id, nil
}

// IsDirectVideoURL reports whether s itself points at a video host, as opposed
// to a stream URL wrapping one.
func IsDirectVideoURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return isVideoHost(u.Hostname())
}

func isVideoLocator(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if isVideoHost(u.Hostname()) {
		return true
	}
	nested := u.Query().Get("url")
	if nested == "" {
		return false
	}
	inner, err := url.Parse(nested)
	if err != nil {
		return false
	}
	return isVideoHost(inner.Hostname())
}

func isVideoHost(host string) bool {
	host = strings.ToLower(host)
	switch {
	case host == "youtu.be":
		return true
	case host == "youtube.com", strings.HasSuffix(host, ".youtube.com"):
		return true
	default:
		return false
	}
}

func videoIDFromURL(u *url.URL) string {
	if strings.EqualFold(u.Hostname(), "youtu.be") {
		return strings.Trim(u.Path, "/")
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	// /shorts/<id> and /embed/<id>
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 2 && (parts[0] == "shorts" || parts[0] == "embed") {
		return parts[1]
	}
	return ""
}
