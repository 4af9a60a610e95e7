// Package catalog serves category-scoped lists of learning videos from a document store.
package catalog

import (
	"context"
	"net/url"
	"strings"
)

const (
	// DefaultTitle is shown when a stored video has no title
	DefaultTitle = "Untitled Video"
	// DefaultURL is used when a stored video has no URL
	DefaultURL = "about:blank"

	embedBase     = "https://www.youtube.com/embed/"
	thumbnailBase = "https://img.youtube.com/vi/"
)

// Record is a raw document from the store. Fields may be empty.
type Record struct {
	ID    string
	Title string
	URL   string
}

// Video is a catalog entry with read defaults applied
type Video struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	VideoID   string `json:"video_id,omitempty"`
	EmbedURL  string `json:"embed_url"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Store is the document catalog, partitioned by category and keyed by title
type Store interface {
	List(ctx context.Context, category string) ([]Record, error)
	Put(ctx context.Context, category, title, url string) error
	Categories(ctx context.Context) ([]string, error)
}

func newVideo(category string, rec Record) Video {
	v := Video{
		ID:       rec.ID,
		Category: category,
		Title:    rec.Title,
		URL:      rec.URL,
	}
	if strings.TrimSpace(v.Title) == "" {
		v.Title = DefaultTitle
	}
	if strings.TrimSpace(v.URL) == "" {
		v.URL = DefaultURL
	}
	if v.ID == "" {
		v.ID = v.Title
	}

	v.EmbedURL = EmbedURL(v.URL)
	if id, ok := ExtractVideoID(v.URL); ok {
		v.VideoID = id
		v.Thumbnail = thumbnailBase + id + "/0.jpg"
	}
	return v
}

// ExtractVideoID returns the YouTube video ID from watch?v=, /embed/ and youtu.be/ URLs
func ExtractVideoID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch {
	case host == "youtu.be":
		id = firstSegment(u.Path)
	case host == "youtube.com" || host == "youtube-nocookie.com":
		if strings.HasPrefix(u.Path, "/embed/") {
			id = firstSegment(strings.TrimPrefix(u.Path, "/embed/"))
		} else if u.Path == "/watch" {
			id = u.Query().Get("v")
		}
	}

	if !validVideoID(id) {
		return "", false
	}
	return id, true
}

// EmbedURL returns the embeddable player URL, or raw unchanged if no video ID is found
func EmbedURL(raw string) string {
	id, ok := ExtractVideoID(raw)
	if !ok {
		return raw
	}
	return embedBase + id
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

func validVideoID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
