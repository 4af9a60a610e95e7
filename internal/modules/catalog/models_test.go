package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVideoID(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
		ok       bool
	}{
		{url: "https://www.youtube.com/watch?v=3tK7wjyNZJk", expected: "3tK7wjyNZJk", ok: true},
		{url: "https://youtube.com/watch?v=DBTmNm8D-84&t=42s", expected: "DBTmNm8D-84", ok: true},
		{url: "https://m.youtube.com/watch?feature=share&v=9Cny-On7dQk", expected: "9Cny-On7dQk", ok: true},
		{url: "https://www.youtube.com/embed/3tK7wjyNZJk", expected: "3tK7wjyNZJk", ok: true},
		{url: "https://www.youtube-nocookie.com/embed/abc_123/extra", expected: "abc_123", ok: true},
		{url: "https://youtu.be/DBTmNm8D-84", expected: "DBTmNm8D-84", ok: true},
		{url: "https://youtu.be/DBTmNm8D-84?si=xyz", expected: "DBTmNm8D-84", ok: true},
		{url: "  https://youtu.be/abc  ", expected: "abc", ok: true},
		{url: "https://www.youtube.com/watch", ok: false},
		{url: "https://www.youtube.com/channel/UC123", ok: false},
		{url: "https://youtu.be/", ok: false},
		{url: "https://vimeo.com/12345", ok: false},
		{url: "https://example.com/watch?v=abc", ok: false},
		{url: "https://www.youtube.com/watch?v=bad id", ok: false},
		{url: "about:blank", ok: false},
		{url: "", ok: false},
		{url: "not a url", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			id, ok := ExtractVideoID(tc.url)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestEmbedURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/embed/3tK7wjyNZJk", EmbedURL("https://www.youtube.com/watch?v=3tK7wjyNZJk"))
	assert.Equal(t, "https://www.youtube.com/embed/DBTmNm8D-84", EmbedURL("https://youtu.be/DBTmNm8D-84"))
	assert.Equal(t, "https://vimeo.com/12345", EmbedURL("https://vimeo.com/12345"))
	assert.Equal(t, "about:blank", EmbedURL("about:blank"))
}

func TestNewVideo_Defaults(t *testing.T) {
	v := newVideo("banking", Record{})
	assert.Equal(t, DefaultTitle, v.Title)
	assert.Equal(t, DefaultURL, v.URL)
	assert.Equal(t, DefaultURL, v.EmbedURL)
	assert.Equal(t, DefaultTitle, v.ID)
	assert.Empty(t, v.VideoID)
	assert.Empty(t, v.Thumbnail)

	v = newVideo("insurance", Record{ID: "doc1", Title: "Insurance Basics", URL: "https://www.youtube.com/watch?v=3tK7wjyNZJk"})
	assert.Equal(t, "doc1", v.ID)
	assert.Equal(t, "insurance", v.Category)
	assert.Equal(t, "3tK7wjyNZJk", v.VideoID)
	assert.Equal(t, "https://www.youtube.com/embed/3tK7wjyNZJk", v.EmbedURL)
	assert.Equal(t, "https://img.youtube.com/vi/3tK7wjyNZJk/0.jpg", v.Thumbnail)
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "banking", NormalizeCategory("Banking"))
	assert.Equal(t, "mutual-funds", NormalizeCategory("  Mutual   Funds "))
	assert.Equal(t, "", NormalizeCategory("   "))
}
