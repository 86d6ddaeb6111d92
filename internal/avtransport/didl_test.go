package avtransport_test

import (
	"testing"

	"github.com/minicast/minicast/internal/avtransport"
	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	t.Run("escapes xml special characters", func(st *testing.T) {
		assert.Equal(
			st,
			"&amp;&lt;&gt;&quot;&apos;",
			avtransport.Escape(`&<>"'`),
		)
	})

	t.Run("escaping twice escapes the ampersands again", func(st *testing.T) {
		once := avtransport.Escape("a&b")
		twice := avtransport.Escape(once)

		assert.Equal(st, "a&amp;b", once)
		assert.Equal(st, "a&amp;amp;b", twice)
	})
}

func TestMetadata(t *testing.T) {
	t.Run("builds a single item document", func(st *testing.T) {
		meta := avtransport.Metadata(
			"http://example.com/video.mp4",
			"My Movie",
			"video/mp4",
		)

		assert.Contains(st, meta, `<item id="0" parentID="-1" restricted="1">`)
		assert.Contains(st, meta, "<dc:title>My Movie</dc:title>")
		assert.Contains(st, meta, "object.item.videoItem")
		assert.Contains(st, meta, `protocolInfo="http-get:*:video/mp4:*"`)
		assert.Contains(st, meta, "http://example.com/video.mp4")
	})

	t.Run("fills in defaults for title and mime", func(st *testing.T) {
		meta := avtransport.Metadata("http://example.com/stream", "", "")

		assert.Contains(st, meta, "<dc:title>minicast</dc:title>")
		assert.Contains(st, meta, "http-get:*:video/mp4:*")
	})

	t.Run("escapes the media url inside the document", func(st *testing.T) {
		meta := avtransport.Metadata("http://example.com/v?a=1&b=2", "", "")

		assert.Contains(st, meta, "http://example.com/v?a=1&amp;b=2")
		assert.NotContains(st, meta, "a=1&b=2")
	})
}
