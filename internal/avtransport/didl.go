package avtransport

import "strings"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape XML-escapes user supplied strings before embedding. Applied once
// when building DIDL-Lite and again when the DIDL-Lite document itself is
// embedded in the SOAP metadata element - skipping the second pass is a
// classic interop bug.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Metadata builds a minimal DIDL-Lite document for one video item. Some
// renderers refuse SetAVTransportURI without it.
func Metadata(mediaURL, title, mime string) string {
	if title == "" {
		title = "minicast"
	}

	if mime == "" {
		mime = "video/mp4"
	}

	return `<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" ` +
		`xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/">` +
		`<item id="0" parentID="-1" restricted="1">` +
		`<dc:title>` + Escape(title) + `</dc:title>` +
		`<upnp:class>object.item.videoItem</upnp:class>` +
		`<res protocolInfo="http-get:*:` + Escape(mime) + `:*">` + Escape(mediaURL) + `</res>` +
		`</item></DIDL-Lite>`
}
