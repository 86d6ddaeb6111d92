package upnp

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/exception"
	"github.com/minicast/minicast/internal/logger"
)

// some renderers filter on user agent, so we identify as a browser
const userAgent = "Mozilla/5.0 (compatible; minicast)"

// version agnostic needle: a renderer may expose AVTransport:1, :2 or :3
// and the exact string must be captured verbatim
const avTransportPrefix = "urn:schemas-upnp-org:service:AVTransport:"

// Resolver turns a device description location into an AVTransport control
// binding. Resolution is idempotent per device.
type Resolver struct {
	client *http.Client
	log    logger.Logger
}

// NewResolver returns a new description resolver with the given per-fetch
// timeout
func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: timeout},
		log:    logger.New(),
	}
}

// Resolve fetches a device's description document and fills in its control
// binding. Calling it again on an already resolved device is a no-op. A
// description without an AVTransport service yields
// exception.ErrNoAVTransport and leaves the device unresolved.
func (r *Resolver) Resolve(dev *device.Device) error {
	if dev.Resolved() {
		return nil
	}

	desc, err := r.fetch(dev.Location)

	if err != nil {
		return err
	}

	serviceType, controlURL, found := findAVTransport(desc)

	if !found {
		return exception.ErrNoAVTransport
	}

	absolute, err := resolveControlURL(dev.Location, controlURL)

	if err != nil {
		return err
	}

	dev.ControlURL = absolute
	dev.ServiceURN = serviceType

	if dev.FriendlyName == "" {
		dev.FriendlyName = extract(desc, "friendlyName")
	}

	r.log.Debug().
		Str("usn", dev.USN).
		Str("controlUrl", dev.ControlURL).
		Str("serviceUrn", dev.ServiceURN).
		Msg("resolved AVTransport endpoint")

	return nil
}

// FriendlyName fetches a description document and scans it for a
// friendlyName tag. Best effort: any failure returns the empty string and
// the device is simply reported without a name.
func (r *Resolver) FriendlyName(location string) string {
	desc, err := r.fetch(location)

	if err != nil {
		return ""
	}

	return extract(desc, "friendlyName")
}

func (r *Resolver) fetch(location string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, location, nil)

	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)

	if err != nil {
		return "", err
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)

	if err != nil {
		return "", err
	}

	return string(body), nil
}

// findAVTransport locates the AVTransport service block in a description
// document and returns its serviceType (verbatim, version included) and
// controlURL. Descriptions are small, so tolerant substring extraction
// beats a full XML parse here.
func findAVTransport(desc string) (string, string, bool) {
	pos := strings.Index(desc, avTransportPrefix)

	if pos < 0 {
		return "", "", false
	}

	blockEnd := strings.Index(desc[pos:], "</service>")

	if blockEnd < 0 {
		blockEnd = len(desc) - pos
	}

	serviceType := enclosingTag(desc, pos, "serviceType")

	if serviceType == "" {
		return "", "", false
	}

	controlURL := extract(desc[pos:pos+blockEnd], "controlURL")

	if controlURL == "" {
		return "", "", false
	}

	return serviceType, controlURL, true
}

// enclosingTag returns the text content of the named tag surrounding pos
func enclosingTag(doc string, pos int, tag string) string {
	open := strings.LastIndex(doc[:pos], "<"+tag)

	if open < 0 {
		return ""
	}

	start := strings.Index(doc[open:], ">")

	if start < 0 {
		return ""
	}

	start += open + 1

	end := strings.Index(doc[start:], "</"+tag+">")

	if end < 0 {
		return ""
	}

	return strings.TrimSpace(doc[start : start+end])
}

// extract returns the text content of the first occurrence of the named
// tag, tolerating attributes and missing whitespace
func extract(doc, tag string) string {
	open := strings.Index(doc, "<"+tag)

	if open < 0 {
		return ""
	}

	start := strings.Index(doc[open:], ">")

	if start < 0 {
		return ""
	}

	start += open + 1

	end := strings.Index(doc[start:], "</"+tag+">")

	if end < 0 {
		return ""
	}

	return strings.TrimSpace(doc[start : start+end])
}

// resolveControlURL resolves a controlURL against the description
// document's own base (scheme + host + port), never against our own origin
func resolveControlURL(location, controlURL string) (string, error) {
	control, err := url.Parse(strings.TrimSpace(controlURL))

	if err != nil {
		return "", err
	}

	if control.IsAbs() {
		return control.String(), nil
	}

	loc, err := url.Parse(location)

	if err != nil {
		return "", err
	}

	base := &url.URL{Scheme: loc.Scheme, Host: loc.Host}

	return base.ResolveReference(control).String(), nil
}
