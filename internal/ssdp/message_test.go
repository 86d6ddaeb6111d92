package ssdp_test

import (
	"testing"

	"github.com/minicast/minicast/internal/exception"
	"github.com/minicast/minicast/internal/ssdp"
	"github.com/stretchr/testify/assert"
)

func TestBuildSearch(t *testing.T) {
	t.Run("builds multicast search", func(st *testing.T) {
		raw := string(ssdp.BuildSearch(ssdp.MulticastHost, "ssdp:all", 2))

		assert.Contains(st, raw, "M-SEARCH * HTTP/1.1\r\n")
		assert.Contains(st, raw, "HOST: 239.255.255.250:1900\r\n")
		assert.Contains(st, raw, "MAN: \"ssdp:discover\"\r\n")
		assert.Contains(st, raw, "MX: 2\r\n")
		assert.Contains(st, raw, "ST: ssdp:all\r\n")
		assert.True(st, len(raw) > 0 && raw[len(raw)-4:] == "\r\n\r\n")
	})

	t.Run("builds unicast search with a host specific HOST header", func(st *testing.T) {
		raw := string(ssdp.BuildSearch("192.168.1.50:1900", "upnp:rootdevice", 1))

		assert.Contains(st, raw, "HOST: 192.168.1.50:1900\r\n")
		assert.Contains(st, raw, "ST: upnp:rootdevice\r\n")
	})
}

func TestParse(t *testing.T) {
	t.Run("parses a search response", func(st *testing.T) {
		raw := "HTTP/1.1 200 OK\r\n" +
			"CACHE-CONTROL: max-age=1800\r\n" +
			"LOCATION: http://192.168.1.50:49152/description.xml\r\n" +
			"SERVER: Linux/3.10 UPnP/1.0 SomeTV/1.0\r\n" +
			"ST: urn:schemas-upnp-org:device:MediaRenderer:1\r\n" +
			"USN: uuid:abc-123::urn:schemas-upnp-org:device:MediaRenderer:1\r\n\r\n"

		msg, err := ssdp.Parse(raw, "192.168.1.50:1900")

		assert.NoError(st, err)
		assert.Equal(st, "uuid:abc-123::urn:schemas-upnp-org:device:MediaRenderer:1", msg.USN)
		assert.Equal(st, "urn:schemas-upnp-org:device:MediaRenderer:1", msg.Target)
		assert.Equal(st, "http://192.168.1.50:49152/description.xml", msg.Location)
		assert.Equal(st, "Linux/3.10 UPnP/1.0 SomeTV/1.0", msg.Server)
		assert.Equal(st, "192.168.1.50:1900", msg.From)
		assert.True(st, msg.Alive())
	})

	t.Run("parses a notify announcement", func(st *testing.T) {
		raw := "NOTIFY * HTTP/1.1\r\n" +
			"HOST: 239.255.255.250:1900\r\n" +
			"NT: urn:schemas-upnp-org:device:MediaRenderer:1\r\n" +
			"NTS: ssdp:alive\r\n" +
			"USN: uuid:abc-123\r\n" +
			"LOCATION: http://192.168.1.50:49152/description.xml\r\n\r\n"

		msg, err := ssdp.Parse(raw, "192.168.1.50:47123")

		assert.NoError(st, err)
		assert.Equal(st, "uuid:abc-123", msg.USN)
		assert.Equal(st, "urn:schemas-upnp-org:device:MediaRenderer:1", msg.Target)
		assert.True(st, msg.Alive())
	})

	t.Run("byebye announcements are not alive", func(st *testing.T) {
		raw := "NOTIFY * HTTP/1.1\r\n" +
			"NT: upnp:rootdevice\r\n" +
			"NTS: ssdp:byebye\r\n" +
			"USN: uuid:abc-123\r\n\r\n"

		msg, err := ssdp.Parse(raw, "192.168.1.50:47123")

		assert.NoError(st, err)
		assert.False(st, msg.Alive())
	})

	t.Run("headers parse case insensitively", func(st *testing.T) {
		raw := "HTTP/1.1 200 OK\r\n" +
			"Location: http://192.168.1.50/desc.xml\r\n" +
			"usn: uuid:abc-123\r\n\r\n"

		msg, err := ssdp.Parse(raw, "")

		assert.NoError(st, err)
		assert.Equal(st, "uuid:abc-123", msg.USN)
		assert.Equal(st, "http://192.168.1.50/desc.xml", msg.Location)
	})

	t.Run("header values keep embedded colons", func(st *testing.T) {
		raw := "HTTP/1.1 200 OK\r\n" +
			"USN: uuid:abc-123::urn:schemas-upnp-org:service:AVTransport:2\r\n\r\n"

		msg, err := ssdp.Parse(raw, "")

		assert.NoError(st, err)
		assert.Equal(st, "uuid:abc-123::urn:schemas-upnp-org:service:AVTransport:2", msg.USN)
	})

	t.Run("rejects non ssdp payloads", func(st *testing.T) {
		for _, raw := range []string{
			"",
			"GET / HTTP/1.1\r\nHost: example.com\r\n\r\n",
			"HTTP/1.1 404 Not Found\r\n\r\n",
			"random bytes",
		} {
			_, err := ssdp.Parse(raw, "")
			assert.ErrorIs(st, err, exception.ErrNotSSDP)
		}
	})
}
