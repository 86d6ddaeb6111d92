package upnp_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/exception"
	"github.com/minicast/minicast/internal/upnp"
	"github.com/stretchr/testify/assert"
)

const descriptionWithAVTransport = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <deviceType>urn:schemas-upnp-org:device:MediaRenderer:1</deviceType>
    <friendlyName>Living Room TV</friendlyName>
    <serviceList>
      <service>
        <serviceType>urn:schemas-upnp-org:service:RenderingControl:1</serviceType>
        <controlURL>/RenderingControl/control</controlURL>
      </service>
      <service>
        <serviceType>urn:schemas-upnp-org:service:AVTransport:%d</serviceType>
        <controlURL>%s</controlURL>
      </service>
    </serviceList>
  </device>
</root>`

const descriptionWithoutAVTransport = `<?xml version="1.0"?>
<root>
  <device>
    <friendlyName>Just A Light</friendlyName>
    <serviceList>
      <service>
        <serviceType>urn:schemas-upnp-org:service:SwitchPower:1</serviceType>
        <controlURL>/switch/control</controlURL>
      </service>
    </serviceList>
  </device>
</root>`

func TestResolver(t *testing.T) {
	resolver := upnp.NewResolver(time.Second)

	t.Run("resolves a control binding", func(st *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, descriptionWithAVTransport, 1, "/AVTransport/control")
			},
		))
		defer server.Close()

		dev := &device.Device{
			USN:      "uuid:abc-123",
			Location: server.URL + "/description.xml",
		}

		err := resolver.Resolve(dev)

		assert.NoError(st, err)
		assert.Equal(st, server.URL+"/AVTransport/control", dev.ControlURL)
		assert.Equal(st, "urn:schemas-upnp-org:service:AVTransport:1", dev.ServiceURN)
		assert.Equal(st, "Living Room TV", dev.FriendlyName)
		assert.True(st, dev.Playable())
	})

	t.Run("keeps the advertised service version verbatim", func(st *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, descriptionWithAVTransport, 2, "/AVTransport/control")
			},
		))
		defer server.Close()

		dev := &device.Device{USN: "uuid:abc-123", Location: server.URL + "/desc.xml"}

		err := resolver.Resolve(dev)

		assert.NoError(st, err)
		assert.Equal(st, "urn:schemas-upnp-org:service:AVTransport:2", dev.ServiceURN)
	})

	t.Run("resolution is a no-op for resolved devices", func(st *testing.T) {
		calls := 0

		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				calls++
				fmt.Fprintf(w, descriptionWithAVTransport, 1, "/AVTransport/control")
			},
		))
		defer server.Close()

		dev := &device.Device{USN: "uuid:abc-123", Location: server.URL + "/desc.xml"}

		assert.NoError(st, resolver.Resolve(dev))
		assert.NoError(st, resolver.Resolve(dev))
		assert.Equal(st, 1, calls)
	})

	t.Run("absolute control urls pass through", func(st *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(
					w,
					descriptionWithAVTransport,
					1,
					"http://192.168.1.50:49152/AVTransport/control",
				)
			},
		))
		defer server.Close()

		dev := &device.Device{USN: "uuid:abc-123", Location: server.URL + "/desc.xml"}

		err := resolver.Resolve(dev)

		assert.NoError(st, err)
		assert.Equal(st, "http://192.168.1.50:49152/AVTransport/control", dev.ControlURL)
	})

	t.Run("devices without AVTransport stay unresolved", func(st *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, descriptionWithoutAVTransport)
			},
		))
		defer server.Close()

		dev := &device.Device{USN: "uuid:light-1", Location: server.URL + "/desc.xml"}

		err := resolver.Resolve(dev)

		assert.ErrorIs(st, err, exception.ErrNoAVTransport)
		assert.False(st, dev.Playable())
	})

	t.Run("unreachable descriptions error out", func(st *testing.T) {
		dev := &device.Device{
			USN:      "uuid:gone",
			Location: "http://127.0.0.1:1/desc.xml",
		}

		assert.Error(st, resolver.Resolve(dev))
	})
}

func TestFriendlyName(t *testing.T) {
	resolver := upnp.NewResolver(time.Second)

	t.Run("reads friendly name", func(st *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, descriptionWithoutAVTransport)
			},
		))
		defer server.Close()

		assert.Equal(st, "Just A Light", resolver.FriendlyName(server.URL+"/desc.xml"))
	})

	t.Run("failures yield an empty name", func(st *testing.T) {
		assert.Equal(st, "", resolver.FriendlyName("http://127.0.0.1:1/desc.xml"))
	})
}
