package avtransport_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minicast/minicast/internal/avtransport"
	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/exception"
	"github.com/stretchr/testify/assert"
)

const serviceURN = "urn:schemas-upnp-org:service:AVTransport:1"

func newTestClient(t *testing.T, controlURL string) *avtransport.Client {
	dev := &device.Device{
		USN:        "uuid:abc-123",
		ControlURL: controlURL,
		ServiceURN: serviceURN,
	}

	client, err := avtransport.NewClient(dev, time.Second)

	assert.NoError(t, err)

	return client
}

func TestNewClient(t *testing.T) {
	t.Run("rejects devices without a control binding", func(st *testing.T) {
		dev := &device.Device{USN: "uuid:abc-123"}

		_, err := avtransport.NewClient(dev, time.Second)

		assert.ErrorIs(st, err, exception.ErrNotPlayable)
	})
}

func TestClientRequests(t *testing.T) {
	var lastSoapAction string
	var lastContentType string
	var lastBody string

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			lastSoapAction = r.Header.Get("SOAPAction")
			lastContentType = r.Header.Get("Content-Type")

			raw, _ := io.ReadAll(r.Body)
			lastBody = string(raw)

			w.WriteHeader(http.StatusOK)
		},
	))
	defer server.Close()

	client := newTestClient(t, server.URL+"/control")
	ctx := context.Background()

	t.Run("sends a quoted soap action header", func(st *testing.T) {
		result := client.Play(ctx, 0)

		assert.True(st, result.OK())
		assert.Equal(st, `"`+serviceURN+`#Play"`, lastSoapAction)
		assert.Equal(st, `text/xml; charset="utf-8"`, lastContentType)
	})

	t.Run("namespaces the action with the service urn", func(st *testing.T) {
		result := client.Stop(ctx, 0)

		assert.True(st, result.OK())
		assert.Equal(st, "Stop", result.Action)
		assert.Contains(st, lastBody, `<u:Stop xmlns:u="`+serviceURN+`">`)
		assert.Contains(st, lastBody, "<InstanceID>0</InstanceID>")
	})

	t.Run("play requests speed 1", func(st *testing.T) {
		client.Play(ctx, 1)

		assert.Contains(st, lastBody, "<InstanceID>1</InstanceID>")
		assert.Contains(st, lastBody, "<Speed>1</Speed>")
	})

	t.Run("escapes uri and metadata into the envelope", func(st *testing.T) {
		meta := avtransport.Metadata("http://example.com/v?a=1&b=2", "", "")

		client.SetURI(ctx, 0, "http://example.com/v?a=1&b=2", meta)

		// uri escaped once, metadata document escaped a second time
		assert.Contains(st, lastBody, "<CurrentURI>http://example.com/v?a=1&amp;b=2</CurrentURI>")
		assert.Contains(st, lastBody, "a=1&amp;amp;b=2")
		assert.Contains(st, lastBody, "&lt;DIDL-Lite")
	})

	t.Run("set next uri uses the next slot elements", func(st *testing.T) {
		client.SetNextURI(ctx, 0, "http://example.com/v.mp4", "")

		assert.Contains(st, lastBody, "<NextURI>http://example.com/v.mp4</NextURI>")
		assert.Contains(st, lastBody, "<NextURIMetaData></NextURIMetaData>")
	})
}

func TestClientFaults(t *testing.T) {
	t.Run("prefers the soap faultcode", func(st *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `<s:Envelope><s:Body><s:Fault>`+
					`<faultcode>s:Client</faultcode>`+
					`<detail><errorCode>718</errorCode></detail>`+
					`</s:Fault></s:Body></s:Envelope>`)
			},
		))
		defer server.Close()

		client := newTestClient(st, server.URL)

		result := client.Play(context.Background(), 0)

		assert.False(st, result.OK())
		assert.Equal(st, http.StatusInternalServerError, result.HTTPStatus)
		assert.Equal(st, "s:Client", result.Fault)
	})

	t.Run("falls back to the upnp error code", func(st *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `<detail><errorCode>716</errorCode></detail>`)
			},
		))
		defer server.Close()

		client := newTestClient(st, server.URL)

		result := client.Play(context.Background(), 0)

		assert.Equal(st, "errorCode:716", result.Fault)
	})

	t.Run("synthesizes a fault from the status code", func(st *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotImplemented)
			},
		))
		defer server.Close()

		client := newTestClient(st, server.URL)

		result := client.Play(context.Background(), 0)

		assert.Equal(st, "HTTP_501", result.Fault)
	})

	t.Run("transport failures never escape as errors", func(st *testing.T) {
		client := newTestClient(st, "http://127.0.0.1:1/control")

		result := client.Play(context.Background(), 0)

		assert.False(st, result.OK())
		assert.Equal(st, avtransport.TransportFailure, result.HTTPStatus)
		assert.NotEmpty(st, result.Fault)
	})
}
