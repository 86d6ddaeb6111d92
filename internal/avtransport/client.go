package avtransport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/exception"
	"github.com/minicast/minicast/internal/logger"
)

// Supported AVTransport actions
const (
	ActionStop       = "Stop"
	ActionSetURI     = "SetAVTransportURI"
	ActionSetNextURI = "SetNextAVTransportURI"
	ActionPlay       = "Play"
)

// Client executes single AVTransport SOAP actions against one renderer and
// classifies the outcome. Nothing here returns an error to the caller for
// control-plane failures: every outcome, including transport failures,
// becomes a StepResult so the orchestrator can keep trying strategies.
type Client struct {
	controlURL string
	serviceURN string
	http       *http.Client
	log        logger.Logger
}

// NewClient returns a control client bound to a resolved device
func NewClient(dev *device.Device, timeout time.Duration) (*Client, error) {
	if !dev.Playable() {
		return nil, exception.ErrNotPlayable
	}

	return &Client{
		controlURL: dev.ControlURL,
		serviceURN: dev.ServiceURN,
		http:       &http.Client{Timeout: timeout},
		log:        logger.New(),
	}, nil
}

// ServiceURN returns the exact AVTransport service type this client echoes
// in every action
func (c *Client) ServiceURN() string {
	return c.serviceURN
}

// Stop issues a Stop action
func (c *Client) Stop(ctx context.Context, instanceID int) StepResult {
	inner := fmt.Sprintf("<InstanceID>%d</InstanceID>", instanceID)
	return c.do(ctx, ActionStop, inner)
}

// Play issues a Play action at speed 1
func (c *Client) Play(ctx context.Context, instanceID int) StepResult {
	inner := fmt.Sprintf("<InstanceID>%d</InstanceID><Speed>1</Speed>", instanceID)
	return c.do(ctx, ActionPlay, inner)
}

// SetURI issues SetAVTransportURI. The metadata argument is a raw
// DIDL-Lite document (or empty); it is escaped here a second time as
// required when embedding DIDL-Lite into the SOAP metadata element.
func (c *Client) SetURI(ctx context.Context, instanceID int, uri, metadata string) StepResult {
	inner := fmt.Sprintf(
		"<InstanceID>%d</InstanceID><CurrentURI>%s</CurrentURI><CurrentURIMetaData>%s</CurrentURIMetaData>",
		instanceID,
		Escape(uri),
		Escape(metadata),
	)
	return c.do(ctx, ActionSetURI, inner)
}

// SetNextURI issues SetNextAVTransportURI for renderers that only honor
// the next slot
func (c *Client) SetNextURI(ctx context.Context, instanceID int, uri, metadata string) StepResult {
	inner := fmt.Sprintf(
		"<InstanceID>%d</InstanceID><NextURI>%s</NextURI><NextURIMetaData>%s</NextURIMetaData>",
		instanceID,
		Escape(uri),
		Escape(metadata),
	)
	return c.do(ctx, ActionSetNextURI, inner)
}

// do posts one SOAP action and classifies the response
func (c *Client) do(ctx context.Context, action, inner string) StepResult {
	result := StepResult{Action: action}

	body := envelope(c.serviceURN, action, inner)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.controlURL,
		strings.NewReader(body),
	)

	if err != nil {
		result.HTTPStatus = TransportFailure
		result.Fault = err.Error()
		return result
	}

	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	// quotes are part of the header value per spec
	req.Header.Set("SOAPAction", fmt.Sprintf("%q", c.serviceURN+"#"+action))

	resp, err := c.http.Do(req)

	if err != nil {
		c.log.Debug().Err(err).Str("action", action).Msg("soap transport failure")
		result.HTTPStatus = TransportFailure
		result.Fault = err.Error()
		return result
	}

	defer resp.Body.Close()

	result.HTTPStatus = resp.StatusCode

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return result
	}

	raw, _ := io.ReadAll(resp.Body)

	result.Fault = parseFault(string(raw), resp.StatusCode)

	return result
}

// envelope wraps an action body in a SOAP 1.1 envelope. The action element
// is namespaced with the renderer's exact service URN.
func envelope(serviceURN, action, inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" ` +
		`s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">` +
		`<s:Body>` +
		`<u:` + action + ` xmlns:u="` + serviceURN + `">` +
		inner +
		`</u:` + action + `>` +
		`</s:Body></s:Envelope>`
}

// parseFault digs a fault string out of an error response body: faultcode
// first, errorCode second, synthesized from the HTTP status as last resort
func parseFault(body string, status int) string {
	if fault := between(body, "<faultcode>", "</faultcode>"); fault != "" {
		return fault
	}

	if code := between(body, "<errorCode>", "</errorCode>"); code != "" {
		return "errorCode:" + code
	}

	return fmt.Sprintf("HTTP_%d", status)
}

func between(doc, start, end string) string {
	i := strings.Index(doc, start)

	if i < 0 {
		return ""
	}

	j := strings.Index(doc[i+len(start):], end)

	if j < 0 {
		return ""
	}

	return strings.TrimSpace(doc[i+len(start) : i+len(start)+j])
}
