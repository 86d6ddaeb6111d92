package device

import (
	"time"

	"gorm.io/datatypes"
)

// Device represents a discovered DLNA media renderer. Identity fields come
// from a single discovery response and never change afterwards; the control
// binding is filled in at most once by the description resolver.
type Device struct {
	// USN is the unique service name used as our dedup key
	USN string `gorm:"primaryKey"`
	// SearchTarget holds the ST (or NT) the device answered with
	SearchTarget string
	// Server is the responder's server banner
	Server string
	// Location is the URL of the device description document
	Location string
	// FriendlyName is resolved lazily and may stay empty
	FriendlyName string
	// ControlURL is the absolute AVTransport control endpoint
	ControlURL string
	// ServiceURN is the exact AVTransport service type string. Renderers
	// validate it, so it is preserved verbatim and echoed back in every
	// SOAP action.
	ServiceURN string
	// LastSeen tracks when this renderer last answered a scan
	LastSeen time.Time
	// LastReport holds the step trail of the most recent push attempt
	LastReport datatypes.JSON
}

// Playable reports whether the control binding has been resolved
func (d *Device) Playable() bool {
	return d.ControlURL != "" && d.ServiceURN != ""
}

// Resolved is an alias kept for symmetry with the resolver's idempotency
// check: a resolved device is never re-resolved.
func (d *Device) Resolved() bool {
	return d.Playable()
}

// DisplayName returns the best human readable identity we have
func (d *Device) DisplayName() string {
	if d.FriendlyName != "" {
		return d.FriendlyName
	}

	if d.Server != "" {
		return d.Server
	}

	if d.USN != "" {
		return d.USN
	}

	return "DLNA renderer"
}
