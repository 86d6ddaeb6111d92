package discovery

import (
	"context"

	"github.com/minicast/minicast/internal/device"
)

//go:generate mockgen -destination=../mock/discovery/mock_discovery.go -package=mock_discovery . Source,NameResolver,Service

// Source produces zero or more candidate renderers within the time budget
// of its context. Implementations own their sockets and release them on
// every exit path. Multicast scanning, unicast probing of a known IP, and
// brute-force description probing are all Sources, selected by caller
// policy as escalating fallbacks.
type Source interface {
	Discover(ctx context.Context, results chan<- *device.Device) error
}

// NameResolver fills in a renderer's human readable name, best effort
type NameResolver interface {
	FriendlyName(location string) string
}

// Service interface for running a discovery session
type Service interface {
	Scan(ctx context.Context) ([]*device.Device, error)
}
