package discovery

import (
	"context"
	"sort"

	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/logger"
)

// ScannerService implements our discovery service over one or more Sources.
// It owns the session's device map exclusively: sources feed candidates
// through a channel into a single fold loop, so no locking is needed.
type ScannerService struct {
	sources       []Source
	names         NameResolver
	deviceService device.Service
	log           logger.Logger
}

// NewScannerService returns a new instance of ScannerService. Sources run
// in the given order as escalating fallbacks. The name resolver may be nil
// to skip friendly name resolution.
func NewScannerService(
	deviceService device.Service,
	names NameResolver,
	sources ...Source,
) *ScannerService {
	return &ScannerService{
		sources:       sources,
		names:         names,
		deviceService: deviceService,
		log:           logger.New(),
	}
}

// Scan runs one discovery session and blocks until every source has
// finished or the context is done. Responders are deduplicated by USN; a
// later response for a seen USN replaces the entry (renderers refresh
// their LOCATION after a restart) but never re-triggers name resolution.
// Each device is upserted into the device service as it is folded, which
// streams update events to any registered listeners.
func (s *ScannerService) Scan(ctx context.Context) ([]*device.Device, error) {
	found := make(chan *device.Device, 64)

	go func() {
		defer close(found)

		for _, source := range s.sources {
			if ctx.Err() != nil {
				return
			}

			if err := source.Discover(ctx, found); err != nil {
				// one source failing only narrows coverage
				s.log.Warn().Err(err).Msg("discovery source failed")
			}
		}
	}()

	session := map[string]*device.Device{}

	for dev := range found {
		previous, seen := session[dev.USN]

		if seen {
			// keep anything already resolved for this USN
			if dev.FriendlyName == "" {
				dev.FriendlyName = previous.FriendlyName
			}

			if !dev.Playable() {
				dev.ControlURL = previous.ControlURL
				dev.ServiceURN = previous.ServiceURN
			}
		} else if s.names != nil && dev.Location != "" {
			// best effort: a nameless device is still reported
			dev.FriendlyName = s.names.FriendlyName(dev.Location)
		}

		session[dev.USN] = dev

		if err := s.deviceService.AddOrUpdate(dev); err != nil {
			s.log.Error().Err(err).Str("usn", dev.USN).Msg("failed to cache renderer")
		}
	}

	devices := make([]*device.Device, 0, len(session))

	for _, dev := range session {
		devices = append(devices, dev)
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].USN < devices[j].USN
	})

	s.log.Info().Int("count", len(devices)).Msg("discovery session complete")

	return devices, nil
}
