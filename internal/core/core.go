package core

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/minicast/minicast/internal/avtransport"
	"github.com/minicast/minicast/internal/config"
	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/discovery"
	"github.com/minicast/minicast/internal/event"
	"github.com/minicast/minicast/internal/exception"
	"github.com/minicast/minicast/internal/logger"
	"github.com/minicast/minicast/internal/upnp"
)

// EventListener represents a registered caller-side event channel
type EventListener struct {
	id      int
	channel chan *event.Event
}

// Core ties discovery, description resolution and playback control into the
// single caller facing surface: Scan, ScanIP and Play. All network work
// runs off the caller's goroutine; results come back as return values and
// streamed events.
type Core struct {
	ctx            context.Context
	cancel         context.CancelFunc
	conf           config.Config
	deviceService  device.Service
	resolver       *upnp.Resolver
	evtListeners   []*EventListener
	nextListenerId int
	streamId       int
	logger         logger.Logger
	mux            sync.Mutex
}

// New returns a new core module for the given configuration
func New(conf config.Config, deviceService device.Service) *Core {
	log := logger.New()

	ctx, cancel := context.WithCancel(context.Background())

	c := &Core{
		ctx:            ctx,
		cancel:         cancel,
		conf:           conf,
		deviceService:  deviceService,
		resolver:       upnp.NewResolver(descTimeout(conf)),
		evtListeners:   []*EventListener{},
		nextListenerId: 1,
		logger:         log,
	}

	evtChan := make(chan *event.Event, 100)
	c.streamId = deviceService.StreamEvents(evtChan)

	go c.forwardEvents(evtChan)

	return c
}

// Stop cancels all in-flight work and detaches from the device stream
func (c *Core) Stop() error {
	c.deviceService.StopStream(c.streamId)
	c.cancel()
	return c.ctx.Err()
}

// Conf returns the active configuration
func (c *Core) Conf() config.Config {
	return c.conf
}

// Devices returns all cached renderers
func (c *Core) Devices() ([]*device.Device, error) {
	return c.deviceService.GetAll()
}

// Scan runs one multicast discovery session bounded by the configured
// window. Devices stream to registered listeners as they are found; the
// scan-complete event fires exactly once, after socket cleanup, and the
// full session list is returned.
func (c *Core) Scan(ctx context.Context) ([]*device.Device, error) {
	window := time.Duration(c.conf.Scan.WindowSeconds) * time.Second

	scanCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	sources := []discovery.Source{
		discovery.NewMulticastSource(c.conf.Scan),
	}

	// configured targets (IPs or CIDR blocks) get brute-force description
	// probing on top of multicast search
	if len(c.conf.Scan.ProbeTargets) > 0 {
		probe, err := discovery.NewProbeSource(c.conf.Scan.ProbeTargets, descTimeout(c.conf))

		if err != nil {
			return nil, err
		}

		sources = append(sources, probe)
	}

	scanner := discovery.NewScannerService(
		c.deviceService,
		c.resolver,
		sources...,
	)

	devices, err := scanner.Scan(scanCtx)

	c.publish(&event.Event{Type: event.ScanCompleteEvent})

	return devices, err
}

// ScanTargets probes specific IPs or CIDR blocks for renderer
// descriptions, skipping multicast entirely. Useful on networks that
// filter multicast traffic.
func (c *Core) ScanTargets(ctx context.Context, targets []string) ([]*device.Device, error) {
	window := time.Duration(c.conf.Scan.WindowSeconds) * time.Second

	scanCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	probe, err := discovery.NewProbeSource(targets, descTimeout(c.conf))

	if err != nil {
		return nil, err
	}

	scanner := discovery.NewScannerService(c.deviceService, c.resolver, probe)

	devices, err := scanner.Scan(scanCtx)

	c.publish(&event.Event{Type: event.ScanCompleteEvent})

	return devices, err
}

// ScanIP targets one known IP: unicast M-SEARCH first, brute-force
// description probing second. Returns the first renderer found with a
// resolvable AVTransport endpoint.
func (c *Core) ScanIP(ctx context.Context, ip string) (*device.Device, error) {
	readTimeout := time.Duration(c.conf.Scan.ReadTimeoutMS) * time.Millisecond

	unicast := discovery.NewUnicastSource(ip, c.conf.Scan.MX, readTimeout)

	probe, err := discovery.NewProbeSource([]string{ip}, descTimeout(c.conf))

	if err != nil {
		return nil, err
	}

	defer c.publish(&event.Event{Type: event.ScanCompleteEvent})

	for _, source := range []discovery.Source{unicast, probe} {
		if ctx.Err() != nil {
			break
		}

		sourceCtx, cancel := context.WithTimeout(ctx, 5*time.Second)

		scanner := discovery.NewScannerService(c.deviceService, c.resolver, source)

		devices, err := scanner.Scan(sourceCtx)

		cancel()

		if err != nil {
			c.logger.Warn().Err(err).Str("ip", ip).Msg("ip scan source failed")
			continue
		}

		for _, dev := range devices {
			if err := c.resolver.Resolve(dev); err != nil {
				c.logger.Debug().
					Err(err).
					Str("usn", dev.USN).
					Msg("device did not resolve")
				continue
			}

			if err := c.deviceService.AddOrUpdate(dev); err != nil {
				return nil, err
			}

			return dev, nil
		}
	}

	return nil, exception.ErrNoAVTransport
}

// Play drives the renderer identified by target (a USN or an IP) to play
// mediaURL. The control binding is resolved lazily and idempotently first.
// The returned report is non-nil whenever a push was attempted, success or
// not; errors are reserved for unusable targets.
func (c *Core) Play(ctx context.Context, target, mediaURL, mime string) (*avtransport.PushReport, error) {
	dev, err := c.lookupTarget(ctx, target)

	if err != nil {
		return nil, err
	}

	if err := c.resolver.Resolve(dev); err != nil {
		return nil, err
	}

	// persist the resolved binding for the next play
	if err := c.deviceService.AddOrUpdate(dev); err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist control binding")
	}

	client, err := avtransport.NewClient(
		dev,
		time.Duration(c.conf.Play.SoapTimeoutSeconds)*time.Second,
	)

	if err != nil {
		return nil, err
	}

	orchestrator := avtransport.NewOrchestrator(
		client,
		time.Duration(c.conf.Play.ArmDelayMS)*time.Millisecond,
	)

	c.logger.Info().
		Str("device", dev.DisplayName()).
		Str("mediaUrl", mediaURL).
		Msg("pushing media to renderer")

	report := orchestrator.PlayURL(ctx, mediaURL, mime)

	if reportBytes, err := json.Marshal(report); err == nil {
		dev.LastReport = datatypes.JSON(reportBytes)

		if err := c.deviceService.AddOrUpdate(dev); err != nil {
			c.logger.Warn().Err(err).Msg("failed to persist push report")
		}
	}

	return report, nil
}

// RegisterEventListener registers a caller channel for streamed events
func (c *Core) RegisterEventListener(channel chan *event.Event) int {
	c.mux.Lock()
	defer c.mux.Unlock()

	listener := &EventListener{
		id:      c.nextListenerId,
		channel: channel,
	}
	c.evtListeners = append(c.evtListeners, listener)
	c.nextListenerId++

	return listener.id
}

// RemoveEventListener removes a registered caller channel
func (c *Core) RemoveEventListener(id int) {
	c.mux.Lock()
	defer c.mux.Unlock()

	listeners := []*EventListener{}
	for _, listener := range c.evtListeners {
		if listener.id != id {
			listeners = append(listeners, listener)
		}
	}

	c.evtListeners = listeners
}

// lookupTarget maps a USN or IP onto a cached renderer, falling back to a
// live IP scan for unknown IPs
func (c *Core) lookupTarget(ctx context.Context, target string) (*device.Device, error) {
	if dev, err := c.deviceService.Get(target); err == nil {
		return dev, nil
	}

	if dev, err := c.deviceService.FindByIP(target); err == nil {
		return dev, nil
	}

	return c.ScanIP(ctx, target)
}

// forwardEvents fans device service events out to registered listeners
func (c *Core) forwardEvents(evtChan chan *event.Event) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case evt := <-evtChan:
			c.publish(evt)
		}
	}
}

func (c *Core) publish(evt *event.Event) {
	c.mux.Lock()
	defer c.mux.Unlock()

	for _, listener := range c.evtListeners {
		listener.channel <- evt
	}
}

func descTimeout(conf config.Config) time.Duration {
	return time.Duration(conf.Play.DescTimeoutSeconds) * time.Second
}
