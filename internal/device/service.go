package device

import (
	"net/url"
	"sync"
	"time"

	"github.com/minicast/minicast/internal/event"
	"github.com/minicast/minicast/internal/exception"
	"github.com/minicast/minicast/internal/logger"
)

// internal var for tracking event listeners
var channelID = 0

// generates sequential ids for registered event listeners
func nextChannelID() int {
	channelID++
	return channelID
}

// represents a registered event listener
type eventChannel struct {
	id   int
	send chan *event.Event
}

// helper for filtering registered event listeners
func filterChannels(channels []*eventChannel, fn func(c *eventChannel) bool) []*eventChannel {
	modifiedChannels := []*eventChannel{}
	for _, evtChan := range channels {
		if fn(evtChan) {
			modifiedChannels = append(modifiedChannels, evtChan)
		}
	}

	return modifiedChannels
}

// DeviceService represents our device.Service implementation
type DeviceService struct {
	log      logger.Logger
	repo     Repo
	evtChans []*eventChannel
	mux      sync.Mutex
}

// NewService returns a new instance of DeviceService
func NewService(repo Repo) *DeviceService {
	log := logger.New()

	return &DeviceService{
		log:      log,
		repo:     repo,
		evtChans: []*eventChannel{},
		mux:      sync.Mutex{},
	}
}

// GetAll returns all cached renderers
func (s *DeviceService) GetAll() ([]*Device, error) {
	return s.repo.GetAll()
}

// Get returns a cached renderer by USN
func (s *DeviceService) Get(usn string) (*Device, error) {
	return s.repo.Get(usn)
}

// FindByIP returns the cached renderer whose description document is hosted
// on the given IP
func (s *DeviceService) FindByIP(ip string) (*Device, error) {
	all, err := s.repo.GetAll()

	if err != nil {
		return nil, err
	}

	for _, dev := range all {
		loc, err := url.Parse(dev.Location)

		if err != nil {
			continue
		}

		if loc.Hostname() == ip {
			return dev, nil
		}
	}

	return nil, exception.ErrRecordNotFound
}

// AddOrUpdate upserts a renderer into the cache and notifies listeners.
// A refreshed response for a known USN replaces identity fields but never
// clears an already resolved friendly name or control binding.
func (s *DeviceService) AddOrUpdate(dev *Device) error {
	existing, err := s.repo.Get(dev.USN)

	if err == nil {
		if dev.FriendlyName == "" {
			dev.FriendlyName = existing.FriendlyName
		}

		if !dev.Playable() && existing.Playable() {
			dev.ControlURL = existing.ControlURL
			dev.ServiceURN = existing.ServiceURN
		}

		if len(dev.LastReport) == 0 {
			dev.LastReport = existing.LastReport
		}
	} else if err != exception.ErrRecordNotFound {
		return err
	}

	dev.LastSeen = time.Now()

	updated, err := s.repo.Upsert(dev)

	if err != nil {
		return err
	}

	s.sendDeviceUpdateEvent(updated)

	return nil
}

// StreamEvents registers a listener channel for device update events and
// returns the subscription id
func (s *DeviceService) StreamEvents(send chan *event.Event) int {
	s.mux.Lock()
	defer s.mux.Unlock()

	evtChan := &eventChannel{
		id:   nextChannelID(),
		send: send,
	}

	s.evtChans = append(s.evtChans, evtChan)

	return evtChan.id
}

// StopStream removes a registered listener channel
func (s *DeviceService) StopStream(id int) {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.evtChans = filterChannels(s.evtChans, func(c *eventChannel) bool {
		return c.id != id
	})
}

func (s *DeviceService) sendDeviceUpdateEvent(dev *Device) {
	s.mux.Lock()
	defer s.mux.Unlock()

	for _, evtChan := range s.evtChans {
		evtChan.send <- &event.Event{
			Type:    event.DeviceUpdateEvent,
			Payload: dev,
		}
	}
}
