package discovery

import (
	"context"
	"time"

	"github.com/minicast/minicast/internal/config"
	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/logger"
	"github.com/minicast/minicast/internal/ssdp"
)

// SearchTargets is the fixed list of SSDP search targets we probe for.
// AVTransport versions are listed individually because renderers only
// answer the version they implement.
var SearchTargets = []string{
	"urn:schemas-upnp-org:device:MediaRenderer:1",
	"urn:schemas-upnp-org:service:AVTransport:1",
	"urn:schemas-upnp-org:service:AVTransport:2",
	"urn:schemas-upnp-org:service:AVTransport:3",
	"upnp:rootdevice",
	"ssdp:all",
}

// sendsPerTarget offsets packet loss: UDP gives no delivery guarantee and
// renderers randomize their response delay up to MX seconds
const sendsPerTarget = 2

// sendJitter spaces repeated sends to avoid flooding the network
const sendJitter = 80 * time.Millisecond

// MulticastSource discovers renderers by multicasting M-SEARCH rounds and
// draining both solicited responses and unsolicited NOTIFY announcements
// until its window closes
type MulticastSource struct {
	targets     []string
	rounds      int
	mx          int
	readTimeout time.Duration
	log         logger.Logger
}

// NewMulticastSource returns a multicast discovery source configured by the
// scan section of our config
func NewMulticastSource(conf config.Scan) *MulticastSource {
	targets := conf.Targets

	if len(targets) == 0 {
		targets = SearchTargets
	}

	return &MulticastSource{
		targets:     targets,
		rounds:      conf.Rounds,
		mx:          conf.MX,
		readTimeout: time.Duration(conf.ReadTimeoutMS) * time.Millisecond,
		log:         logger.New(),
	}
}

// Discover runs one discovery session: it opens the transport, interleaves
// bounded send rounds with receive polls, then keeps draining until the
// context is done. Cancellation is honored within one receive timeout.
// Sockets are released on every exit path.
func (s *MulticastSource) Discover(ctx context.Context, results chan<- *device.Device) error {
	transport, err := ssdp.NewTransport()

	if err != nil {
		return err
	}

	defer transport.Close()

	s.log.Info().
		Int("rounds", s.rounds).
		Int("targets", len(s.targets)).
		Msg("starting multicast discovery")

	round := 0

	for ctx.Err() == nil {
		if round < s.rounds {
			s.sendRound(ctx, transport)
			round++
		}

		raw, addr, err := transport.ReceiveOne(s.readTimeout)

		if err != nil {
			// reduced coverage, not session failure
			s.log.Warn().Err(err).Msg("multicast receive error")
			continue
		}

		if raw == "" {
			// timeout: the steady state of a lossy protocol
			continue
		}

		msg, err := ssdp.Parse(raw, addr.IP.String())

		if err != nil {
			continue
		}

		// without a USN we can neither dedup nor match later NOTIFYs
		if msg.USN == "" || !msg.Alive() {
			continue
		}

		dev := deviceFromMessage(msg)

		select {
		case results <- dev:
		case <-ctx.Done():
		}
	}

	s.log.Info().Msg("multicast discovery window closed")

	return nil
}

// sendRound sends every search target, each repeated sendsPerTarget times
func (s *MulticastSource) sendRound(ctx context.Context, transport *ssdp.Transport) {
	for _, target := range s.targets {
		for i := 0; i < sendsPerTarget; i++ {
			if ctx.Err() != nil {
				return
			}

			if err := transport.SendSearch(target, s.mx); err != nil {
				s.log.Warn().Err(err).Str("st", target).Msg("m-search send failed")
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(sendJitter):
			}
		}
	}
}

func deviceFromMessage(msg *ssdp.Message) *device.Device {
	return &device.Device{
		USN:          msg.USN,
		SearchTarget: msg.Target,
		Server:       msg.Server,
		Location:     msg.Location,
	}
}
