package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/logger"
	"github.com/minicast/minicast/internal/ssdp"
)

// unicast searches use a shorter target list - a renderer that answers any
// of these is enough, we only need one response
var unicastTargets = []string{
	"urn:schemas-upnp-org:device:MediaRenderer:1",
	"urn:schemas-upnp-org:service:AVTransport:1",
	"urn:schemas-upnp-org:service:AVTransport:2",
	"upnp:rootdevice",
}

// UnicastSource probes a single known IP with unicast M-SEARCH datagrams.
// Used when multicast discovery fails, which is common on networks with AP
// client isolation.
type UnicastSource struct {
	ip          string
	mx          int
	readTimeout time.Duration
	log         logger.Logger
}

// NewUnicastSource returns a discovery source for one user supplied IP
func NewUnicastSource(ip string, mx int, readTimeout time.Duration) *UnicastSource {
	return &UnicastSource{
		ip:          ip,
		mx:          mx,
		readTimeout: readTimeout,
		log:         logger.New(),
	}
}

// Discover sends the search target list to ip:1900 and reports the first
// well-formed response. The socket is scoped to this call.
func (s *UnicastSource) Discover(ctx context.Context, results chan<- *device.Device) error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})

	if err != nil {
		return err
	}

	defer conn.Close()

	dst, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", s.ip, ssdp.Port))

	if err != nil {
		return err
	}

	host := fmt.Sprintf("%s:%d", s.ip, ssdp.Port)

	for _, target := range unicastTargets {
		if ctx.Err() != nil {
			return nil
		}

		if _, err := conn.WriteToUDP(ssdp.BuildSearch(host, target, s.mx), dst); err != nil {
			s.log.Warn().Err(err).Str("ip", s.ip).Msg("unicast m-search send failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(sendJitter):
		}
	}

	buf := make([]byte, 4096)

	for ctx.Err() == nil {
		if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			return err
		}

		n, addr, err := conn.ReadFromUDP(buf)

		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}

			return err
		}

		msg, err := ssdp.Parse(string(buf[:n]), addr.IP.String())

		if err != nil || msg.USN == "" {
			continue
		}

		s.log.Info().Str("ip", s.ip).Str("usn", msg.USN).Msg("unicast response")

		select {
		case results <- deviceFromMessage(msg):
		case <-ctx.Done():
		}

		return nil
	}

	return nil
}
