package discovery

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/logger"
	"github.com/projectdiscovery/mapcidr"
)

var cidrSuffix = regexp.MustCompile(`\/\d{1,2}$`)

// description paths renderers commonly serve their device description on
var probePaths = []string{
	"/description.xml",
	"/rootDesc.xml",
	"/DeviceDescription.xml",
	"/RenderingControl/desc.xml",
	"/dmr.xml",
	"/devdesc.xml",
	"/MediaRenderer/desc.xml",
	"/dmr/DeviceDescription.xml",
	"/upnp/desc.xml",
}

// ports renderers commonly serve HTTP on, well-known first
var probePorts = []int{
	80, 1400, 2869, 8895,
	49152, 49153, 49154, 49155, 49156, 49157, 49158, 49159, 49160,
	55000,
}

// ProbeSource is the last-resort fallback for networks where SSDP is
// entirely blocked: it walks a cross-product of common description paths
// and ports against known IPs (or a whole CIDR range) with plain HTTP
// GETs. Any 2xx counts as a found device with a synthetic USN.
type ProbeSource struct {
	targets   []string
	client    *http.Client
	semaphore chan struct{}
	log       logger.Logger
}

// NewProbeSource returns a probe source for the given targets. A target is
// either a single IP or a CIDR, which is expanded to its member addresses.
func NewProbeSource(targets []string, timeout time.Duration) (*ProbeSource, error) {
	ipList := []string{}

	for _, t := range targets {
		if cidrSuffix.MatchString(t) {
			ips, err := mapcidr.IPAddresses(t)

			if err != nil {
				return nil, err
			}

			ipList = append(ipList, ips...)
		} else {
			ipList = append(ipList, t)
		}
	}

	return &ProbeSource{
		targets:   ipList,
		client:    &http.Client{Timeout: timeout},
		semaphore: make(chan struct{}, 32),
		log:       logger.New(),
	}, nil
}

// Discover probes every target IP concurrently, bounded by the semaphore.
// Per IP, the first 2xx description wins.
func (s *ProbeSource) Discover(ctx context.Context, results chan<- *device.Device) error {
	s.log.Info().
		Int("ips", len(s.targets)).
		Msg("brute-force description probe")

	wg := &sync.WaitGroup{}

	for _, ip := range s.targets {
		if ctx.Err() != nil {
			break
		}

		s.semaphore <- struct{}{} // acquire
		wg.Add(1)

		go func(i string) {
			defer func() {
				<-s.semaphore // release
				wg.Done()
			}()

			if dev := s.probeIP(ctx, i); dev != nil {
				select {
				case results <- dev:
				case <-ctx.Done():
				}
			}
		}(ip)
	}

	wg.Wait()

	return nil
}

// probeIP walks the port/path cross-product for one IP
func (s *ProbeSource) probeIP(ctx context.Context, ip string) *device.Device {
	for _, port := range probePorts {
		for _, path := range probePaths {
			if ctx.Err() != nil {
				return nil
			}

			url := "http://" + ip + ":" + strconv.Itoa(port) + path

			if s.hit(ctx, url) {
				s.log.Info().Str("location", url).Msg("description probe hit")

				return &device.Device{
					USN:      "manual:" + ip,
					Location: url,
				}
			}
		}
	}

	return nil
}

func (s *ProbeSource) hit(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return false
	}

	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)

	if err != nil {
		return false
	}

	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
