package ssdp

import (
	"fmt"
	"strings"

	"github.com/minicast/minicast/internal/exception"
)

const (
	// MulticastIP is the SSDP multicast group address
	MulticastIP = "239.255.255.250"
	// Port is the SSDP well-known port
	Port = 1900
)

// MulticastHost is the HOST header value for multicast searches
var MulticastHost = fmt.Sprintf("%s:%d", MulticastIP, Port)

// Message is one parsed SSDP datagram - either a unicast search response
// or a multicast NOTIFY announcement
type Message struct {
	// USN uniquely identifies the responding device or service
	USN string
	// Target holds ST on search responses and NT on NOTIFY announcements
	Target string
	// Server is the responder's server banner
	Server string
	// Location is the URL of the device description document
	Location string
	// NTS is the NOTIFY sub type (ssdp:alive, ssdp:byebye)
	NTS string
	// From is the sender address
	From string
}

// BuildSearch constructs an M-SEARCH request for the given search target.
// The host parameter is the HOST header value, which differs between
// multicast and unicast searches.
func BuildSearch(host, target string, mx int) []byte {
	msearch := "M-SEARCH * HTTP/1.1\r\n" +
		"HOST: " + host + "\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"MX: " + fmt.Sprintf("%d", mx) + "\r\n" +
		"ST: " + target + "\r\n\r\n"

	return []byte(msearch)
}

// Parse parses a raw SSDP datagram. Datagrams that are neither a 200 OK
// search response nor a NOTIFY announcement yield exception.ErrNotSSDP.
func Parse(raw, from string) (*Message, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	if len(lines) == 0 {
		return nil, exception.ErrNotSSDP
	}

	status := lines[0]

	if !strings.HasPrefix(status, "HTTP/1.1 200") &&
		!strings.HasPrefix(status, "NOTIFY * HTTP/1.1") {
		return nil, exception.ErrNotSSDP
	}

	msg := &Message{From: from}

	for _, line := range lines[1:] {
		i := strings.Index(line, ":")

		if i <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:i]))
		value := strings.TrimSpace(line[i+1:])

		switch key {
		case "USN":
			msg.USN = value
		case "ST", "NT":
			msg.Target = value
		case "SERVER":
			msg.Server = value
		case "LOCATION":
			msg.Location = value
		case "NTS":
			msg.NTS = value
		}
	}

	return msg, nil
}

// Alive reports whether a message advertises presence. Search responses
// carry no NTS header and always count as alive.
func (m *Message) Alive() bool {
	return m.NTS == "" || strings.EqualFold(m.NTS, "ssdp:alive")
}
