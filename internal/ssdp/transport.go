package ssdp

import (
	"net"
	"time"

	"github.com/minicast/minicast/internal/logger"
	"golang.org/x/net/ipv4"
)

// Transport owns the sockets for one SSDP session: a multicast listener
// joined to the SSDP group on every usable interface, and a separate
// ephemeral send socket. The split matters - some renderers never reply to
// the port that only joined the group, and NOTIFY announcements arrive on
// the group socket independently of anything we send.
type Transport struct {
	group  *net.UDPAddr
	listen *net.UDPConn
	packet *ipv4.PacketConn
	send   *net.UDPConn
	joined []net.Interface
	log    logger.Logger
}

// NewTransport opens both sockets and joins the SSDP multicast group on
// every eligible interface. A failed join on one interface reduces
// coverage but never aborts the session.
func NewTransport() (*Transport, error) {
	log := logger.New()

	group := &net.UDPAddr{IP: net.ParseIP(MulticastIP), Port: Port}

	listen, err := net.ListenMulticastUDP("udp4", nil, group)

	if err != nil {
		return nil, err
	}

	send, err := net.ListenUDP("udp4", &net.UDPAddr{})

	if err != nil {
		listen.Close()
		return nil, err
	}

	t := &Transport{
		group:  group,
		listen: listen,
		packet: ipv4.NewPacketConn(listen),
		send:   send,
		joined: []net.Interface{},
		log:    log,
	}

	t.joinAll()

	return t, nil
}

// joinAll joins the multicast group on every up, non-loopback,
// multicast-capable interface
func (t *Transport) joinAll() {
	ifaces, err := net.Interfaces()

	if err != nil {
		t.log.Warn().Err(err).Msg("failed to list network interfaces")
		return
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 ||
			iface.Flags&net.FlagLoopback != 0 ||
			iface.Flags&net.FlagMulticast == 0 {
			continue
		}

		ifi := iface

		if err := t.packet.JoinGroup(&ifi, &net.UDPAddr{IP: t.group.IP}); err != nil {
			t.log.Debug().
				Err(err).
				Str("interface", iface.Name).
				Msg("failed to join multicast group")
			continue
		}

		t.joined = append(t.joined, ifi)
	}

	if len(t.joined) == 0 {
		t.log.Warn().Msg("joined multicast group on zero interfaces")
	}
}

// SendSearch sends one M-SEARCH datagram for the given target to the
// multicast group. UDP is lossy and renderers delay responses up to MX
// seconds, so callers repeat sends to improve recall.
func (t *Transport) SendSearch(target string, mx int) error {
	_, err := t.send.WriteToUDP(BuildSearch(MulticastHost, target, mx), t.group)
	return err
}

// ReceiveOne blocks up to timeout for a single datagram on the multicast
// socket. A timeout is the steady state of a lossy discovery protocol, not
// an error: it returns ("", nil, nil).
func (t *Transport) ReceiveOne(timeout time.Duration) (string, *net.UDPAddr, error) {
	if err := t.listen.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", nil, err
	}

	buf := make([]byte, 8192)

	n, addr, err := t.listen.ReadFromUDP(buf)

	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return "", nil, nil
		}

		return "", nil, err
	}

	return string(buf[:n]), addr, nil
}

// Close leaves the multicast group on every interface joined and releases
// both sockets. Safe to call on every exit path.
func (t *Transport) Close() {
	for _, iface := range t.joined {
		ifi := iface

		if err := t.packet.LeaveGroup(&ifi, &net.UDPAddr{IP: t.group.IP}); err != nil {
			t.log.Debug().
				Err(err).
				Str("interface", iface.Name).
				Msg("failed to leave multicast group")
		}
	}

	t.joined = []net.Interface{}

	t.listen.Close()
	t.send.Close()
}
