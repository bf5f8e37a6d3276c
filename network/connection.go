package network

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
)

// Listen binds a UDP socket on cfg.LocalAddr for receiving.
func Listen(ctx context.Context, cfg ConnectionConfig) (*Connection, error) {
	laddr := cfg.LocalAddr
	if laddr == nil {
		laddr = &net.UDPAddr{IP: net.IPv4zero}
	}

	lc := net.ListenConfig{Control: readBufferControl(cfg.ReadBufferBytes)}
	pc, err := lc.ListenPacket(ctx, "udp", laddr.String())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", laddr, err)
	}

	return newConnection(pc.(*net.UDPConn), cfg), nil
}

// Dial binds an unconnected UDP socket that sends to cfg.RemoteAddr. The
// socket is never connected, so ICMP errors from the target are not queued
// on it and every Send puts a datagram on the wire.
func Dial(ctx context.Context, cfg ConnectionConfig) (*Connection, error) {
	if cfg.RemoteAddr == nil {
		return nil, fmt.Errorf("no remote address set")
	}

	network, laddr := senderAddr(cfg.LocalAddr, cfg.RemoteAddr)
	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, network, laddr.String())
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", laddr, err)
	}
	conn := newConnection(pc.(*net.UDPConn), cfg)
	conn.remoteAddr = cfg.RemoteAddr

	if cfg.TOS != 0 {
		if err := conn.setTOS(network, cfg.TOS); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

// senderAddr picks the socket family from the bind address when one is
// given, otherwise from the target.
func senderAddr(local, remote *net.UDPAddr) (string, *net.UDPAddr) {
	if local != nil && local.IP != nil {
		if local.IP.To4() != nil {
			return "udp4", local
		}
		return "udp6", local
	}

	port := 0
	if local != nil {
		port = local.Port
	}
	if remote.IP.To4() != nil {
		return "udp4", &net.UDPAddr{IP: net.IPv4zero, Port: port}
	}
	return "udp6", &net.UDPAddr{IP: net.IPv6unspecified, Port: port}
}

func newConnection(udpConn *net.UDPConn, cfg ConnectionConfig) *Connection {
	size := cfg.BufferSize
	if size <= 0 {
		size = MaxDatagramSize
	}
	return &Connection{
		conn:   udpConn,
		buffer: make([]byte, size),
	}
}

func (c *Connection) setTOS(network string, tos int) error {
	if tos < 0 || tos > 0xff {
		return fmt.Errorf("tos %d out of range", tos)
	}
	if network != "udp4" {
		return fmt.Errorf("tos is only supported on IPv4 sockets")
	}
	if err := ipv4.NewConn(c.conn).SetTOS(tos); err != nil {
		return fmt.Errorf("failed to set tos: %w", err)
	}
	logrus.WithField("tos", tos).Debug("IP TOS set")
	return nil
}

// Send writes one datagram to the remote address given to Dial.
func (c *Connection) Send(data []byte) (int, error) {
	if c.remoteAddr == nil {
		return 0, fmt.Errorf("no remote address set")
	}
	return c.conn.WriteToUDP(data, c.remoteAddr)
}

// Receive blocks until a datagram arrives. The returned slice aliases the
// connection's buffer and is only valid until the next call.
func (c *Connection) Receive() ([]byte, netip.AddrPort, error) {
	n, addr, err := c.conn.ReadFromUDPAddrPort(c.buffer)
	if err != nil {
		return nil, netip.AddrPort{}, err
	}
	return c.buffer[:n], netip.AddrPortFrom(addr.Addr().Unmap(), addr.Port()), nil
}

func (c *Connection) Close() error {
	return c.conn.Close()
}

func (c *Connection) LocalAddr() *net.UDPAddr {
	return c.conn.LocalAddr().(*net.UDPAddr)
}
