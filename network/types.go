package network

import (
	"errors"
	"net"
)

const (
	// Largest UDP payload that fits in an IPv4 datagram.
	MaxDatagramSize = 65507

	// Kernel receive buffer requested for listening sockets.
	DefaultReadBufferBytes = 4 << 20
)

var (
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrInvalidPort     = errors.New("invalid port")
)

type ConnectionConfig struct {
	// Address to bind. Nil means all IPv4 interfaces with an ephemeral port.
	LocalAddr *net.UDPAddr
	// Destination for Send. Only used by Dial.
	RemoteAddr *net.UDPAddr
	// Size of the buffer Receive reads into. Zero means MaxDatagramSize.
	BufferSize int
	// SO_RCVBUF to request. Zero leaves the kernel default.
	ReadBufferBytes int
	// IP TOS byte for outgoing datagrams. Zero leaves the socket untouched.
	TOS int
}

type Connection struct {
	conn       *net.UDPConn
	remoteAddr *net.UDPAddr
	buffer     []byte
}
