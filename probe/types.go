package probe

import (
	"fmt"
	"net"
	"net/netip"
	"time"
)

const (
	DefaultPacketSize = 500
	DefaultInterval   = time.Millisecond
)

type TransmitterConfig struct {
	// Source address. Nil binds the wildcard address of the target's family.
	BindIP     net.IP
	Target     *net.UDPAddr
	PacketSize int
	Interval   time.Duration
	// Number of datagrams to send. Zero sends until the context ends.
	Count int
	// IP TOS byte, zero for none.
	TOS int
}

type ReceiverConfig struct {
	// Bind address. Nil binds all interfaces.
	BindIP net.IP
	Port   int
	// Reference point for SinceStart. Zero means the time NewReceiver runs.
	Start           time.Time
	ReadBufferBytes int
}

// Arrival describes one received datagram.
type Arrival struct {
	SinceStart time.Duration
	Diff       time.Duration
	Size       int
	From       netip.AddrPort
}

// String renders the CSV line written for each datagram.
func (a Arrival) String() string {
	return fmt.Sprintf("%d,%d,%d,%s", a.SinceStart.Nanoseconds(), a.Diff.Nanoseconds(), a.Size, a.From)
}
