package network

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// ParseEndpoint parses a literal "ip:port" (or "[ipv6]:port"). Host names
// are rejected so that no DNS lookup happens at startup.
func ParseEndpoint(s string) (*net.UDPAddr, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidEndpoint, s, err)
	}
	if ap.Port() == 0 {
		return nil, fmt.Errorf("%w %q: port must be non-zero", ErrInvalidEndpoint, s)
	}
	return net.UDPAddrFromAddrPort(ap), nil
}

// ParsePort parses a decimal port number in 0..65535. Zero asks the kernel
// for an ephemeral port.
func ParsePort(s string) (int, error) {
	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidPort, s)
	}
	return int(port), nil
}

