//go:build unix

package network

import (
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// readBufferControl returns a ListenConfig control hook that requests a
// kernel receive buffer of size bytes. The kernel may clamp it.
func readBufferControl(size int) func(network, address string, c syscall.RawConn) error {
	if size <= 0 {
		return nil
	}
	return func(network, address string, c syscall.RawConn) error {
		return c.Control(func(fd uintptr) {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, size); err != nil {
				logrus.WithError(err).Warn("Failed to set SO_RCVBUF")
				return
			}
			got, err := unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF)
			if err == nil {
				logrus.WithFields(logrus.Fields{"requested": size, "actual": got}).Debug("SO_RCVBUF set")
			}
		})
	}
}
