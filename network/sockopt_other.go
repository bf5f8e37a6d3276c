//go:build !unix

package network

import "syscall"

func readBufferControl(size int) func(network, address string, c syscall.RawConn) error {
	return nil
}
