package network

import (
	"context"
	"fmt"
	"net"

	"github.com/pion/stun"
)

const DefaultSTUNServer = "stun.l.google.com:19302"

// ExternalAddress asks a STUN server for the public address this host is
// mapped to. The mapping belongs to a fresh socket, so it tells a remote
// transmitter which public IP to aim at, not which port the receiver holds.
func ExternalAddress(ctx context.Context, server string) (*stun.XORMappedAddress, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp4", server)
	if err != nil {
		return nil, fmt.Errorf("failed to dial stun server: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, err := stun.NewClient(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create stun client: %w", err)
	}
	defer c.Close()
	// Closing the client fails the pending transaction.
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	var resultAddr *stun.XORMappedAddress
	var eventErr error
	err = c.Do(stun.MustBuild(stun.TransactionID, stun.BindingRequest), func(e stun.Event) {
		if e.Error != nil {
			eventErr = e.Error
			return
		}
		addr := &stun.XORMappedAddress{}
		if parseErr := addr.GetFrom(e.Message); parseErr != nil {
			eventErr = parseErr
			return
		}
		resultAddr = addr
	})
	if err != nil {
		return nil, fmt.Errorf("stun request failed: %w", err)
	}
	if eventErr != nil {
		return nil, fmt.Errorf("stun request failed: %w", eventErr)
	}

	return resultAddr, nil
}
