package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"time"

	"udpprobe/network"

	"github.com/sirupsen/logrus"
)

type datagramConn interface {
	Receive() ([]byte, netip.AddrPort, error)
	LocalAddr() *net.UDPAddr
	Close() error
}

type Receiver struct {
	conn  datagramConn
	out   io.Writer
	start time.Time
	prev  time.Time
	stats ArrivalStats
	errs  errorLog
	now   func() time.Time
}

// NewReceiver binds the listening socket. Each datagram is written to out
// as one CSV line.
func NewReceiver(ctx context.Context, config ReceiverConfig, out io.Writer) (*Receiver, error) {
	ip := config.BindIP
	if ip == nil {
		ip = net.IPv4zero
	}

	conn, err := network.Listen(ctx, network.ConnectionConfig{
		LocalAddr:       &net.UDPAddr{IP: ip, Port: config.Port},
		ReadBufferBytes: config.ReadBufferBytes,
	})
	if err != nil {
		return nil, err
	}

	start := config.Start
	if start.IsZero() {
		start = time.Now()
	}

	return newReceiver(conn, out, start), nil
}

func newReceiver(conn datagramConn, out io.Writer, start time.Time) *Receiver {
	return &Receiver{
		conn:  conn,
		out:   out,
		start: start,
		prev:  start,
		errs:  newErrorLog("Receive failed"),
		now:   time.Now,
	}
}

// Run reads datagrams until ctx is done. Canceling ctx closes the socket to
// unblock the pending read.
func (r *Receiver) Run(ctx context.Context) error {
	logrus.WithField("addr", r.conn.LocalAddr().String()).Info("Receiver listening")

	stop := context.AfterFunc(ctx, func() {
		r.conn.Close()
	})
	defer stop()

	for {
		data, from, err := r.conn.Receive()
		at := r.now()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				logrus.WithField("received", r.stats.Packets).Info("Receiver stopped")
				return nil
			}
			r.errs.warn(logrus.NewEntry(logrus.StandardLogger()), at, err)
			continue
		}

		arrival := r.record(at, len(data), from)
		if _, err := fmt.Fprintln(r.out, arrival); err != nil {
			logrus.WithError(err).Warn("Failed to write arrival")
		}
	}
}

func (r *Receiver) record(at time.Time, size int, from netip.AddrPort) Arrival {
	a := Arrival{
		SinceStart: at.Sub(r.start),
		Diff:       at.Sub(r.prev),
		Size:       size,
		From:       from,
	}
	r.prev = at
	r.stats.Add(a)
	return a
}

func (r *Receiver) Stats() ArrivalStats {
	return r.stats
}

func (r *Receiver) LocalAddr() *net.UDPAddr {
	return r.conn.LocalAddr()
}

func (r *Receiver) Close() error {
	return r.conn.Close()
}
