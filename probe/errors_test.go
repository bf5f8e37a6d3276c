package probe

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/netip"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// stepClock returns a clock that advances by step on every call.
func stepClock(base time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * step)
	}
}

type scriptedRead struct {
	size int
	from netip.AddrPort
	err  error
}

// scriptedConn replays reads in order, then behaves like a closed socket.
type scriptedConn struct {
	reads []scriptedRead
}

func (c *scriptedConn) Receive() ([]byte, netip.AddrPort, error) {
	if len(c.reads) == 0 {
		return nil, netip.AddrPort{}, net.ErrClosed
	}
	r := c.reads[0]
	c.reads = c.reads[1:]
	if r.err != nil {
		return nil, netip.AddrPort{}, r.err
	}
	return make([]byte, r.size), r.from, nil
}

func (c *scriptedConn) LocalAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9999}
}

func (c *scriptedConn) Close() error {
	return nil
}

func TestReceiverContinuesAfterReadError(t *testing.T) {
	a := netip.MustParseAddrPort("192.0.2.1:4000")
	b := netip.MustParseAddrPort("192.0.2.2:4001")
	conn := &scriptedConn{reads: []scriptedRead{
		{size: 500, from: a},
		{err: syscall.ECONNREFUSED},
		{err: syscall.ENOBUFS},
		{size: 300, from: b},
	}}

	start := time.Unix(2000, 0)
	var out bytes.Buffer
	r := newReceiver(conn, &out, start)
	r.now = stepClock(start, time.Millisecond)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "1000000,1000000,500,192.0.2.1:4000\n" +
		"4000000,3000000,300,192.0.2.2:4001\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if s := r.Stats(); s.Packets != 2 || s.Bytes != 800 {
		t.Errorf("stats = %+v", s)
	}
}

func TestTransmitterToClosedPort(t *testing.T) {
	ln, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	target := ln.LocalAddr().(*net.UDPAddr)
	ln.Close()

	tx, err := NewTransmitter(context.Background(), TransmitterConfig{Target: target, Count: 20})
	if err != nil {
		t.Fatalf("NewTransmitter: %v", err)
	}
	defer tx.Close()

	if err := tx.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s := tx.Stats(); s.Packets != 20 || s.Errors != 0 {
		t.Errorf("stats = %+v, want 20 sent and no errors", s)
	}
}

func TestTransmitterContinuesAfterSendError(t *testing.T) {
	tx, err := NewTransmitter(context.Background(), TransmitterConfig{
		BindIP: net.IPv4(127, 0, 0, 1),
		Target: &net.UDPAddr{IP: net.IPv6loopback, Port: 9},
		Count:  3,
	})
	if err != nil {
		t.Fatalf("NewTransmitter: %v", err)
	}
	defer tx.Close()

	if err := tx.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s := tx.Stats(); s.Errors != 3 || s.Packets != 0 {
		t.Errorf("stats = %+v, want 3 errors", s)
	}
}

func TestTransmitterElapsedFromClock(t *testing.T) {
	ln, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer ln.Close()

	tx, err := NewTransmitter(context.Background(), TransmitterConfig{
		Target: ln.LocalAddr().(*net.UDPAddr),
		Count:  2,
	})
	if err != nil {
		t.Fatalf("NewTransmitter: %v", err)
	}
	defer tx.Close()
	tx.now = stepClock(time.Unix(3000, 0), time.Millisecond)

	if err := tx.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// One reading at start, then one before and one after each send.
	if got := tx.Stats().Elapsed(); got != 4*time.Millisecond {
		t.Errorf("Elapsed = %v, want 4ms", got)
	}
}

func TestErrorLogLimitsRepeats(t *testing.T) {
	logger, hook := test.NewNullLogger()
	entry := logrus.NewEntry(logger)
	l := newErrorLog("Receive failed")
	base := time.Unix(4000, 0)
	errRead := errors.New("read failed")

	steps := []struct {
		after  time.Duration
		logged bool
	}{
		{0, true},
		{100 * time.Millisecond, false},
		{900 * time.Millisecond, false},
		{1100 * time.Millisecond, true},
		{1200 * time.Millisecond, false},
	}
	for i, s := range steps {
		if got := l.warn(entry, base.Add(s.after), errRead); got != s.logged {
			t.Errorf("step %d logged = %v, want %v", i, got, s.logged)
		}
	}

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if got := entries[1].Data["suppressed"]; got != 2 {
		t.Errorf("suppressed = %v, want 2", got)
	}
	if !strings.Contains(entries[0].Message, "Receive failed") || entries[0].Level != logrus.WarnLevel {
		t.Errorf("first entry = %s %q", entries[0].Level, entries[0].Message)
	}
}
