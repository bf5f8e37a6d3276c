package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"udpprobe/network"

	"github.com/sirupsen/logrus"
)

type Transmitter struct {
	conn    *network.Connection
	config  TransmitterConfig
	payload []byte
	stats   SendStats
	errs    errorLog
	now     func() time.Time
}

func NewTransmitter(ctx context.Context, config TransmitterConfig) (*Transmitter, error) {
	if config.Target == nil {
		return nil, fmt.Errorf("no target address set")
	}
	if config.PacketSize <= 0 {
		config.PacketSize = DefaultPacketSize
	}
	if config.PacketSize > network.MaxDatagramSize {
		return nil, fmt.Errorf("packet size %d exceeds %d", config.PacketSize, network.MaxDatagramSize)
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}

	var laddr *net.UDPAddr
	if config.BindIP != nil {
		laddr = &net.UDPAddr{IP: config.BindIP}
	}
	conn, err := network.Dial(ctx, network.ConnectionConfig{
		LocalAddr:  laddr,
		RemoteAddr: config.Target,
		TOS:        config.TOS,
	})
	if err != nil {
		return nil, err
	}

	return &Transmitter{
		conn:    conn,
		config:  config,
		payload: make([]byte, config.PacketSize),
		errs:    newErrorLog("Send failed"),
		now:     time.Now,
	}, nil
}

// Run sends one datagram, sleeps for the interval, and repeats until ctx is
// done or Count datagrams have gone out. Send errors are logged and counted.
func (t *Transmitter) Run(ctx context.Context) error {
	log := logrus.WithFields(logrus.Fields{
		"target":   t.config.Target.String(),
		"size":     t.config.PacketSize,
		"interval": t.config.Interval,
	})
	log.Info("Transmitter started")

	timer := time.NewTimer(t.config.Interval)
	defer timer.Stop()

	t.stats.Start = t.now()
	for seq := 1; ; seq++ {
		if ctx.Err() != nil {
			break
		}

		sendStart := t.now()
		n, err := t.conn.Send(t.payload)
		sent := t.now()
		took := sent.Sub(sendStart)
		t.stats.Stop = sent

		if err != nil {
			t.stats.Errors++
			t.errs.warn(log.WithField("seq", seq), sent, err)
		} else {
			t.stats.Packets++
			t.stats.Bytes += int64(n)
		}
		if took > t.config.Interval {
			log.WithFields(logrus.Fields{"seq": seq, "took": took}).Debug("Send overran interval")
		}

		if t.config.Count != 0 && seq == t.config.Count {
			break
		}

		timer.Reset(t.config.Interval)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}

	log.WithField("sent", t.stats.Packets).Info("Transmitter stopped")
	return nil
}

func (t *Transmitter) Stats() SendStats {
	return t.stats
}

func (t *Transmitter) LocalAddr() string {
	return t.conn.LocalAddr().String()
}

func (t *Transmitter) Close() error {
	return t.conn.Close()
}
