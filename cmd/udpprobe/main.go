package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"udpprobe/internal/utils"
	"udpprobe/network"
	"udpprobe/probe"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage")

const usage = `usage:
  udpprobe tx <target_ip:port> [flags]
  udpprobe rx <listen_port> [flags]`

func main() {
	start := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, start, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(1)
		}
		logrus.Fatalf("%v", err)
	}
}

func run(ctx context.Context, start time.Time, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing mode", errUsage)
	}
	mode, err := utils.ParseMode(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	switch mode {
	case utils.Transmit:
		return runTransmitter(ctx, args[1:], stderr)
	default:
		return runReceiver(ctx, start, args[1:], stdout, stderr)
	}
}

func newFlagSet(mode utils.Mode, stderr io.Writer) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet(mode.String(), pflag.ContinueOnError)
	fs.SetOutput(stderr)
	level := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	return fs, level
}

func parseFlags(fs *pflag.FlagSet, args []string, level *string, stderr io.Writer) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s expects exactly one argument", errUsage, fs.Name())
	}
	if err := utils.SetUpLogrus(stderr, *level); err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	return fs.Arg(0), nil
}

func runTransmitter(ctx context.Context, args []string, stderr io.Writer) error {
	fs, level := newFlagSet(utils.Transmit, stderr)
	size := fs.Int("size", probe.DefaultPacketSize, "datagram payload size in bytes")
	interval := fs.Duration("interval", probe.DefaultInterval, "delay after each send")
	count := fs.Int("count", 0, "stop after this many datagrams (0 for no limit)")
	tos := fs.Int("tos", 0, "IP TOS byte for outgoing datagrams (IPv4 only)")
	bind := fs.String("bind", "", "local address to send from (default wildcard)")

	target, err := parseFlags(fs, args, level, stderr)
	if err != nil {
		return err
	}

	addr, err := network.ParseEndpoint(target)
	if err != nil {
		return err
	}
	var bindIP net.IP
	if *bind != "" {
		if bindIP = net.ParseIP(*bind); bindIP == nil {
			return fmt.Errorf("%w %q", network.ErrInvalidEndpoint, *bind)
		}
	}

	tx, err := probe.NewTransmitter(ctx, probe.TransmitterConfig{
		BindIP:     bindIP,
		Target:     addr,
		PacketSize: *size,
		Interval:   *interval,
		Count:      *count,
		TOS:        *tos,
	})
	if err != nil {
		return fmt.Errorf("failed to create transmitter: %w", err)
	}
	defer tx.Close()

	if err := tx.Run(ctx); err != nil {
		return err
	}
	return probe.WriteSendSummary(stderr, tx.Stats())
}

func runReceiver(ctx context.Context, start time.Time, args []string, stdout, stderr io.Writer) error {
	fs, level := newFlagSet(utils.Receive, stderr)
	bind := fs.String("bind", "0.0.0.0", "local address to bind")
	useSTUN := fs.Bool("stun", false, "log the public address reported by a STUN server")
	stunServer := fs.String("stun-server", network.DefaultSTUNServer, "STUN server host:port")

	portArg, err := parseFlags(fs, args, level, stderr)
	if err != nil {
		return err
	}

	port, err := network.ParsePort(portArg)
	if err != nil {
		return err
	}
	bindIP := net.ParseIP(*bind)
	if bindIP == nil {
		return fmt.Errorf("%w %q", network.ErrInvalidEndpoint, *bind)
	}

	rx, err := probe.NewReceiver(ctx, probe.ReceiverConfig{
		BindIP:          bindIP,
		Port:            port,
		Start:           start,
		ReadBufferBytes: network.DefaultReadBufferBytes,
	}, stdout)
	if err != nil {
		return fmt.Errorf("failed to create receiver: %w", err)
	}
	defer rx.Close()

	// The lookup runs beside the read loop so arrivals are stamped as they
	// come in.
	var wg sync.WaitGroup
	if *useSTUN {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logExternalAddress(ctx, *stunServer, rx.LocalAddr().Port)
		}()
	}

	err = rx.Run(ctx)
	wg.Wait()
	if err != nil {
		return err
	}
	return probe.WriteArrivalSummary(stderr, rx.Stats())
}

func logExternalAddress(ctx context.Context, server string, port int) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	addr, err := network.ExternalAddress(ctx, server)
	if err != nil {
		logrus.WithError(err).Warn("STUN lookup failed")
		return
	}
	logrus.WithFields(logrus.Fields{
		"public_ip":  addr.IP.String(),
		"local_port": port,
	}).Info("Public address via STUN")
}
