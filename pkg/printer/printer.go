package printer

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"
)

// Kind names a printer transport
type Kind string

const (
	KindUSB     Kind = "usb"
	KindNetwork Kind = "network"
	KindNone    Kind = "none"
)

// Printer sends raw ESC/POS bytes to a device
type Printer interface {
	Print(ctx context.Context, data []byte) error
	Kind() Kind
	Connected(ctx context.Context) bool
}

// Config selects and addresses the printer
type Config struct {
	Type    string
	USBPath string
	Address string
}

// New creates the printer described by cfg
func New(cfg Config) (Printer, error) {
	switch Kind(cfg.Type) {
	case KindUSB:
		if cfg.USBPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return &devicePrinter{path: cfg.USBPath}, nil
	case KindNetwork:
		if cfg.Address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return &networkPrinter{address: cfg.Address, dialTimeout: 5 * time.Second}, nil
	case KindNone, "":
		return Discard(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, or none)", cfg.Type)
	}
}

// Discard returns a printer that accepts and drops every job
func Discard() Printer {
	return discardPrinter{}
}

// devicePrinter writes to a character device such as /dev/usb/lp0. The
// device is opened per job.
type devicePrinter struct {
	path string
}

func (p *devicePrinter) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: failed to open device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to device %s: %w", p.path, err)
	}
	return nil
}

func (p *devicePrinter) Kind() Kind { return KindUSB }

func (p *devicePrinter) Connected(context.Context) bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// networkPrinter speaks raw TCP, usually on port 9100
type networkPrinter struct {
	address     string
	dialTimeout time.Duration
}

func (p *networkPrinter) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: p.dialTimeout}
	return d.DialContext(ctx, "tcp", p.address)
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	conn, err := p.dial(ctx)
	if err != nil {
		return fmt.Errorf("printer: failed to connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Kind() Kind { return KindNetwork }

func (p *networkPrinter) Connected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	conn, err := p.dial(ctx)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

type discardPrinter struct{}

func (discardPrinter) Print(context.Context, []byte) error { return nil }
func (discardPrinter) Kind() Kind                          { return KindNone }
func (discardPrinter) Connected(context.Context) bool      { return false }
