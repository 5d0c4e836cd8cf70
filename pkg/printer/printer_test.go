package printer

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		cfg      Config
		wantKind Kind
		wantErr  bool
	}{
		"none":            {cfg: Config{Type: "none"}, wantKind: KindNone},
		"empty is none":   {cfg: Config{}, wantKind: KindNone},
		"usb":             {cfg: Config{Type: "usb", USBPath: "/dev/usb/lp0"}, wantKind: KindUSB},
		"usb needs path":  {cfg: Config{Type: "usb"}, wantErr: true},
		"network":         {cfg: Config{Type: "network", Address: "127.0.0.1:9100"}, wantKind: KindNetwork},
		"network address": {cfg: Config{Type: "network"}, wantErr: true},
		"unknown":         {cfg: Config{Type: "bluetooth"}, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := New(tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, p.Kind())
		})
	}
}

func TestNetworkPrinterWritesJob(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p, err := New(Config{Type: "network", Address: ln.Addr().String()})
	require.NoError(t, err)

	job := NewDocument(Width58mm).Line("hello").Cut(false).Bytes()
	require.NoError(t, p.Print(context.Background(), job))
	assert.Equal(t, job, <-received)
}

func TestDocumentLayout(t *testing.T) {
	d := NewDocument(20)
	d.Pair("Total", "1012.00").Item(2, "Hair Spa Deluxe Treatment", "400.00")

	out := d.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte{ESC, '@'}))
	assert.Contains(t, string(out), "Total        1012.00\n")
	assert.Contains(t, string(out), "2x Hair Spa   400.00\n")
	assert.Contains(t, string(out), "   Deluxe\n")
	assert.Contains(t, string(out), "   Treatment\n")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrap("short", 10))
	assert.Equal(t, []string{"aaaa", "aaaa", "bb"}, wrap("aaaaaaaa bb", 4))
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 8))
}
