// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package serial opens a host serial device in raw mode with a given line
// configuration.
package serial

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	tty "github.com/mattn/go-tty"
)

var (
	ErrTimeout  = errors.New("serial read timed out")
	ErrSettings = errors.New("invalid serial settings")
)

type Flow int

const (
	FlowNone Flow = iota
	FlowHardware
	FlowSoftware
)

func (f Flow) String() string {
	switch f {
	case FlowNone:
		return "none"
	case FlowHardware:
		return "hardware"
	case FlowSoftware:
		return "software"
	}
	return "Flow(" + strconv.Itoa(int(f)) + ")"
}

func ParseFlow(s string) (Flow, error) {
	switch strings.ToLower(s) {
	case "none":
		return FlowNone, nil
	case "hardware":
		return FlowHardware, nil
	case "software":
		return FlowSoftware, nil
	}
	return 0, fmt.Errorf("%w: flow control %q is not none, hardware or software", ErrSettings, s)
}

// Bauds are the rates a port can be set to.
var Bauds = []int{110, 300, 600, 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400}

func ParseBaud(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: baud rate %q", ErrSettings, s)
	}
	for _, b := range Bauds {
		if b == n {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported baud rate %d", ErrSettings, n)
}

type Settings struct {
	Baud     int
	CharSize int // data bits, 5 to 8
	StopBits int // 1 or 2
	Flow     Flow
	// Timeout bounds each Read. Zero blocks. The line discipline counts
	// in tenths of a second up to 25.5s.
	Timeout time.Duration
}

func Default() Settings {
	return Settings{Baud: 115200, CharSize: 8, StopBits: 1, Timeout: 10 * time.Second}
}

func (s Settings) Validate() error {
	if _, err := ParseBaud(strconv.Itoa(s.Baud)); err != nil {
		return err
	}
	if s.CharSize < 5 || s.CharSize > 8 {
		return fmt.Errorf("%w: character width %d", ErrSettings, s.CharSize)
	}
	if s.StopBits != 1 && s.StopBits != 2 {
		return fmt.Errorf("%w: stop bits %d", ErrSettings, s.StopBits)
	}
	if s.Flow < FlowNone || s.Flow > FlowSoftware {
		return fmt.Errorf("%w: %v", ErrSettings, s.Flow)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrSettings)
	}
	return nil
}

// deciseconds converts the timeout to the line discipline's VTIME units.
func (s Settings) deciseconds() uint8 {
	if s.Timeout <= 0 {
		return 0
	}
	d := (s.Timeout + 99*time.Millisecond) / (100 * time.Millisecond)
	return uint8(min(d, 255))
}

// Port is an open serial device.
type Port struct {
	tty     *tty.TTY
	restore func() error
	in      io.Reader
	timed   bool
}

// Open opens path, switches it to raw mode and applies s.
func Open(path string, s Settings) (*Port, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	t, err := tty.OpenDevice(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	restore, err := t.Raw()
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("raw mode on %s: %w", path, err)
	}
	p := &Port{tty: t, restore: restore, in: t.Input(), timed: s.deciseconds() > 0}
	if err := configure(int(t.Input().Fd()), s); err != nil {
		p.Close()
		return nil, fmt.Errorf("configuring %s: %w", path, err)
	}
	return p, nil
}

// Read returns ErrTimeout when nothing arrived within the timeout. An
// expired VTIME read comes back from the file as io.EOF.
func (p *Port) Read(b []byte) (int, error) {
	n, err := p.in.Read(b)
	if n == 0 && len(b) > 0 && p.timed && (err == nil || errors.Is(err, io.EOF)) {
		return 0, ErrTimeout
	}
	return n, err
}

func (p *Port) Write(b []byte) (int, error) { return p.tty.Output().Write(b) }

// Flush waits until everything written has been sent.
func (p *Port) Flush() error { return drain(int(p.tty.Output().Fd())) }

// Close restores the previous line settings and closes the device.
func (p *Port) Close() error {
	return errors.Join(p.restore(), p.tty.Close())
}
