// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package sim is a hosted Raspberry Pi 3: a simulated bus with models of
// the peripherals the kernel drives, wired at their real addresses.
package sim

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/bus"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/config"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/logging"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/trace"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

// Window sizes of the modeled blocks.
const (
	AuxSize      = 0x6c
	GPIOSize     = 0xa0
	SysTimerSize = 0x1c
)

type Board struct {
	Config   config.Board
	Mem      *bus.Mem
	Bus      volatile.Bus
	Trace    *trace.Bus
	UART     *MiniUART
	GPIO     *GPIO
	Timer    *SysTimer
	Regs     *bcm2837.Peripherals
	Registry *volatile.Registry
}

type options struct {
	traceSink io.Writer
	history   bool
	logger    *slog.Logger
}

type Option func(*options)

// WithTrace records every bus access to w.
func WithTrace(w io.Writer) Option { return func(o *options) { o.traceSink = w } }

// WithHistory keeps every bus access in Board.Trace.
func WithHistory() Option { return func(o *options) { o.history = true } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// NewBoard builds the machine described by cfg. The mini UART transmits
// to out.
func NewBoard(cfg config.Board, out io.Writer, opts ...Option) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Board{
		Config:   cfg,
		Mem:      bus.NewMem(cfg.RAMSize, cfg.ROMSize),
		UART:     NewMiniUART(out),
		GPIO:     NewGPIO(),
		Registry: &volatile.Registry{},
	}
	if cfg.Timer.Mode == "manual" {
		b.Timer = NewManualTimer(cfg.Timer.Step)
	} else {
		b.Timer = NewWallTimer()
	}

	ioBase := volatile.Addr(cfg.IOBase)
	for _, d := range []struct {
		name string
		dev  bus.Device
		off  uintptr
		size uint32
	}{
		{"aux", b.UART, bcm2837.AuxOffset, AuxSize},
		{"gpio", b.GPIO, bcm2837.GPIOOffset, GPIOSize},
		{"systimer", b.Timer, bcm2837.SysTimerOffset, SysTimerSize},
	} {
		base := volatile.Offset(ioBase, d.off)
		b.Mem.Attach(d.name, d.dev, base, d.size)
		o.logger.Debug("attached device", "name", d.name, logging.Hex("base", uint64(base)), "size", d.size)
	}

	b.Bus = b.Mem
	if o.traceSink != nil || o.history {
		var topts []trace.Option
		if o.traceSink != nil {
			topts = append(topts, trace.WithSink(o.traceSink))
		}
		if o.history {
			topts = append(topts, trace.WithHistory())
		}
		t, err := trace.New(b.Mem, append(topts, trace.WithBoard(cfg.Name))...)
		if err != nil {
			return nil, err
		}
		b.Trace = t
		b.Bus = t
		o.logger.Info("tracing bus accesses", "session", t.Header().Session)
	}

	b.Regs = bcm2837.New(b.Bus, ioBase)
	if err := b.Regs.Claim(b.Registry); err != nil {
		return nil, fmt.Errorf("claiming peripheral registers: %w", err)
	}
	return b, nil
}

// LoadKernel copies an image file to the configured kernel address.
func (b *Board) LoadKernel(path string) (int64, error) {
	return b.Mem.LoadFile(path, int64(b.Config.KernelAddr))
}
