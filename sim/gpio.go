// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package sim

import (
	"sync"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/bus"
)

const (
	Pins = 54

	gpFSEL0   = 0x00
	gpFSEL5   = 0x14
	gpSET0    = 0x1c
	gpSET1    = 0x20
	gpCLR0    = 0x28
	gpCLR1    = 0x2c
	gpLEV0    = 0x34
	gpLEV1    = 0x38
	gpEDS0    = 0x40
	gpAFEN1   = 0x8c
	gpPUD     = 0x94
	gpPUDCLK0 = 0x98
	gpPUDCLK1 = 0x9c
)

// GPIO models the pin function selects, output latches and input levels.
// Edge detect and pull registers are plain storage.
type GPIO struct {
	mu     sync.Mutex
	fsel   [6]uint32
	latch  [2]uint32
	input  [2]uint32
	detect [(gpAFEN1-gpEDS0)/4 + 1]uint32
	pud    uint32
	pudclk [2]uint32
}

func NewGPIO() *GPIO { return &GPIO{} }

// Function reports the 3-bit function select of pin.
func (g *GPIO) Function(pin int) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fsel[pin/10] >> (3 * (pin % 10)) & 0b111
}

// Drive sets the level an external circuit puts on an input pin.
func (g *GPIO) Drive(pin int, high bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if high {
		g.input[pin/32] |= 1 << (pin % 32)
	} else {
		g.input[pin/32] &^= 1 << (pin % 32)
	}
}

// level is what GPLEV reads: the latch for output pins, the driven level
// for everything else.
func (g *GPIO) level(bank int) uint32 {
	var v uint32
	for bit := range 32 {
		pin := bank*32 + bit
		if pin >= Pins {
			break
		}
		src := g.input[bank]
		if g.fsel[pin/10]>>(3*(pin%10))&0b111 == 0b001 {
			src = g.latch[bank]
		}
		v |= src & (1 << bit)
	}
	return v
}

// Level reports the level of pin as software would read it.
func (g *GPIO) Level(pin int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.level(pin/32)&(1<<(pin%32)) != 0
}

func (g *GPIO) Load(off uint32, size int) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case off <= gpFSEL5 && off%4 == 0:
		return uint64(g.fsel[off/4]), nil
	case off == gpSET0, off == gpSET1, off == gpCLR0, off == gpCLR1:
		return 0, bus.ErrWriteOnly
	case off == gpLEV0:
		return uint64(g.level(0)), nil
	case off == gpLEV1:
		return uint64(g.level(1)), nil
	case off >= gpEDS0 && off <= gpAFEN1 && off%4 == 0:
		return uint64(g.detect[(off-gpEDS0)/4]), nil
	case off == gpPUD:
		return uint64(g.pud), nil
	case off == gpPUDCLK0, off == gpPUDCLK1:
		return uint64(g.pudclk[(off-gpPUDCLK0)/4]), nil
	}
	return 0, bus.ErrUnmapped
}

func (g *GPIO) Store(off uint32, size int, v uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	w := uint32(v)
	switch {
	case off <= gpFSEL5 && off%4 == 0:
		g.fsel[off/4] = w
	case off == gpSET0, off == gpSET1:
		g.latch[(off-gpSET0)/4] |= w
	case off == gpCLR0, off == gpCLR1:
		g.latch[(off-gpCLR0)/4] &^= w
	case off == gpLEV0, off == gpLEV1:
		return bus.ErrReadOnly
	case off == gpEDS0, off == gpEDS0+4:
		g.detect[(off-gpEDS0)/4] &^= w
	case off > gpEDS0+4 && off <= gpAFEN1 && off%4 == 0:
		g.detect[(off-gpEDS0)/4] = w
	case off == gpPUD:
		g.pud = w
	case off == gpPUDCLK0, off == gpPUDCLK1:
		g.pudclk[(off-gpPUDCLK0)/4] = w
	default:
		return bus.ErrUnmapped
	}
	return nil
}
