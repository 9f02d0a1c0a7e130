// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package gpio drives BCM2837 GPIO pins. A pin starts unconfigured and
// becomes an Input, Output or Alt pin, each with only the operations that
// make sense for it.
package gpio

import (
	"fmt"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

// Function is a pin's 3-bit function select value.
type Function uint32

const (
	FuncInput  Function = 0b000
	FuncOutput Function = 0b001
	Alt0       Function = 0b100
	Alt1       Function = 0b101
	Alt2       Function = 0b110
	Alt3       Function = 0b111
	Alt4       Function = 0b011
	Alt5       Function = 0b010
)

func (f Function) String() string {
	switch f {
	case FuncInput:
		return "input"
	case FuncOutput:
		return "output"
	case Alt0, Alt1, Alt2, Alt3:
		return fmt.Sprintf("alt%d", uint32(f-Alt0))
	case Alt4:
		return "alt4"
	case Alt5:
		return "alt5"
	}
	return fmt.Sprintf("Function(%d)", uint32(f))
}

const Pins = 54

type Pin struct {
	regs *bcm2837.GPIO
	n    int
}

// New returns pin n. It panics if the pin does not exist.
func New(regs *bcm2837.GPIO, n int) Pin {
	if n < 0 || n >= Pins {
		panic(fmt.Sprintf("gpio: pin %d out of range", n))
	}
	return Pin{regs: regs, n: n}
}

func (p Pin) Number() int { return p.n }

func (p Pin) bit() uint32 { return 1 << (p.n % 32) }

func (p Pin) into(f Function) {
	volatile.ReplaceBits[uint32](p.regs.Fsel[p.n/10], uint32(f), 0b111, uint8(3*(p.n%10)))
}

// Alt is a pin handed to a peripheral.
type Alt struct {
	Pin
	Func Function
}

func (p Pin) IntoAlt(f Function) Alt {
	p.into(f)
	return Alt{Pin: p, Func: f}
}

type Output struct{ Pin }

func (p Pin) IntoOutput() Output {
	p.into(FuncOutput)
	return Output{p}
}

func (o Output) Set()   { o.regs.Set[o.n/32].Write(o.bit()) }
func (o Output) Clear() { o.regs.Clr[o.n/32].Write(o.bit()) }

type Input struct{ Pin }

func (p Pin) IntoInput() Input {
	p.into(FuncInput)
	return Input{p}
}

// Level reports whether the pin is high.
func (i Input) Level() bool {
	return volatile.HasMask[uint32](i.regs.Lev[i.n/32], i.bit())
}
