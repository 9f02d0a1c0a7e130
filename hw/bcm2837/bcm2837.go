// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package bcm2837 declares the register blocks of the Raspberry Pi 3
// peripherals used by the kernel. The *_regs.go files are generated from
// the YAML descriptions next to them.
package bcm2837

//go:generate go run ../../cmd/regdec -o aux_regs.go aux.yaml
//go:generate go run ../../cmd/regdec -o gpio_regs.go gpio.yaml
//go:generate go run ../../cmd/regdec -o systimer_regs.go systimer.yaml

import (
	"fmt"
	"strings"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

// IOBase is where the peripherals appear in the ARM physical address space.
const IOBase volatile.Addr = 0x3F000000

// LineStatus is the mini UART line status register.
type LineStatus uint8

const (
	DataReady   LineStatus = 1 << 0
	RxOverrun   LineStatus = 1 << 1
	TxAvailable LineStatus = 1 << 5
	TxIdle      LineStatus = 1 << 6
)

func (s LineStatus) String() string {
	var names []string
	for _, b := range []struct {
		bit  LineStatus
		name string
	}{
		{DataReady, "DataReady"},
		{RxOverrun, "RxOverrun"},
		{TxAvailable, "TxAvailable"},
		{TxIdle, "TxIdle"},
	} {
		if s&b.bit != 0 {
			names = append(names, b.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("LineStatus(%#02x)", uint8(s))
	}
	return strings.Join(names, "|")
}

// Micros is one half of the 1 MHz system timer counter. The hardware only
// ever advances it, so it may be read from any goroutine.
type Micros uint32

func (Micros) Sync() {}

const (
	AuxEnableMiniUART = 1 << 0

	// AUX_MU_CNTL_REG
	CntlRxEnable = 1 << 0
	CntlTxEnable = 1 << 1

	// AUX_MU_LCR_REG
	LCR8Bit = 0b11

	// AUX_MU_IIR_REG, on write
	IIRClearRxFIFO = 1 << 1
	IIRClearTxFIFO = 1 << 2

	// 250 MHz system clock / (8 * (270 + 1)) ~ 115200 baud.
	Baud115200 = 270
)

// Peripherals is every register block the kernel uses.
type Peripherals struct {
	Aux   *Aux
	GPIO  *GPIO
	Timer *SysTimer
}

// New wires the peripherals found at ioBase on b.
func New(b volatile.Bus, ioBase volatile.Addr) *Peripherals {
	return &Peripherals{
		Aux:   NewAux(b, volatile.Offset(ioBase, AuxOffset)),
		GPIO:  NewGPIO(b, volatile.Offset(ioBase, GPIOOffset)),
		Timer: NewSysTimer(b, volatile.Offset(ioBase, SysTimerOffset)),
	}
}

// Claim registers every block with reg, one owner per block.
func (p *Peripherals) Claim(reg *volatile.Registry) error {
	for _, c := range []struct {
		owner string
		regs  []volatile.Named
	}{
		{"aux", p.Aux.Describe("")},
		{"gpio", p.GPIO.Describe("")},
		{"systimer", p.Timer.Describe("")},
	} {
		if err := reg.Claim(c.owner, c.regs...); err != nil {
			return err
		}
	}
	return nil
}
