// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package uart drives the Raspberry Pi mini UART.
package uart

import (
	"errors"
	"time"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/gpio"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

var ErrTimedOut = errors.New("read timed out")

// Clock is a monotonic time source, normally the system timer.
type Clock interface {
	Now() time.Duration
}

type MiniUart struct {
	regs    *bcm2837.Aux
	clock   Clock
	timeout time.Duration
}

// New initializes the mini UART: enables it as an auxiliary device,
// selects 8-bit data at the given baud divisor, hands GPIO 14 and 15 to
// it (TXD1/RXD1 are alternate function 5), clears both FIFOs and turns on
// the transmitter and receiver. Reads never time out until
// SetReadTimeout is called.
func New(regs *bcm2837.Aux, pins *bcm2837.GPIO, clock Clock, baudDivisor uint16) *MiniUart {
	volatile.OrMask[uint8](regs.Enables, bcm2837.AuxEnableMiniUART)

	regs.MuCntl.Write(0)
	regs.MuIER.Write(0)
	regs.MuLCR.Write(bcm2837.LCR8Bit)
	regs.MuMCR.Write(0)
	regs.MuBaud.Write(baudDivisor)

	gpio.New(pins, 14).IntoAlt(gpio.Alt5)
	gpio.New(pins, 15).IntoAlt(gpio.Alt5)

	regs.MuIIR.Write(bcm2837.IIRClearRxFIFO | bcm2837.IIRClearTxFIFO)
	regs.MuCntl.Write(bcm2837.CntlRxEnable | bcm2837.CntlTxEnable)
	return &MiniUart{regs: regs, clock: clock}
}

// SetReadTimeout bounds how long WaitForByte and Read wait. Zero means
// wait forever.
func (u *MiniUart) SetReadTimeout(d time.Duration) { u.timeout = d }

// WriteByte blocks until the transmit FIFO has room, then queues b.
func (u *MiniUart) WriteByte(b byte) error {
	for !volatile.HasMask(u.regs.MuLSR, bcm2837.TxAvailable) {
	}
	u.regs.MuIO.Write(b)
	return nil
}

// HasByte reports whether a byte is ready. If it is, the next ReadByte
// returns at once.
func (u *MiniUart) HasByte() bool {
	return volatile.HasMask(u.regs.MuLSR, bcm2837.DataReady)
}

// WaitForByte blocks until a byte is ready or the read timeout passes.
func (u *MiniUart) WaitForByte() error {
	start := u.clock.Now()
	for !u.HasByte() {
		if u.timeout > 0 && u.clock.Now()-start > u.timeout {
			return ErrTimedOut
		}
	}
	return nil
}

// ReadByte blocks, ignoring the read timeout, until a byte arrives.
func (u *MiniUart) ReadByte() (byte, error) {
	for !u.HasByte() {
	}
	return u.regs.MuIO.Read(), nil
}

// Read waits up to the read timeout for the first byte, then takes
// whatever else is already waiting, without waiting for more.
func (u *MiniUart) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := u.WaitForByte(); err != nil {
		return 0, err
	}
	n := 0
	for n < len(p) && u.HasByte() {
		p[n] = u.regs.MuIO.Read()
		n++
	}
	return n, nil
}

// Write sends every byte of p.
func (u *MiniUart) Write(p []byte) (int, error) {
	for _, b := range p {
		u.WriteByte(b)
	}
	return len(p), nil
}

// WriteString sends s with each "\n" preceded by "\r".
func (u *MiniUart) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			u.WriteByte('\r')
		}
		u.WriteByte(s[i])
	}
	return len(s), nil
}
