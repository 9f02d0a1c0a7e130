// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package sim

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/bus"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837"
)

var ErrDisabled = errors.New("mini UART not enabled in AUX_ENABLES")

const (
	FIFODepth = 8

	// After IdlePolls status reads without traffic the UART asks the bus
	// to back off IdleSleep per read, so a driver spinning on the line
	// status does not eat a host CPU.
	IdlePolls = 1000
	IdleSleep = 200 * time.Microsecond
)

// offsets inside the aux window
const (
	auxIRQ     = 0x00
	auxEnables = 0x04
	muIO       = 0x40
	muIER      = 0x44
	muIIR      = 0x48
	muLCR      = 0x4c
	muMCR      = 0x50
	muLSR      = 0x54
	muMSR      = 0x58
	muScratch  = 0x5c
	muCntl     = 0x60
	muStat     = 0x64
	muBaud     = 0x68
)

// MiniUART models the auxiliary block with its mini UART. Transmitted
// bytes go to out. Received bytes come from Feed or from a connected
// channel.
type MiniUART struct {
	mu      sync.Mutex
	out     io.Writer
	input   <-chan byte
	enables uint8
	ier     uint8
	lcr     uint8
	mcr     uint8
	scratch uint8
	cntl    uint8
	baud    uint16
	rx      []byte
	tx      []byte
	idle    int
	sent    int
	outErr  error
}

func NewMiniUART(out io.Writer) *MiniUART {
	return &MiniUART{out: out, idle: IdlePolls}
}

// Feed puts bytes on the receive line.
func (u *MiniUART) Feed(p []byte) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rx = append(u.rx, p...)
	u.idle = IdlePolls
}

// Connect makes the UART poll ch for input, the way a host console
// reader goroutine delivers keystrokes. Input stops when ch is closed.
func (u *MiniUART) Connect(ch <-chan byte) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.input = ch
}

// Sent reports how many bytes have been transmitted.
func (u *MiniUART) Sent() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sent
}

// OutputErr is the first error writing transmitted bytes.
func (u *MiniUART) OutputErr() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.outErr
}

func (u *MiniUART) enabled() bool { return u.enables&bcm2837.AuxEnableMiniUART != 0 }

func (u *MiniUART) rxEnabled() bool { return u.cntl&bcm2837.CntlRxEnable != 0 }

func (u *MiniUART) poll() {
	if u.input == nil {
		return
	}
	for len(u.rx) < FIFODepth {
		select {
		case b, ok := <-u.input:
			if !ok {
				u.input = nil
				return
			}
			u.rx = append(u.rx, b)
			u.idle = IdlePolls
		default:
			return
		}
	}
}

func (u *MiniUART) status() bcm2837.LineStatus {
	u.poll()
	var s bcm2837.LineStatus
	if u.rxEnabled() && len(u.rx) > 0 {
		s |= bcm2837.DataReady
	}
	if len(u.tx) < FIFODepth {
		s |= bcm2837.TxAvailable
	}
	if len(u.tx) == 0 {
		s |= bcm2837.TxIdle
	}
	return s
}

func (u *MiniUART) wentIdle() bool {
	if u.idle > 0 {
		u.idle--
		return false
	}
	return true
}

// Load is LoadIdle with the back-off taken before returning.
func (u *MiniUART) Load(off uint32, size int) (uint64, error) {
	v, wait, err := u.LoadIdle(off, size)
	if wait > 0 {
		time.Sleep(wait)
	}
	return v, err
}

// LoadIdle reports a line status read that found nothing to do, after
// IdlePolls of them in a row, by returning IdleSleep as the wait.
func (u *MiniUART) LoadIdle(off uint32, size int) (v uint64, wait time.Duration, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	v, idle, err := u.load(off)
	if idle {
		wait = IdleSleep
	}
	return v, wait, err
}

func (u *MiniUART) load(off uint32) (v uint64, idle bool, err error) {
	switch off {
	case auxIRQ:
		return 0, false, nil
	case auxEnables:
		return uint64(u.enables), false, nil
	}
	if off < muIO || off > muBaud {
		return 0, false, bus.ErrUnmapped
	}
	if !u.enabled() {
		return 0, false, ErrDisabled
	}

	switch off {
	case muIO:
		u.poll()
		if !u.rxEnabled() || len(u.rx) == 0 {
			return 0, false, nil
		}
		b := u.rx[0]
		u.rx = u.rx[1:]
		return uint64(b), false, nil
	case muIER:
		return uint64(u.ier), false, nil
	case muIIR:
		// FIFOs enabled, no interrupt pending.
		return 0xc1, false, nil
	case muLCR:
		return uint64(u.lcr), false, nil
	case muMCR:
		return uint64(u.mcr), false, nil
	case muLSR:
		s := u.status()
		return uint64(s), s&bcm2837.DataReady == 0 && u.wentIdle(), nil
	case muMSR:
		return 0x20, false, nil
	case muScratch:
		return uint64(u.scratch), false, nil
	case muCntl:
		return uint64(u.cntl), false, nil
	case muStat:
		return uint64(u.stat()), false, nil
	case muBaud:
		return uint64(u.baud), false, nil
	}
	return 0, false, bus.ErrUnmapped
}

// stat builds AUX_MU_STAT_REG: fill levels in bits 16-19 and 24-27.
func (u *MiniUART) stat() uint32 {
	s := uint32(u.status())
	var v uint32
	if s&uint32(bcm2837.DataReady) != 0 {
		v |= 1 << 0
	}
	if s&uint32(bcm2837.TxAvailable) != 0 {
		v |= 1 << 1
	}
	if s&uint32(bcm2837.TxIdle) != 0 {
		v |= 1<<3 | 1<<9
	}
	v |= uint32(min(len(u.rx), FIFODepth)) << 16
	v |= uint32(len(u.tx)) << 24
	return v
}

func (u *MiniUART) Store(off uint32, size int, v uint64) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch off {
	case auxIRQ:
		return bus.ErrReadOnly
	case auxEnables:
		u.enables = uint8(v) & 0b111
		return nil
	}
	if off < muIO || off > muBaud {
		return bus.ErrUnmapped
	}
	if !u.enabled() {
		return ErrDisabled
	}

	switch off {
	case muIO:
		if len(u.tx) < FIFODepth {
			u.tx = append(u.tx, byte(v))
		}
		u.flush()
	case muIER:
		u.ier = uint8(v)
	case muIIR:
		if v&bcm2837.IIRClearRxFIFO != 0 {
			u.rx = u.rx[:0]
		}
		if v&bcm2837.IIRClearTxFIFO != 0 {
			u.tx = u.tx[:0]
		}
	case muLCR:
		u.lcr = uint8(v)
	case muMCR:
		u.mcr = uint8(v)
	case muScratch:
		u.scratch = uint8(v)
	case muCntl:
		u.cntl = uint8(v)
		u.flush()
	case muBaud:
		u.baud = uint16(v)
	case muLSR, muMSR, muStat:
		return bus.ErrReadOnly
	default:
		return bus.ErrUnmapped
	}
	return nil
}

func (u *MiniUART) flush() {
	if u.cntl&bcm2837.CntlTxEnable == 0 || len(u.tx) == 0 {
		return
	}
	u.idle = IdlePolls
	if u.outErr == nil {
		_, u.outErr = u.out.Write(u.tx)
	}
	u.sent += len(u.tx)
	u.tx = u.tx[:0]
}

// Baud reports the configured baud rate for a 250 MHz system clock.
func (u *MiniUART) Baud() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return 250_000_000 / (8 * (int(u.baud) + 1))
}

// Config reports the line configuration registers, for tests.
func (u *MiniUART) Config() (lcr, cntl uint8, baud uint16) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lcr, u.cntl, u.baud
}
