// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package timer reads the BCM2837 system timer.
package timer

import (
	"time"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

type counter = volatile.ReadOnly[bcm2837.Micros]

// Timer only reads the free-running counter, which is certified for use
// from any goroutine, so a Timer may be shared freely.
type Timer struct {
	lo, hi volatile.Shared[counter]
}

func New(regs *bcm2837.SysTimer) *Timer {
	return &Timer{
		lo: volatile.ShareCell[bcm2837.Micros](volatile.NewUnique(regs.CLO)),
		hi: volatile.ShareCell[bcm2837.Micros](volatile.NewUnique(regs.CHI)),
	}
}

func (*Timer) Sync() {}

// Now returns the time since the counter started. The high word is read
// twice so a carry between the two halves is never seen half done.
func (t *Timer) Now() time.Duration {
	lo, hi := t.lo.Peek(), t.hi.Peek()
	for {
		h := hi.Read()
		l := lo.Read()
		if hi.Read() == h {
			return time.Duration(uint64(h)<<32|uint64(l)) * time.Microsecond
		}
	}
}

// SpinSleep busy-waits for at least d.
func (t *Timer) SpinSleep(d time.Duration) {
	start := t.Now()
	for t.Now()-start < d {
	}
}
