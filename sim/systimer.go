// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package sim

import (
	"sync"
	"time"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/bus"
)

const (
	timerCS  = 0x00
	timerCLO = 0x04
	timerCHI = 0x08
	timerC0  = 0x0c
	timerC3  = 0x18
)

// SysTimer models the 1 MHz free-running system timer and its four
// compare registers. A wall clock timer follows the host clock; a manual
// one only moves on Tick, plus an optional step on every counter read so
// that code spinning on the timer makes progress in tests.
type SysTimer struct {
	mu    sync.Mutex
	start time.Time
	wall  bool
	now   uint64
	step  uint64
	last  uint64
	cs    uint32
	c     [4]uint32
}

func NewWallTimer() *SysTimer { return &SysTimer{start: time.Now(), wall: true} }

func NewManualTimer(step uint64) *SysTimer { return &SysTimer{step: step} }

// Tick advances a manual timer by n microseconds.
func (t *SysTimer) Tick(n uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now += n
	t.match()
}

// Now is the counter value in microseconds.
func (t *SysTimer) Now() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counter()
}

func (t *SysTimer) counter() uint64 {
	if t.wall {
		return uint64(time.Since(t.start).Microseconds())
	}
	return t.now
}

// match latches a compare hit for every C register the counter passed
// since the last check.
func (t *SysTimer) match() {
	now := t.counter()
	if now == t.last {
		return
	}
	lo, hi := uint32(t.last), uint32(now)
	span := now - t.last
	for i, c := range t.c {
		if span >= 1<<32 || uint32(c-lo-1) < uint32(hi-lo) {
			t.cs |= 1 << i
		}
	}
	t.last = now
}

func (t *SysTimer) Load(off uint32, size int) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case off == timerCS:
		t.match()
		return uint64(t.cs), nil
	case off == timerCLO:
		if !t.wall {
			t.now += t.step
		}
		t.match()
		return uint64(uint32(t.counter())), nil
	case off == timerCHI:
		return t.counter() >> 32, nil
	case off >= timerC0 && off <= timerC3 && off%4 == 0:
		return uint64(t.c[(off-timerC0)/4]), nil
	}
	return 0, bus.ErrUnmapped
}

func (t *SysTimer) Store(off uint32, size int, v uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case off == timerCS:
		t.cs &^= uint32(v) & 0xf
		return nil
	case off == timerCLO || off == timerCHI:
		return bus.ErrReadOnly
	case off >= timerC0 && off <= timerC3 && off%4 == 0:
		t.match()
		t.c[(off-timerC0)/4] = uint32(v)
		return nil
	}
	return bus.ErrUnmapped
}
