// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package bus

import "time"

// Device is a peripheral mapped into a window of the bus. Offsets are
// relative to the start of the window. A device reports accesses the
// hardware would not accept by returning an error, which the bus turns
// into a Fault.
type Device interface {
	Load(off uint32, size int) (uint64, error)
	Store(off uint32, size int, v uint64) error
}

// Idler is a Device that can report a load which found it idle, such as
// a driver spinning on a status register with no traffic. The returned
// wait is how long the caller should back off; the bus passes it up
// instead of sleeping under its lock.
type Idler interface {
	Device
	LoadIdle(off uint32, size int) (v uint64, wait time.Duration, err error)
}

// Window is one attached device as seen from the bus.
type Window struct {
	Name string
	Base uint64
	Size uint32
	dev  Device
}

func (w Window) contains(addr uint64) bool {
	return addr >= w.Base && addr < w.Base+uint64(w.Size)
}
