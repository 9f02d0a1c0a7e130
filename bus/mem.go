// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package bus is a simulated system bus: RAM plus memory-mapped devices.
// It implements volatile.Bus, so register code written for the hardware
// runs against it unchanged.
package bus

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

type Mem struct {
	mu      sync.Mutex
	ram     []byte
	romSize uint64
	windows []Window
}

// NewMem returns a bus with ramSize bytes of RAM at address 0, the first
// romSize bytes of which reject stores.
func NewMem(ramSize, romSize uint64) *Mem {
	if romSize > ramSize {
		log.Panicf("ROM size %d larger than RAM size %d", romSize, ramSize)
	}
	return &Mem{ram: make([]byte, ramSize), romSize: romSize}
}

// Attach maps dev at [base, base+size).
func (m *Mem) Attach(name string, dev Device, base volatile.Addr, size uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := Window{Name: name, Base: uint64(base), Size: size, dev: dev}
	if w.Base < uint64(len(m.ram)) {
		log.Panicf("device %s at %v overlaps RAM", name, base)
	}
	for _, o := range m.windows {
		if w.Base < o.Base+uint64(o.Size) && o.Base < w.Base+uint64(w.Size) {
			log.Panicf("device %s at %v already attached as %s", name, base, o.Name)
		}
	}
	m.windows = append(m.windows, w)
	slices.SortFunc(m.windows, func(a, b Window) int {
		switch {
		case a.Base < b.Base:
			return -1
		case a.Base > b.Base:
			return 1
		}
		return 0
	})
}

// Windows lists the attached devices in address order.
func (m *Mem) Windows() []Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.windows)
}

func (m *Mem) RAMSize() uint64 { return uint64(len(m.ram)) }

func (m *Mem) window(addr uint64) (Window, bool) {
	for _, w := range m.windows {
		if w.contains(addr) {
			return w, true
		}
	}
	return Window{}, false
}

func (m *Mem) check(op string, addr volatile.Addr, size int) {
	switch size {
	case 1, 2, 4, 8:
	default:
		panic(&Fault{Op: op, Addr: addr, Size: size, Err: ErrSize})
	}
	if uint64(addr)%uint64(size) != 0 {
		panic(&Fault{Op: op, Addr: addr, Size: size, Err: ErrAlignment})
	}
}

// Load reads size bytes at addr. A load that an idle device asked to be
// paced sleeps after the bus lock is released.
func (m *Mem) Load(addr volatile.Addr, size int) uint64 {
	v, wait := m.LoadIdle(addr, size)
	if wait > 0 {
		time.Sleep(wait)
	}
	return v
}

// LoadIdle is Load that hands the device's back-off to the caller instead
// of sleeping. wait is zero unless the device is an Idler that found
// nothing to do.
func (m *Mem) LoadIdle(addr volatile.Addr, size int) (v uint64, wait time.Duration) {
	m.check("load", addr, size)

	m.mu.Lock()
	defer m.mu.Unlock()

	a := uint64(addr)
	if w, ok := m.window(a); ok {
		var err error
		if d, ok := w.dev.(Idler); ok {
			v, wait, err = d.LoadIdle(uint32(a-w.Base), size)
		} else {
			v, err = w.dev.Load(uint32(a-w.Base), size)
		}
		if err != nil {
			panic(&Fault{Op: "load", Addr: addr, Size: size, Err: err})
		}
		return v, wait
	}
	if a+uint64(size) > uint64(len(m.ram)) {
		panic(&Fault{Op: "load", Addr: addr, Size: size, Err: ErrUnmapped})
	}
	b := m.ram[a : a+uint64(size)]
	switch size {
	case 1:
		return uint64(b[0]), 0
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), 0
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), 0
	}
	return binary.LittleEndian.Uint64(b), 0
}

func (m *Mem) Store(addr volatile.Addr, size int, v uint64) {
	m.check("store", addr, size)

	m.mu.Lock()
	defer m.mu.Unlock()

	a := uint64(addr)
	if w, ok := m.window(a); ok {
		if err := w.dev.Store(uint32(a-w.Base), size, v); err != nil {
			panic(&Fault{Op: "store", Addr: addr, Size: size, Err: err})
		}
		return
	}
	if a < m.romSize {
		panic(&Fault{Op: "store", Addr: addr, Size: size, Err: ErrROM})
	}
	if a+uint64(size) > uint64(len(m.ram)) {
		panic(&Fault{Op: "store", Addr: addr, Size: size, Err: ErrUnmapped})
	}
	b := m.ram[a : a+uint64(size)]
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, v)
	}
}

// WriteAt copies p into RAM at off. The ROM area is writable this way, it
// is how images get loaded.
func (m *Mem) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off < 0 || off > int64(len(m.ram)) {
		return 0, fmt.Errorf("invalid address %08X", off)
	}
	n := copy(m.ram[off:], p)
	if n < len(p) {
		return n, fmt.Errorf("image too large at %08X: %w", off, io.ErrShortWrite)
	}
	return n, nil
}

// ReadAt copies RAM at off into p.
func (m *Mem) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off < 0 || off >= int64(len(m.ram)) {
		return 0, io.EOF
	}
	n := copy(p, m.ram[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// LoadFile copies the file at path into RAM at startAddr and returns the
// number of bytes read.
func (m *Mem) LoadFile(path string, startAddr int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(io.NewOffsetWriter(m, startAddr), bufio.NewReader(f))
	if err != nil {
		return n, fmt.Errorf("loading %s: %w", path, err)
	}
	return n, nil
}
