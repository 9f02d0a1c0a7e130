// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package volatile

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Bus carries register accesses to the hardware. Each call is one access of
// size bytes (1, 2, 4 or 8) and must reach the device exactly once, in the
// order the calls are made.
type Bus interface {
	Load(addr Addr, size int) uint64
	Store(addr Addr, size int, v uint64)
}

// Physical is the memory bus of the machine the program runs on. It is only
// meaningful on bare metal or over a mapping of device memory.
var Physical Bus = physical{}

type physical struct{}

func (physical) Load(addr Addr, size int) uint64 {
	p := unsafe.Pointer(uintptr(addr))
	switch size {
	case 1:
		return uint64(load8((*uint8)(p)))
	case 2:
		return uint64(load16((*uint16)(p)))
	case 4:
		return uint64(atomic.LoadUint32((*uint32)(p)))
	case 8:
		return atomic.LoadUint64((*uint64)(p))
	}
	panic(fmt.Sprintf("volatile: bad access size %d at %v", size, addr))
}

func (physical) Store(addr Addr, size int, v uint64) {
	p := unsafe.Pointer(uintptr(addr))
	switch size {
	case 1:
		store8((*uint8)(p), uint8(v))
	case 2:
		store16((*uint16)(p), uint16(v))
	case 4:
		atomic.StoreUint32((*uint32)(p), uint32(v))
	case 8:
		atomic.StoreUint64((*uint64)(p), v)
	default:
		panic(fmt.Sprintf("volatile: bad access size %d at %v", size, addr))
	}
}

// sync/atomic has no 8 and 16 bit operations. Keeping these out of line
// stops the compiler from merging or dropping them.

//go:noinline
func load8(p *uint8) uint8 { return *p }

//go:noinline
func load16(p *uint16) uint16 { return *p }

//go:noinline
func store8(p *uint8, v uint8) { *p = v }

//go:noinline
func store16(p *uint16, v uint16) { *p = v }
