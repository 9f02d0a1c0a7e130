// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package volatile gives typed, direction-checked access to memory-mapped
// hardware registers.
//
// A register is declared once, with the capability its datasheet grants:
// ReadOnly registers only have Read, WriteOnly registers only have Write,
// ReadWrite registers have both. Using the wrong direction does not compile.
// Every Read and Write is exactly one access on the register's Bus, issued
// at the point it appears in the program.
package volatile

import (
	"fmt"
	"unsafe"
)

// Addr is the fixed address of one hardware register.
type Addr uintptr

func (a Addr) String() string { return fmt.Sprintf("%08X", uint64(a)) }

// Offset returns the address off bytes past base.
func Offset(base Addr, off uintptr) Addr { return base + Addr(off) }

// Value is the set of bit patterns a register can hold.
type Value interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func sizeOf[T Value]() int {
	var v T
	return int(unsafe.Sizeof(v))
}
