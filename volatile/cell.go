// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package volatile

// Cell is the raw handle to one value of type T at a fixed address. It does
// not interpret the bit pattern and has no exported accessors: a Cell only
// becomes readable or writeable through the wiring functions.
type Cell[T Value] struct {
	bus  Bus
	addr Addr
}

// On returns the cell for a T at addr on bus b.
func On[T Value](b Bus, addr Addr) Cell[T] {
	if b == nil {
		panic("volatile: nil bus")
	}
	return Cell[T]{bus: b, addr: addr}
}

// At returns the cell for a T at addr in physical memory.
func At[T Value](addr Addr) Cell[T] { return On[T](Physical, addr) }

func (c Cell[T]) Addr() Addr { return c.addr }
func (c Cell[T]) Size() int  { return sizeOf[T]() }

func (c Cell[T]) load() T { return T(c.bus.Load(c.addr, sizeOf[T]())) }

func (c Cell[T]) store(v T) { c.bus.Store(c.addr, sizeOf[T](), uint64(v)) }
