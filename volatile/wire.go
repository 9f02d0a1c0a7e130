// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package volatile

// View is a register's address rule: it names the cell the register lives
// in. A View must be pure; calling it twice yields the same cell.
type View[T Value] func() Cell[T]

// Field is the View of the T that sits off bytes into a register block at
// base. Offsets come from unsafe.Offsetof on the block's layout struct.
func Field[T Value](b Bus, base Addr, off uintptr) View[T] {
	return func() Cell[T] { return On[T](b, Offset(base, off)) }
}

// Readonly wires a register that may only be read.
func Readonly[T Value](view View[T]) ReadOnly[T] {
	return ReadOnly[T]{cell: view()}
}

// Writeonly wires a register that may only be written.
func Writeonly[T Value](view View[T]) WriteOnly[T] {
	return WriteOnly[T]{cell: view()}
}

// Readwrite wires a register that may be read and written. It is exactly
// Readonly and Writeonly applied to the same view.
func Readwrite[T Value](view View[T]) ReadWrite[T] {
	r, w := Readonly(view), Writeonly(view)
	if r.cell.addr != w.cell.addr {
		panic("volatile: register view at " + r.cell.addr.String() + " is not stable")
	}
	return ReadWrite[T]{cell: r.cell}
}

// HasMask reports whether every bit of mask is set in r.
func HasMask[T Value](r Readable[T], mask T) bool { return r.Read()&mask == mask }

// The read-modify-write helpers below are two accesses. A register shared
// between goroutines must be behind a Unique when they are used.

// OrMask sets the bits of mask in rw.
func OrMask[T Value](rw ReadWriteable[T], mask T) { rw.Write(rw.Read() | mask) }

// AndMask clears every bit of rw that is not in mask.
func AndMask[T Value](rw ReadWriteable[T], mask T) { rw.Write(rw.Read() & mask) }

// ReplaceBits replaces the field mask<<pos of rw with value<<pos.
func ReplaceBits[T Value](rw ReadWriteable[T], value, mask T, pos uint8) {
	rw.Write(rw.Read()&^(mask<<pos) | (value&mask)<<pos)
}
