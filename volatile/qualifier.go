// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package volatile

import "fmt"

// Qualifier is the access direction a datasheet gives a register.
type Qualifier uint8

const (
	ReadOnlyAccess Qualifier = iota + 1
	WriteOnlyAccess
	ReadWriteAccess
)

var qualifierStrings = [...]string{
	ReadOnlyAccess:  "r",
	WriteOnlyAccess: "w",
	ReadWriteAccess: "rw",
}

func (q Qualifier) String() string {
	if int(q) < len(qualifierStrings) && qualifierStrings[q] != "" {
		return qualifierStrings[q]
	}
	return fmt.Sprintf("Qualifier(%d)", uint8(q))
}

func (q Qualifier) CanRead() bool  { return q == ReadOnlyAccess || q == ReadWriteAccess }
func (q Qualifier) CanWrite() bool { return q == WriteOnlyAccess || q == ReadWriteAccess }

// ParseQualifier accepts the datasheet spellings r, w and rw.
func ParseQualifier(s string) (Qualifier, error) {
	switch s {
	case "r", "ro", "read-only":
		return ReadOnlyAccess, nil
	case "w", "wo", "write-only":
		return WriteOnlyAccess, nil
	case "rw", "read-write":
		return ReadWriteAccess, nil
	}
	return 0, fmt.Errorf("volatile: unknown access qualifier %q", s)
}

// Readable is the capability to load a register.
type Readable[T Value] interface {
	Read() T
}

// Writeable is the capability to store to a register.
type Writeable[T Value] interface {
	Write(v T)
}

type ReadWriteable[T Value] interface {
	Readable[T]
	Writeable[T]
}

// Register is what every qualified register reports about itself.
type Register interface {
	Addr() Addr
	Size() int
	Qualifier() Qualifier
}

// ReadOnly is a register the hardware only lets you read.
type ReadOnly[T Value] struct{ cell Cell[T] }

// Read performs one load of the register.
func (r ReadOnly[T]) Read() T            { return r.cell.load() }
func (r ReadOnly[T]) Addr() Addr         { return r.cell.addr }
func (r ReadOnly[T]) Size() int          { return r.cell.Size() }
func (ReadOnly[T]) Qualifier() Qualifier { return ReadOnlyAccess }
func (r ReadOnly[T]) String() string     { return describe(r) }

// WriteOnly is a register the hardware only lets you write.
type WriteOnly[T Value] struct{ cell Cell[T] }

// Write performs one store to the register.
func (w WriteOnly[T]) Write(v T)          { w.cell.store(v) }
func (w WriteOnly[T]) Addr() Addr         { return w.cell.addr }
func (w WriteOnly[T]) Size() int          { return w.cell.Size() }
func (WriteOnly[T]) Qualifier() Qualifier { return WriteOnlyAccess }
func (w WriteOnly[T]) String() string     { return describe(w) }

// ReadWrite is a register with both capabilities. It has the same
// representation as ReadOnly and WriteOnly.
type ReadWrite[T Value] struct{ cell Cell[T] }

func (rw ReadWrite[T]) Read() T           { return rw.cell.load() }
func (rw ReadWrite[T]) Write(v T)         { rw.cell.store(v) }
func (rw ReadWrite[T]) Addr() Addr        { return rw.cell.addr }
func (rw ReadWrite[T]) Size() int         { return rw.cell.Size() }
func (ReadWrite[T]) Qualifier() Qualifier { return ReadWriteAccess }
func (rw ReadWrite[T]) String() string    { return describe(rw) }

func describe(r Register) string {
	return fmt.Sprintf("%v/%d(%v)", r.Addr(), r.Size()*8, r.Qualifier())
}
