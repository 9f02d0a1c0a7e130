// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package bus

import (
	"errors"
	"fmt"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

var (
	ErrUnmapped  = errors.New("no memory or device at address")
	ErrROM       = errors.New("write to ROM area")
	ErrAlignment = errors.New("unaligned access")
	ErrReadOnly  = errors.New("store to read-only register")
	ErrWriteOnly = errors.New("load from write-only register")
	ErrSize      = errors.New("unsupported access size")
)

// Fault is what a bus access panics with when the hardware would have
// faulted. volatile.Bus has no error path, so like a real data abort it
// unwinds the accessing code.
type Fault struct {
	Op   string
	Addr volatile.Addr
	Size int
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("bus fault: %s of %d bytes at %v: %v", f.Op, f.Size, f.Addr, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Catch runs fn and returns the Fault it raised, if any. Other panics are
// passed on.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*Fault)
			if !ok {
				panic(r)
			}
			err = f
		}
	}()
	fn()
	return nil
}
