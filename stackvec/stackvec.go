// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package stackvec is a vector whose storage is a slice supplied by the
// caller. It never allocates, so it works before there is a heap.
package stackvec

import (
	"errors"
	"fmt"
	"iter"
)

var ErrFull = errors.New("stack vector is full")

type StackVec[T any] struct {
	storage []T
	n       int
}

// New returns an empty vector with capacity len(storage).
func New[T any](storage []T) *StackVec[T] {
	return &StackVec[T]{storage: storage}
}

// WithLen returns a vector holding the first n elements of storage. It
// panics if n exceeds len(storage).
func WithLen[T any](storage []T, n int) *StackVec[T] {
	if n < 0 || n > len(storage) {
		panic(fmt.Sprintf("stackvec: length %d out of range for capacity %d", n, len(storage)))
	}
	return &StackVec[T]{storage: storage, n: n}
}

func (v *StackVec[T]) Cap() int      { return len(v.storage) }
func (v *StackVec[T]) Len() int      { return v.n }
func (v *StackVec[T]) IsEmpty() bool { return v.n == 0 }
func (v *StackVec[T]) IsFull() bool  { return v.n == len(v.storage) }

// Truncate shortens the vector to n elements. It does nothing if the
// vector is already shorter.
func (v *StackVec[T]) Truncate(n int) {
	if n < v.n {
		clear(v.storage[n:v.n])
		v.n = n
	}
}

// Push appends x, or returns ErrFull.
func (v *StackVec[T]) Push(x T) error {
	if v.IsFull() {
		return ErrFull
	}
	v.storage[v.n] = x
	v.n++
	return nil
}

// Pop removes and returns the last element.
func (v *StackVec[T]) Pop() (T, bool) {
	var zero T
	if v.n == 0 {
		return zero, false
	}
	v.n--
	x := v.storage[v.n]
	v.storage[v.n] = zero
	return x, true
}

// At returns element i. It panics if i is out of range.
func (v *StackVec[T]) At(i int) T {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("stackvec: index %d out of range [0:%d]", i, v.n))
	}
	return v.storage[i]
}

// Slice is the live elements. It aliases the storage.
func (v *StackVec[T]) Slice() []T { return v.storage[:v.n:v.n] }

// Storage gives the backing slice back to the caller.
func (v *StackVec[T]) Storage() []T { return v.storage }

func (v *StackVec[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range v.n {
			if !yield(i, v.storage[i]) {
				return
			}
		}
	}
}
