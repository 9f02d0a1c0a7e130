// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package stackvec

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPop(t *testing.T) {
	var storage [4]int
	v := New(storage[:])
	assert.True(t, v.IsEmpty())
	assert.Equal(t, 4, v.Cap())

	for i := range 4 {
		require.NoError(t, v.Push(i*10))
	}
	assert.True(t, v.IsFull())
	assert.ErrorIs(t, v.Push(99), ErrFull)
	assert.Equal(t, []int{0, 10, 20, 30}, v.Slice())

	x, ok := v.Pop()
	assert.True(t, ok)
	assert.Equal(t, 30, x)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 20, v.At(2))
	assert.Panics(t, func() { v.At(3) })
}

func TestPopEmpty(t *testing.T) {
	v := New(make([]string, 2))
	_, ok := v.Pop()
	assert.False(t, ok)
}

func TestWithLenAndTruncate(t *testing.T) {
	storage := []int{1, 2, 3, 4, 5}
	v := WithLen(storage, 3)
	assert.Equal(t, []int{1, 2, 3}, v.Slice())
	assert.Panics(t, func() { WithLen(storage, 6) })

	v.Truncate(5)
	assert.Equal(t, 3, v.Len())
	v.Truncate(1)
	assert.Equal(t, []int{1}, v.Slice())
	assert.Equal(t, []int{1, 0, 0, 4, 5}, v.Storage())
}

func TestSliceCannotGrowIntoStorage(t *testing.T) {
	v := WithLen([]int{1, 2, 3}, 1)
	s := append(v.Slice(), 9)
	assert.Equal(t, 2, v.Storage()[1])
	assert.Equal(t, []int{1, 9}, s)
}

func TestAll(t *testing.T) {
	v := WithLen([]string{"a", "b", "c"}, 2)
	var got []string
	for i, s := range v.All() {
		got = append(got, s)
		assert.Equal(t, v.At(i), s)
	}
	assert.Equal(t, []string{"a", "b"}, got)

	for range v.All() {
		break
	}
	assert.True(t, slices.Equal([]string{"a", "b"}, v.Slice()))
}
