// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package volatile_test

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

type access struct {
	op   byte
	addr volatile.Addr
	size int
	v    uint64
}

// memBus is plain storage that logs every access.
type memBus struct {
	mem map[volatile.Addr]uint64
	log []access
}

func newMemBus() *memBus { return &memBus{mem: map[volatile.Addr]uint64{}} }

func (b *memBus) Load(addr volatile.Addr, size int) uint64 {
	v := b.mem[addr]
	b.log = append(b.log, access{'r', addr, size, v})
	return v
}

func (b *memBus) Store(addr volatile.Addr, size int, v uint64) {
	b.mem[addr] = v
	b.log = append(b.log, access{'w', addr, size, v})
}

func (b *memBus) String() string { return fmt.Sprint(b.log) }

func TestReadOnlyReturnsCurrentBits(t *testing.T) {
	b := newMemBus()
	r := volatile.Readonly(volatile.Field[uint32](b, 0x1000, 4))
	b.mem[0x1004] = 0xDEADBEEF
	assert.Equal(t, uint32(0xDEADBEEF), r.Read())
	b.mem[0x1004] = 7
	assert.Equal(t, uint32(7), r.Read())
	assert.Equal(t, volatile.ReadOnlyAccess, r.Qualifier())
	assert.Len(t, b.log, 2)
}

func TestWriteOnlyStores(t *testing.T) {
	b := newMemBus()
	w := volatile.Writeonly(volatile.Field[uint8](b, 0x2000, 0))
	w.Write(0x5A)
	require.Len(t, b.log, 1)
	assert.Equal(t, access{'w', 0x2000, 1, 0x5A}, b.log[0])
	assert.Equal(t, volatile.WriteOnlyAccess, w.Qualifier())
}

func TestReadWriteRoundTrip(t *testing.T) {
	b := newMemBus()
	rw := volatile.Readwrite(volatile.Field[uint16](b, 0x3000, 2))
	for _, v := range []uint16{0, 1, 0x8000, 0xFFFF, 0x1234} {
		rw.Write(v)
		assert.Equal(t, v, rw.Read())
	}
	assert.Equal(t, 2, rw.Size())
}

func TestReadwriteMatchesSeparateForms(t *testing.T) {
	b := newMemBus()
	view := volatile.Field[uint32](b, 0x4000, 8)
	rw := volatile.Readwrite(view)
	r := volatile.Readonly(view)
	w := volatile.Writeonly(view)

	assert.Equal(t, r.Addr(), rw.Addr())
	assert.Equal(t, w.Addr(), rw.Addr())
	assert.Equal(t, unsafe.Sizeof(r), unsafe.Sizeof(rw))
	assert.Equal(t, unsafe.Sizeof(w), unsafe.Sizeof(rw))

	w.Write(42)
	assert.Equal(t, uint32(42), rw.Read())
	rw.Write(43)
	assert.Equal(t, uint32(43), r.Read())
	assert.Equal(t, []access{
		{'w', 0x4008, 4, 42},
		{'r', 0x4008, 4, 42},
		{'w', 0x4008, 4, 43},
		{'r', 0x4008, 4, 43},
	}, b.log)
}

func TestReadwriteRejectsUnstableView(t *testing.T) {
	b := newMemBus()
	n := 0
	view := func() volatile.Cell[uint32] {
		n++
		return volatile.On[uint32](b, volatile.Addr(n*4))
	}
	assert.Panics(t, func() { volatile.Readwrite[uint32](view) })
}

func TestAccessOrderIsProgramOrder(t *testing.T) {
	b := newMemBus()
	w1 := volatile.Writeonly(volatile.Field[uint32](b, 0x100, 0))
	w2 := volatile.Writeonly(volatile.Field[uint32](b, 0x100, 4))
	w3 := volatile.Writeonly(volatile.Field[uint32](b, 0x100, 8))

	w1.Write(1)
	w2.Write(2)
	w3.Write(3)
	// Same address, different values: every store must reach the bus.
	w3.Write(4)
	w3.Write(4)

	assert.Equal(t, []access{
		{'w', 0x100, 4, 1},
		{'w', 0x104, 4, 2},
		{'w', 0x108, 4, 3},
		{'w', 0x108, 4, 4},
		{'w', 0x108, 4, 4},
	}, b.log)
}

func TestUnusedReadStillReachesBus(t *testing.T) {
	b := newMemBus()
	r := volatile.Readonly(volatile.Field[uint64](b, 0, 0))
	_ = r.Read()
	_ = r.Read()
	assert.Len(t, b.log, 2)
}

// counter is a device whose single register counts hardware ticks.
type counter struct{ ticks uint32 }

func (c *counter) tick() { c.ticks++ }

func (c *counter) Load(volatile.Addr, int) uint64 { return uint64(c.ticks) }
func (c *counter) Store(volatile.Addr, int, uint64) {
	panic("counter is read-only")
}

func TestTickCounter(t *testing.T) {
	dev := &counter{}
	reg := volatile.Readonly(volatile.Field[uint32](dev, 0x3F003000, 4))
	assert.Equal(t, uint32(0), reg.Read())
	dev.tick()
	dev.tick()
	dev.tick()
	assert.Equal(t, uint32(3), reg.Read())

	_, writeable := any(reg).(volatile.Writeable[uint32])
	assert.False(t, writeable)
}

type status uint8

func TestMaskHelpers(t *testing.T) {
	b := newMemBus()
	rw := volatile.Readwrite(volatile.Field[status](b, 0, 0))
	rw.Write(0b0001)
	volatile.OrMask[status](rw, 0b0110)
	assert.Equal(t, status(0b0111), rw.Read())
	assert.True(t, volatile.HasMask[status](rw, 0b0110))
	assert.False(t, volatile.HasMask[status](rw, 0b1000))
	volatile.AndMask[status](rw, 0b0011)
	assert.Equal(t, status(0b0011), rw.Read())

	wide := volatile.Readwrite(volatile.Field[uint32](b, 4, 0))
	wide.Write(0xFFFFFFFF)
	volatile.ReplaceBits[uint32](wide, 2, 0b111, 12)
	assert.Equal(t, uint32(0xFFFFAFFF), wide.Read())

	wide.Write(0)
	volatile.ReplaceBits[uint32](wide, 0b101, 0b111, 3)
	assert.Equal(t, uint32(0b101_000), wide.Read())
}

func TestRegisterString(t *testing.T) {
	b := newMemBus()
	r := volatile.Readonly(volatile.Field[uint32](b, 0x3F215000, 0x54))
	assert.Equal(t, "3F215054/32(r)", r.String())
	assert.Empty(t, b.log)
}

func TestParseQualifier(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want volatile.Qualifier
	}{
		{"r", volatile.ReadOnlyAccess},
		{"read-only", volatile.ReadOnlyAccess},
		{"w", volatile.WriteOnlyAccess},
		{"rw", volatile.ReadWriteAccess},
	} {
		q, err := volatile.ParseQualifier(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, q)
	}
	_, err := volatile.ParseQualifier("x")
	assert.Error(t, err)
	assert.True(t, volatile.ReadWriteAccess.CanRead())
	assert.False(t, volatile.WriteOnlyAccess.CanRead())
}

func TestNilBusPanics(t *testing.T) {
	assert.Panics(t, func() { volatile.On[uint8](nil, 0) })
}
