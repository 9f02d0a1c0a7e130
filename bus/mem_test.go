// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package bus_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/bus"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

// scratch is a device with one read-only and one write-only word.
type scratch struct {
	status uint64
	last   uint64
}

func (s *scratch) Load(off uint32, size int) (uint64, error) {
	if off == 4 {
		return 0, bus.ErrWriteOnly
	}
	return s.status, nil
}

func (s *scratch) Store(off uint32, size int, v uint64) error {
	if off == 0 {
		return bus.ErrReadOnly
	}
	s.last = v
	return nil
}

func TestRAMIsLittleEndian(t *testing.T) {
	m := bus.NewMem(0x1000, 0)
	w := volatile.Readwrite(volatile.Field[uint32](m, 0x100, 0))
	w.Write(0x11223344)
	b := volatile.Readonly(volatile.Field[uint8](m, 0x100, 0))
	assert.Equal(t, uint8(0x44), b.Read())
	h := volatile.Readonly(volatile.Field[uint16](m, 0x100, 2))
	assert.Equal(t, uint16(0x1122), h.Read())
	d := volatile.Readwrite(volatile.Field[uint64](m, 0x200, 0))
	d.Write(1 << 40)
	assert.Equal(t, uint64(1<<40), d.Read())
}

func TestDeviceWindow(t *testing.T) {
	m := bus.NewMem(0x1000, 0)
	dev := &scratch{status: 0x60}
	m.Attach("scratch", dev, 0x3F000000, 8)

	status := volatile.Readonly(volatile.Field[uint32](m, 0x3F000000, 0))
	data := volatile.Writeonly(volatile.Field[uint32](m, 0x3F000000, 4))
	assert.Equal(t, uint32(0x60), status.Read())
	data.Write(9)
	assert.Equal(t, uint64(9), dev.last)

	// Wiring mistakes show up as faults.
	wrong := volatile.Readwrite(volatile.Field[uint32](m, 0x3F000000, 0))
	err := bus.Catch(func() { wrong.Write(1) })
	require.ErrorIs(t, err, bus.ErrReadOnly)
	var f *bus.Fault
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "store", f.Op)
	assert.Equal(t, volatile.Addr(0x3F000000), f.Addr)

	err = bus.Catch(func() { volatile.Readwrite(volatile.Field[uint32](m, 0x3F000000, 4)).Read() })
	assert.ErrorIs(t, err, bus.ErrWriteOnly)
}

func TestFaults(t *testing.T) {
	m := bus.NewMem(0x1000, 0x100)
	for name, tc := range map[string]struct {
		fn   func()
		want error
	}{
		"unmapped":  {func() { m.Load(0x2000, 4) }, bus.ErrUnmapped},
		"rom":       {func() { m.Store(0x10, 4, 1) }, bus.ErrROM},
		"unaligned": {func() { m.Load(0x202, 4) }, bus.ErrAlignment},
		"size":      {func() { m.Store(0x200, 3, 0) }, bus.ErrSize},
		"past end":  {func() { m.Store(0x1000, 1, 0) }, bus.ErrUnmapped},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, bus.Catch(tc.fn), tc.want)
		})
	}
	assert.NoError(t, bus.Catch(func() { m.Load(0x10, 4) }))
	assert.PanicsWithValue(t, "boom", func() { bus.Catch(func() { panic("boom") }) })
}

func TestAttachOverlapPanics(t *testing.T) {
	m := bus.NewMem(0x1000, 0)
	m.Attach("a", &scratch{}, 0x2000, 0x100)
	assert.Panics(t, func() { m.Attach("b", &scratch{}, 0x20F0, 0x10) })
	assert.Panics(t, func() { m.Attach("ram", &scratch{}, 0x800, 0x10) })
	m.Attach("c", &scratch{}, 0x1000, 0x100)

	ws := m.Windows()
	require.Len(t, ws, 2)
	assert.Equal(t, "c", ws[0].Name)
	assert.Equal(t, "a", ws[1].Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4, 5}, 0o644))

	m := bus.NewMem(0x1000, 0x100)
	n, err := m.LoadFile(path, 0x80)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, uint64(0x04030201), m.Load(0x80, 4))

	buf := make([]byte, 5)
	_, err = m.ReadAt(buf, 0x80)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, buf)

	_, err = m.WriteAt(make([]byte, 16), 0xFF8)
	assert.Error(t, err)
}

// dozer is an idle device that signals when a load reaches it.
type dozer struct{ hit chan struct{} }

func (d dozer) Load(off uint32, size int) (uint64, error) {
	v, _, err := d.LoadIdle(off, size)
	return v, err
}
func (dozer) Store(uint32, int, uint64) error { return nil }
func (d dozer) LoadIdle(uint32, int) (uint64, time.Duration, error) {
	d.hit <- struct{}{}
	return 1, 200 * time.Millisecond, nil
}

func TestIdleBackOffIsOutsideTheLock(t *testing.T) {
	m := bus.NewMem(0x100, 0)
	d := dozer{hit: make(chan struct{}, 1)}
	m.Attach("dozer", d, 0x1000, 4)

	v, wait := m.LoadIdle(0x1000, 4)
	<-d.hit
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, 200*time.Millisecond, wait)

	done := make(chan struct{})
	go func() {
		m.Load(0x1000, 4)
		close(done)
	}()
	<-d.hit

	start := time.Now()
	volatile.Readwrite(volatile.Field[uint32](m, 0x10, 0)).Write(5)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "RAM store waited for the idle device")
	<-done
}
