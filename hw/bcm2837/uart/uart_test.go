// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package uart_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/bus"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/gpio"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/timer"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/uart"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/config"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/sim"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/trace"
)

func newBoard(t *testing.T, opts ...sim.Option) (*sim.Board, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Timer.Mode = "manual"
	cfg.Timer.Step = 1
	var out bytes.Buffer
	b, err := sim.NewBoard(cfg, &out, opts...)
	require.NoError(t, err)
	return b, &out
}

func newUart(b *sim.Board) *uart.MiniUart {
	return uart.New(b.Regs.Aux, b.Regs.GPIO, timer.New(b.Regs.Timer), b.Config.UART.BaudDivisor)
}

func TestInitSequence(t *testing.T) {
	b, _ := newBoard(t, sim.WithHistory())
	newUart(b)

	lcr, cntl, baud := b.UART.Config()
	assert.Equal(t, uint8(0b11), lcr)
	assert.Equal(t, uint8(0b11), cntl)
	assert.Equal(t, uint16(270), baud)
	assert.Equal(t, 115313, b.UART.Baud())
	assert.Equal(t, uint32(gpio.Alt5), b.GPIO.Function(14))
	assert.Equal(t, uint32(gpio.Alt5), b.GPIO.Function(15))

	var stores []string
	for _, e := range b.Trace.Events() {
		if e.Op == trace.Store {
			stores = append(stores, strings.SplitN(e.String(), " ", 2)[1])
		}
	}
	// Sequence numbers are stripped; everything before the first store is
	// the read of AUX_ENABLES.
	assert.Equal(t, []string{
		"W 3F215004/8 = 0x1",
		"W 3F215060/8 = 0x0",
		"W 3F215044/8 = 0x0",
		"W 3F21504C/8 = 0x3",
		"W 3F215050/8 = 0x0",
		"W 3F215068/16 = 0x10e",
		"W 3F200004/32 = 0x2000",
		"W 3F200004/32 = 0x12000",
		"W 3F215048/8 = 0x6",
		"W 3F215060/8 = 0x3",
	}, stores)
}

func TestWriteTranslatesNewlines(t *testing.T) {
	b, out := newBoard(t)
	u := newUart(b)

	n, err := u.WriteString("hi\nthere\n")
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, "hi\r\nthere\r\n", out.String())

	out.Reset()
	n, err = u.Write([]byte("raw\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "raw\n", out.String())
}

func TestReadTakesWhatIsReady(t *testing.T) {
	b, _ := newBoard(t)
	u := newUart(b)
	assert.False(t, u.HasByte())

	b.UART.Feed([]byte("abc"))
	assert.True(t, u.HasByte())
	buf := make([]byte, 8)
	n, err := u.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))

	b.UART.Feed([]byte("z"))
	c, err := u.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('z'), c)

	n, err = u.Read(nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestReadTimesOut(t *testing.T) {
	b, _ := newBoard(t)
	u := newUart(b)
	u.SetReadTimeout(500 * time.Microsecond)

	_, err := u.Read(make([]byte, 1))
	assert.ErrorIs(t, err, uart.ErrTimedOut)
	assert.ErrorIs(t, u.WaitForByte(), uart.ErrTimedOut)

	b.UART.Feed([]byte{0x42})
	assert.NoError(t, u.WaitForByte())
}

func TestUseBeforeEnableFaults(t *testing.T) {
	b, _ := newBoard(t)
	err := bus.Catch(func() { b.Regs.Aux.MuIO.Write('x') })
	assert.ErrorIs(t, err, sim.ErrDisabled)
}
