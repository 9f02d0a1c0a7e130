// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package sim

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/bus"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/config"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/trace"
)

func manualConfig() config.Board {
	cfg := config.Default()
	cfg.Timer.Mode = "manual"
	return cfg
}

func enabledUART(t *testing.T) (*MiniUART, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	u := NewMiniUART(&out)
	require.NoError(t, u.Store(auxEnables, 1, bcm2837.AuxEnableMiniUART))
	require.NoError(t, u.Store(muCntl, 1, bcm2837.CntlRxEnable|bcm2837.CntlTxEnable))
	return u, &out
}

func TestMiniUARTTransmit(t *testing.T) {
	u, out := enabledUART(t)
	require.NoError(t, u.Store(muIO, 1, 'h'))
	require.NoError(t, u.Store(muIO, 1, 'i'))
	assert.Equal(t, "hi", out.String())
	assert.Equal(t, 2, u.Sent())

	lsr, err := u.Load(muLSR, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(bcm2837.TxAvailable|bcm2837.TxIdle), lsr)
}

func TestMiniUARTHoldsTxUntilEnabled(t *testing.T) {
	var out bytes.Buffer
	u := NewMiniUART(&out)
	require.NoError(t, u.Store(auxEnables, 1, 1))
	for i := range FIFODepth + 2 {
		require.NoError(t, u.Store(muIO, 1, uint64('a'+i)))
	}
	assert.Empty(t, out.String())
	lsr, _ := u.Load(muLSR, 1)
	assert.Zero(t, lsr&uint64(bcm2837.TxAvailable))

	require.NoError(t, u.Store(muCntl, 1, bcm2837.CntlTxEnable))
	assert.Equal(t, "abcdefgh", out.String())
}

func TestMiniUARTReceive(t *testing.T) {
	u, _ := enabledUART(t)
	u.Feed([]byte("ok"))
	lsr, _ := u.Load(muLSR, 1)
	assert.Equal(t, bcm2837.DataReady, bcm2837.LineStatus(lsr)&bcm2837.DataReady)

	stat, _ := u.Load(muStat, 4)
	assert.Equal(t, uint64(2), stat>>16&0xf)

	c, _ := u.Load(muIO, 1)
	assert.Equal(t, uint64('o'), c)
	c, _ = u.Load(muIO, 1)
	assert.Equal(t, uint64('k'), c)
	lsr, _ = u.Load(muLSR, 1)
	assert.Zero(t, lsr&uint64(bcm2837.DataReady))
}

func TestMiniUARTConnect(t *testing.T) {
	u, _ := enabledUART(t)
	ch := make(chan byte, 4)
	u.Connect(ch)
	ch <- 'x'
	close(ch)
	c, err := u.Load(muIO, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64('x'), c)
	lsr, err := u.Load(muLSR, 1)
	require.NoError(t, err)
	assert.Zero(t, lsr&uint64(bcm2837.DataReady))
}

func TestMiniUARTClearFIFOs(t *testing.T) {
	u, _ := enabledUART(t)
	u.Feed([]byte("stale"))
	require.NoError(t, u.Store(muIIR, 1, bcm2837.IIRClearRxFIFO|bcm2837.IIRClearTxFIFO))
	lsr, _ := u.Load(muLSR, 1)
	assert.Zero(t, lsr&uint64(bcm2837.DataReady))
}

func TestMiniUARTFaults(t *testing.T) {
	u := NewMiniUART(io.Discard)
	_, err := u.Load(muLSR, 1)
	assert.ErrorIs(t, err, ErrDisabled)

	u, _ = enabledUART(t)
	assert.ErrorIs(t, u.Store(muLSR, 1, 0), bus.ErrReadOnly)
	assert.ErrorIs(t, u.Store(muStat, 4, 0), bus.ErrReadOnly)
	assert.ErrorIs(t, u.Store(auxIRQ, 1, 0), bus.ErrReadOnly)
	_, err = u.Load(0x80, 4)
	assert.ErrorIs(t, err, bus.ErrUnmapped)
}

func TestSysTimerCompare(t *testing.T) {
	tm := NewManualTimer(0)
	require.NoError(t, tm.Store(timerC0+4, 4, 100))
	tm.Tick(99)
	cs, _ := tm.Load(timerCS, 4)
	assert.Zero(t, cs)
	tm.Tick(1)
	cs, _ = tm.Load(timerCS, 4)
	assert.Equal(t, uint64(0b10), cs)

	require.NoError(t, tm.Store(timerCS, 4, 0b10))
	cs, _ = tm.Load(timerCS, 4)
	assert.Zero(t, cs)

	assert.ErrorIs(t, tm.Store(timerCLO, 4, 0), bus.ErrReadOnly)
	c1, _ := tm.Load(timerC0+4, 4)
	assert.Equal(t, uint64(100), c1)
}

func TestSysTimerStepPerRead(t *testing.T) {
	tm := NewManualTimer(5)
	lo, _ := tm.Load(timerCLO, 4)
	assert.Equal(t, uint64(5), lo)
	lo, _ = tm.Load(timerCLO, 4)
	assert.Equal(t, uint64(10), lo)
	hi, _ := tm.Load(timerCHI, 4)
	assert.Zero(t, hi)
	assert.Equal(t, uint64(10), tm.Now())
}

func TestGPIOFaults(t *testing.T) {
	g := NewGPIO()
	_, err := g.Load(gpSET0, 4)
	assert.ErrorIs(t, err, bus.ErrWriteOnly)
	assert.ErrorIs(t, g.Store(gpLEV0, 4, 1), bus.ErrReadOnly)
	require.NoError(t, g.Store(gpEDS0, 4, 1))
}

func TestBoardRegistersAllBlocks(t *testing.T) {
	var file bytes.Buffer
	b, err := NewBoard(manualConfig(), io.Discard, WithTrace(&file), WithHistory())
	require.NoError(t, err)

	names := map[string]bool{}
	for _, n := range b.Registry.Entries() {
		names[n.Name] = true
	}
	for _, want := range []string{"AUX_MU_IO_REG", "GPFSEL0", "GPPUDCLK1", "TIMER_C3"} {
		assert.True(t, names[want], want)
	}

	ws := b.Mem.Windows()
	require.Len(t, ws, 3)
	assert.Equal(t, "systimer", ws[0].Name)
	assert.Equal(t, uint64(0x3F003000), ws[0].Base)

	b.Timer.Tick(42)
	assert.Equal(t, bcm2837.Micros(42), b.Regs.Timer.CLO.Read())
	_, events, err := trace.ReadAll(&file)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(0x3F003004), events[0].Addr)
}

func TestBoardRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.RAMSize = 0
	_, err := NewBoard(cfg, io.Discard)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestMiniUARTIdlePollsAskForBackOff(t *testing.T) {
	u, _ := enabledUART(t)
	for range IdlePolls {
		_, wait, err := u.LoadIdle(muLSR, 1)
		require.NoError(t, err)
		require.Zero(t, wait)
	}
	_, wait, err := u.LoadIdle(muLSR, 1)
	require.NoError(t, err)
	assert.Equal(t, IdleSleep, wait)

	u.Feed([]byte("x"))
	lsr, wait, err := u.LoadIdle(muLSR, 1)
	require.NoError(t, err)
	assert.Zero(t, wait)
	assert.NotZero(t, lsr&uint64(bcm2837.DataReady))
}

func TestTraceLeavesOutIdlePolls(t *testing.T) {
	b, err := NewBoard(manualConfig(), io.Discard, WithHistory())
	require.NoError(t, err)
	b.Regs.Aux.Enables.Write(bcm2837.AuxEnableMiniUART)
	b.Trace.Reset()

	for range IdlePolls + 5 {
		b.Regs.Aux.MuLSR.Read()
	}
	assert.Len(t, b.Trace.Events(), IdlePolls)
	assert.Equal(t, uint64(5), b.Trace.Skipped())
}
