// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package timer_test

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/timer"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/config"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/sim"
)

func manualBoard(t *testing.T, step uint64) *sim.Board {
	t.Helper()
	cfg := config.Default()
	cfg.Timer.Mode = "manual"
	cfg.Timer.Step = step
	b, err := sim.NewBoard(cfg, io.Discard)
	require.NoError(t, err)
	return b
}

func TestNowCombinesHalves(t *testing.T) {
	b := manualBoard(t, 0)
	tm := timer.New(b.Regs.Timer)
	assert.Equal(t, time.Duration(0), tm.Now())

	b.Timer.Tick(1500)
	assert.Equal(t, 1500*time.Microsecond, tm.Now())

	b.Timer.Tick(1 << 32)
	assert.Equal(t, time.Duration(1<<32+1500)*time.Microsecond, tm.Now())
}

func TestSpinSleep(t *testing.T) {
	b := manualBoard(t, 10)
	tm := timer.New(b.Regs.Timer)
	start := tm.Now()
	tm.SpinSleep(time.Millisecond)
	assert.GreaterOrEqual(t, tm.Now()-start, time.Millisecond)
}

func TestSharedAcrossGoroutines(t *testing.T) {
	b := manualBoard(t, 1)
	tm := timer.New(b.Regs.Timer)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := tm.Now()
			for range 100 {
				now := tm.Now()
				assert.GreaterOrEqual(t, now, prev)
				prev = now
			}
		}()
	}
	wg.Wait()
}
