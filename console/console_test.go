// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package console_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/console"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/timer"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/uart"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/config"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/sim"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newConsole(t *testing.T) (*console.Console, *sim.Board, *syncBuffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Timer.Mode = "manual"
	cfg.Timer.Step = 1
	out := &syncBuffer{}
	b, err := sim.NewBoard(cfg, out)
	require.NoError(t, err)
	u := uart.New(b.Regs.Aux, b.Regs.GPIO, timer.New(b.Regs.Timer), cfg.UART.BaudDivisor)
	return console.New(u), b, out
}

func TestPrintTranslatesNewlines(t *testing.T) {
	con, _, out := newConsole(t)
	con.Println("Starting kernel shell...")
	con.Printf("%s=%d\n", "x", 3)
	con.Print("> ")
	assert.Equal(t, "Starting kernel shell...\r\nx=3\r\n> ", out.String())
}

func TestRawIsUntranslated(t *testing.T) {
	con, _, out := newConsole(t)
	n, err := con.Raw().Write([]byte{'\n', 0x01})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "\n\x01", out.String())
}

func TestReadByteHonoursContext(t *testing.T) {
	con, b, _ := newConsole(t)
	b.UART.Feed([]byte("a"))
	c, err := con.ReadByte(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte('a'), c)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = con.ReadByte(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReadTimeout(t *testing.T) {
	con, _, _ := newConsole(t)
	con.SetReadTimeout(100 * time.Microsecond)
	_, err := con.Read(make([]byte, 4))
	assert.ErrorIs(t, err, uart.ErrTimedOut)
}

func TestConcurrentWritersDoNotInterleaveLines(t *testing.T) {
	con, _, out := newConsole(t)
	shared := volatile.Share(volatile.NewUnique(con))

	var wg sync.WaitGroup
	for _, line := range []string{"aaaa", "bbbb", "cccc"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shared.Peek().Println(line)
		}()
	}
	wg.Wait()

	s := out.String()
	assert.Len(t, s, 18)
	for _, line := range []string{"aaaa\r\n", "bbbb\r\n", "cccc\r\n"} {
		assert.Contains(t, s, line)
	}
}
