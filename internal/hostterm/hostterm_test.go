// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package hostterm

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ch <-chan byte) string {
	var sb strings.Builder
	for b := range ch {
		sb.WriteByte(b)
	}
	return sb.String()
}

func TestPumpDeliversInputAndCloses(t *testing.T) {
	ch := make(chan byte)
	done := make(chan error, 1)
	go func() { done <- Pump(context.Background(), strings.NewReader("ls\r"), ch) }()
	assert.Equal(t, "ls\r", drain(ch))
	assert.NoError(t, <-done)
}

func TestPumpReportsReadError(t *testing.T) {
	boom := errors.New("boom")
	ch := make(chan byte, 4)
	err := Pump(context.Background(), iotest.ErrReader(boom), ch)
	assert.ErrorIs(t, err, boom)
	_, open := <-ch
	assert.False(t, open)
}

func TestPumpStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := make(chan byte)
	require.NoError(t, Pump(ctx, strings.NewReader("x"), ch))
	_, open := <-ch
	assert.False(t, open)
}

func TestPipeIsNotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()
	assert.False(t, IsTerminal(r))
	_, err = MakeRaw(r)
	assert.Error(t, err)
}

func TestCRLF(t *testing.T) {
	var sb strings.Builder
	n, err := CRLF(&sb).Write([]byte("level=INFO msg=hi\nnext\n"))
	require.NoError(t, err)
	assert.Equal(t, 23, n)
	assert.Equal(t, "level=INFO msg=hi\r\nnext\r\n", sb.String())
}
