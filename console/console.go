// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package console is the kernel's text console on the mini UART.
package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/uart"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

// Console owns the UART. Every access goes through one lock, which is
// what makes a Console safe to share between goroutines.
type Console struct {
	uart *volatile.Unique[*uart.MiniUart]
}

func New(u *uart.MiniUart) *Console {
	return &Console{uart: volatile.NewUnique(u)}
}

func (*Console) Sync() {}

// ReadByte waits for one byte of input or for ctx to end.
func (c *Console) ReadByte(ctx context.Context) (byte, error) {
	for {
		var b byte
		ready := false
		c.uart.With(func(u *uart.MiniUart) {
			if u.HasByte() {
				b, _ = u.ReadByte()
				ready = true
			}
		})
		if ready {
			return b, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
	}
}

// Read reads raw bytes, waiting at most the read timeout for the first.
func (c *Console) Read(p []byte) (n int, err error) {
	c.uart.With(func(u *uart.MiniUart) { n, err = u.Read(p) })
	return n, err
}

// SetReadTimeout sets the timeout Read uses. Zero waits forever.
func (c *Console) SetReadTimeout(d time.Duration) {
	c.uart.With(func(u *uart.MiniUart) { u.SetReadTimeout(d) })
}

// Write sends p as text: every "\n" goes out as "\r\n".
func (c *Console) Write(p []byte) (int, error) {
	c.uart.With(func(u *uart.MiniUart) { u.WriteString(string(p)) })
	return len(p), nil
}

// Raw returns a writer that sends bytes untranslated, for binary
// protocols.
func (c *Console) Raw() io.ReadWriter { return raw{c} }

type raw struct{ c *Console }

func (r raw) Read(p []byte) (int, error) { return r.c.Read(p) }

func (r raw) Write(p []byte) (n int, err error) {
	r.c.uart.With(func(u *uart.MiniUart) { n, err = u.Write(p) })
	return n, err
}

func (c *Console) Print(a ...any) { fmt.Fprint(c, a...) }

func (c *Console) Println(a ...any) { fmt.Fprintln(c, a...) }

func (c *Console) Printf(format string, a ...any) { fmt.Fprintf(c, format, a...) }
