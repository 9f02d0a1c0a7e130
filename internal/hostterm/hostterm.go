// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package hostterm puts the host terminal into raw mode and feeds its
// keystrokes to a simulated UART.
package hostterm

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is a terminal that MakeRaw can switch.
func IsTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

// Pump reads r one byte at a time and sends each byte on ch. It closes ch
// when r fails or ctx ends, and returns the read error, which is nil at
// end of input.
func Pump(ctx context.Context, r io.Reader, ch chan<- byte) error {
	defer close(ch)
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case ch <- buf[0]:
			case <-ctx.Done():
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// CRLF returns a writer that sends "\n" as "\r\n", for text written to a
// terminal in raw mode.
func CRLF(w io.Writer) io.Writer { return crlf{w} }

type crlf struct{ w io.Writer }

func (c crlf) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
