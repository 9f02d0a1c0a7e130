// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

//go:build windows

package hostterm

import (
	"io"
	"os"

	"golang.org/x/sys/windows"
)

type State struct {
	h    windows.Handle
	mode uint32
}

// MakeRaw turns off line input, echo and input processing on the console
// behind in and turns on virtual terminal input.
func MakeRaw(in *os.File) (*State, error) {
	h := windows.Handle(in.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return nil, err
	}
	raw := mode &^ (windows.ENABLE_ECHO_INPUT | windows.ENABLE_PROCESSED_INPUT | windows.ENABLE_LINE_INPUT)
	raw |= windows.ENABLE_VIRTUAL_TERMINAL_INPUT
	if err := windows.SetConsoleMode(h, raw); err != nil {
		return nil, err
	}
	return &State{h: h, mode: mode}, nil
}

func (s *State) Restore() error { return windows.SetConsoleMode(s.h, s.mode) }

// ctrlZ turns the console's end of file on ^Z back into the keystroke.
type ctrlZ struct{ r io.Reader }

func (c ctrlZ) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if err == io.EOF && n == 0 && len(p) > 0 {
		p[0] = 0x1a
		return 1, nil
	}
	return n, err
}

// Input is the reader keystrokes come from.
func Input(in *os.File) io.Reader { return ctrlZ{in} }
