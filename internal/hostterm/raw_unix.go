// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

//go:build !windows

package hostterm

import (
	"io"
	"os"

	"golang.org/x/term"
)

type State struct {
	fd    int
	saved *term.State
}

// MakeRaw switches the terminal on in to raw mode. Restore undoes it.
func MakeRaw(in *os.File) (*State, error) {
	fd := int(in.Fd())
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &State{fd: fd, saved: saved}, nil
}

func (s *State) Restore() error { return term.Restore(s.fd, s.saved) }

// Input is the reader keystrokes come from.
func Input(in *os.File) io.Reader { return in }
