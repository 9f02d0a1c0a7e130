// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package serial

import (
	"fmt"

	"golang.org/x/sys/unix"
)

var rates = map[int]uint32{
	110:    unix.B110,
	300:    unix.B300,
	600:    unix.B600,
	1200:   unix.B1200,
	2400:   unix.B2400,
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
}

var charSizes = map[int]uint32{5: unix.CS5, 6: unix.CS6, 7: unix.CS7, 8: unix.CS8}

func configure(fd int, s Settings) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	if err := apply(t, s); err != nil {
		return err
	}
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}

func apply(t *unix.Termios, s Settings) error {
	rate, ok := rates[s.Baud]
	if !ok {
		return fmt.Errorf("%w: unsupported baud rate %d", ErrSettings, s.Baud)
	}

	t.Cflag &^= unix.CBAUD | unix.CSIZE | unix.CSTOPB | unix.CRTSCTS | unix.PARENB
	t.Cflag |= rate | charSizes[s.CharSize] | unix.CREAD | unix.CLOCAL
	t.Ispeed = rate
	t.Ospeed = rate
	if s.StopBits == 2 {
		t.Cflag |= unix.CSTOPB
	}

	t.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY
	switch s.Flow {
	case FlowHardware:
		t.Cflag |= unix.CRTSCTS
	case FlowSoftware:
		t.Iflag |= unix.IXON | unix.IXOFF
	}

	if vtime := s.deciseconds(); vtime > 0 {
		t.Cc[unix.VMIN] = 0
		t.Cc[unix.VTIME] = vtime
	} else {
		t.Cc[unix.VMIN] = 1
		t.Cc[unix.VTIME] = 0
	}
	return nil
}

func drain(fd int) error {
	return unix.IoctlSetInt(fd, unix.TCSBRK, 1)
}
