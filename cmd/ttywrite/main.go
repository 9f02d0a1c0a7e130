// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Command ttywrite sends a file to a serial device, by default with the
// XMODEM protocol:
//
//	ttywrite -i kernel.bin /dev/ttyUSB0
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/logging"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/serial"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/xmodem"
)

// port is what ttywrite needs from an open serial device.
type port interface {
	io.ReadWriter
	io.Closer
}

type opener func(path string, s serial.Settings) (port, error)

func openSerial(path string, s serial.Settings) (port, error) {
	return serial.Open(path, s)
}

type config struct {
	input    string
	tty      string
	raw      bool
	settings serial.Settings
}

// parseArgs accepts each option under its short and its long name.
func parseArgs(args []string, errOut io.Writer) (config, error) {
	c := config{settings: serial.Default()}
	fs := flag.NewFlagSet("ttywrite", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Write to TTY using the XMODEM protocol by default.")
		fmt.Fprintln(fs.Output(), "usage: ttywrite [options] tty-path")
		fs.PrintDefaults()
	}

	fs.StringVar(&c.input, "i", "", "input file (defaults to stdin if not set)")
	baud := func(s string) (err error) {
		c.settings.Baud, err = serial.ParseBaud(s)
		return err
	}
	timeout := func(s string) error {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return err
		}
		c.settings.Timeout = time.Duration(n) * time.Second
		return nil
	}
	width := func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 5 || n > 8 {
			return fmt.Errorf("width must be 5, 6, 7 or 8")
		}
		c.settings.CharSize = n
		return nil
	}
	flow := func(s string) (err error) {
		c.settings.Flow, err = serial.ParseFlow(s)
		return err
	}
	stop := func(s string) error {
		switch s {
		case "1":
			c.settings.StopBits = 1
		case "2":
			c.settings.StopBits = 2
		default:
			return fmt.Errorf("stop bits must be 1 or 2")
		}
		return nil
	}
	for _, f := range []struct {
		short, long, usage string
		set                func(string) error
	}{
		{"b", "baud", "set baud rate (default 115200)", baud},
		{"t", "timeout", "set timeout in seconds (default 10)", timeout},
		{"w", "width", "set data character width in bits (default 8)", width},
		{"f", "flow-control", "enable flow control ('hardware' or 'software', default none)", flow},
		{"s", "stop-bits", "set number of stop bits (default 1)", stop},
	} {
		fs.Func(f.short, f.usage, f.set)
		fs.Func(f.long, f.usage, f.set)
	}
	fs.BoolVar(&c.raw, "r", false, "disable XMODEM")
	fs.BoolVar(&c.raw, "raw", false, "disable XMODEM")

	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return c, fmt.Errorf("expected one tty path, got %d arguments", fs.NArg())
	}
	c.tty = fs.Arg(0)
	return c, nil
}

func run(c config, open opener, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	p, err := open(c.tty, c.settings)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	defer p.Close()

	input := stdin
	if c.input != "" {
		f, err := os.Open(c.input)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		input = f
	}

	var n int64
	if c.raw {
		n, err = io.Copy(p, input)
		if err != nil {
			return fmt.Errorf("failed to write data: %w", err)
		}
	} else {
		sent, err := xmodem.TransmitWithProgress(input, p, func(pr xmodem.Progress) {
			logger.Info("progress", "stage", pr)
		})
		if err != nil {
			return fmt.Errorf("XMODEM transmission failed: %w", err)
		}
		n = int64(sent)
	}
	fmt.Fprintf(stdout, "wrote %d bytes\n", n)
	return nil
}

func main() {
	c, err := parseArgs(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		return
	}
	if err != nil {
		os.Exit(2)
	}
	logger := logging.New(os.Stderr, logging.Options{})
	if err := run(c, openSerial, os.Stdin, os.Stdout, logger); err != nil {
		logging.Fatal(logger, "ttywrite failed", "tty", c.tty, "error", err)
	}
}
