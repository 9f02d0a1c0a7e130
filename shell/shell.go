// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package shell is the kernel's interactive command line.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/bus"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/logging"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/xmodem"
)

// LineSize is the length of the input line buffer.
const LineSize = 512

const (
	backspace = 0x08
	del       = 0x7f
	bell      = 0x07
)

// Console is the terminal the shell talks to.
type Console interface {
	io.Writer
	ReadByte(ctx context.Context) (byte, error)
}

type Clock interface {
	Now() time.Duration
}

type Shell struct {
	con      Console
	regs     *volatile.Registry
	clock    Clock
	link     io.ReadWriter
	mem      io.WriterAt
	logger   *slog.Logger
	commands map[string]command
}

type Option func(*Shell)

// WithRegistry enables regs, peek and poke on the registers in r.
func WithRegistry(r *volatile.Registry) Option { return func(s *Shell) { s.regs = r } }

// WithClock enables uptime.
func WithClock(c Clock) Option { return func(s *Shell) { s.clock = c } }

// WithLoader enables recv, which receives an XMODEM upload over link
// and stores it in mem.
func WithLoader(link io.ReadWriter, mem io.WriterAt) Option {
	return func(s *Shell) {
		s.link = link
		s.mem = mem
	}
}

func WithLogger(l *slog.Logger) Option { return func(s *Shell) { s.logger = l } }

func New(con Console, opts ...Option) *Shell {
	s := &Shell{con: con, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.commands = builtins()
	return s
}

// Run starts a shell on con using prefix as the prompt. It returns nil
// after the exit command and ctx's error when ctx ends.
func Run(ctx context.Context, con Console, prefix string, opts ...Option) error {
	return New(con, opts...).Run(ctx, prefix)
}

var errExit = errors.New("exit")

func (s *Shell) Run(ctx context.Context, prefix string) error {
	line := make([]byte, 0, LineSize)
	var args [MaxArgs]string

	for {
		fmt.Fprint(s.con, prefix)
		var err error
		line, err = s.readLine(ctx, line[:0])
		if err != nil {
			return err
		}
		if len(line) == 0 || !utf8.Valid(line) {
			continue
		}

		cmd, err := Parse(string(line), args[:])
		switch {
		case errors.Is(err, ErrEmpty):
			fmt.Fprintln(s.con, "error: empty command")
			continue
		case errors.Is(err, ErrTooManyArgs):
			fmt.Fprintln(s.con, "error: too many arguments")
			continue
		}

		if err := s.exec(cmd); errors.Is(err, errExit) {
			return nil
		} else if err != nil {
			fmt.Fprintf(s.con, "error: %v\n", err)
		}
	}
}

// readLine collects one line, echoing what is typed.
func (s *Shell) readLine(ctx context.Context, line []byte) ([]byte, error) {
	for {
		b, err := s.con.ReadByte(ctx)
		if err != nil {
			return line, err
		}
		switch {
		case b == backspace || b == del:
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Fprint(s.con, "\b \b")
			}
		case b == '\r' || b == '\n':
			fmt.Fprintln(s.con)
			return line, nil
		case len(line) < LineSize:
			line = append(line, b)
			s.con.Write([]byte{b})
		default:
			s.con.Write([]byte{bell})
		}
	}
}

func (s *Shell) exec(cmd Command) error {
	c, ok := s.commands[cmd.Path()]
	if !ok {
		fmt.Fprintf(s.con, "unknown command: %s\n", cmd.Path())
		return nil
	}
	s.logger.Debug("shell command", "path", cmd.Path(), "args", cmd.Args())
	if len(cmd.Args()) < c.minArgs || (c.maxArgs >= 0 && len(cmd.Args()) > c.maxArgs) {
		return fmt.Errorf("usage: %s %s", cmd.Path(), c.usage)
	}
	return c.run(s, cmd.Args())
}

type command struct {
	usage   string
	help    string
	minArgs int
	maxArgs int // -1 for no limit
	run     func(s *Shell, args []string) error
}

func builtins() map[string]command {
	return map[string]command{
		"echo":   {usage: "[WORD...]", help: "print the arguments", maxArgs: -1, run: (*Shell).echo},
		"help":   {help: "list commands", run: (*Shell).help},
		"regs":   {usage: "[PREFIX]", help: "list the device registers", maxArgs: 1, run: (*Shell).listRegs},
		"peek":   {usage: "NAME", help: "read a register", minArgs: 1, maxArgs: 1, run: (*Shell).peek},
		"poke":   {usage: "NAME VALUE", help: "write a register", minArgs: 2, maxArgs: 2, run: (*Shell).poke},
		"uptime": {help: "time since the system timer started", run: (*Shell).uptime},
		"recv":   {usage: "ADDR", help: "receive an XMODEM upload into memory", minArgs: 1, maxArgs: 1, run: (*Shell).recv},
		"exit":   {help: "leave the shell", run: func(*Shell, []string) error { return errExit }},
	}
}

func (s *Shell) echo(args []string) error {
	fmt.Fprintln(s.con, strings.Join(args, " "))
	return nil
}

func (s *Shell) help([]string) error {
	for _, name := range slices.Sorted(maps.Keys(s.commands)) {
		c := s.commands[name]
		fmt.Fprintf(s.con, "%-24s %s\n", strings.TrimSpace(name+" "+c.usage), c.help)
	}
	return nil
}

var (
	errNoRegistry = errors.New("no register table")
	errNoClock    = errors.New("no system timer")
	errNoLoader   = errors.New("no loader attached")
)

func (s *Shell) listRegs(args []string) error {
	if s.regs == nil {
		return errNoRegistry
	}
	for _, n := range s.regs.Entries() {
		if len(args) == 1 && !strings.HasPrefix(n.Name, args[0]) {
			continue
		}
		fmt.Fprintln(s.con, n)
	}
	return nil
}

func (s *Shell) lookup(name string) (volatile.Named, error) {
	if s.regs == nil {
		return volatile.Named{}, errNoRegistry
	}
	n, ok := s.regs.Lookup(name)
	if !ok {
		return volatile.Named{}, fmt.Errorf("no register named %s", name)
	}
	return n, nil
}

func (s *Shell) peek(args []string) error {
	n, err := s.lookup(args[0])
	if err != nil {
		return err
	}
	if n.Read == nil {
		return fmt.Errorf("%s is not readable", n.Name)
	}
	var v uint64
	if err := bus.Catch(func() { v = n.Read() }); err != nil {
		return err
	}
	fmt.Fprintf(s.con, "%s = 0x%0*X\n", n.Name, n.Reg.Size()*2, v)
	return nil
}

func (s *Shell) poke(args []string) error {
	n, err := s.lookup(args[0])
	if err != nil {
		return err
	}
	if n.Write == nil {
		return fmt.Errorf("%s is not writable", n.Name)
	}
	bits := n.Reg.Size() * 8
	v, err := strconv.ParseUint(args[1], 0, bits)
	if err != nil {
		return fmt.Errorf("bad value %q for a %d-bit register", args[1], bits)
	}
	return bus.Catch(func() { n.Write(v) })
}

func (s *Shell) uptime([]string) error {
	if s.clock == nil {
		return errNoClock
	}
	fmt.Fprintln(s.con, s.clock.Now())
	return nil
}

func (s *Shell) recv(args []string) error {
	if s.link == nil {
		return errNoLoader
	}
	addr, err := strconv.ParseUint(args[0], 0, 63)
	if err != nil {
		return fmt.Errorf("bad address %q", args[0])
	}
	n, err := xmodem.Receive(s.link, io.NewOffsetWriter(s.mem, int64(addr)))
	if err != nil {
		return err
	}
	s.logger.Info("received upload", "bytes", n, logging.Hex("addr", addr))
	fmt.Fprintf(s.con, "received %d bytes at %#x\n", n, addr)
	return nil
}
