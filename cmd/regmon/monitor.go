// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/bus"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/timer"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/uart"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/config"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/sim"
)

// wire collects what the simulated UART transmits.
type wire struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *wire) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *wire) take() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.buf.String()
	w.buf.Reset()
	return s
}

type monitor struct {
	board *sim.Board
	wire  *wire
}

func newMonitor(cfg config.Board, opts ...sim.Option) (*monitor, error) {
	w := &wire{}
	b, err := sim.NewBoard(cfg, w, opts...)
	if err != nil {
		return nil, err
	}
	return &monitor{board: b, wire: w}, nil
}

// names lists every register, for completion.
func (m *monitor) names() []string {
	var out []string
	for _, n := range m.board.Registry.Entries() {
		out = append(out, n.Name)
	}
	return out
}

var errQuit = errors.New("quit")

const help = `commands:
  regs [PREFIX]     list registers
  peek NAME         read a register
  poke NAME VALUE   write a register
  init              run the mini UART driver's init sequence
  tick N            advance the system timer by N microseconds
  feed TEXT         put TEXT and a carriage return on the UART receive line
  out               show and clear what the UART transmitted
  trace [N]         show the last N bus accesses (default 10)
  quit              leave`

// exec runs one command line, writing results to out. It returns errQuit
// for quit.
func (m *monitor) exec(line string, out io.Writer) error {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(f[0]), f[1:]
	switch cmd {
	case "help", "?":
		fmt.Fprintln(out, help)
	case "quit", "exit":
		return errQuit
	case "regs":
		for _, n := range m.board.Registry.Entries() {
			if len(args) > 0 && !strings.HasPrefix(n.Name, strings.ToUpper(args[0])) {
				continue
			}
			owner, _ := m.board.Registry.Owner(n.Reg.Addr())
			fmt.Fprintf(out, "%v  %s\n", n, owner)
		}
	case "peek":
		if len(args) != 1 {
			return fmt.Errorf("usage: peek NAME")
		}
		n, ok := m.board.Registry.Lookup(strings.ToUpper(args[0]))
		if !ok {
			return fmt.Errorf("no register named %s", args[0])
		}
		if n.Read == nil {
			return fmt.Errorf("%s is not readable", n.Name)
		}
		var v uint64
		if err := bus.Catch(func() { v = n.Read() }); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s = 0x%0*X\n", n.Name, n.Reg.Size()*2, v)
	case "poke":
		if len(args) != 2 {
			return fmt.Errorf("usage: poke NAME VALUE")
		}
		n, ok := m.board.Registry.Lookup(strings.ToUpper(args[0]))
		if !ok {
			return fmt.Errorf("no register named %s", args[0])
		}
		if n.Write == nil {
			return fmt.Errorf("%s is not writable", n.Name)
		}
		v, err := strconv.ParseUint(args[1], 0, n.Reg.Size()*8)
		if err != nil {
			return fmt.Errorf("bad value %q", args[1])
		}
		return bus.Catch(func() { n.Write(v) })
	case "init":
		return bus.Catch(func() {
			uart.New(m.board.Regs.Aux, m.board.Regs.GPIO, timer.New(m.board.Regs.Timer), m.board.Config.UART.BaudDivisor)
		})
	case "tick":
		if len(args) != 1 {
			return fmt.Errorf("usage: tick N")
		}
		n, err := strconv.ParseUint(args[0], 0, 64)
		if err != nil {
			return fmt.Errorf("bad count %q", args[0])
		}
		m.board.Timer.Tick(n)
		fmt.Fprintf(out, "timer = %d\n", m.board.Timer.Now())
	case "feed":
		m.board.UART.Feed([]byte(strings.Join(args, " ") + "\r"))
	case "out":
		fmt.Fprintf(out, "%q\n", m.wire.take())
	case "trace":
		if m.board.Trace == nil {
			return fmt.Errorf("tracing is off")
		}
		n := 10
		if len(args) == 1 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil || n < 0 {
				return fmt.Errorf("bad count %q", args[0])
			}
		}
		events := m.board.Trace.Events()
		for _, e := range events[max(0, len(events)-n):] {
			fmt.Fprintln(out, e)
		}
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
	}
	return nil
}
