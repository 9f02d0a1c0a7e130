// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Command pisim runs the kernel shell on a simulated Raspberry Pi 3, with
// the host terminal as the serial console.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/config"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/hostterm"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/logging"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/kern"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/shell"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/sim"
)

// tickPeriod is how often a manual system timer is advanced by the
// elapsed host time.
const tickPeriod = time.Millisecond

type options struct {
	trace string
	load  string
}

func main() {
	configPtr := flag.String("config", "", "board configuration file (YAML)")
	tracePtr := flag.String("trace", "", "record every bus access to this file")
	loadPtr := flag.String("load", "", "image to copy to the kernel address before starting")
	printPtr := flag.Bool("print-config", false, "print the effective configuration and exit")
	logging.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		var err error
		if cfg, err = config.Load(*configPtr); err != nil {
			fmt.Fprintln(os.Stderr, "pisim:", err)
			os.Exit(1)
		}
	}
	if *printPtr {
		if err := cfg.Write(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "pisim:", err)
			os.Exit(1)
		}
		return
	}

	levelSet := false
	flag.Visit(func(f *flag.Flag) { levelSet = levelSet || f.Name == "log-level" })
	if !levelSet {
		if err := logging.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			fmt.Fprintln(os.Stderr, "pisim:", err)
			os.Exit(1)
		}
	}

	var restore func() error
	logOut := io.Writer(os.Stderr)
	if hostterm.IsTerminal(os.Stdin) {
		st, err := hostterm.MakeRaw(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pisim:", err)
			os.Exit(1)
		}
		restore = st.Restore
		logOut = hostterm.CRLF(os.Stderr)
	}
	logger := logging.New(logOut, logging.Options{Journal: cfg.Log.Journal})

	opts := options{trace: cfg.Trace, load: *loadPtr}
	if *tracePtr != "" {
		opts.trace = *tracePtr
	}

	err := run(cfg, opts, logger)
	if restore != nil {
		restore()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal(logger, "simulation failed", "error", err)
	}
}

func run(cfg config.Board, opts options, logger *slog.Logger) error {
	boardOpts := []sim.Option{sim.WithLogger(logger)}
	if opts.trace != "" {
		f, err := os.Create(opts.trace)
		if err != nil {
			return err
		}
		defer f.Close()
		w := bufio.NewWriter(f)
		defer w.Flush()
		boardOpts = append(boardOpts, sim.WithTrace(w))
	}

	board, err := sim.NewBoard(cfg, os.Stdout, boardOpts...)
	if err != nil {
		return err
	}
	if opts.load != "" {
		n, err := board.LoadKernel(opts.load)
		if err != nil {
			return err
		}
		logger.Info("loaded image", "file", opts.load, "bytes", n, logging.Hex("addr", cfg.KernelAddr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := make(chan byte)
	board.UART.Connect(input)
	// The pump stays blocked in a read on stdin until the process exits,
	// so it is not part of the group.
	go func() {
		if err := hostterm.Pump(ctx, hostterm.Input(os.Stdin), input); err != nil {
			logger.Warn("console input closed", "error", err)
		}
	}()

	dev := kern.Init(board.Regs, cfg.UART.BaudDivisor, cfg.UART.ReadTimeout)

	g, ctx := errgroup.WithContext(ctx)
	kernelDone := make(chan struct{})
	g.Go(func() error {
		defer close(kernelDone)
		return kern.Main(ctx, dev.Console, board.Registry, dev.Timer,
			kern.WithBanner(cfg.Shell.Banner),
			kern.WithPrompt(cfg.Shell.Prompt),
			kern.WithShell(
				shell.WithLoader(dev.Console.Raw(), board.Mem),
				shell.WithLogger(logger),
			))
	})
	if cfg.Timer.Mode == "manual" {
		g.Go(func() error {
			t := time.NewTicker(tickPeriod)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					board.Timer.Tick(uint64(tickPeriod / time.Microsecond))
				case <-kernelDone:
					return nil
				case <-ctx.Done():
					return nil
				}
			}
		})
	}

	err = g.Wait()
	if board.Trace != nil {
		if terr := board.Trace.Err(); terr != nil {
			logger.Error("writing trace", "error", terr)
		}
		logger.Info("trace written", "file", opts.trace, "session", board.Trace.Header().Session, "idle_polls", board.Trace.Skipped())
	}
	if oerr := board.UART.OutputErr(); oerr != nil {
		logger.Error("console output failed", "error", oerr)
	}
	return err
}
