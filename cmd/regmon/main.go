// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Command regmon is an interactive register monitor for the simulated
// board: it reads and writes peripheral registers by name and plays the
// outside world to the devices.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/config"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/internal/logging"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/sim"
)

func main() {
	configPtr := flag.String("config", "", "board configuration file (YAML)")
	historyPtr := flag.String("history", "", "readline history file")
	logging.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "regmon:", err)
		os.Exit(1)
	}
	// The monitor decides when time passes.
	cfg.Timer.Mode = "manual"

	logger := logging.New(os.Stderr, logging.Options{Journal: cfg.Log.Journal})
	m, err := newMonitor(cfg, sim.WithHistory(), sim.WithLogger(logger))
	if err != nil {
		logging.Fatal(logger, "building board", "error", err)
	}

	names := func(string) []string { return m.names() }
	completer := readline.NewPrefixCompleter(
		readline.PcItem("regs"),
		readline.PcItem("peek", readline.PcItemDynamic(names)),
		readline.PcItem("poke", readline.PcItemDynamic(names)),
		readline.PcItem("init"),
		readline.PcItem("tick"),
		readline.PcItem("feed"),
		readline.PcItem("out"),
		readline.PcItem("trace"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Name + "> ",
		HistoryFile:     *historyPtr,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		logging.Fatal(logger, "failed to create readline", "error", err)
	}
	defer rl.Close()

	fmt.Fprintln(rl.Stdout(), "type 'help' for commands")
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			logging.Fatal(logger, "reading command", "error", err)
		}
		if err := m.exec(line, rl.Stdout()); errors.Is(err, errQuit) {
			return
		} else if err != nil {
			fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
		}
	}
}
