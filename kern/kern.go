// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package kern is the kernel: it brings up the console on the mini UART
// and hands it to the shell.
package kern

import (
	"context"
	"fmt"
	"time"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/console"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/timer"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/hw/bcm2837/uart"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/shell"
	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

const (
	Banner = "Starting kernel shell..."
	Prompt = "> "
)

// Devices are the drivers the kernel runs on.
type Devices struct {
	Console *console.Console
	Timer   *timer.Timer
}

// Init brings up the system timer and the mini UART console.
// readTimeout bounds raw console reads such as XMODEM uploads.
func Init(p *bcm2837.Peripherals, baudDivisor uint16, readTimeout time.Duration) Devices {
	t := timer.New(p.Timer)
	u := uart.New(p.Aux, p.GPIO, t, baudDivisor)
	u.SetReadTimeout(readTimeout)
	return Devices{Console: console.New(u), Timer: t}
}

type settings struct {
	banner string
	prompt string
	shell  []shell.Option
}

type Option func(*settings)

func WithBanner(s string) Option { return func(o *settings) { o.banner = s } }

func WithPrompt(s string) Option { return func(o *settings) { o.prompt = s } }

// WithShell passes extra options to the shell.
func WithShell(opts ...shell.Option) Option {
	return func(o *settings) { o.shell = append(o.shell, opts...) }
}

// Main prints the banner and runs the shell until it exits or ctx ends.
func Main(ctx context.Context, con shell.Console, regs *volatile.Registry, clock shell.Clock, opts ...Option) error {
	s := settings{banner: Banner, prompt: Prompt}
	for _, opt := range opts {
		opt(&s)
	}
	fmt.Fprintln(con, s.banner)
	sh := append([]shell.Option{shell.WithRegistry(regs), shell.WithClock(clock)}, s.shell...)
	return shell.Run(ctx, con, s.prompt, sh...)
}
