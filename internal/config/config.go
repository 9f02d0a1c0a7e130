// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package config holds the simulated board configuration. Values not
// present in a YAML file keep the Raspberry Pi 3 defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid board configuration")

type UART struct {
	BaudDivisor uint16        `yaml:"baud_divisor"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

type Timer struct {
	// Mode is "wall" for a counter driven by the host clock or "manual"
	// for one that only moves when ticked.
	Mode string `yaml:"mode"`
	// Step is how many microseconds a manual counter advances per read.
	Step uint64 `yaml:"step"`
}

type Shell struct {
	Prompt string `yaml:"prompt"`
	Banner string `yaml:"banner"`
}

type Log struct {
	Level   string `yaml:"level"`
	Journal bool   `yaml:"journal"`
}

type Board struct {
	Name       string `yaml:"name"`
	IOBase     uint64 `yaml:"io_base"`
	RAMSize    uint64 `yaml:"ram_size"`
	ROMSize    uint64 `yaml:"rom_size"`
	KernelAddr uint64 `yaml:"kernel_addr"`
	UART       UART   `yaml:"uart"`
	Timer      Timer  `yaml:"timer"`
	Shell      Shell  `yaml:"shell"`
	Log        Log    `yaml:"log"`
	Trace      string `yaml:"trace"`
}

func Default() Board {
	return Board{
		Name:       "raspi3",
		IOBase:     0x3F000000,
		RAMSize:    16 << 20,
		ROMSize:    0x1000,
		KernelAddr: 0x80000,
		UART:       UART{BaudDivisor: 270},
		Timer:      Timer{Mode: "wall"},
		Shell:      Shell{Prompt: "> ", Banner: "Starting kernel shell..."},
		Log:        Log{Level: "info"},
	}
}

// Parse reads a board configuration on top of the defaults.
func Parse(r io.Reader) (Board, error) {
	b := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return Board{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// Load reads the configuration file at path. An empty path gives the
// defaults.
func Load(path string) (Board, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Board{}, err
	}
	b, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Board{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

func (b Board) Validate() error {
	switch {
	case b.RAMSize == 0:
		return fmt.Errorf("%w: ram_size is zero", ErrInvalid)
	case b.ROMSize > b.RAMSize:
		return fmt.Errorf("%w: rom_size %#x larger than ram_size %#x", ErrInvalid, b.ROMSize, b.RAMSize)
	case b.IOBase < b.RAMSize:
		return fmt.Errorf("%w: io_base %#x inside RAM", ErrInvalid, b.IOBase)
	case b.KernelAddr >= b.RAMSize:
		return fmt.Errorf("%w: kernel_addr %#x outside RAM", ErrInvalid, b.KernelAddr)
	case b.UART.BaudDivisor == 0:
		return fmt.Errorf("%w: uart.baud_divisor is zero", ErrInvalid)
	case b.Timer.Mode != "wall" && b.Timer.Mode != "manual":
		return fmt.Errorf("%w: timer.mode %q is not wall or manual", ErrInvalid, b.Timer.Mode)
	}
	return nil
}

// Write encodes b as YAML.
func (b Board) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return err
	}
	return enc.Close()
}
