// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package regdec turns a YAML description of a peripheral's register block
// into Go code that wires every register with exactly the capability its
// datasheet access column grants.
package regdec

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

// Device is one register block.
type Device struct {
	Package   string     `yaml:"package"`
	Name      string     `yaml:"name"`
	Doc       string     `yaml:"doc"`
	Offset    uint64     `yaml:"offset"`
	Size      uint64     `yaml:"size"`
	Registers []Register `yaml:"registers"`
}

// Register is one row of the datasheet table.
type Register struct {
	Name   string `yaml:"name"`
	Label  string `yaml:"label"`
	Offset uint64 `yaml:"offset"`
	Width  int    `yaml:"width"`
	Type   string `yaml:"type"`
	Count  int    `yaml:"count"`
	Access string `yaml:"access"`
	Doc    string `yaml:"doc"`
}

var ErrInvalid = errors.New("invalid device description")

func (r Register) bytes() uint64 { return uint64(r.Width / 8) }

// Span is the number of bytes the register (or register array) occupies.
func (r Register) Span() uint64 { return r.bytes() * uint64(max(r.Count, 1)) }

// ValueType is the Go type the register holds.
func (r Register) ValueType() string {
	if r.Type != "" {
		return r.Type
	}
	return fmt.Sprintf("uint%d", r.Width)
}

// Qualifier parses the access column.
func (r Register) Qualifier() (volatile.Qualifier, error) {
	return volatile.ParseQualifier(r.Access)
}

// Parse reads a device description and checks it.
func Parse(rd io.Reader) (*Device, error) {
	var d Device
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks that the description can be laid out as a Go struct
// with no implicit padding: fields must be naturally aligned, sorted,
// non-overlapping, and inside the block.
func (d *Device) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalid, d.Name, fmt.Sprintf(format, args...))
	}
	if !token.IsIdentifier(d.Package) {
		return bad("package %q is not an identifier", d.Package)
	}
	if !token.IsExported(d.Name) {
		return bad("name must be an exported identifier")
	}
	if d.Size == 0 {
		return bad("size missing")
	}
	if len(d.Registers) == 0 {
		return bad("no registers")
	}

	sort.SliceStable(d.Registers, func(i, j int) bool {
		return d.Registers[i].Offset < d.Registers[j].Offset
	})

	seen := map[string]bool{}
	var end uint64
	for i, r := range d.Registers {
		if !token.IsExported(r.Name) {
			return bad("register %q must be an exported identifier", r.Name)
		}
		if seen[r.Name] {
			return bad("register %s declared twice", r.Name)
		}
		seen[r.Name] = true
		if r.Label == "" {
			d.Registers[i].Label = r.Name
		}
		switch r.Width {
		case 8, 16, 32, 64:
		default:
			return bad("register %s: width %d not one of 8, 16, 32, 64", r.Name, r.Width)
		}
		if r.Count < 0 {
			return bad("register %s: negative count", r.Name)
		}
		if _, err := r.Qualifier(); err != nil {
			return bad("register %s: %v", r.Name, err)
		}
		if r.Offset%r.bytes() != 0 {
			return bad("register %s at %#x is not %d-byte aligned", r.Name, r.Offset, r.bytes())
		}
		if r.Offset < end {
			return bad("register %s at %#x overlaps the previous register", r.Name, r.Offset)
		}
		end = r.Offset + r.Span()
	}
	if end > d.Size {
		return bad("registers end at %#x past block size %#x", end, d.Size)
	}
	return nil
}
