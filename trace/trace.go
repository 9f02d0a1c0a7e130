// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package trace records every access that crosses a bus, in the order the
// accesses happen. A trace can be kept in memory for tests or streamed to
// a CBOR file and read back later.
package trace

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

type Op uint8

const (
	Load Op = iota + 1
	Store
)

func (o Op) String() string {
	switch o {
	case Load:
		return "R"
	case Store:
		return "W"
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Header starts every trace file.
type Header struct {
	Session uuid.UUID `cbor:"1,keyasint"`
	Started time.Time `cbor:"2,keyasint"`
	Board   string    `cbor:"3,keyasint,omitempty"`
}

// Event is one bus access.
type Event struct {
	Seq   uint64 `cbor:"1,keyasint"`
	Op    Op     `cbor:"2,keyasint"`
	Addr  uint64 `cbor:"3,keyasint"`
	Size  uint8  `cbor:"4,keyasint"`
	Value uint64 `cbor:"5,keyasint"`
}

func (e Event) String() string {
	return fmt.Sprintf("#%d %v %v/%d = %#x", e.Seq, e.Op, volatile.Addr(e.Addr), int(e.Size)*8, e.Value)
}

type Option func(*Bus)

// WithSink streams the trace to w as CBOR, header first.
func WithSink(w io.Writer) Option { return func(b *Bus) { b.sink = w } }

// WithHistory keeps the trace in memory; see Events.
func WithHistory() Option { return func(b *Bus) { b.history = true } }

// WithIdlePolls also records loads the inner bus reports as idle polls.
// By default they are counted but left out of the trace.
func WithIdlePolls() Option { return func(b *Bus) { b.idlePolls = true } }

// WithBoard names the board in the header.
func WithBoard(name string) Option { return func(b *Bus) { b.hdr.Board = name } }

// Bus is a volatile.Bus that passes every access to the bus it wraps and
// records it. Idle polls are left out unless WithIdlePolls is given.
type Bus struct {
	inner     volatile.Bus
	hdr       Header
	sink      io.Writer
	history   bool
	idlePolls bool

	mu      sync.Mutex
	enc     interface{ Encode(any) error }
	seq     uint64
	skipped uint64
	events  []Event
	err     error
}

// idleLoader is a bus that reports loads which found a device idle, along
// with how long to back off; see bus.Mem.LoadIdle.
type idleLoader interface {
	LoadIdle(addr volatile.Addr, size int) (uint64, time.Duration)
}

func New(inner volatile.Bus, opts ...Option) (*Bus, error) {
	b := &Bus{
		inner: inner,
		hdr:   Header{Session: uuid.New(), Started: time.Now().UTC()},
	}
	for _, o := range opts {
		o(b)
	}
	if b.sink != nil {
		enc := newEncoder(b.sink)
		if err := enc.Encode(b.hdr); err != nil {
			return nil, fmt.Errorf("writing trace header: %w", err)
		}
		b.enc = enc
	}
	return b, nil
}

func (b *Bus) Header() Header { return b.hdr }

// Load and Store hold the trace lock across the inner access so that the
// sequence numbers are the order the inner bus saw. A back-off requested
// by an idle device is taken after the trace lock is released.

func (b *Bus) Load(addr volatile.Addr, size int) uint64 {
	il, ok := b.inner.(idleLoader)
	if !ok {
		b.mu.Lock()
		defer b.mu.Unlock()
		v := b.inner.Load(addr, size)
		b.record(Load, addr, size, v)
		return v
	}

	v, wait := b.loadIdle(il, addr, size)
	if wait > 0 {
		time.Sleep(wait)
	}
	return v
}

func (b *Bus) loadIdle(il idleLoader, addr volatile.Addr, size int) (uint64, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, wait := il.LoadIdle(addr, size)
	if wait > 0 && !b.idlePolls {
		b.skipped++
		return v, wait
	}
	b.record(Load, addr, size, v)
	return v, wait
}

func (b *Bus) Store(addr volatile.Addr, size int, v uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inner.Store(addr, size, v)
	b.record(Store, addr, size, v)
}

func (b *Bus) record(op Op, addr volatile.Addr, size int, v uint64) {
	b.seq++
	e := Event{Seq: b.seq, Op: op, Addr: uint64(addr), Size: uint8(size), Value: v}
	if b.history {
		b.events = append(b.events, e)
	}
	if b.enc != nil && b.err == nil {
		b.err = b.enc.Encode(e)
	}
}

// Events returns the recorded history.
func (b *Bus) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Skipped reports how many idle polls were left out of the trace.
func (b *Bus) Skipped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.skipped
}

// Reset drops the in-memory history.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = b.events[:0]
}

// Err reports the first error writing to the sink. Once the sink fails,
// accesses still go through but are no longer streamed.
func (b *Bus) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Reader reads a trace file.
type Reader struct {
	dec interface{ Decode(any) error }
	hdr Header
}

func NewReader(r io.Reader) (*Reader, error) {
	dec := newDecoder(r)
	var hdr Header
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("reading trace header: %w", err)
	}
	return &Reader{dec: dec, hdr: hdr}, nil
}

func (r *Reader) Header() Header { return r.hdr }

// Next returns the next event, or io.EOF at the end of the trace.
func (r *Reader) Next() (Event, error) {
	var e Event
	if err := r.dec.Decode(&e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// ReadAll reads a whole trace.
func ReadAll(r io.Reader) (Header, []Event, error) {
	tr, err := NewReader(r)
	if err != nil {
		return Header{}, nil, err
	}
	var events []Event
	for {
		e, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return tr.Header(), events, nil
		}
		if err != nil {
			return tr.Header(), events, err
		}
		events = append(events, e)
	}
}
