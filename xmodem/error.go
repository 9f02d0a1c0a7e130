// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package xmodem

import "fmt"

// Kind classifies protocol errors. Only Interrupted is retried.
type Kind int

const (
	Interrupted Kind = iota + 1
	InvalidData
	ConnectionAborted
	UnexpectedEOF
	BrokenPipe
)

var kindNames = map[Kind]string{
	Interrupted:       "interrupted",
	InvalidData:       "invalid data",
	ConnectionAborted: "connection aborted",
	UnexpectedEOF:     "unexpected EOF",
	BrokenPipe:        "broken pipe",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Error struct {
	Kind Kind
	Msg  string
}

func newError(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

func (e *Error) Error() string {
	return "xmodem: " + e.Kind.String() + ": " + e.Msg
}

// Is matches another *Error of the same kind. A target with an empty Msg
// matches any message, which is how the ErrX values below are used.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

var (
	ErrInterrupted       = &Error{Kind: Interrupted}
	ErrInvalidData       = &Error{Kind: InvalidData}
	ErrConnectionAborted = &Error{Kind: ConnectionAborted}
	ErrUnexpectedEOF     = &Error{Kind: UnexpectedEOF}
	ErrBrokenPipe        = &Error{Kind: BrokenPipe}
)

// Stage is where a transfer is.
type Stage int

const (
	Waiting Stage = iota // transmitter waiting for the receiver's NAK
	Started
	Packet
)

// Progress is reported to a ProgressFunc. Packet is the number of the
// packet that was just acknowledged and is only set for the Packet stage.
type Progress struct {
	Stage  Stage
	Packet uint8
}

func (p Progress) String() string {
	switch p.Stage {
	case Waiting:
		return "Waiting"
	case Started:
		return "Started"
	case Packet:
		return fmt.Sprintf("Packet(%d)", p.Packet)
	}
	return fmt.Sprintf("Stage(%d)", int(p.Stage))
}

type ProgressFunc func(Progress)
