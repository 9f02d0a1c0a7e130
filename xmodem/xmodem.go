// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

// Package xmodem implements the XMODEM file transfer protocol with 128 byte
// packets and an 8 bit additive checksum.
package xmodem

import (
	"errors"
	"fmt"
	"io"
)

const (
	soh byte = 0x01
	eot byte = 0x04
	ack byte = 0x06
	nak byte = 0x15
	can byte = 0x18
)

// PacketSize is the payload length of every data packet.
const PacketSize = 128

// Retries is how often a packet is retried after a retryable error.
const Retries = 10

type flusher interface {
	Flush() error
}

// Conn is one end of an XMODEM transfer over rw.
type Conn struct {
	rw       io.ReadWriter
	packet   uint8
	started  bool
	progress ProgressFunc
}

func New(rw io.ReadWriter) *Conn {
	return NewWithProgress(rw, nil)
}

// NewWithProgress is New with a callback that is told about every stage of
// the transfer. f may be nil.
func NewWithProgress(rw io.ReadWriter, f ProgressFunc) *Conn {
	if f == nil {
		f = func(Progress) {}
	}
	return &Conn{rw: rw, packet: 1, progress: f}
}

func checksum(buf []byte) byte {
	var sum byte
	for _, b := range buf {
		sum += b
	}
	return sum
}

func (c *Conn) readByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(c.rw, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (c *Conn) writeByte(b byte) error {
	if _, err := c.rw.Write([]byte{b}); err != nil {
		return err
	}
	return c.Flush()
}

// Flush flushes the underlying stream if it buffers.
func (c *Conn) Flush() error {
	if f, ok := c.rw.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func (c *Conn) expectByte(want byte, msg string) error {
	got, err := c.readByte()
	if err != nil {
		return err
	}
	switch got {
	case want:
		return nil
	case can:
		return newError(ConnectionAborted, "received CAN")
	default:
		return newError(InvalidData, msg)
	}
}

// ReadPacket receives one packet into buf, which must hold at least
// PacketSize bytes. It returns PacketSize for a data packet and 0 once the
// sender has finished with the EOT handshake. A checksum mismatch is NAKed
// and reported as an Interrupted error, so the caller may read again.
func (c *Conn) ReadPacket(buf []byte) (int, error) {
	if len(buf) < PacketSize {
		return 0, newError(UnexpectedEOF, "buffer too small")
	}

	b, err := c.readByte()
	if err != nil {
		return 0, err
	}
	switch b {
	case can:
		return 0, newError(ConnectionAborted, "received CAN")

	case soh:
		if !c.started {
			c.started = true
			c.progress(Progress{Stage: Started})
		}
		var hdr [2]byte
		if _, err := io.ReadFull(c.rw, hdr[:]); err != nil {
			return 0, err
		}
		if hdr[0] != c.packet || hdr[1] != ^c.packet {
			if err := c.writeByte(nak); err != nil {
				return 0, err
			}
			return 0, newError(InvalidData, fmt.Sprintf("packet number mismatch: got %d, expected %d", hdr[0], c.packet))
		}
		if _, err := io.ReadFull(c.rw, buf[:PacketSize]); err != nil {
			return 0, err
		}
		sum, err := c.readByte()
		if err != nil {
			return 0, err
		}
		if checksum(buf[:PacketSize]) != sum {
			if err := c.writeByte(nak); err != nil {
				return 0, err
			}
			return 0, newError(Interrupted, "checksum mismatch")
		}
		if err := c.writeByte(ack); err != nil {
			return 0, err
		}
		c.progress(Progress{Stage: Packet, Packet: c.packet})
		c.packet++
		return PacketSize, nil

	case eot:
		if err := c.writeByte(nak); err != nil {
			return 0, err
		}
		second, err := c.readByte()
		if err != nil {
			return 0, err
		}
		if second != eot {
			return 0, newError(InvalidData, "expected second EOT")
		}
		if err := c.writeByte(ack); err != nil {
			return 0, err
		}
		return 0, nil

	default:
		next, err := c.readByte()
		if err != nil {
			return 0, err
		}
		if next == can {
			return 0, newError(ConnectionAborted, "received CAN")
		}
		if err := c.writeByte(nak); err != nil {
			return 0, err
		}
		return 0, newError(InvalidData, "expected SOH or EOT")
	}
}

// WritePacket sends buf, which must be exactly PacketSize bytes, or ends
// the transfer when buf is empty. The first call waits for the receiver's
// NAK. A NAK in reply to the packet is an Interrupted error; send the same
// packet again.
func (c *Conn) WritePacket(buf []byte) (int, error) {
	if len(buf) != PacketSize && len(buf) != 0 {
		return 0, newError(UnexpectedEOF, "buffer length must be 128 or 0")
	}

	if !c.started {
		c.progress(Progress{Stage: Waiting})
		if err := c.expectByte(nak, "expected NAK to start transmission"); err != nil {
			return 0, err
		}
		c.started = true
		c.progress(Progress{Stage: Started})
	}

	if len(buf) == 0 {
		if err := c.writeByte(eot); err != nil {
			return 0, err
		}
		if err := c.expectByte(nak, "expected NAK after first EOT"); err != nil {
			return 0, err
		}
		if err := c.writeByte(eot); err != nil {
			return 0, err
		}
		if err := c.expectByte(ack, "expected ACK after second EOT"); err != nil {
			return 0, err
		}
		return 0, nil
	}

	frame := make([]byte, 0, PacketSize+4)
	frame = append(frame, soh, c.packet, ^c.packet)
	frame = append(frame, buf...)
	frame = append(frame, checksum(buf))
	if _, err := c.rw.Write(frame); err != nil {
		return 0, err
	}
	if err := c.Flush(); err != nil {
		return 0, err
	}

	reply, err := c.readByte()
	if err != nil {
		return 0, err
	}
	switch reply {
	case ack:
		c.progress(Progress{Stage: Packet, Packet: c.packet})
		c.packet++
		return PacketSize, nil
	case nak:
		return 0, newError(Interrupted, "checksum failed")
	case can:
		return 0, newError(ConnectionAborted, "connection aborted by receiver")
	default:
		return 0, newError(InvalidData, "expected ACK, NAK, or CAN")
	}
}

// Transmit sends everything read from data over to and returns the number
// of payload bytes sent. The final packet is padded with zeros.
func Transmit(data io.Reader, to io.ReadWriter) (int, error) {
	return TransmitWithProgress(data, to, nil)
}

func TransmitWithProgress(data io.Reader, to io.ReadWriter, f ProgressFunc) (int, error) {
	c := NewWithProgress(to, f)
	packet := make([]byte, PacketSize)
	written := 0

	for {
		n, err := io.ReadFull(data, packet)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return written, err
		}
		clear(packet[n:])

		if n == 0 {
			if _, err := c.WritePacket(nil); err != nil {
				return written, err
			}
			return written, nil
		}

		if err := retry(func() error {
			_, err := c.WritePacket(packet)
			return err
		}); err != nil {
			if errors.Is(err, ErrRetriesExhausted) {
				return written, newError(BrokenPipe, "bad transmit")
			}
			return written, err
		}
		written += n
	}
}

// Receive writes every packet read from from into into and returns the
// number of bytes received, padding included.
func Receive(from io.ReadWriter, into io.Writer) (int, error) {
	return ReceiveWithProgress(from, into, nil)
}

func ReceiveWithProgress(from io.ReadWriter, into io.Writer, f ProgressFunc) (int, error) {
	c := NewWithProgress(from, f)
	packet := make([]byte, PacketSize)
	received := 0

	if err := c.writeByte(nak); err != nil {
		return 0, err
	}

	for {
		var n int
		if err := retry(func() (err error) {
			n, err = c.ReadPacket(packet)
			return err
		}); err != nil {
			if errors.Is(err, ErrRetriesExhausted) {
				return received, newError(BrokenPipe, "bad receive")
			}
			return received, err
		}
		if n == 0 {
			return received, nil
		}
		received += n
		if _, err := into.Write(packet); err != nil {
			return received, err
		}
	}
}

// ErrRetriesExhausted is returned by retry when every attempt was
// interrupted.
var ErrRetriesExhausted = errors.New("xmodem: retries exhausted")

func retry(fn func() error) error {
	for range Retries {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrInterrupted) {
			return err
		}
	}
	return ErrRetriesExhausted
}
