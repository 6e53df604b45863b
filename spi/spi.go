// Package spi provides byte-level access to SPI peripherals through the
// Linux spidev interface. A Channel wraps one opened device node and
// offers register-oriented read and write primitives on top of a single
// full-duplex transfer operation.
package spi

import "fmt"

// Mode selects the clock polarity and phase of the bus. CPOL is the
// high order bit, CPHA the low order bit.
type Mode uint8

const (
	Mode0 Mode = 0
	Mode1 Mode = 1
	Mode2 Mode = 2
	Mode3 Mode = 3
)

// Param names one of the three configurable device parameters.
type Param string

const (
	ParamMode  Param = "mode"
	ParamSpeed Param = "max_speed_hz"
	ParamBits  Param = "bits_per_word"
)

// Register command flags of the common read/write wire convention: the
// top bit of the first transmitted byte flags a read, the next bit a
// burst read with address auto-increment. The low six bits carry the
// register address.
const (
	flagRead  = 0x80
	flagBurst = 0x40
)

// Transport is the low-level seam between a Channel and the hardware.
// SetParam writes the value to the device and reads it back; the
// read-back result is discarded, matching the best-effort apply
// semantic of the kernel driver. Transfer performs one full-duplex
// exchange of len(tx) == len(rx) bytes.
type Transport interface {
	SetParam(p Param, value uint32) error
	Transfer(tx, rx []byte, speedHz uint32, bits uint8) error
	Close() error
}

// Channel is an exclusive handle on one SPI device. It is not safe for
// concurrent use; callers needing shared access must serialize
// externally.
type Channel struct {
	t      Transport
	mode   Mode
	speed  uint32
	bits   uint8
	closed bool
}

// NewChannel runs the open-time configuration sequence over an already
// opened transport. On configuration failure the transport is closed
// and a ConfigError naming the failing parameter is returned.
func NewChannel(t Transport, speedHz uint32, mode Mode, bits uint8) (*Channel, error) {
	if mode > Mode3 {
		t.Close()
		return nil, &ConfigError{Param: ParamMode, Err: fmt.Errorf("invalid mode %d", mode)}
	}
	steps := []struct {
		p Param
		v uint32
	}{
		{ParamMode, uint32(mode)},
		{ParamSpeed, speedHz},
		{ParamBits, uint32(bits)},
	}
	for _, s := range steps {
		if err := t.SetParam(s.p, s.v); err != nil {
			t.Close()
			return nil, &ConfigError{Param: s.p, Err: err}
		}
	}
	return &Channel{t: t, mode: mode, speed: speedHz, bits: bits}, nil
}

// SetMode applies a new transfer mode to the device.
func (c *Channel) SetMode(mode Mode) error {
	if c.closed {
		return ErrClosed
	}
	if mode > Mode3 {
		return &ConfigError{Param: ParamMode, Err: fmt.Errorf("invalid mode %d", mode)}
	}
	if err := c.t.SetParam(ParamMode, uint32(mode)); err != nil {
		return &ConfigError{Param: ParamMode, Err: err}
	}
	c.mode = mode
	return nil
}

// SetSpeed applies a new maximum clock speed in Hz. Subsequent
// transfers use the new speed.
func (c *Channel) SetSpeed(speedHz uint32) error {
	if c.closed {
		return ErrClosed
	}
	if err := c.t.SetParam(ParamSpeed, speedHz); err != nil {
		return &ConfigError{Param: ParamSpeed, Err: err}
	}
	c.speed = speedHz
	return nil
}

// SetBitsPerWord applies a new word size. Subsequent transfers use the
// new width.
func (c *Channel) SetBitsPerWord(bits uint8) error {
	if c.closed {
		return ErrClosed
	}
	if err := c.t.SetParam(ParamBits, uint32(bits)); err != nil {
		return &ConfigError{Param: ParamBits, Err: err}
	}
	c.bits = bits
	return nil
}

// Transfer performs one full-duplex exchange, transmitting tx and
// returning the received bytes in a buffer of the same length. The
// channel's configured speed and bits-per-word are used for every
// transfer.
func (c *Channel) Transfer(tx []byte) ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}
	rx := make([]byte, len(tx))
	if err := c.t.Transfer(tx, rx, c.speed, c.bits); err != nil {
		return nil, &TransferError{Len: len(tx), Err: err}
	}
	return rx, nil
}

// ReadByte reads a single register. The first received byte is the echo
// of the command phase and is discarded.
func (c *Channel) ReadByte(reg uint8) (byte, error) {
	tx := []byte{flagRead | reg, 0}
	rx, err := c.Transfer(tx)
	if err != nil {
		return 0, err
	}
	return rx[1], nil
}

// ReadBytes reads n consecutive registers starting at start, using the
// burst auto-increment convention. The returned buffer holds exactly n
// payload bytes; the command echo at offset 0 of the exchange is
// dropped.
func (c *Channel) ReadBytes(n int, start uint8) ([]byte, error) {
	if n < 1 {
		return nil, &TransferError{Len: n, Err: fmt.Errorf("read length %d out of range", n)}
	}
	tx := make([]byte, n+1)
	tx[0] = flagRead | flagBurst | start
	rx, err := c.Transfer(tx)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, rx[1:])
	return out, nil
}

// WriteRegByte writes one byte to a register. A clear top bit in the
// first transmitted byte signals a write on the wire.
func (c *Channel) WriteRegByte(reg, data uint8) error {
	_, err := c.Transfer([]byte{reg, data})
	return err
}

// WriteBytes transmits data as-is; the caller is responsible for
// including the register address in the first byte. The received bytes
// are discarded.
func (c *Channel) WriteBytes(data []byte) error {
	_, err := c.Transfer(data)
	return err
}

// Close releases the underlying device. A second call returns
// ErrClosed.
func (c *Channel) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	return c.t.Close()
}
