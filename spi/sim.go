package spi

import (
	"errors"
	"fmt"
)

// simRegisters is the size of the simulated register file; register
// addresses occupy the low six bits of a command byte.
const simRegisters = 64

// Simulator is an in-memory Transport emulating a peripheral with a
// 64-register file that follows the common command convention: top bit
// of the first byte flags a read, the next bit a burst with address
// auto-increment. It stands in for real hardware in tests and in the
// spireg tool's -sim mode.
type Simulator struct {
	regs   [simRegisters]byte
	params map[Param]uint32
	closed bool
}

// NewSimulator returns a simulator with all registers zeroed.
func NewSimulator() *Simulator {
	return &Simulator{params: make(map[Param]uint32)}
}

// Preload sets register contents before the simulated device is used.
func (s *Simulator) Preload(start uint8, data []byte) {
	for i, b := range data {
		s.regs[(int(start)+i)%simRegisters] = b
	}
}

// Register returns the current value of one register.
func (s *Simulator) Register(addr uint8) byte {
	return s.regs[addr%simRegisters]
}

// Params returns the last value applied for each device parameter.
func (s *Simulator) Params() map[Param]uint32 {
	out := make(map[Param]uint32, len(s.params))
	for k, v := range s.params {
		out[k] = v
	}
	return out
}

func (s *Simulator) SetParam(p Param, value uint32) error {
	if s.closed {
		return errors.New("simulator closed")
	}
	s.params[p] = value
	return nil
}

func (s *Simulator) Transfer(tx, rx []byte, speedHz uint32, bits uint8) error {
	if s.closed {
		return errors.New("simulator closed")
	}
	if len(tx) != len(rx) {
		return fmt.Errorf("tx/rx length mismatch: %d != %d", len(tx), len(rx))
	}
	if len(tx) == 0 {
		return nil
	}
	cmd := tx[0]
	addr := cmd & 0x3F
	rx[0] = 0 // command phase echoes nothing meaningful
	switch {
	case cmd&flagRead != 0 && cmd&flagBurst != 0:
		for i := 1; i < len(rx); i++ {
			rx[i] = s.regs[(int(addr)+i-1)%simRegisters]
		}
	case cmd&flagRead != 0:
		for i := 1; i < len(rx); i++ {
			rx[i] = s.regs[addr]
		}
	default:
		for i := 1; i < len(tx); i++ {
			s.regs[(int(addr)+i-1)%simRegisters] = tx[i]
			rx[i] = 0
		}
	}
	return nil
}

func (s *Simulator) Close() error {
	if s.closed {
		return errors.New("simulator closed")
	}
	s.closed = true
	return nil
}
