package spi

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// rpioTransport drives the BCM283x SPI controller directly through
// memory-mapped registers. It is an alternative to the devfs transport
// for Raspberry Pi systems where the spidev module is not loaded.
//
// go-rpio controls the SPI peripheral through package-level state, so
// at most one rpio transport can be open at a time.
type rpioTransport struct {
	dev rpio.SpiDev
}

// OpenRPIO opens an SPI channel on the Raspberry Pi SPI controller
// identified by bus, with device selecting the chip select line. Only
// 8-bit words are supported by the controller.
func OpenRPIO(bus, device int, speedHz uint32, mode Mode, bits uint8) (*Channel, error) {
	var dev rpio.SpiDev
	switch bus {
	case 0:
		dev = rpio.Spi0
	case 1:
		dev = rpio.Spi1
	case 2:
		dev = rpio.Spi2
	default:
		return nil, &OpenError{
			Path: fmt.Sprintf("rpio spi%d.%d", bus, device),
			Err:  fmt.Errorf("no such SPI controller"),
		}
	}
	if err := rpio.Open(); err != nil {
		return nil, &OpenError{Path: fmt.Sprintf("rpio spi%d.%d", bus, device), Err: err}
	}
	if err := rpio.SpiBegin(dev); err != nil {
		rpio.Close()
		return nil, &OpenError{Path: fmt.Sprintf("rpio spi%d.%d", bus, device), Err: err}
	}
	rpio.SpiChipSelect(uint8(device))
	return NewChannel(&rpioTransport{dev: dev}, speedHz, mode, bits)
}

func (t *rpioTransport) SetParam(p Param, value uint32) error {
	switch p {
	case ParamMode:
		if value > uint32(Mode3) {
			return fmt.Errorf("invalid mode %d", value)
		}
		// CPOL is bit 1, CPHA bit 0 of the mode number.
		rpio.SpiMode(uint8(value>>1), uint8(value&1))
		return nil
	case ParamSpeed:
		rpio.SpiSpeed(int(value))
		return nil
	case ParamBits:
		if value != 8 {
			return fmt.Errorf("controller supports 8-bit words only, got %d", value)
		}
		return nil
	}
	return fmt.Errorf("unknown parameter %q", p)
}

func (t *rpioTransport) Transfer(tx, rx []byte, speedHz uint32, bits uint8) error {
	if len(tx) != len(rx) {
		return fmt.Errorf("tx/rx length mismatch: %d != %d", len(tx), len(rx))
	}
	if bits != 8 {
		return fmt.Errorf("controller supports 8-bit words only, got %d", bits)
	}
	rpio.SpiSpeed(int(speedHz))
	// SpiExchange overwrites its argument with the received bytes.
	copy(rx, tx)
	rpio.SpiExchange(rx)
	return nil
}

func (t *rpioTransport) Close() error {
	rpio.SpiEnd(t.dev)
	return rpio.Close()
}
