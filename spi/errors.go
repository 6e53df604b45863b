package spi

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when an operation is attempted on a channel
// whose Close has already been called.
var ErrClosed = errors.New("spi: channel closed")

// OpenError reports that the spidev device node could not be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("spi: open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ConfigError reports that one of the three device parameters could not
// be applied. Param names the parameter that failed, so callers can tell
// a bad mode apart from an unsupported speed or word size.
type ConfigError struct {
	Param Param
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("spi: configure %s: %v", e.Param, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TransferError reports a failed full-duplex exchange.
type TransferError struct {
	Len int
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("spi: transfer of %d bytes: %v", e.Len, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
