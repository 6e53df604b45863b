package spi

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl numbers from include/uapi/linux/spi/spidev.h.
const (
	iocWrMode        = 0x40016b01
	iocRdMode        = 0x80016b01
	iocWrBitsPerWord = 0x40016b03
	iocRdBitsPerWord = 0x80016b03
	iocWrMaxSpeedHz  = 0x40046b04
	iocRdMaxSpeedHz  = 0x80046b04
)

// iocTransfer mirrors struct spi_ioc_transfer.
type iocTransfer struct {
	txBuf          uint64
	rxBuf          uint64
	length         uint32
	speedHz        uint32
	delayUsecs     uint16
	bitsPerWord    uint8
	csChange       uint8
	txNBits        uint8
	rxNBits        uint8
	wordDelayUsecs uint8
	pad            uint8
}

// iocMessage is the ioctl number for a message of n chained transfers.
func iocMessage(n int) uintptr {
	const (
		sizeBits  = 14
		sizeShift = 16
	)
	size := uintptr(n) * unsafe.Sizeof(iocTransfer{})
	if n < 0 || size >= (1<<sizeBits) {
		size = 0
	}
	return 0x40006b00 | (size << sizeShift)
}

// Open opens /dev/spidev{bus}.{device} and applies mode, speed and
// bits-per-word, in that order. If any configuration step fails the
// device node is closed again and no channel is returned.
func Open(bus, device int, speedHz uint32, mode Mode, bits uint8) (*Channel, error) {
	t, err := openDevfs(bus, device)
	if err != nil {
		return nil, err
	}
	return NewChannel(t, speedHz, mode, bits)
}

// devfs is the Transport backed by a /dev/spidevB.D character device.
type devfs struct {
	f *os.File
}

func openDevfs(bus, device int) (Transport, error) {
	path := fmt.Sprintf("/dev/spidev%d.%d", bus, device)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return &devfs{f: f}, nil
}

func (d *devfs) ioctl(req uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), req, uintptr(arg)); errno != 0 {
		return errno
	}
	return nil
}

func (d *devfs) SetParam(p Param, value uint32) error {
	switch p {
	case ParamMode:
		v := uint8(value)
		if err := d.ioctl(iocWrMode, unsafe.Pointer(&v)); err != nil {
			return err
		}
		return d.ioctl(iocRdMode, unsafe.Pointer(&v))
	case ParamBits:
		v := uint8(value)
		if err := d.ioctl(iocWrBitsPerWord, unsafe.Pointer(&v)); err != nil {
			return err
		}
		return d.ioctl(iocRdBitsPerWord, unsafe.Pointer(&v))
	case ParamSpeed:
		v := value
		if err := d.ioctl(iocWrMaxSpeedHz, unsafe.Pointer(&v)); err != nil {
			return err
		}
		return d.ioctl(iocRdMaxSpeedHz, unsafe.Pointer(&v))
	}
	return fmt.Errorf("unknown parameter %q", p)
}

func (d *devfs) Transfer(tx, rx []byte, speedHz uint32, bits uint8) error {
	if len(tx) != len(rx) {
		return fmt.Errorf("tx/rx length mismatch: %d != %d", len(tx), len(rx))
	}
	if len(tx) == 0 {
		return nil
	}
	tr := iocTransfer{
		txBuf:       uint64(uintptr(unsafe.Pointer(&tx[0]))),
		rxBuf:       uint64(uintptr(unsafe.Pointer(&rx[0]))),
		length:      uint32(len(tx)),
		speedHz:     speedHz,
		bitsPerWord: bits,
	}
	return d.ioctl(iocMessage(1), unsafe.Pointer(&tr))
}

func (d *devfs) Close() error {
	return d.f.Close()
}
