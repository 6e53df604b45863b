package spi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorReadWriteRoundTrip(t *testing.T) {
	sim := NewSimulator()
	ch, err := NewChannel(sim, 500000, Mode0, 8)
	require.NoError(t, err)

	require.NoError(t, ch.WriteRegByte(0x0A, 0x55))
	val, err := ch.ReadByte(0x0A)
	require.NoError(t, err)
	assert.Equal(t, byte(0x55), val)
}

func TestSimulatorBurstRead(t *testing.T) {
	sim := NewSimulator()
	sim.Preload(0x10, []byte{1, 2, 3, 4})
	ch, err := NewChannel(sim, 500000, Mode0, 8)
	require.NoError(t, err)

	data, err := ch.ReadBytes(4, 0x10)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestSimulatorBurstWrite(t *testing.T) {
	sim := NewSimulator()
	ch, err := NewChannel(sim, 500000, Mode0, 8)
	require.NoError(t, err)

	require.NoError(t, ch.WriteBytes([]byte{0x20, 0xDE, 0xAD, 0xBE}))
	assert.Equal(t, byte(0xDE), sim.Register(0x20))
	assert.Equal(t, byte(0xAD), sim.Register(0x21))
	assert.Equal(t, byte(0xBE), sim.Register(0x22))
}

func TestSimulatorRecordsParams(t *testing.T) {
	sim := NewSimulator()
	ch, err := NewChannel(sim, 750000, Mode2, 8)
	require.NoError(t, err)

	params := sim.Params()
	assert.Equal(t, uint32(2), params[ParamMode])
	assert.Equal(t, uint32(750000), params[ParamSpeed])
	assert.Equal(t, uint32(8), params[ParamBits])

	require.NoError(t, ch.SetSpeed(1500000))
	assert.Equal(t, uint32(1500000), sim.Params()[ParamSpeed])
}

func TestSimulatorClosedTransferFails(t *testing.T) {
	sim := NewSimulator()
	require.NoError(t, sim.Close())
	err := sim.Transfer([]byte{0x80, 0}, make([]byte, 2), 500000, 8)
	assert.Error(t, err)
}

func TestSimulatorAddressWrapsAtRegisterFileEnd(t *testing.T) {
	sim := NewSimulator()
	sim.Preload(0x3F, []byte{0x11, 0x22})
	assert.Equal(t, byte(0x11), sim.Register(0x3F))
	assert.Equal(t, byte(0x22), sim.Register(0x00))
}
