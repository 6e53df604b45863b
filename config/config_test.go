package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
Device:
  Bus: 1
  ChipSelect: 0
  Speed: 10MHz
  Mode: 3
  BitsPerWord: 8
Logging:
  Level: "DEBUG"
  Format: "json"
  File: "/tmp/spidev.log"
`

func TestReadValidConfig(t *testing.T) {
	conf, err := Read(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 1, conf.Device.Bus)
	assert.Equal(t, 0, conf.Device.ChipSelect)
	assert.Equal(t, uint32(10000000), conf.Device.Speed.Hertz())
	assert.Equal(t, uint8(3), conf.Device.Mode)
	assert.Equal(t, uint8(8), conf.Device.BitsPerWord)
	assert.Equal(t, "DEBUG", conf.Logging.Level)
	assert.Equal(t, "json", conf.Logging.Format)
}

func TestReadAppliesDefaults(t *testing.T) {
	conf, err := Read(writeConfig(t, "Device:\n  Bus: 0\n  ChipSelect: 1\n"))
	require.NoError(t, err)

	assert.Equal(t, uint32(500000), conf.Device.Speed.Hertz())
	assert.Equal(t, uint8(8), conf.Device.BitsPerWord)
	assert.Equal(t, uint8(0), conf.Device.Mode)
	assert.Equal(t, "INFO", conf.Logging.Level)
	assert.Equal(t, "text", conf.Logging.Format)
}

func TestReadNumericSpeed(t *testing.T) {
	conf, err := Read(writeConfig(t, "Device:\n  Speed: 250000\n"))
	require.NoError(t, err)
	assert.Equal(t, uint32(250000), conf.Device.Speed.Hertz())
	assert.Equal(t, 250*physic.KiloHertz, conf.Device.Speed.Frequency)
}

func TestReadRejectsInvalidMode(t *testing.T) {
	_, err := Read(writeConfig(t, "Device:\n  Mode: 4\n"))
	assert.ErrorContains(t, err, "mode must be 0-3")
}

func TestReadRejectsNegativeBus(t *testing.T) {
	_, err := Read(writeConfig(t, "Device:\n  Bus: -1\n"))
	assert.ErrorContains(t, err, "bus must be non-negative")
}

func TestReadRejectsUnknownFields(t *testing.T) {
	_, err := Read(writeConfig(t, "Device:\n  Buss: 1\n"))
	assert.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
