// Package config loads SPI device profiles from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Frequency wraps physic.Frequency so profiles can express clock speeds
// either as plain Hertz numbers or with a unit suffix ("500kHz",
// "10MHz").
type Frequency struct {
	physic.Frequency
}

func (f *Frequency) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		return f.Frequency.Set(s)
	}
	var hz int64
	if err := value.Decode(&hz); err != nil {
		return fmt.Errorf("invalid frequency %q", value.Value)
	}
	f.Frequency = physic.Frequency(hz) * physic.Hertz
	return nil
}

// Hertz returns the frequency rounded down to whole Hertz.
func (f Frequency) Hertz() uint32 {
	return uint32(f.Frequency / physic.Hertz)
}

type DeviceConfig struct {
	Bus         int       `yaml:"Bus"`
	ChipSelect  int       `yaml:"ChipSelect"`
	Speed       Frequency `yaml:"Speed"`
	Mode        uint8     `yaml:"Mode"`
	BitsPerWord uint8     `yaml:"BitsPerWord"`
}

type LoggingConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

type Config struct {
	Device  DeviceConfig  `yaml:"Device"`
	Logging LoggingConfig `yaml:"Logging"`
}

func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Speed:       Frequency{500 * physic.KiloHertz},
			BitsPerWord: 8,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// Read loads and validates a device profile.
func Read(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", path, err)
	}
	defer f.Close()

	conf := defaultConfig()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(conf); err != nil {
		return nil, fmt.Errorf("can't decode config file %s: %w", path, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return conf, nil
}

// Validate checks the device section against what the spidev interface
// accepts.
func (c *Config) Validate() error {
	d := c.Device
	if d.Bus < 0 {
		return fmt.Errorf("bus must be non-negative, got %d", d.Bus)
	}
	if d.ChipSelect < 0 {
		return fmt.Errorf("chip select must be non-negative, got %d", d.ChipSelect)
	}
	if d.Mode > 3 {
		return fmt.Errorf("mode must be 0-3, got %d", d.Mode)
	}
	if d.Speed.Frequency <= 0 {
		return fmt.Errorf("speed must be positive, got %s", d.Speed)
	}
	if d.BitsPerWord == 0 {
		return fmt.Errorf("bits per word must be non-zero")
	}
	return nil
}
