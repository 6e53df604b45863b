// spireg reads and writes peripheral registers over SPI from the
// command line.
//
// Usage:
//
//	spireg [flags] read ADDR
//	spireg [flags] dump START COUNT
//	spireg [flags] write ADDR VALUE
//
// The device is selected through flags or a YAML profile (-config);
// flags given on the command line win over the profile. With -sim the
// tool runs against an in-memory register file instead of hardware.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"periph.io/x/conn/v3/physic"

	"periphery.net/spidev/config"
	"periphery.net/spidev/logging"
	"periphery.net/spidev/spi"
)

func main() {
	if err := run(); err != nil {
		slog.Error("spireg failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	conffile := flag.String("config", "", "device profile YAML file")
	bus := flag.Int("bus", 0, "SPI bus number (B in /dev/spidevB.D)")
	cs := flag.Int("cs", 0, "chip select (D in /dev/spidevB.D)")
	speed := 500 * physic.KiloHertz
	flag.Var(&speed, "speed", "clock speed, e.g. 500kHz or 10MHz")
	mode := flag.Int("mode", 0, "SPI mode (0-3)")
	bpw := flag.Int("bpw", 8, "bits per word")
	sim := flag.Bool("sim", false, "use the in-memory simulator instead of hardware")
	useRpio := flag.Bool("rpio", false, "drive the BCM283x controller directly instead of spidev")
	loglevel := flag.String("loglevel", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	logLevel := *loglevel
	logFormat := "text"
	logFile := ""

	if *conffile != "" {
		conf, err := config.Read(*conffile)
		if err != nil {
			return err
		}
		applyFlagDefaults(conf, bus, cs, &speed, mode, bpw)
		logLevel = conf.Logging.Level
		logFormat = conf.Logging.Format
		logFile = conf.Logging.File
	}

	if err := logging.Init(logLevel, logFormat, logFile != "", logFile); err != nil {
		return err
	}
	defer logging.Close()

	ch, err := openChannel(*sim, *useRpio, *bus, *cs, uint32(speed/physic.Hertz), spi.Mode(*mode), uint8(*bpw))
	if err != nil {
		return err
	}
	defer func() {
		if err := ch.Close(); err != nil {
			slog.Error("error closing channel", "error", err)
		}
	}()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("missing command: read, dump or write")
	}

	switch args[0] {
	case "read":
		if len(args) != 2 {
			return fmt.Errorf("usage: read ADDR")
		}
		addr, err := parseByte(args[1])
		if err != nil {
			return err
		}
		val, err := ch.ReadByte(addr)
		if err != nil {
			return err
		}
		fmt.Printf("0x%02X: 0x%02X\n", addr, val)
	case "dump":
		if len(args) != 3 {
			return fmt.Errorf("usage: dump START COUNT")
		}
		start, err := parseByte(args[1])
		if err != nil {
			return err
		}
		count, err := strconv.Atoi(args[2])
		if err != nil || count < 1 {
			return fmt.Errorf("invalid count %q", args[2])
		}
		data, err := ch.ReadBytes(count, start)
		if err != nil {
			return err
		}
		for i, b := range data {
			fmt.Printf("0x%02X: 0x%02X\n", int(start)+i, b)
		}
	case "write":
		if len(args) != 3 {
			return fmt.Errorf("usage: write ADDR VALUE")
		}
		addr, err := parseByte(args[1])
		if err != nil {
			return err
		}
		val, err := parseByte(args[2])
		if err != nil {
			return err
		}
		if err := ch.WriteRegByte(addr, val); err != nil {
			return err
		}
		slog.Info("register written", "addr", fmt.Sprintf("0x%02X", addr), "value", fmt.Sprintf("0x%02X", val))
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

// applyFlagDefaults overlays the profile values for every flag the user
// did not set explicitly.
func applyFlagDefaults(conf *config.Config, bus, cs *int, speed *physic.Frequency, mode, bpw *int) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["bus"] {
		*bus = conf.Device.Bus
	}
	if !set["cs"] {
		*cs = conf.Device.ChipSelect
	}
	if !set["speed"] {
		*speed = conf.Device.Speed.Frequency
	}
	if !set["mode"] {
		*mode = int(conf.Device.Mode)
	}
	if !set["bpw"] {
		*bpw = int(conf.Device.BitsPerWord)
	}
}

func openChannel(sim, useRpio bool, bus, cs int, speedHz uint32, mode spi.Mode, bits uint8) (*spi.Channel, error) {
	switch {
	case sim:
		slog.Debug("opening simulated device")
		return spi.NewChannel(spi.NewSimulator(), speedHz, mode, bits)
	case useRpio:
		slog.Debug("opening BCM283x controller", "bus", bus, "cs", cs)
		return spi.OpenRPIO(bus, cs, speedHz, mode, bits)
	default:
		slog.Debug("opening spidev device", "bus", bus, "cs", cs, "speed_hz", speedHz)
		return spi.Open(bus, cs, speedHz, mode, bits)
	}
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte value %q", s)
	}
	return uint8(v), nil
}
