// rtcsync sets a DS1302 terminal to the host clock in UTC, either over its serial port or through an MQTT broker.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Erriez/ErriezDS1302/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	mode := flag.String("mode", "", "serial or mqtt, overrides the config file")
	device := flag.String("device", "", "serial device, overrides the config file")
	baud := flag.Int("baud", 0, "serial baud rate, overrides the config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rtcsync: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	if err := cfg.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "rtcsync: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(cfg.Log)
	if err := run(cfg, log); err != nil {
		log.Error("rtcsync failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config, log *slog.Logger) error {
	switch cfg.Mode {
	case modeMQTT:
		return runMQTT(cfg, log)
	default:
		return runSerial(cfg, log)
	}
}

func runSerial(cfg config, log *slog.Logger) error {
	port, err := openPort(cfg.Device, cfg.Baud)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	defer port.Close()

	// drop whatever the board printed before we were listening
	if err := port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset %s: %w", cfg.Device, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		return fmt.Errorf("configure %s: %w", cfg.Device, err)
	}

	log.Info("waiting for terminal", "device", cfg.Device, "baud", cfg.Baud)
	if err := waitBanner(port, cfg.Timeout); err != nil {
		log.Warn("continuing without banner", "err", err)
	}

	at, err := syncSerial(port, time.Now, time.Sleep, cfg.Print)
	if err != nil {
		return fmt.Errorf("write %s: %w", cfg.Device, err)
	}
	log.Info("rtc set", "time", at.Format(time.RFC3339))
	return nil
}

func runMQTT(cfg config, log *slog.Logger) error {
	p, err := dialBroker(cfg, log)
	if err != nil {
		return err
	}
	defer p.close()

	at := nextSecond(time.Now().UTC())
	time.Sleep(time.Until(at))
	if err := p.send(timeCommand(at), dateCommand(at)); err != nil {
		return err
	}
	log.Info("rtc set", "time", at.Format(time.RFC3339), "topic", p.topic("cmd"))

	// leave time for the reply to arrive
	time.Sleep(time.Second)
	return nil
}
