package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Erriez/ErriezDS1302/internal/logging"
)

const (
	modeSerial = "serial"
	modeMQTT   = "mqtt"
)

// rtcsync config.toml key mapping to runtime settings.
type fileConfig struct {
	Mode      string `toml:"mode"`
	Device    string `toml:"device"`
	Baud      int    `toml:"baud"`
	Broker    string `toml:"broker"`
	Prefix    string `toml:"prefix"`
	ClientID  string `toml:"client_id"`
	Timeout   string `toml:"timeout"`
	Print     bool   `toml:"print"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

type config struct {
	Mode string
	// Device is the serial port, opened 8N1 at Baud.
	Device string
	Baud   int
	// Broker is a paho broker URL such as tcp://localhost:1883.
	Broker   string
	Prefix   string
	ClientID string
	// Timeout bounds waiting for the terminal banner or the broker.
	Timeout time.Duration
	// Print enables per-second output on the terminal after setting it.
	Print bool
	Log   logging.Config
}

func defaultConfig() config {
	return config{
		Mode:     modeSerial,
		Device:   "/dev/ttyACM0",
		Baud:     115200,
		Broker:   "tcp://localhost:1883",
		Prefix:   "ds1302",
		ClientID: "rtcsync",
		Timeout:  10 * time.Second,
		Print:    true,
		Log:      logging.Config{Level: "info", Format: logging.FormatConsole},
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load rtcsync config: %w", err)
	}

	if meta.IsDefined("mode") {
		cfg.Mode = strings.ToLower(strings.TrimSpace(raw.Mode))
	}
	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("baud") {
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("broker") {
		cfg.Broker = strings.TrimSpace(raw.Broker)
	}
	if meta.IsDefined("prefix") {
		cfg.Prefix = strings.TrimSpace(raw.Prefix)
	}
	if meta.IsDefined("client_id") {
		cfg.ClientID = strings.TrimSpace(raw.ClientID)
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return config{}, fmt.Errorf("load rtcsync config: timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("print") {
		cfg.Print = raw.Print
	}
	if meta.IsDefined("log_level") {
		cfg.Log.Level = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_format") {
		cfg.Log.Format = strings.TrimSpace(raw.LogFormat)
	}

	if err := cfg.validate(); err != nil {
		return config{}, fmt.Errorf("load rtcsync config: %w", err)
	}
	return cfg, nil
}

func (c config) validate() error {
	switch c.Mode {
	case modeSerial:
		if c.Device == "" {
			return fmt.Errorf("serial mode needs a device")
		}
		if c.Baud <= 0 {
			return fmt.Errorf("baud must be positive")
		}
	case modeMQTT:
		if c.Broker == "" {
			return fmt.Errorf("mqtt mode needs a broker")
		}
	default:
		return fmt.Errorf("unsupported mode %q (expected serial or mqtt)", c.Mode)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
