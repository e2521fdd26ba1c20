package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Erriez/ErriezDS1302/ds1302"
	"github.com/Erriez/ErriezDS1302/internal/logging"
)

// ds1302term config.toml key mapping to runtime settings.
type fileConfig struct {
	PinDelay        string `toml:"pin_delay"`
	Epoch           string `toml:"epoch"`
	SyncHostClock   bool   `toml:"sync_host_clock"`
	MQTTBroker      string `toml:"mqtt_broker"`
	MQTTPrefix      string `toml:"mqtt_prefix"`
	MQTTClientID    string `toml:"mqtt_client_id"`
	PublishInterval string `toml:"publish_interval"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
}

type mqttConfig struct {
	// Broker is a host:port TCP address. Empty disables the bridge.
	Broker          string
	Prefix          string
	ClientID        string
	PublishInterval time.Duration
}

type config struct {
	PinDelay      time.Duration
	Epoch         ds1302.Epoch
	SyncHostClock bool
	MQTT          mqttConfig
	Log           logging.Config
}

func defaultConfig() config {
	return config{
		Epoch:         ds1302.UnixEpoch,
		SyncHostClock: true,
		MQTT: mqttConfig{
			Prefix:          "ds1302",
			PublishInterval: 10 * time.Second,
		},
		Log: logging.Config{Level: "info", Format: logging.FormatConsole},
	}
}

// loadConfig overlays the TOML file at path on the defaults. An empty path returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load ds1302term config: %w", err)
	}

	if meta.IsDefined("pin_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PinDelay))
		if err != nil {
			return config{}, fmt.Errorf("load ds1302term config: pin_delay: %w", err)
		}
		cfg.PinDelay = d
	}
	if meta.IsDefined("epoch") {
		e, err := parseEpoch(raw.Epoch)
		if err != nil {
			return config{}, fmt.Errorf("load ds1302term config: %w", err)
		}
		cfg.Epoch = e
	}
	if meta.IsDefined("sync_host_clock") {
		cfg.SyncHostClock = raw.SyncHostClock
	}
	if meta.IsDefined("mqtt_broker") {
		cfg.MQTT.Broker = strings.TrimSpace(raw.MQTTBroker)
	}
	if meta.IsDefined("mqtt_prefix") {
		cfg.MQTT.Prefix = strings.TrimSpace(raw.MQTTPrefix)
	}
	if meta.IsDefined("mqtt_client_id") {
		cfg.MQTT.ClientID = strings.TrimSpace(raw.MQTTClientID)
	}
	if meta.IsDefined("publish_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PublishInterval))
		if err != nil {
			return config{}, fmt.Errorf("load ds1302term config: publish_interval: %w", err)
		}
		cfg.MQTT.PublishInterval = d
	}
	if meta.IsDefined("log_level") {
		cfg.Log.Level = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_format") {
		cfg.Log.Format = strings.TrimSpace(raw.LogFormat)
	}
	return cfg, nil
}

func parseEpoch(s string) (ds1302.Epoch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unix":
		return ds1302.UnixEpoch, nil
	case "y2k", "2000":
		return ds1302.Y2KEpoch, nil
	}
	return 0, fmt.Errorf("unsupported epoch %q (expected unix or y2k)", s)
}
