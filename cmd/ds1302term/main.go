// ds1302term runs the serial terminal against a simulated DS1302 on the host, reading commands from stdin. With an
// MQTT broker configured the same commands are accepted on <prefix>/cmd.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/Erriez/ErriezDS1302/ds1302"
	"github.com/Erriez/ErriezDS1302/internal/ds1302sim"
	"github.com/Erriez/ErriezDS1302/internal/logging"
	"github.com/Erriez/ErriezDS1302/rtcmqtt"
	"github.com/Erriez/ErriezDS1302/terminal"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ds1302term: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log)
	if err := run(context.Background(), cfg, log, os.Stdin, os.Stdout); err != nil {
		log.Error("ds1302term stopped", "err", err)
		os.Exit(1)
	}
}

// run drives the chip, the shell and the optional bridge from one goroutine until in is exhausted.
func run(ctx context.Context, cfg config, log *slog.Logger, in io.Reader, out io.Writer) error {
	chip := ds1302sim.New()
	rtc := ds1302.New(chip.CLK(), chip.IO(), chip.CE())
	if err := rtc.Configure(ds1302.Config{PinDelay: cfg.PinDelay, Epoch: cfg.Epoch}); err != nil {
		return fmt.Errorf("configure rtc: %w", err)
	}
	if cfg.SyncHostClock {
		now := time.Now().UTC()
		if err := rtc.Set(now); err != nil {
			return fmt.Errorf("set rtc from host: %w", err)
		}
		log.Info("clock set from host", "time", now.Format(time.RFC3339))
	}

	shell := terminal.New(rtc, out)
	shell.Start()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, in, log)

	var (
		bridge    *rtcmqtt.Bridge
		cmds      <-chan []byte
		publish   <-chan time.Time
		listenErr = make(chan error, 1)
		dropped   uint64
	)
	if cfg.MQTT.Broker != "" {
		conn, err := net.Dial("tcp", cfg.MQTT.Broker)
		if err != nil {
			return fmt.Errorf("dial mqtt broker: %w", err)
		}
		defer conn.Close()

		bridge = rtcmqtt.New(rtc, rtcmqtt.Config{
			ClientID: cfg.MQTT.ClientID,
			Prefix:   cfg.MQTT.Prefix,
		})
		if err := bridge.Connect(ctx, conn); err != nil {
			return fmt.Errorf("mqtt connect: %w", err)
		}
		log.Info("mqtt bridge connected", "broker", cfg.MQTT.Broker, "topic", bridge.Topic("cmd"))
		go func() { listenErr <- bridge.Listen() }()
		cmds = bridge.Commands()

		if cfg.MQTT.PublishInterval > 0 {
			ticker := time.NewTicker(cfg.MQTT.PublishInterval)
			defer ticker.Stop()
			publish = ticker.C
		}
	}

	second := time.NewTicker(time.Second)
	defer second.Stop()
	poll := time.NewTicker(100 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := shell.Exec(line); err != nil {
				log.Debug("command failed", "line", line, "err", err)
			}
		case <-second.C:
			chip.Tick()
		case <-poll.C:
			shell.Poll()
		case payload := <-cmds:
			log.Debug("mqtt command", "payload", string(payload))
			if n := bridge.Dropped(); n != dropped {
				log.Warn("mqtt commands dropped", "count", n-dropped)
				dropped = n
			}
			if err := bridge.Reply(bridge.Exec(payload)); err != nil {
				log.Warn("mqtt reply failed", "err", err)
			}
		case <-publish:
			if err := bridge.PublishTime(); err != nil {
				log.Warn("mqtt publish failed", "err", err)
			}
		case err := <-listenErr:
			return fmt.Errorf("mqtt listen: %w", err)
		}
	}
}

// readLines feeds the lines of in to the returned channel, which is closed at EOF or once ctx is done.
func readLines(ctx context.Context, in io.Reader, log *slog.Logger) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.Warn("stdin read failed", "err", err)
		}
	}()
	return lines
}
