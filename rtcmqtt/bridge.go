// Package rtcmqtt puts a DS1302 terminal on an MQTT broker. Command lines published to <prefix>/cmd are run through a
// terminal.Shell and the output is published to <prefix>/reply; PublishTime reports the clock on <prefix>/time.
//
// The network side (Listen) and the clock side (Exec, Reply, PublishTime) are split so the clock can stay on the
// caller's goroutine: Listen only queues incoming commands on the Commands channel.
package rtcmqtt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	mqtt "github.com/soypat/natiu-mqtt"

	"github.com/Erriez/ErriezDS1302/terminal"
)

const (
	DefaultPrefix  = "ds1302"
	DefaultTimeout = 4 * time.Second
	defaultQueue   = 8
)

type Config struct {
	// ClientID defaults to the topic prefix.
	ClientID string
	// Prefix is the first topic level, DefaultPrefix if empty.
	Prefix string
	// Timeout bounds the CONNECT and SUBSCRIBE exchanges.
	Timeout time.Duration
	// BufferSize is the decoder buffer and the largest accepted payload.
	BufferSize int
}

type Bridge struct {
	cfg    Config
	rtc    terminal.Clock
	shell  *terminal.Shell
	out    bytes.Buffer
	client *mqtt.Client
	cmds   chan []byte
	// commands received while cmds was full
	dropped atomic.Uint64
}

func New(rtc terminal.Clock, cfg Config) *Bridge {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.ClientID == "" {
		cfg.ClientID = cfg.Prefix
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 512
	}

	b := &Bridge{
		cfg:  cfg,
		rtc:  rtc,
		cmds: make(chan []byte, defaultQueue),
	}
	b.shell = terminal.New(rtc, &b.out)
	b.client = mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, cfg.BufferSize)},
		OnPub:   b.onPub,
	})
	return b
}

// Topic returns the full topic name for name under the configured prefix.
func (b *Bridge) Topic(name string) string {
	return b.cfg.Prefix + "/" + name
}

// Connect performs the MQTT handshake over conn and subscribes to the command topic. The caller keeps ownership of
// conn and closes it when done.
func (b *Bridge) Connect(ctx context.Context, conn io.ReadWriteCloser) error {
	var vc mqtt.VariablesConnect
	vc.SetDefaultMQTT([]byte(b.cfg.ClientID))

	cctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()
	if err := b.client.Connect(cctx, conn, &vc); err != nil {
		return fmt.Errorf("rtcmqtt: connect: %w", err)
	}

	sctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()
	err := b.client.Subscribe(sctx, mqtt.VariablesSubscribe{
		PacketIdentifier: 1,
		TopicFilters: []mqtt.SubscribeRequest{
			{TopicFilter: []byte(b.Topic("cmd")), QoS: mqtt.QoS0},
		},
	})
	if err != nil {
		return fmt.Errorf("rtcmqtt: subscribe %s: %w", b.Topic("cmd"), err)
	}
	return nil
}

// Listen handles incoming packets until the connection fails. It never touches the clock.
func (b *Bridge) Listen() error {
	for {
		if err := b.client.HandleNext(); err != nil {
			return err
		}
	}
}

// Commands delivers the payloads received on the command topic.
func (b *Bridge) Commands() <-chan []byte {
	return b.cmds
}

func (b *Bridge) onPub(_ mqtt.Header, _ mqtt.VariablesPublish, r io.Reader) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	// an error here would make the client disconnect
	select {
	case b.cmds <- payload:
	default:
		b.dropped.Add(1)
	}
	return nil
}

// Dropped returns how many commands were discarded because Commands was not drained fast enough.
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

// Exec runs every line of payload through the shell and returns what it printed.
func (b *Bridge) Exec(payload []byte) []byte {
	b.out.Reset()
	for _, line := range strings.Split(string(payload), "\n") {
		b.shell.Exec(line)
	}
	reply := make([]byte, b.out.Len())
	copy(reply, b.out.Bytes())
	return reply
}

// Reply publishes the output of a command.
func (b *Bridge) Reply(out []byte) error {
	return b.publish("reply", out)
}

// PublishTime publishes the clock as an RFC 3339 UTC timestamp.
func (b *Bridge) PublishTime() error {
	dt, err := b.rtc.ReadDateTime()
	if err != nil {
		return err
	}
	return b.publish("time", []byte(dt.Time().Format(time.RFC3339)))
}

func (b *Bridge) publish(name string, payload []byte) error {
	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return err
	}
	return b.client.PublishPayload(flags, mqtt.VariablesPublish{TopicName: []byte(b.Topic(name))}, payload)
}
