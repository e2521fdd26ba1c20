package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type publisher struct {
	client  mqtt.Client
	prefix  string
	timeout time.Duration
}

func dialBroker(cfg config, log *slog.Logger) (*publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.Timeout)
	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("connect %s: timed out after %s", cfg.Broker, cfg.Timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}

	p := &publisher{client: client, prefix: cfg.Prefix, timeout: cfg.Timeout}
	token = client.Subscribe(p.topic("reply"), 0, func(_ mqtt.Client, msg mqtt.Message) {
		for _, line := range strings.Split(strings.TrimSpace(string(msg.Payload())), "\n") {
			log.Info("rtc reply", "line", line)
		}
	})
	if token.WaitTimeout(cfg.Timeout) && token.Error() != nil {
		log.Warn("subscribe to replies failed", "err", token.Error())
	}
	return p, nil
}

func (p *publisher) topic(name string) string {
	return p.prefix + "/" + name
}

func (p *publisher) send(lines ...string) error {
	token := p.client.Publish(p.topic("cmd"), 0, false, strings.Join(lines, "\n"))
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish %s: timed out", p.topic("cmd"))
	}
	return token.Error()
}

func (p *publisher) close() {
	p.client.Disconnect(250)
}
