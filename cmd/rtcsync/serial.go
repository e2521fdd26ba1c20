package main

import (
	"io"
	"time"

	"go.bug.st/serial"
)

// readTimeout bounds each read so the banner reader gives up once the line goes quiet.
const readTimeout = 100 * time.Millisecond

// serialPort is the part of serial.Port rtcsync uses.
type serialPort interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
}

// openPort opens device as 8N1 at baud. Tests replace it.
var openPort = func(device string, baud int) (serialPort, error) {
	return serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
}
