package ds1302sim

import "github.com/Erriez/ErriezDS1302/drivers"

type line uint8

const (
	lineCLK line = iota
	lineIO
	lineCE
)

// pin is one of the chip's three lines as seen from the host.
type pin struct {
	c    *Chip
	line line
}

func (p pin) Configure(mode drivers.PinMode) {
	if p.line == lineIO {
		p.c.hostOut = mode == drivers.PinOutput
	}
}

func (p pin) Set(high bool) {
	switch p.line {
	case lineCLK:
		p.c.setCLK(high)
	case lineIO:
		p.c.hostIO = high
	case lineCE:
		p.c.setCE(high)
	}
}

func (p pin) Get() bool {
	switch p.line {
	case lineCLK:
		return p.c.clk
	case lineCE:
		return p.c.ce
	default:
		return p.c.ioLevel()
	}
}
