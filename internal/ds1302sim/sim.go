// Package ds1302sim is a pin-level model of a DS1302. It reacts to edges on the three lines the way the chip does:
// command and write bits are latched on rising clock edges, read bits are driven after falling edges, and CE frames
// every transaction. It records what it saw so tests can check the waveform, not just the register contents.
package ds1302sim

import (
	"time"

	"github.com/Erriez/ErriezDS1302/drivers"
)

const (
	regSeconds      = 0
	regWeekday      = 5
	regWriteProtect = 7
	clockRegisters  = 9
	clockBurstSize  = 8
	ramSize         = 31
	burstAddress    = 0x1F
)

type phase uint8

const (
	phaseIdle phase = iota
	phaseCommand
	phaseWrite
	phaseRead
	phaseIgnore
)

// Chip is a simulated DS1302. Clock holds registers 0 to 8 (seconds through trickle charger) and may be set directly.
type Chip struct {
	Clock [clockRegisters]byte
	RAM   [ramSize]byte

	clk    bool
	ce     bool
	hostIO bool
	// hostOut is true while the host has the data line configured as an output.
	hostOut bool
	chipIO  bool

	phase   phase
	bits    int
	shift   uint8
	ram     bool
	burst   bool
	index   int
	outBit  int
	outByte uint8
	pending [clockBurstSize]byte

	sampled      []bool
	contention   int
	transactions int
}

// New returns a chip in its power-on state: oscillator halted, write protected, trickle charger off, 2000-01-01.
func New() *Chip {
	c := &Chip{}
	c.Clock = [clockRegisters]byte{0x80, 0x00, 0x00, 0x01, 0x01, 0x07, 0x00, 0x80, 0x5C}
	return c
}

func (c *Chip) CLK() drivers.Pin { return pin{c: c, line: lineCLK} }
func (c *Chip) IO() drivers.Pin  { return pin{c: c, line: lineIO} }
func (c *Chip) CE() drivers.Pin  { return pin{c: c, line: lineCE} }

// Sampled returns the data line level latched at every rising clock edge of the command and write phases since the
// last ResetTrace.
func (c *Chip) Sampled() []bool {
	out := make([]bool, len(c.sampled))
	copy(out, c.sampled)
	return out
}

func (c *Chip) ResetTrace() {
	c.sampled = c.sampled[:0]
	c.contention = 0
	c.transactions = 0
}

// Contention counts the bits the chip drove while the host still had the data line as an output.
func (c *Chip) Contention() int { return c.contention }

// Transactions counts CE rising edges.
func (c *Chip) Transactions() int { return c.transactions }

// Halted reports the clock halt flag.
func (c *Chip) Halted() bool { return c.Clock[regSeconds]&0x80 != 0 }

func (c *Chip) writeProtected() bool { return c.Clock[regWriteProtect]&0x80 != 0 }

func (c *Chip) setCE(high bool) {
	if high && !c.ce {
		c.transactions++
		c.phase = phaseCommand
		c.bits = 0
		c.shift = 0
	}
	if !high {
		c.phase = phaseIdle
	}
	c.ce = high
}

func (c *Chip) setCLK(high bool) {
	prev := c.clk
	c.clk = high
	if !c.ce || prev == high {
		return
	}
	if high {
		c.rising()
	} else {
		c.falling()
	}
}

func (c *Chip) rising() {
	if c.phase != phaseCommand && c.phase != phaseWrite {
		return
	}
	bit := c.hostIO
	c.sampled = append(c.sampled, bit)
	if bit {
		c.shift |= 1 << c.bits
	}
	c.bits++
	if c.bits < 8 {
		return
	}
	b := c.shift
	c.bits = 0
	c.shift = 0
	if c.phase == phaseCommand {
		c.decode(b)
	} else {
		c.store(b)
	}
}

func (c *Chip) falling() {
	if c.phase != phaseRead {
		return
	}
	if c.outBit == 0 {
		c.outByte = c.peek(c.index)
	}
	if c.hostOut {
		c.contention++
	}
	c.chipIO = c.outByte>>c.outBit&1 != 0
	c.outBit++
	if c.outBit == 8 {
		c.outBit = 0
		if c.burst {
			c.index++
		}
	}
}

func (c *Chip) decode(cmd uint8) {
	if cmd&0x80 == 0 {
		c.phase = phaseIgnore
		return
	}
	c.ram = cmd&0x40 != 0
	addr := int(cmd>>1) & 0x1F
	c.burst = addr == burstAddress
	c.index = addr
	if c.burst {
		c.index = 0
	}
	if cmd&0x01 != 0 {
		c.phase = phaseRead
		c.outBit = 0
	} else {
		c.phase = phaseWrite
	}
}

func (c *Chip) store(b uint8) {
	switch {
	case c.burst && !c.ram:
		// clock burst writes only take effect once all eight registers arrived
		if c.index < clockBurstSize {
			c.pending[c.index] = b
			c.index++
			if c.index == clockBurstSize {
				wp := c.writeProtected()
				c.Clock[regWriteProtect] = c.pending[regWriteProtect] & 0x80
				if !wp {
					copy(c.Clock[:regWriteProtect], c.pending[:regWriteProtect])
				}
			}
		}
	case c.burst:
		c.poke(c.index, b)
		c.index++
	default:
		c.poke(c.index, b)
		c.phase = phaseIgnore
	}
}

func (c *Chip) poke(index int, b uint8) {
	if !c.ram && index == regWriteProtect {
		c.Clock[regWriteProtect] = b & 0x80
		return
	}
	if c.writeProtected() {
		return
	}
	if c.ram {
		if index < ramSize {
			c.RAM[index] = b
		}
	} else if index < clockRegisters {
		c.Clock[index] = b
	}
}

func (c *Chip) peek(index int) uint8 {
	if c.ram {
		if index < ramSize {
			return c.RAM[index]
		}
		return 0
	}
	if c.burst && index >= clockBurstSize {
		return 0
	}
	if index < clockRegisters {
		return c.Clock[index]
	}
	return 0
}

func (c *Chip) ioLevel() bool {
	if c.phase == phaseRead && !c.hostOut {
		return c.chipIO
	}
	return c.hostIO
}

// Tick advances the clock by one second unless the oscillator is halted. Registers that don't hold a valid date are
// left alone.
func (c *Chip) Tick() {
	if c.Halted() {
		return
	}
	r := c.Clock
	sec, minute, hour := int(bcdToDec(r[0]&0x7F)), int(bcdToDec(r[1]&0x7F)), int(bcdToDec(r[2]&0x3F))
	day, month, year := int(bcdToDec(r[3]&0x3F)), time.Month(bcdToDec(r[4]&0x1F)), 2000+int(bcdToDec(r[6]))
	t := time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
	if t.Second() != sec || t.Minute() != minute || t.Hour() != hour || t.Day() != day || t.Month() != month || t.Year() != year {
		return
	}
	next := t.Add(time.Second)
	c.Clock[0] = decToBcd(uint8(next.Second()))
	c.Clock[1] = decToBcd(uint8(next.Minute()))
	c.Clock[2] = decToBcd(uint8(next.Hour()))
	c.Clock[3] = decToBcd(uint8(next.Day()))
	c.Clock[4] = decToBcd(uint8(next.Month()))
	c.Clock[6] = decToBcd(uint8(next.Year() % 100))
	if next.Day() != t.Day() {
		wday := r[regWeekday]&0x07 + 1
		if wday > 7 {
			wday = 1
		}
		c.Clock[regWeekday] = wday
	}
}

func decToBcd(dec uint8) uint8 {
	return (dec/10)<<4 | dec%10
}

func bcdToDec(bcd uint8) uint8 {
	return 10*(bcd>>4) + bcd&0x0F
}
