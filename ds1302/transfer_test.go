package ds1302

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/Erriez/ErriezDS1302/drivers"
	"github.com/Erriez/ErriezDS1302/internal/ds1302sim"
)

func newDevice(c *qt.C) (*Device, *ds1302sim.Chip) {
	chip := ds1302sim.New()
	dev := New(chip.CLK(), chip.IO(), chip.CE())
	c.Assert(dev.Configure(Config{}), qt.IsNil)
	chip.ResetTrace()
	return dev, chip
}

func bitsOf(v uint8) []bool {
	out := make([]bool, 8)
	for i := range out {
		out[i] = v&(1<<i) != 0
	}
	return out
}

func TestCommandByte(t *testing.T) {
	c := qt.New(t)
	c.Assert(command(false, RegSeconds, true), qt.Equals, uint8(0x81))
	c.Assert(command(false, RegWeekday, true), qt.Equals, uint8(0x8B))
	c.Assert(command(false, RegWriteProtect, false), qt.Equals, uint8(0x8E))
	c.Assert(command(true, 0, false), qt.Equals, uint8(0xC0))
	c.Assert(command(true, 30, true), qt.Equals, uint8(0xFD))
	c.Assert(burstCommand(false, true), qt.Equals, uint8(0xBF))
	c.Assert(burstCommand(false, false), qt.Equals, uint8(0xBE))
	c.Assert(burstCommand(true, true), qt.Equals, uint8(0xFF))
	c.Assert(burstCommand(true, false), qt.Equals, uint8(0xFE))
}

func TestWriteByteIsLSBFirst(t *testing.T) {
	c := qt.New(t)
	chip := ds1302sim.New()
	dev := New(chip.CLK(), chip.IO(), chip.CE())

	dev.beginTransfer()
	dev.writeByte(0b1011_0000)
	dev.endTransfer()

	c.Assert(chip.Sampled(), qt.DeepEquals, []bool{false, false, false, false, true, true, false, true})
}

func TestReadByteReassemblesLSBFirst(t *testing.T) {
	c := qt.New(t)
	dev, chip := newDevice(c)
	chip.RAM[4] = 0b1011_0000

	v, err := dev.ReadRAM(4)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint8(0b1011_0000))
	// only the command byte is clocked in by the chip
	c.Assert(chip.Sampled(), qt.DeepEquals, bitsOf(0xC9))
	c.Assert(chip.Contention(), qt.Equals, 0)
	c.Assert(chip.Transactions(), qt.Equals, 1)
}

// scriptedPin replays a fixed sequence of levels on Get.
type scriptedPin struct {
	levels []bool
	mode   drivers.PinMode
}

func (p *scriptedPin) Configure(mode drivers.PinMode) { p.mode = mode }
func (p *scriptedPin) Set(bool)                       {}
func (p *scriptedPin) Get() bool {
	v := p.levels[0]
	p.levels = p.levels[1:]
	return v
}

type nopPin struct{}

func (nopPin) Configure(drivers.PinMode) {}
func (nopPin) Set(bool)                  {}
func (nopPin) Get() bool                 { return false }

func TestReadByteFromScriptedLine(t *testing.T) {
	c := qt.New(t)
	io := &scriptedPin{levels: []bool{false, false, false, false, true, true, false, true}}
	dev := New(nopPin{}, io, nopPin{})
	c.Assert(dev.readByte(), qt.Equals, uint8(0b1011_0000))
	c.Assert(io.levels, qt.HasLen, 0)
}

func TestReadCommandReleasesDataLine(t *testing.T) {
	c := qt.New(t)
	dev, chip := newDevice(c)

	_, err := dev.ReadDateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(chip.Contention(), qt.Equals, 0)

	// a following write must take the line back
	c.Assert(dev.WriteRAM(0, 0x5A), qt.IsNil)
	c.Assert(chip.RAM[0], qt.Equals, uint8(0x5A))
}

func TestPinDelay(t *testing.T) {
	c := qt.New(t)
	chip := ds1302sim.New()
	dev := New(chip.CLK(), chip.IO(), chip.CE())

	var calls int
	var shortest time.Duration = time.Hour
	err := dev.Configure(Config{
		PinDelay: 2 * time.Microsecond,
		Delay: func(d time.Duration) {
			calls++
			if d < shortest {
				shortest = d
			}
		},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(calls > 0, qt.Equals, true)
	c.Assert(shortest, qt.Equals, 2*time.Microsecond)

	calls = 0
	dev.writeRegister(RegTrickle, uint8(TrickleDisabled))
	// command byte and data byte, two delays per bit
	c.Assert(calls, qt.Equals, 32)
}

func TestNoPinDelay(t *testing.T) {
	c := qt.New(t)
	chip := ds1302sim.New()
	dev := New(chip.CLK(), chip.IO(), chip.CE())

	var calls int
	err := dev.Configure(Config{Delay: func(time.Duration) { calls++ }})
	c.Assert(err, qt.IsNil)
	c.Assert(calls, qt.Equals, 0)
}
