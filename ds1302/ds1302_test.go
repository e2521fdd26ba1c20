package ds1302

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/Erriez/ErriezDS1302/drivers"
	"github.com/Erriez/ErriezDS1302/internal/ds1302sim"
)

// floatingPin is a data line with nothing attached and a pull-up.
type floatingPin struct{}

func (floatingPin) Configure(drivers.PinMode) {}
func (floatingPin) Set(bool)                  {}
func (floatingPin) Get() bool                 { return true }

func TestConfigureClearsWriteProtect(t *testing.T) {
	c := qt.New(t)
	chip := ds1302sim.New()
	chip.Clock[RegWeekday] = 0x05
	chip.Clock[RegWriteProtect] = 0x80

	dev := New(chip.CLK(), chip.IO(), chip.CE())
	c.Assert(dev.Configure(Config{}), qt.IsNil)
	c.Assert(chip.Clock[RegWriteProtect], qt.Equals, uint8(0))
	c.Assert(dev.IsWriteProtected(), qt.Equals, false)
}

func TestConfigureNotDetected(t *testing.T) {
	c := qt.New(t)

	c.Run("reserved weekday bits", func(c *qt.C) {
		chip := ds1302sim.New()
		chip.Clock[RegWeekday] = 0x0F
		dev := New(chip.CLK(), chip.IO(), chip.CE())
		c.Assert(dev.Configure(Config{}), qt.Equals, ErrNotDetected)
		// nothing was written
		c.Assert(chip.Clock[RegWriteProtect], qt.Equals, uint8(0x80))
	})

	c.Run("floating data line", func(c *qt.C) {
		dev := New(nopPin{}, floatingPin{}, nopPin{})
		c.Assert(dev.Configure(Config{}), qt.Equals, ErrNotDetected)
	})
}

func TestOscillatorReadModifyWrite(t *testing.T) {
	c := qt.New(t)
	dev, chip := newDevice(c)
	chip.Clock[RegSeconds] = clockHalt | 0x47
	c.Assert(dev.IsRunning(), qt.Equals, false)

	dev.SetOscillator(true)
	c.Assert(chip.Clock[RegSeconds], qt.Equals, uint8(0x47))
	sec, err := dev.ReadRegister(RegSeconds)
	c.Assert(err, qt.IsNil)
	c.Assert(sec, qt.Equals, uint8(0x47))
	c.Assert(dev.IsRunning(), qt.Equals, true)

	dev.SetOscillator(false)
	c.Assert(chip.Clock[RegSeconds], qt.Equals, uint8(0xC7))
	c.Assert(dev.IsRunning(), qt.Equals, false)
}

func TestWriteProtect(t *testing.T) {
	c := qt.New(t)
	dev, chip := newDevice(c)

	dev.SetWriteProtect(true)
	c.Assert(dev.IsWriteProtected(), qt.Equals, true)
	c.Assert(dev.WriteRAM(0, 0xAA), qt.IsNil)
	c.Assert(chip.RAM[0], qt.Equals, uint8(0))

	dev.SetWriteProtect(false)
	c.Assert(dev.WriteRAM(0, 0xAA), qt.IsNil)
	c.Assert(chip.RAM[0], qt.Equals, uint8(0xAA))
}

func TestRegisterRange(t *testing.T) {
	c := qt.New(t)
	dev, chip := newDevice(c)

	_, err := dev.ReadRegister(9)
	c.Assert(err, qt.Equals, ErrRegister)
	c.Assert(dev.WriteRegister(9, 0), qt.Equals, ErrRegister)
	c.Assert(chip.Transactions(), qt.Equals, 0)

	c.Assert(dev.WriteRegister(RegYear, 0x24), qt.IsNil)
	c.Assert(chip.Clock[RegYear], qt.Equals, uint8(0x24))
}

func TestClockBurstParameters(t *testing.T) {
	c := qt.New(t)
	dev, chip := newDevice(c)

	c.Assert(dev.WriteClockBurst(1, make([]byte, ClockBurstSize)), qt.Equals, ErrBurstLength)
	c.Assert(dev.WriteClockBurst(RegSeconds, make([]byte, ClockRegisters)), qt.Equals, ErrBurstLength)
	c.Assert(dev.ReadClockBurst(RegMinutes, make([]byte, 2)), qt.Equals, ErrBurstLength)
	c.Assert(dev.ReadClockBurst(RegSeconds, make([]byte, ClockBurstSize+1)), qt.Equals, ErrBurstLength)
	c.Assert(dev.ReadClockBurst(RegSeconds, nil), qt.Equals, ErrBurstLength)
	c.Assert(chip.Transactions(), qt.Equals, 0)

	in := []byte{0x30, 0x59, 0x23, 0x31, 0x12, 0x07, 0x99, 0x00}
	c.Assert(dev.WriteClockBurst(RegSeconds, in), qt.IsNil)
	out := make([]byte, ClockBurstSize)
	c.Assert(dev.ReadClockBurst(RegSeconds, out), qt.IsNil)
	c.Assert(out, qt.DeepEquals, in)
	c.Assert(chip.Transactions(), qt.Equals, 2)
}

func TestTrickleCharger(t *testing.T) {
	c := qt.New(t)
	dev, chip := newDevice(c)

	c.Assert(dev.TrickleCharger(), qt.Equals, TrickleDisabled)
	c.Assert(TrickleDisabled.Enabled(), qt.Equals, false)

	dev.SetTrickleCharger(TrickleOneDiode | Trickle2K)
	c.Assert(chip.Clock[RegTrickle], qt.Equals, uint8(0xA5))
	c.Assert(dev.TrickleCharger().Enabled(), qt.Equals, true)
	c.Assert((TrickleTwoDiodes | Trickle8K).Enabled(), qt.Equals, true)
	c.Assert(TrickleOneDiode.Enabled(), qt.Equals, false)
	c.Assert(TrickleCharger(0xAC|0x01).Enabled(), qt.Equals, false)
}

func TestRAM(t *testing.T) {
	c := qt.New(t)
	dev, chip := newDevice(c)

	c.Assert(dev.WriteRAM(30, 0x42), qt.IsNil)
	c.Assert(chip.RAM[30], qt.Equals, uint8(0x42))
	v, err := dev.ReadRAM(30)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint8(0x42))

	chip.ResetTrace()
	_, err = dev.ReadRAM(RAMSize)
	c.Assert(errors.Is(err, ErrRAMAddress), qt.Equals, true)
	c.Assert(dev.WriteRAM(RAMSize, 1), qt.Equals, ErrRAMAddress)
	c.Assert(chip.Transactions(), qt.Equals, 0)
}

func TestRAMBurstIsClamped(t *testing.T) {
	c := qt.New(t)
	dev, chip := newDevice(c)

	in := make([]byte, 40)
	for i := range in {
		in[i] = byte(i + 1)
	}
	c.Assert(dev.WriteRAMBurst(in), qt.Equals, RAMSize)
	c.Assert(chip.RAM[:], qt.DeepEquals, in[:RAMSize])

	out := make([]byte, 40)
	for i := range out {
		out[i] = 0xEE
	}
	c.Assert(dev.ReadRAMBurst(out), qt.Equals, RAMSize)
	c.Assert(out[:RAMSize], qt.DeepEquals, in[:RAMSize])
	c.Assert(out[RAMSize], qt.Equals, uint8(0xEE))

	chip.ResetTrace()
	c.Assert(dev.WriteRAMBurst(nil), qt.Equals, 0)
	c.Assert(dev.ReadRAMBurst(nil), qt.Equals, 0)
	c.Assert(chip.Transactions(), qt.Equals, 0)
}

func TestRAMBurstPartial(t *testing.T) {
	c := qt.New(t)
	dev, chip := newDevice(c)

	c.Assert(dev.WriteRAMBurst([]byte{1, 2, 3}), qt.Equals, 3)
	c.Assert(chip.RAM[:4], qt.DeepEquals, []byte{1, 2, 3, 0})
}

func TestEndToEnd(t *testing.T) {
	c := qt.New(t)
	chip := ds1302sim.New()
	chip.Clock[RegWeekday] = 0x05
	chip.Clock[RegWriteProtect] = 0x80

	dev := New(chip.CLK(), chip.IO(), chip.CE())
	c.Assert(dev.Configure(Config{PinDelay: time.Microsecond, Delay: func(time.Duration) {}}), qt.IsNil)
	c.Assert(dev.IsWriteProtected(), qt.Equals, false)

	want := DateTime{Second: 0, Minute: 30, Hour: 10, Weekday: 7, Day: 15, Month: 6, Year: 2024}
	c.Assert(want.TimeWeekday(), qt.Equals, time.Saturday)
	dev.WriteDateTime(want)

	got, err := dev.ReadDateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, want)
	c.Assert(dev.IsRunning(), qt.Equals, true)
	c.Assert(chip.Contention(), qt.Equals, 0)
}
