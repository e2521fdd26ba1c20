// Package ds1302 implements a driver for the DS1302 trickle-charge timekeeping chip: a real-time clock with 31 bytes of
// battery-backed RAM behind a three-wire serial interface (CE, I/O, SCLK). There is no hardware peripheral for this
// interface, so the driver bit-bangs it on three GPIO lines supplied as drivers.Pin values.
//
// The date and time are always read and written as a single burst so a rollover can't tear the result. Only the 24-hour
// mode is supported.
//
// Datasheet: https://datasheets.maximintegrated.com/en/ds/DS1302.pdf
package ds1302

import (
	"errors"
	"time"

	"github.com/Erriez/ErriezDS1302/drivers"
)

var (
	ErrNotDetected     = errors.New("ds1302: device not detected")
	ErrInvalidDateTime = errors.New("ds1302: date/time out of range")
	ErrBurstLength     = errors.New("ds1302: invalid burst address or length")
	ErrRAMAddress      = errors.New("ds1302: RAM address out of range")
	ErrRegister        = errors.New("ds1302: invalid clock register")
)

// Device is a DS1302 on three GPIO lines. A Device is not safe for concurrent use, and only one Device may drive a
// given set of pins.
type Device struct {
	clk drivers.Pin
	io  drivers.Pin
	ce  drivers.Pin

	pinDelayTime time.Duration
	delay        func(time.Duration)
	epoch        Epoch
}

type Config struct {
	// PinDelay is inserted between a data line change and the following clock edge, and between clock edges. The
	// DS1302 needs roughly 1µs at 2V. Zero skips the delay, which is fine when pin writes are slow enough on their own.
	PinDelay time.Duration
	// Delay blocks for at least the given duration. Defaults to time.Sleep.
	Delay func(time.Duration)
	// Epoch selects the base used by Epoch and SetEpoch.
	Epoch Epoch
}

// New creates a new driver on the clock (SCLK), data (I/O) and chip enable (CE, formerly RST) lines.
func New(clk, io, ce drivers.Pin) *Device {
	return &Device{
		clk:   clk,
		io:    io,
		ce:    ce,
		delay: time.Sleep,
	}
}

// Configure sets up the pins and checks that a DS1302 answers: the unused top bits of the weekday register must read as
// zero, and clearing the write protect flag must stick. ErrNotDetected means no register state can be relied on.
func (d *Device) Configure(c Config) error {
	d.pinDelayTime = c.PinDelay
	if c.Delay != nil {
		d.delay = c.Delay
	}
	d.epoch = c.Epoch

	d.clk.Set(false)
	d.io.Set(false)
	d.ce.Set(false)
	d.clk.Configure(drivers.PinOutput)
	d.io.Configure(drivers.PinOutput)
	d.ce.Configure(drivers.PinOutput)

	if d.readRegister(RegWeekday)&0xF8 != 0 {
		return ErrNotDetected
	}

	d.writeRegister(RegWriteProtect, 0)
	if d.readRegister(RegWriteProtect)&writeProtect != 0 {
		return ErrNotDetected
	}
	return nil
}

// IsRunning reports whether the oscillator is running, i.e. the clock halt flag is clear. A halted clock usually means
// the chip lost power and the date/time registers should not be trusted.
func (d *Device) IsRunning() bool {
	return d.readRegister(RegSeconds)&clockHalt == 0
}

// SetOscillator starts or stops the oscillator without touching the seconds value.
func (d *Device) SetOscillator(enable bool) {
	sec := d.readRegister(RegSeconds)
	if enable {
		sec &^= clockHalt
	} else {
		sec |= clockHalt
	}
	d.writeRegister(RegSeconds, sec)
}

// SetWriteProtect sets or clears the write protect flag. While set, every register except write protect itself is
// read-only.
func (d *Device) SetWriteProtect(enable bool) {
	var wp uint8
	if enable {
		wp = writeProtect
	}
	d.writeRegister(RegWriteProtect, wp)
}

func (d *Device) IsWriteProtected() bool {
	return d.readRegister(RegWriteProtect)&writeProtect != 0
}

// ReadRegister reads a single clock register, RegSeconds through RegTrickle.
func (d *Device) ReadRegister(reg uint8) (uint8, error) {
	if reg > RegTrickle {
		return 0, ErrRegister
	}
	return d.readRegister(reg), nil
}

// WriteRegister writes a single clock register, RegSeconds through RegTrickle.
func (d *Device) WriteRegister(reg, value uint8) error {
	if reg > RegTrickle {
		return ErrRegister
	}
	d.writeRegister(reg, value)
	return nil
}

// ReadClockBurst reads 1 to ClockBurstSize clock registers in one transfer. Bursts always start at RegSeconds.
func (d *Device) ReadClockBurst(reg uint8, buf []byte) error {
	if reg != RegSeconds || len(buf) == 0 || len(buf) > ClockBurstSize {
		return ErrBurstLength
	}
	d.read(burstCommand(false, true), buf)
	return nil
}

// WriteClockBurst writes all date/time registers and the write protect register in one transfer. The chip ignores a
// clock burst write of fewer than ClockBurstSize bytes, so anything else is refused.
func (d *Device) WriteClockBurst(reg uint8, buf []byte) error {
	if reg != RegSeconds || len(buf) != ClockBurstSize {
		return ErrBurstLength
	}
	d.write(burstCommand(false, false), buf)
	return nil
}

func (d *Device) readRegister(reg uint8) uint8 {
	buf := [1]byte{}
	d.read(command(false, reg, true), buf[:])
	return buf[0]
}

func (d *Device) writeRegister(reg, value uint8) {
	buf := [1]byte{value}
	d.write(command(false, reg, false), buf[:])
}
