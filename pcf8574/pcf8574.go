// Package pcf8574 is a driver for the PCF8574 I2C GPIO expander.
//
// This expander is somewhat limited: Each pin can be set to either high (with a weak pullup) or low (grounded), as well
// as read. To use a pin for input, set it to "high" and check to see if something is forcing it to be low. To use a pin
// for output, they can sink a small amount of current when set to "low".
//
// The quasi-bidirectional pins are enough to carry a bit-banged bus such as the DS1302 three-wire interface: Pin returns
// a single line as a drivers.Pin. Every pin change is a full I2C transaction, so expect a few kHz at best.
//
// The chip will generate an interrupt on the rising and falling edge of any input ("high") pin. This is simple enough
// that implementing it (if desired) is left as an exercise to the user.
//
// The PCF8575 is similar but operates on 16 bits instead of 8 bits.
//
// Datasheet: https://cdn-learn.adafruit.com/assets/assets/000/113/910/original/pcf8574.pdf
package pcf8574

import (
	"github.com/Erriez/ErriezDS1302/drivers"
)

const DefaultAddress = 0x20

type Device struct {
	bus  drivers.I2C
	addr uint16
	// current state of pins as we've defined them
	state uint8
	// first I2C error seen through a Pin, which has no way to return it
	err error
}

type Config struct {
	Address uint8
}

type Report uint8

// New creates a new driver on the specified preconfigured I2C bus. The datasheet claims a maximum speed of 100 kHz.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus: bus,
		// defaults to everything high
		state: 0xFF,
	}
}

func (d *Device) Configure(c Config) {
	if c.Address == 0 {
		c.Address = DefaultAddress
	}

	d.addr = uint16(c.Address)
}

// SetPin configures a single pin based on val: True to activate the weak pullup resistor, false to sink current.
func (d *Device) SetPin(pin uint8, val bool) error {
	if val {
		d.state = d.state | 1<<pin
	} else {
		d.state = d.state & ^(1 << pin)
	}
	return d.send()
}

// SetAll configures all pins at once based on their bit in state: True to activate the weak pullup resistor, false to sink current.
func (d *Device) SetAll(state uint8) error {
	d.state = state
	return d.send()
}

func (d *Device) send() error {
	buf := [1]byte{d.state}
	return d.bus.Tx(d.addr, buf[:], nil)
}

// Read reads the status of every pin and returns a Report which can be used to check specific pins.
func (d *Device) Read() (Report, error) {
	var buf [1]byte
	// the chip doesn't have any registers and just returns the data directly when read
	err := d.bus.Tx(d.addr, nil, buf[:])
	return Report(buf[0]), err
}

// Pin reports whether the specified pin is high.
func (r Report) Pin(p uint8) bool {
	return r&(1<<p) > 0
}

// Pin returns pin n (0-7) as a drivers.Pin. Bus errors are not returned by the pin methods; check Err afterwards.
func (d *Device) Pin(n uint8) drivers.Pin {
	return &Pin{dev: d, n: n & 0x07}
}

// Err returns the first I2C error hit by a Pin and clears it.
func (d *Device) Err() error {
	err := d.err
	d.err = nil
	return err
}

func (d *Device) record(err error) {
	if err != nil && d.err == nil {
		d.err = err
	}
}

// Pin is a single expander line.
type Pin struct {
	dev   *Device
	n     uint8
	input bool
	// level requested while the pin is an input, applied when it becomes an output again
	level bool
}

// Configure switches direction. Input releases the line to the weak pullup so another device can pull it low.
func (p *Pin) Configure(mode drivers.PinMode) {
	p.input = mode == drivers.PinInput
	if p.input {
		p.dev.record(p.dev.SetPin(p.n, true))
	} else {
		p.dev.record(p.dev.SetPin(p.n, p.level))
	}
}

func (p *Pin) Set(high bool) {
	p.level = high
	if p.input {
		return
	}
	p.dev.record(p.dev.SetPin(p.n, high))
}

func (p *Pin) Get() bool {
	r, err := p.dev.Read()
	p.dev.record(err)
	return r.Pin(p.n)
}
