// Package drivers holds the capability interfaces the chip drivers in this module are written against. Platforms
// supply implementations: machine.Pin and machine.I2C on TinyGo targets, GPIO expanders, or simulated devices in tests.
package drivers

// PinMode is the direction of a GPIO line.
type PinMode uint8

const (
	PinOutput PinMode = iota
	PinInput
)

// Pin is a single GPIO line that can change direction at runtime, as needed for half-duplex buses where the data
// line is handed back and forth between host and device.
type Pin interface {
	Configure(mode PinMode)
	Set(high bool)
	Get() bool
}

// I2C represents an I2C bus. It is notably implemented by the machine.I2C type.
type I2C interface {
	ReadRegister(addr uint8, r uint8, buf []byte) error
	WriteRegister(addr uint8, r uint8, buf []byte) error
	Tx(addr uint16, w, r []byte) error
}
