package ds1302

// TrickleCharger is the trickle charger register value. Combine one diode setting with one resistor setting, e.g.
// TrickleOneDiode|Trickle2K; every other pattern leaves the charger disabled.
type TrickleCharger uint8

const (
	TrickleDisabled  TrickleCharger = 0x5C // power-on value
	TrickleOneDiode  TrickleCharger = 0xA4
	TrickleTwoDiodes TrickleCharger = 0xA8
	Trickle2K        TrickleCharger = 0x01
	Trickle4K        TrickleCharger = 0x02
	Trickle8K        TrickleCharger = 0x03
)

// Enabled reports whether t turns the charger on: the select pattern 1010 in the top nibble plus a valid diode and
// resistor choice.
func (t TrickleCharger) Enabled() bool {
	diodes := t & 0x0C
	return t&0xF0 == 0xA0 && (diodes == 0x04 || diodes == 0x08) && t&0x03 != 0
}

func (d *Device) SetTrickleCharger(t TrickleCharger) {
	d.writeRegister(RegTrickle, uint8(t))
}

func (d *Device) TrickleCharger() TrickleCharger {
	return TrickleCharger(d.readRegister(RegTrickle))
}
