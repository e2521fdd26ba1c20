//go:build tinygo

package drivers

import "machine"

// MachinePin adapts a machine.Pin to the Pin interface.
type MachinePin machine.Pin

func (p MachinePin) Configure(mode PinMode) {
	cfg := machine.PinConfig{Mode: machine.PinOutput}
	if mode == PinInput {
		cfg.Mode = machine.PinInput
	}
	machine.Pin(p).Configure(cfg)
}

func (p MachinePin) Set(high bool) {
	machine.Pin(p).Set(high)
}

func (p MachinePin) Get() bool {
	return machine.Pin(p).Get()
}
