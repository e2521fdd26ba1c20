package ds1302

// ReadRAM reads one RAM byte at addr 0..30.
func (d *Device) ReadRAM(addr uint8) (uint8, error) {
	if addr >= RAMSize {
		return 0, ErrRAMAddress
	}
	buf := [1]byte{}
	d.read(command(true, addr, true), buf[:])
	return buf[0], nil
}

// WriteRAM writes one RAM byte at addr 0..30.
func (d *Device) WriteRAM(addr, value uint8) error {
	if addr >= RAMSize {
		return ErrRAMAddress
	}
	buf := [1]byte{value}
	d.write(command(true, addr, false), buf[:])
	return nil
}

// ReadRAMBurst fills buf from RAM address 0 in one transfer and returns the number of bytes read. At most RAMSize
// bytes are read; the rest of buf is left untouched.
func (d *Device) ReadRAMBurst(buf []byte) int {
	if len(buf) > RAMSize {
		buf = buf[:RAMSize]
	}
	if len(buf) == 0 {
		return 0
	}
	d.read(burstCommand(true, true), buf)
	return len(buf)
}

// WriteRAMBurst writes buf to RAM from address 0 in one transfer and returns the number of bytes written. Anything
// past RAMSize bytes is dropped.
func (d *Device) WriteRAMBurst(buf []byte) int {
	if len(buf) > RAMSize {
		buf = buf[:RAMSize]
	}
	if len(buf) == 0 {
		return 0
	}
	d.write(burstCommand(true, false), buf)
	return len(buf)
}
