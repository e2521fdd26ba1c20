package ds1302

import "github.com/Erriez/ErriezDS1302/drivers"

// beginTransfer idles the clock and data lines and raises CE. Every call must be paired with endTransfer, and exactly
// one command (single register or burst) may be sent in between.
func (d *Device) beginTransfer() {
	d.clk.Set(false)
	d.io.Set(false)
	d.io.Configure(drivers.PinOutput)
	d.ce.Set(true)
}

func (d *Device) endTransfer() {
	d.ce.Set(false)
}

// writeCommand sends the command byte LSB first. For read commands the data line is released after the last rising
// edge and the clock is left high: the chip drives the first data bit on the next falling edge.
func (d *Device) writeCommand(cmd uint8) {
	for i := 0; i < 8; i++ {
		d.io.Set(cmd&(1<<i) != 0)
		d.pinDelay()
		d.clk.Set(true)
		d.pinDelay()

		if i == 7 && cmd&cmdRead != 0 {
			d.io.Configure(drivers.PinInput)
		} else {
			d.clk.Set(false)
		}
	}
}

// writeByte sends one data byte LSB first. The data line stays an output.
func (d *Device) writeByte(value uint8) {
	for i := 0; i < 8; i++ {
		d.io.Set(value&0x01 != 0)
		value >>= 1
		d.pinDelay()
		d.clk.Set(true)
		d.pinDelay()
		d.clk.Set(false)
	}
}

// readByte clocks in one data byte. Bits arrive LSB first, so each sample is shifted in from the top.
func (d *Device) readByte() uint8 {
	var value uint8
	for i := 0; i < 8; i++ {
		d.clk.Set(true)
		d.pinDelay()
		d.clk.Set(false)
		d.pinDelay()

		value >>= 1
		if d.io.Get() {
			value |= 0x80
		}
	}
	return value
}

func (d *Device) readBuffer(buf []byte) {
	for i := range buf {
		buf[i] = d.readByte()
	}
}

func (d *Device) writeBuffer(buf []byte) {
	for _, b := range buf {
		d.writeByte(b)
	}
}

// read runs a complete read transaction for cmd into buf.
func (d *Device) read(cmd uint8, buf []byte) {
	d.beginTransfer()
	d.writeCommand(cmd)
	d.readBuffer(buf)
	d.endTransfer()
}

// write runs a complete write transaction for cmd from buf.
func (d *Device) write(cmd uint8, buf []byte) {
	d.beginTransfer()
	d.writeCommand(cmd)
	d.writeBuffer(buf)
	d.endTransfer()
}

func (d *Device) pinDelay() {
	if d.pinDelayTime > 0 {
		d.delay(d.pinDelayTime)
	}
}
