package ds1302

// Clock registers, by index. The command byte carries the index in bits 1-5.
const (
	RegSeconds      = 0x00 // Seconds register, bit 7 is the clock halt flag
	RegMinutes      = 0x01 // Minutes register
	RegHours        = 0x02 // Hours register, always written in 24-hour mode
	RegDate         = 0x03 // Day of the month register
	RegMonth        = 0x04 // Month register
	RegWeekday      = 0x05 // Day of the week register
	RegYear         = 0x06 // Year register, offset from 2000
	RegWriteProtect = 0x07 // Write protect register
	RegTrickle      = 0x08 // Trickle charger register
	ClockRegisters  = 7    // Number of date/time registers
	ClockBurstSize  = 8    // Date/time registers plus write protect
	RAMSize         = 31   // Number of RAM bytes
)

const (
	clockHalt    = 1 << 7 // CH bit in the seconds register
	writeProtect = 1 << 7 // WP bit in the write protect register
	burstAddress = 0x1F   // address field value selecting burst mode
)

// Command byte fields.
const (
	cmdBase  = 0x80 // bit 7 must be set for the chip to accept a command
	cmdRAM   = 0x40 // RAM space instead of clock space
	cmdRead  = 0x01 // read instead of write
	cmdClock = 0x00
	cmdWrite = 0x00
)

// command builds the command byte sent at the start of every transfer.
func command(ram bool, addr uint8, read bool) uint8 {
	cmd := uint8(cmdBase | cmdClock | cmdWrite)
	if ram {
		cmd |= cmdRAM
	}
	if read {
		cmd |= cmdRead
	}
	return cmd | (addr&0x1F)<<1
}

func burstCommand(ram bool, read bool) uint8 {
	return command(ram, burstAddress, read)
}
