package ds1302

// decToBcd converts a decimal value 0..99 to BCD
func decToBcd(dec uint8) uint8 {
	return (dec/10)<<4 | dec%10
}

// bcdToDec converts BCD to a decimal value
func bcdToDec(bcd uint8) uint8 {
	return 10*(bcd>>4) + bcd&0x0F
}
