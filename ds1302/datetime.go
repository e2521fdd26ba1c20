package ds1302

import "time"

// DateTime is a decoded set of date/time registers.
type DateTime struct {
	Second  uint8  // 0..59
	Minute  uint8  // 0..59
	Hour    uint8  // 0..23
	Weekday uint8  // 1..7, 1 = Sunday
	Day     uint8  // 1..31
	Month   uint8  // 1..12
	Year    uint16 // 2000..2099
}

// Tm is the broken-down layout of C's struct tm: zero-based month and weekday, years counted from 1900.
type Tm struct {
	Sec  int
	Min  int
	Hour int
	MDay int
	Mon  int // 0..11
	Year int // years since 1900
	WDay int // 0..6, 0 = Sunday
	YDay int // 0..365
}

// defaultDateTime is used by SetTime when the date registers hold garbage.
var defaultDateTime = DateTime{Weekday: 7, Day: 1, Month: 1, Year: 2000}

// Valid reports whether every field is within the range the chip can hold.
func (dt DateTime) Valid() bool {
	return dt.Second <= 59 &&
		dt.Minute <= 59 &&
		dt.Hour <= 23 &&
		dt.Weekday >= 1 && dt.Weekday <= 7 &&
		dt.Day >= 1 && dt.Day <= 31 &&
		dt.Month >= 1 && dt.Month <= 12 &&
		dt.Year >= 2000 && dt.Year <= 2099
}

// Time returns dt as a UTC time.Time. The weekday register is not consulted.
func (dt DateTime) Time() time.Time {
	return time.Date(int(dt.Year), time.Month(dt.Month), int(dt.Day),
		int(dt.Hour), int(dt.Minute), int(dt.Second), 0, time.UTC)
}

// TimeWeekday returns the weekday register as a time.Weekday. Values outside 1..7, such as the zero DateTime of a
// failed read, give time.Sunday.
func (dt DateTime) TimeWeekday() time.Weekday {
	if dt.Weekday < 1 || dt.Weekday > 7 {
		return time.Sunday
	}
	return time.Weekday(dt.Weekday - 1)
}

// FromTime takes the calendar fields of t as they are in t's location.
func FromTime(t time.Time) DateTime {
	return DateTime{
		Second:  uint8(t.Second()),
		Minute:  uint8(t.Minute()),
		Hour:    uint8(t.Hour()),
		Weekday: uint8(t.Weekday()) + 1,
		Day:     uint8(t.Day()),
		Month:   uint8(t.Month()),
		Year:    uint16(t.Year()),
	}
}

func (dt DateTime) Tm() Tm {
	tm := Tm{
		Sec:  int(dt.Second),
		Min:  int(dt.Minute),
		Hour: int(dt.Hour),
		MDay: int(dt.Day),
		Mon:  int(dt.Month) - 1,
		Year: int(dt.Year) - 1900,
		WDay: int(dt.Weekday) - 1,
	}
	if dt.Valid() {
		tm.YDay = dt.Time().YearDay() - 1
	}
	return tm
}

// DateTime converts tm back to the register layout. YDay is ignored.
func (tm Tm) DateTime() DateTime {
	return DateTime{
		Second:  uint8(tm.Sec),
		Minute:  uint8(tm.Min),
		Hour:    uint8(tm.Hour),
		Weekday: uint8(tm.WDay + 1),
		Day:     uint8(tm.MDay),
		Month:   uint8(tm.Mon + 1),
		Year:    uint16(tm.Year + 1900),
	}
}

// decodeDateTime converts the date/time registers. Either every field is in range or the zero DateTime is returned
// with ErrInvalidDateTime.
func decodeDateTime(buf []byte) (DateTime, error) {
	dt := DateTime{
		Second:  bcdToDec(buf[RegSeconds] & 0x7F),
		Minute:  bcdToDec(buf[RegMinutes] & 0x7F),
		Hour:    bcdToDec(buf[RegHours] & 0x3F),
		Day:     bcdToDec(buf[RegDate] & 0x3F),
		Month:   bcdToDec(buf[RegMonth] & 0x1F),
		Weekday: bcdToDec(buf[RegWeekday] & 0x07),
		Year:    2000 + uint16(bcdToDec(buf[RegYear])),
	}
	if !dt.Valid() {
		return DateTime{}, ErrInvalidDateTime
	}
	return dt, nil
}

// encodeDateTime fills a clock burst buffer. The clock halt flag and the write protect register are always cleared.
func encodeDateTime(dt DateTime, buf []byte) {
	buf[RegSeconds] = decToBcd(dt.Second) & 0x7F
	buf[RegMinutes] = decToBcd(dt.Minute) & 0x7F
	buf[RegHours] = decToBcd(dt.Hour) & 0x3F
	buf[RegDate] = decToBcd(dt.Day) & 0x3F
	buf[RegMonth] = decToBcd(dt.Month) & 0x1F
	buf[RegWeekday] = decToBcd(dt.Weekday) & 0x07
	buf[RegYear] = decToBcd(uint8(dt.Year % 100))
	buf[RegWriteProtect] = 0
}

// ReadDateTime reads all date/time registers in one burst.
func (d *Device) ReadDateTime() (DateTime, error) {
	buf := [ClockRegisters]byte{}
	d.read(burstCommand(false, true), buf[:])
	return decodeDateTime(buf[:])
}

// WriteDateTime writes all date/time registers in one burst and starts the oscillator. Fields are not range checked;
// out of range values leave undefined register contents.
func (d *Device) WriteDateTime(dt DateTime) {
	buf := [ClockBurstSize]byte{}
	encodeDateTime(dt, buf[:])
	d.write(burstCommand(false, false), buf[:])
}

// SetTime changes the time of day and keeps the date. If the date registers are not valid the date becomes
// 2000-01-01.
func (d *Device) SetTime(hour, minute, second uint8) {
	dt, err := d.ReadDateTime()
	if err != nil {
		dt = defaultDateTime
	}
	dt.Hour = hour
	dt.Minute = minute
	dt.Second = second
	d.WriteDateTime(dt)
}

func (d *Device) Time() (hour, minute, second uint8, err error) {
	dt, err := d.ReadDateTime()
	if err != nil {
		return 0, 0, 0, err
	}
	return dt.Hour, dt.Minute, dt.Second, nil
}

// Read returns the date and time in broken-down form.
func (d *Device) Read() (Tm, error) {
	dt, err := d.ReadDateTime()
	if err != nil {
		return Tm{}, err
	}
	return dt.Tm(), nil
}

// Write sets the date and time from broken-down form.
func (d *Device) Write(tm Tm) {
	d.WriteDateTime(tm.DateTime())
}

// Now returns the current time in UTC.
func (d *Device) Now() (time.Time, error) {
	dt, err := d.ReadDateTime()
	if err != nil {
		return time.Time{}, err
	}
	return dt.Time(), nil
}

// Set sets the clock to the calendar fields of t. The chip only stores years 2000 through 2099.
func (d *Device) Set(t time.Time) error {
	dt := FromTime(t)
	if !dt.Valid() {
		return ErrInvalidDateTime
	}
	d.WriteDateTime(dt)
	return nil
}
