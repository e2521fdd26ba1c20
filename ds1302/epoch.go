package ds1302

import "time"

// Epoch is the base of the seconds count used by Device.Epoch and Device.SetEpoch.
type Epoch uint8

const (
	// UnixEpoch counts from 1970-01-01 UTC.
	UnixEpoch Epoch = iota
	// Y2KEpoch counts from 2000-01-01 UTC, the time_t base of avr-libc.
	Y2KEpoch
)

// Y2KOffset is the number of seconds from the Unix epoch to 2000-01-01 UTC.
const Y2KOffset = 946684800

func (e Epoch) offset() int64 {
	if e == Y2KEpoch {
		return Y2KOffset
	}
	return 0
}

// Epoch returns the clock as seconds since the configured epoch.
func (d *Device) Epoch() (int64, error) {
	t, err := d.Now()
	if err != nil {
		return 0, err
	}
	return t.Unix() - d.epoch.offset(), nil
}

// SetEpoch sets the clock from seconds since the configured epoch.
func (d *Device) SetEpoch(secs int64) error {
	return d.Set(time.Unix(secs+d.epoch.offset(), 0).UTC())
}
