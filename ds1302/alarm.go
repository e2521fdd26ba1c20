package ds1302

// Alarm calls a handler when the time of day matches. The DS1302 has no alarm registers, so the caller feeds the time
// in through Tick, once per second.
type Alarm struct {
	Hour    uint8
	Minute  uint8
	Second  uint8
	Handler func()
}

func NewAlarm(hour, minute, second uint8, handler func()) *Alarm {
	return &Alarm{
		Hour:    hour,
		Minute:  minute,
		Second:  second,
		Handler: handler,
	}
}

// Tick runs the handler and returns true if the given time matches the alarm.
func (a *Alarm) Tick(hour, minute, second uint8) bool {
	if hour != a.Hour || minute != a.Minute || second != a.Second {
		return false
	}
	if a.Handler != nil {
		a.Handler()
	}
	return true
}
