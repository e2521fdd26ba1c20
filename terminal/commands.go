package terminal

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Erriez/ErriezDS1302/ds1302"
)

type command struct {
	usage string
	run   func(s *Shell, args []string) error
}

var commands map[string]command

func init() {
	// filled in init because help walks the table
	commands = map[string]command{
		"help":   {"help", (*Shell).help},
		"get":    {"get", (*Shell).get},
		"set":    {"set date <wday 1=Mon..7=Sun> <d>-<m>-<yyyy> | set time <h>:<m>:<s> | set epoch <seconds>", (*Shell).set},
		"epoch":  {"epoch", (*Shell).epoch},
		"start":  {"start", (*Shell).start},
		"stop":   {"stop", (*Shell).stop},
		"status": {"status", (*Shell).status},
		"ram":    {"ram read <addr> | ram write <addr> <value> | ram dump", (*Shell).ram},
		"alarm":  {"alarm <h>:<m>:<s> | alarm off", (*Shell).setAlarm},
		"print":  {"print [on|off]", (*Shell).print},
	}
}

var (
	errDate  = errors.New("invalid date")
	errTime  = errors.New("invalid time")
	errValue = errors.New("invalid value")
)

func (s *Shell) help(args []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", commands[name].usage)
	}
	return nil
}

func (s *Shell) get(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	dt, err := s.rtc.ReadDateTime()
	if err != nil {
		return err
	}
	s.printDateTime(dt)
	return nil
}

func (s *Shell) set(args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	switch args[0] {
	case "date":
		if len(args) != 3 {
			return errUsage
		}
		return s.setDate(args[1], args[2])
	case "time":
		if len(args) != 2 {
			return errUsage
		}
		return s.setTime(args[1])
	case "epoch":
		if len(args) != 2 {
			return errUsage
		}
		secs, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s", errValue, args[1])
		}
		if err := s.rtc.SetEpoch(secs); err != nil {
			return err
		}
		return s.get(nil)
	}
	return errUsage
}

func (s *Shell) setDate(wdayArg, dateArg string) error {
	wday, err := strconv.ParseUint(wdayArg, 10, 8)
	if err != nil || wday < 1 || wday > 7 {
		return fmt.Errorf("%w: weekday %s", errDate, wdayArg)
	}
	f, err := splitInts(dateArg, "-", 3)
	if err != nil {
		return fmt.Errorf("%w: %s", errDate, dateArg)
	}
	day, month, year := f[0], f[1], f[2]
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || year < 2000 || year > 2099 {
		return fmt.Errorf("%w: %s", errDate, dateArg)
	}

	// keep the time of day if there is a valid one
	dt, _ := s.rtc.ReadDateTime()
	dt.Weekday = sundayFirst(uint8(wday))
	dt.Day = uint8(day)
	dt.Month = uint8(month)
	dt.Year = uint16(year)
	s.rtc.WriteDateTime(dt)
	return s.get(nil)
}

func (s *Shell) setTime(arg string) error {
	h, m, sec, err := parseClock(arg)
	if err != nil {
		return err
	}
	s.rtc.SetTime(h, m, sec)
	return s.get(nil)
}

func (s *Shell) epoch(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	secs, err := s.rtc.Epoch()
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, secs)
	return nil
}

func (s *Shell) start(args []string) error {
	s.rtc.SetOscillator(true)
	return s.status(nil)
}

func (s *Shell) stop(args []string) error {
	s.rtc.SetOscillator(false)
	return s.status(nil)
}

func (s *Shell) status(args []string) error {
	state := "halted"
	if s.rtc.IsRunning() {
		state = "running"
	}
	fmt.Fprintf(s.out, "oscillator: %s\n", state)
	fmt.Fprintf(s.out, "write protect: %t\n", s.rtc.IsWriteProtected())
	tc := s.rtc.TrickleCharger()
	fmt.Fprintf(s.out, "trickle charger: 0x%02X enabled=%t\n", uint8(tc), tc.Enabled())
	if dt, err := s.rtc.ReadDateTime(); err == nil {
		fmt.Fprintf(s.out, "weekday: %d (1=Mon..7=Sun)\n", mondayFirst(dt.Weekday))
	} else {
		fmt.Fprintf(s.out, "weekday: invalid date\n")
	}
	return nil
}

func (s *Shell) ram(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "read":
		if len(args) != 2 {
			return errUsage
		}
		addr, err := parseByte(args[1])
		if err != nil {
			return err
		}
		v, err := s.rtc.ReadRAM(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "ram[%d] = 0x%02X\n", addr, v)
		return nil
	case "write":
		if len(args) != 3 {
			return errUsage
		}
		addr, err := parseByte(args[1])
		if err != nil {
			return err
		}
		v, err := parseByte(args[2])
		if err != nil {
			return err
		}
		return s.rtc.WriteRAM(addr, v)
	case "dump":
		buf := make([]byte, ds1302.RAMSize)
		n := s.rtc.ReadRAMBurst(buf)
		for i := 0; i < n; i += 16 {
			end := i + 16
			if end > n {
				end = n
			}
			fmt.Fprintf(s.out, "%02X: % X\n", i, buf[i:end])
		}
		return nil
	}
	return errUsage
}

func (s *Shell) setAlarm(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if args[0] == "off" {
		s.alarm = nil
		fmt.Fprintln(s.out, "alarm off")
		return nil
	}
	h, m, sec, err := parseClock(args[0])
	if err != nil {
		return err
	}
	s.alarm = ds1302.NewAlarm(h, m, sec, func() {
		fmt.Fprintln(s.out, "ALARM")
	})
	fmt.Fprintf(s.out, "alarm at %02d:%02d:%02d\n", h, m, sec)
	return nil
}

func (s *Shell) print(args []string) error {
	switch {
	case len(args) == 0:
		s.printing = !s.printing
	case len(args) == 1 && args[0] == "on":
		s.printing = true
	case len(args) == 1 && args[0] == "off":
		s.printing = false
	default:
		return errUsage
	}
	s.lastSecond = -1
	return nil
}

func parseClock(arg string) (hour, minute, second uint8, err error) {
	f, err := splitInts(arg, ":", 3)
	if err != nil || f[0] < 0 || f[0] > 23 || f[1] < 0 || f[1] > 59 || f[2] < 0 || f[2] > 59 {
		return 0, 0, 0, fmt.Errorf("%w: %s", errTime, arg)
	}
	return uint8(f[0]), uint8(f[1]), uint8(f[2]), nil
}

func parseByte(arg string) (uint8, error) {
	v, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errValue, arg)
	}
	return uint8(v), nil
}

func splitInts(s, sep string, n int) ([]int, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, errValue
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
