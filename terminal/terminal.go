// Package terminal is a line-oriented command shell for a DS1302, meant to sit on a serial console (or any other
// byte stream) so the clock can be inspected and set by hand or by a script on the other end.
//
// Weekdays typed or printed by the shell count 1 = Monday through 7 = Sunday, the convention of the serial setup
// scripts; the driver itself stores 1 = Sunday.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"

	"github.com/Erriez/ErriezDS1302/ds1302"
)

// Banner is printed by Start. Setup scripts wait for it before sending commands.
const Banner = "DS1302 RTC terminal"

var (
	errUsage   = errors.New("usage")
	errUnknown = errors.New("unknown command")
)

// Clock is the part of *ds1302.Device the shell drives.
type Clock interface {
	ReadDateTime() (ds1302.DateTime, error)
	WriteDateTime(dt ds1302.DateTime)
	SetTime(hour, minute, second uint8)
	Epoch() (int64, error)
	SetEpoch(secs int64) error
	IsRunning() bool
	SetOscillator(enable bool)
	IsWriteProtected() bool
	TrickleCharger() ds1302.TrickleCharger
	ReadRAM(addr uint8) (uint8, error)
	WriteRAM(addr, value uint8) error
	ReadRAMBurst(buf []byte) int
}

// Shell executes commands against a Clock and writes the results to out. It is not safe for concurrent use.
type Shell struct {
	rtc Clock
	out io.Writer

	printing   bool
	lastSecond int
	alarm      *ds1302.Alarm
}

func New(rtc Clock, out io.Writer) *Shell {
	return &Shell{
		rtc:        rtc,
		out:        out,
		lastSecond: -1,
	}
}

// Start prints the banner and a hint.
func (s *Shell) Start() {
	fmt.Fprintln(s.out, Banner)
	fmt.Fprintln(s.out, `Type "help" for a list of commands.`)
}

// Run executes every line read from r until EOF.
func (s *Shell) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.Exec(scanner.Text())
	}
	return scanner.Err()
}

// Exec runs a single command line. Failures are reported on the output as "error: ..." and returned.
func (s *Shell) Exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return s.fail(err)
	}
	if len(args) == 0 {
		return nil
	}
	cmd, ok := commands[strings.ToLower(args[0])]
	if !ok {
		return s.fail(fmt.Errorf("%w %q", errUnknown, args[0]))
	}
	if err := cmd.run(s, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			err = fmt.Errorf("%w: %s", errUsage, cmd.usage)
		}
		return s.fail(err)
	}
	return nil
}

func (s *Shell) fail(err error) error {
	fmt.Fprintf(s.out, "error: %v\n", err)
	return err
}

// Poll prints the time once per second while printing is on and runs the alarm. Call it more often than once per
// second.
func (s *Shell) Poll() {
	if !s.printing && s.alarm == nil {
		return
	}
	dt, err := s.rtc.ReadDateTime()
	if err != nil {
		return
	}
	if int(dt.Second) == s.lastSecond {
		return
	}
	s.lastSecond = int(dt.Second)
	if s.printing {
		s.printDateTime(dt)
	}
	if s.alarm != nil {
		s.alarm.Tick(dt.Hour, dt.Minute, dt.Second)
	}
}

func (s *Shell) printDateTime(dt ds1302.DateTime) {
	fmt.Fprintf(s.out, "%s %02d-%02d-%04d %02d:%02d:%02d\n",
		dt.TimeWeekday(), dt.Day, dt.Month, dt.Year, dt.Hour, dt.Minute, dt.Second)
}

// mondayFirst converts the driver's weekday (1 = Sunday) to the shell's (1 = Monday).
func mondayFirst(wday uint8) uint8 {
	if wday == 1 {
		return 7
	}
	return wday - 1
}

// sundayFirst converts the shell's weekday (1 = Monday) to the driver's (1 = Sunday).
func sundayFirst(wday uint8) uint8 {
	return wday%7 + 1
}
