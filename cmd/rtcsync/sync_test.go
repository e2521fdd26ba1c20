package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/Erriez/ErriezDS1302/ds1302"
	"github.com/Erriez/ErriezDS1302/internal/ds1302sim"
	"github.com/Erriez/ErriezDS1302/terminal"
)

func TestCommands(t *testing.T) {
	c := qt.New(t)
	sat := time.Date(2024, 6, 15, 10, 30, 5, 0, time.UTC)
	c.Assert(dateCommand(sat), qt.Equals, "set date 6 15-6-2024")
	c.Assert(timeCommand(sat), qt.Equals, "set time 10:30:5")

	sun := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Assert(dateCommand(sun), qt.Equals, "set date 7 1-1-2023")

	c.Assert(nextSecond(time.Date(2024, 6, 15, 10, 30, 5, 900e6, time.UTC)), qt.Equals,
		time.Date(2024, 6, 15, 10, 30, 6, 0, time.UTC))
	c.Assert(nextSecond(time.Date(2024, 12, 31, 23, 59, 59, 1, time.UTC)), qt.Equals,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestWaitBanner(t *testing.T) {
	c := qt.New(t)

	err := waitBanner(strings.NewReader("boot\r\n"+terminal.Banner+"\r\nType help\n"), time.Second)
	c.Assert(err, qt.IsNil)

	err = waitBanner(strings.NewReader("garbage\n"), time.Second)
	c.Assert(err, qt.ErrorMatches, "terminal banner not seen: EOF")

	r, w := io.Pipe()
	defer w.Close()
	err = waitBanner(r, 10*time.Millisecond)
	c.Assert(err, qt.ErrorMatches, "terminal banner not seen after 10ms")
}

func TestSyncSerial(t *testing.T) {
	c := qt.New(t)
	clock := time.Date(2024, 6, 15, 10, 30, 5, 250e6, time.UTC)
	var slept time.Duration
	now := func() time.Time { return clock }
	sleep := func(d time.Duration) {
		slept = d
		clock = clock.Add(d)
	}

	var out bytes.Buffer
	at, err := syncSerial(&out, now, sleep, true)
	c.Assert(err, qt.IsNil)
	c.Assert(at, qt.Equals, time.Date(2024, 6, 15, 10, 30, 6, 0, time.UTC))
	c.Assert(slept, qt.Equals, 750*time.Millisecond)
	c.Assert(out.String(), qt.Equals, "set time 10:30:6\nset date 6 15-6-2024\nprint on\n")
}

func TestSyncSerialBeforeMidnight(t *testing.T) {
	c := qt.New(t)
	clock := time.Date(2024, 6, 15, 23, 59, 59, 500e6, time.UTC)

	var out bytes.Buffer
	at, err := syncSerial(&out, func() time.Time { return clock }, func(d time.Duration) { clock = clock.Add(d) }, false)
	c.Assert(err, qt.IsNil)
	c.Assert(at, qt.Equals, time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC))
	c.Assert(out.String(), qt.Equals, "set time 0:0:0\nset date 7 16-6-2024\n")
}

func TestSyncSerialSetsTerminal(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2031, 2, 28, 12, 0, 0, 400e6, time.UTC), time.Date(2031, 2, 28, 12, 0, 1, 0, time.UTC)},
		{time.Date(2031, 2, 28, 23, 59, 59, 900e6, time.UTC), time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2099, 12, 31, 23, 59, 58, 1, time.UTC), time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC)},
	}
	for _, test := range tests {
		c := qt.New(t)
		chip := ds1302sim.New()
		rtc := ds1302.New(chip.CLK(), chip.IO(), chip.CE())
		c.Assert(rtc.Configure(ds1302.Config{}), qt.IsNil)

		var shellOut bytes.Buffer
		shell := terminal.New(rtc, &shellOut)

		clock := test.now
		var script bytes.Buffer
		_, err := syncSerial(&script, func() time.Time { return clock }, func(d time.Duration) { clock = clock.Add(d) }, false)
		c.Assert(err, qt.IsNil)
		c.Assert(shell.Run(&script), qt.IsNil)
		c.Assert(strings.Contains(shellOut.String(), "error"), qt.Equals, false, qt.Commentf("%s", shellOut.String()))

		dt, err := rtc.ReadDateTime()
		c.Assert(err, qt.IsNil)
		c.Assert(dt.Time(), qt.Equals, test.want, qt.Commentf("from %s", test.now))
		c.Assert(dt.TimeWeekday(), qt.Equals, test.want.Weekday())
	}
}
