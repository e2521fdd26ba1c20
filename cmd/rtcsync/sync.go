package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Erriez/ErriezDS1302/terminal"
)

var errNoBanner = errors.New("terminal banner not seen")

// dateCommand returns the terminal command setting the calendar of t, weekday counted from Monday.
func dateCommand(t time.Time) string {
	wday := int(t.Weekday())
	if wday == 0 {
		wday = 7
	}
	return fmt.Sprintf("set date %d %d-%d-%d", wday, t.Day(), int(t.Month()), t.Year())
}

func timeCommand(t time.Time) string {
	return fmt.Sprintf("set time %d:%d:%d", t.Hour(), t.Minute(), t.Second())
}

// nextSecond returns the next whole second after now.
func nextSecond(now time.Time) time.Time {
	return now.Truncate(time.Second).Add(time.Second)
}

// waitBanner reads lines from r until the terminal banner shows up or timeout expires. The reader is drained on a
// separate goroutine, which keeps running until r returns an error.
func waitBanner(r io.Reader, timeout time.Duration) error {
	found := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if strings.HasPrefix(strings.TrimSpace(scanner.Text()), terminal.Banner) {
				found <- nil
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		found <- fmt.Errorf("%w: %v", errNoBanner, err)
	}()

	select {
	case err := <-found:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("%w after %s", errNoBanner, timeout)
	}
}

// syncSerial sets the terminal to the next whole second: the time command goes out early and its newline is sent on
// that second, then the date command for the same instant follows. sleep is time.Sleep outside tests.
func syncSerial(w io.Writer, now func() time.Time, sleep func(time.Duration), printOn bool) (time.Time, error) {
	at := nextSecond(now().UTC())
	if _, err := io.WriteString(w, timeCommand(at)); err != nil {
		return time.Time{}, err
	}
	sleep(at.Sub(now().UTC()))
	if _, err := io.WriteString(w, "\n"+dateCommand(at)+"\n"); err != nil {
		return time.Time{}, err
	}

	if printOn {
		if _, err := io.WriteString(w, "print on\n"); err != nil {
			return time.Time{}, err
		}
	}
	return at, nil
}
