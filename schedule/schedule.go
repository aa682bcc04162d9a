package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// Window is a "<hours>x<days>" schedule such as 12x5. Raw keeps the literal
// text since that is what instance Schedule tags are compared against.
type Window struct {
	Hours int
	Days  int
	Raw   string
}

// ParseWindow parses a "<hours>x<days>" value
func ParseWindow(raw string) (Window, error) {
	parts := strings.Split(strings.TrimSpace(raw), "x")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("schedule %q is not of the form <hours>x<days>", raw)
	}

	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Window{}, fmt.Errorf("schedule %q has invalid hours: %w", raw, err)
	}
	days, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Window{}, fmt.Errorf("schedule %q has invalid days: %w", raw, err)
	}

	if hours < 0 || hours > 24 {
		return Window{}, fmt.Errorf("schedule %q: hours must be between 0 and 24", raw)
	}
	if days < 1 || days > 7 {
		return Window{}, fmt.Errorf("schedule %q: days must be between 1 and 7", raw)
	}

	return Window{Hours: hours, Days: days, Raw: raw}, nil
}

func (w Window) String() string {
	return w.Raw
}

// ClockTime is a time of day with minute precision
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses the "H,M" format used by startTime and stopTime
func ParseClockTime(raw string) (ClockTime, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("time %q is not of the form H,M", raw)
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return ClockTime{}, fmt.Errorf("time %q has invalid hour: %w", raw, err)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return ClockTime{}, fmt.Errorf("time %q has invalid minute: %w", raw, err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("time %q is out of range", raw)
	}

	return ClockTime{Hour: hour, Minute: minute}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Config is the validated schedule document
type Config struct {
	AllDay       Window
	HalfDay      Window
	Start        ClockTime
	Stop         ClockTime
	StopUntagged bool
	RoleARNs     []string
	AccountNames map[string]string
}

// AccountName returns the display name configured for an account number
func (c *Config) AccountName(accountID string) (string, bool) {
	name, ok := c.AccountNames[accountID]
	return name, ok
}
