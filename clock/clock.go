package clock

import (
	"time"

	"ec2scheduler/schedule"
)

const (
	ZoneGMT       = "GMT"
	ZoneDaylight  = "GMT+1"
	daylightShift = time.Hour
)

// IsDST shifts now forward an hour between the last Sunday of March and the
// last Sunday of October (midnight edges, now's location) and names the zone.
func IsDST(now time.Time) (time.Time, string) {
	dstOn, dstOff := dstWindow(now.Year(), now.Location())
	if !now.Before(dstOn) && now.Before(dstOff) {
		return now.Add(daylightShift), ZoneDaylight
	}
	return now, ZoneGMT
}

func dstWindow(year int, loc *time.Location) (time.Time, time.Time) {
	return sundayBefore(time.Date(year, time.April, 1, 0, 0, 0, 0, loc)),
		sundayBefore(time.Date(year, time.November, 1, 0, 0, 0, 0, loc))
}

// sundayBefore returns the last Sunday strictly before day
func sundayBefore(day time.Time) time.Time {
	return day.AddDate(0, 0, -(WeekdayIndex(day.Weekday()) + 1))
}

// WeekdayIndex numbers days from Monday=0 to Sunday=6
func WeekdayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}

// IsWeekday reports whether day (Monday=0) falls within the first window.Days days of the week
func IsWeekday(day int, window schedule.Window) bool {
	return day <= window.Days-1
}

// Times is the resolved view of "now" against the configured start and stop
type Times struct {
	Start schedule.ClockTime
	Stop  schedule.ClockTime
	Now   time.Time
	Zone  string
}

// InRunWindow reports start <= now < stop, by time of day
func (t Times) InRunWindow() bool {
	now := sinceMidnight(t.Now)
	return now >= offset(t.Start) && now < offset(t.Stop)
}

// PastStop reports now >= stop, by time of day
func (t Times) PastStop() bool {
	return sinceMidnight(t.Now) >= offset(t.Stop)
}

func sinceMidnight(t time.Time) time.Duration {
	return t.Sub(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()))
}

func offset(c schedule.ClockTime) time.Duration {
	return time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute
}

// Resolver computes Times from an injectable clock
type Resolver struct {
	now func() time.Time
}

// NewResolver uses now as the clock; nil means the current UTC time
func NewResolver(now func() time.Time) *Resolver {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Resolver{now: now}
}

// Resolve returns the configured start and stop with the DST-adjusted current time
func (r *Resolver) Resolve(cfg *schedule.Config) Times {
	now, zone := IsDST(r.now())
	return Times{
		Start: cfg.Start,
		Stop:  cfg.Stop,
		Now:   now,
		Zone:  zone,
	}
}

// Weekday returns today's Monday=0 index from the unadjusted clock
func (r *Resolver) Weekday() int {
	return WeekdayIndex(r.now().Weekday())
}

// Now returns the unadjusted clock reading
func (r *Resolver) Now() time.Time {
	return r.now()
}
