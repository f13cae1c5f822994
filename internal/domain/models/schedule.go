package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Daily is the operating-days sentinel meaning "every day of the week".
const Daily = "Daily"

// ScheduleEntry mirrors one row of bus_schedules: a single bus run, or a
// repeating service when FrequencyMinutes is set.
type ScheduleEntry struct {
	ID               int64     `json:"id"`
	BusName          string    `json:"busName"`
	BusNumber        string    `json:"busNumber"`
	Route            string    `json:"route"`
	DepartureTime    string    `json:"departureTime"` // HH:MM, 24h
	ArrivalTime      string    `json:"arrivalTime"`   // HH:MM, 24h; earlier than departure = next day
	FrequencyMinutes *int      `json:"frequencyMinutes,omitempty"`
	OperatingDays    []string  `json:"operatingDays"`
	IsActive         bool      `json:"isActive"`
	BusType          string    `json:"busType,omitempty"`
	Fare             *float64  `json:"fare,omitempty"`
	DurationMinutes  *int      `json:"durationMinutes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Repeating reports whether the entry recurs through the day.
func (e ScheduleEntry) Repeating() bool {
	return e.FrequencyMinutes != nil && *e.FrequencyMinutes > 0
}

// OperatesOn reports whether the entry runs on the given weekday. An empty
// day list behaves like Daily.
func (e ScheduleEntry) OperatesOn(day time.Weekday) bool {
	if len(e.OperatingDays) == 0 {
		return true
	}
	for _, d := range e.OperatingDays {
		d = strings.TrimSpace(d)
		if strings.EqualFold(d, Daily) || strings.EqualFold(d, day.String()) {
			return true
		}
	}
	return false
}

// ArrivesNextDay reports whether the arrival clock time is earlier than the
// departure, i.e. the run crosses midnight. Unparseable times yield false.
func (e ScheduleEntry) ArrivesNextDay() bool {
	dep, err := ParseTimeOfDay(e.DepartureTime)
	if err != nil {
		return false
	}
	arr, err := ParseTimeOfDay(e.ArrivalTime)
	if err != nil {
		return false
	}
	return arr.Minutes() < dep.Minutes()
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

const MinutesPerDay = 24 * 60

// ParseTimeOfDay accepts "H:MM", "HH:MM" and the "HH:MM:SS" form MySQL TIME
// columns produce. Seconds are dropped.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	raw := strings.TrimSpace(s)
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("time %q: want HH:MM", s)
	}
	if len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return TimeOfDay{}, fmt.Errorf("time %q: want HH:MM", s)
	}
	h, err := parseDigits(parts[0])
	if err != nil || h > 23 {
		return TimeOfDay{}, fmt.Errorf("time %q: hour out of range", s)
	}
	m, err := parseDigits(parts[1])
	if err != nil || m > 59 {
		return TimeOfDay{}, fmt.Errorf("time %q: minute out of range", s)
	}
	if len(parts) == 3 {
		sec, err := parseDigits(parts[2])
		if err != nil || len(parts[2]) != 2 || sec > 59 {
			return TimeOfDay{}, fmt.Errorf("time %q: second out of range", s)
		}
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func parseDigits(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.Atoi(s)
}

// TimeOfDayFromMinutes wraps minutes since midnight onto the 24h clock.
func TimeOfDayFromMinutes(m int) TimeOfDay {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return TimeOfDay{Hour: m / 60, Minute: m % 60}
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// NormalizeDay maps a weekday name or its three-letter abbreviation (any
// case), or the Daily sentinel, to its canonical spelling.
func NormalizeDay(name string) (string, bool) {
	n := strings.TrimSpace(name)
	if strings.EqualFold(n, Daily) {
		return Daily, true
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := d.String()
		if strings.EqualFold(n, full) || (len(n) == 3 && strings.EqualFold(n, full[:3])) {
			return full, true
		}
	}
	return "", false
}
