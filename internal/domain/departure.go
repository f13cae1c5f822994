package domain

import (
	"fmt"
	"sort"
	"time"

	"bustiming/internal/domain/models"
)

// LeavingSoonMinutes is the threshold at or under which a departure is flagged.
const LeavingSoonMinutes = 10

type UpcomingOptions struct {
	// AllowRollover lets a repeating service's next occurrence fall past
	// midnight (reported with DepartsNextDay). When false such entries are
	// dropped for the rest of the day.
	AllowRollover bool
}

// Departure is a schedule entry resolved against the current instant.
type Departure struct {
	models.ScheduleEntry
	NextDeparture             string    `json:"nextDeparture"`
	NextDepartureAt           time.Time `json:"nextDepartureAt"`
	TimeUntilDepartureMinutes int       `json:"timeUntilDeparture"`
	LeavingSoon               bool      `json:"leavingSoon"`
	DepartsNextDay            bool      `json:"departsNextDay,omitempty"`
	ArrivesNextDay            bool      `json:"arrivesNextDay,omitempty"`
	DisplayTime               string    `json:"displayTime"`
	DisplayArrival            string    `json:"displayArrival,omitempty"`
	DisplayTimeUntil          string    `json:"displayTimeUntil"`
}

// EntryFailure reports an entry the calculator could not interpret.
type EntryFailure struct {
	EntryID   int64
	BusNumber string
	Err       error
}

type UpcomingResult struct {
	Upcoming []Departure
	// TotalMatching counts active entries operating today, whether or not
	// they still have a departure left.
	TotalMatching int
	Failures      []EntryFailure
}

// ComputeUpcoming filters entries down to the ones still departing today and
// ranks them by minutes until departure. Ties keep input order. now is taken
// at minute resolution in its own location.
func ComputeUpcoming(entries []models.ScheduleEntry, now time.Time, opts UpcomingOptions) UpcomingResult {
	nowMin := now.Hour()*60 + now.Minute()
	res := UpcomingResult{Upcoming: []Departure{}}

	for _, e := range entries {
		if !e.IsActive || !e.OperatesOn(now.Weekday()) {
			continue
		}
		res.TotalMatching++

		dep, err := models.ParseTimeOfDay(e.DepartureTime)
		if err != nil {
			res.Failures = append(res.Failures, EntryFailure{
				EntryID:   e.ID,
				BusNumber: e.BusNumber,
				Err:       DataIntegrityError{EntryID: e.ID, Field: "departureTime", Value: e.DepartureTime, Err: err},
			})
			continue
		}

		freq := 0
		if e.FrequencyMinutes != nil {
			freq = *e.FrequencyMinutes
			if freq <= 0 {
				res.Failures = append(res.Failures, EntryFailure{
					EntryID:   e.ID,
					BusNumber: e.BusNumber,
					Err:       DataIntegrityError{EntryID: e.ID, Field: "frequencyMinutes", Value: fmt.Sprint(freq)},
				})
				continue
			}
		}

		occ, ok := NextOccurrence(dep, freq, nowMin, opts.AllowRollover)
		if !ok {
			continue
		}
		res.Upcoming = append(res.Upcoming, newDeparture(e, now, occ, nowMin))
	}

	sort.SliceStable(res.Upcoming, func(i, j int) bool {
		return res.Upcoming[i].TimeUntilDepartureMinutes < res.Upcoming[j].TimeUntilDepartureMinutes
	})
	return res
}

// NextOccurrence resolves the next departure in minutes since today's
// midnight. A single run (freq <= 0) qualifies only when strictly after
// nowMin. A repeating run yields the first dep + k*freq (k >= 0) not before
// nowMin; without rollover an occurrence at or past midnight does not count.
func NextOccurrence(dep models.TimeOfDay, freq, nowMin int, allowRollover bool) (int, bool) {
	start := dep.Minutes()
	if freq <= 0 {
		return start, start > nowMin
	}
	occ := start
	if start < nowMin {
		k := (nowMin - start + freq - 1) / freq
		occ = start + k*freq
	}
	if occ >= models.MinutesPerDay && !allowRollover {
		return 0, false
	}
	return occ, true
}

func newDeparture(e models.ScheduleEntry, now time.Time, occ, nowMin int) Departure {
	clock := models.TimeOfDayFromMinutes(occ)
	until := occ - nowMin
	d := Departure{
		ScheduleEntry:             e,
		NextDeparture:             clock.String(),
		NextDepartureAt:           time.Date(now.Year(), now.Month(), now.Day(), 0, occ, 0, 0, now.Location()),
		TimeUntilDepartureMinutes: until,
		LeavingSoon:               until <= LeavingSoonMinutes,
		DepartsNextDay:            occ >= models.MinutesPerDay,
		ArrivesNextDay:            e.ArrivesNextDay(),
		DisplayTime:               FormatClock12(clock),
		DisplayTimeUntil:          FormatTimeUntil(until),
	}
	if arr, err := models.ParseTimeOfDay(e.ArrivalTime); err == nil {
		d.DisplayArrival = FormatClock12(arr)
	}
	return d
}

// FormatClock12 renders a time of day as "8:30 AM".
func FormatClock12(t models.TimeOfDay) string {
	suffix := "AM"
	if t.Hour >= 12 {
		suffix = "PM"
	}
	h := t.Hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute, suffix)
}

// FormatTimeUntil renders minutes as "45 mins", "2h" or "1h 5m".
func FormatTimeUntil(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d mins", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
