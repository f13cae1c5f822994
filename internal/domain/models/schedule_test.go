package models

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	ok := map[string]TimeOfDay{
		"08:30":    {Hour: 8, Minute: 30},
		"8:05":     {Hour: 8, Minute: 5},
		" 23:59 ":  {Hour: 23, Minute: 59},
		"00:00":    {},
		"06:45:00": {Hour: 6, Minute: 45},
	}
	for in, want := range ok {
		got, err := ParseTimeOfDay(in)
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseTimeOfDay(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "8", "24:00", "12:60", "12:5", "+1:30", "ab:cd", "08:30:99", "1:2:3:4"} {
		if _, err := ParseTimeOfDay(in); err == nil {
			t.Fatalf("ParseTimeOfDay(%q) expected error", in)
		}
	}
}

func TestTimeOfDayFromMinutesWraps(t *testing.T) {
	if got := TimeOfDayFromMinutes(1500).String(); got != "01:00" {
		t.Fatalf("got %s, want 01:00", got)
	}
	if got := TimeOfDayFromMinutes(-30).String(); got != "23:30" {
		t.Fatalf("got %s, want 23:30", got)
	}
}

func TestNormalizeDay(t *testing.T) {
	if d, ok := NormalizeDay(" tuesday"); !ok || d != "Tuesday" {
		t.Fatalf("got %q %v", d, ok)
	}
	if d, ok := NormalizeDay("DAILY"); !ok || d != Daily {
		t.Fatalf("got %q %v", d, ok)
	}
	if d, ok := NormalizeDay("Fri"); !ok || d != "Friday" {
		t.Fatalf("got %q %v", d, ok)
	}
	if _, ok := NormalizeDay("Funday"); ok {
		t.Fatalf("Funday should not normalize")
	}
}

func TestScheduleEntryOperatesOn(t *testing.T) {
	e := ScheduleEntry{OperatingDays: []string{"Saturday", "Sunday"}}
	if e.OperatesOn(time.Monday) {
		t.Fatalf("weekend bus should not run on Monday")
	}
	if !e.OperatesOn(time.Sunday) {
		t.Fatalf("weekend bus should run on Sunday")
	}
}
