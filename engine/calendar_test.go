package engine_test

import (
	"testing"
	"time"

	"github.com/planningos/quota-engine/engine"
)

func TestEasterSunday(t *testing.T) {
	cases := map[int]engine.Date{
		2024: engine.NewDate(2024, time.March, 31),
		2025: engine.NewDate(2025, time.April, 20),
		2026: engine.NewDate(2026, time.April, 5),
	}
	for year, want := range cases {
		if got := engine.EasterSunday(year); !got.Equal(want) {
			t.Errorf("Easter %d: expected %s, got %s", year, want, got)
		}
	}
}

func TestBelgianHolidays(t *testing.T) {
	holidays := engine.BelgianHolidays(2026)

	if len(holidays) != 10 {
		t.Fatalf("expected 10 holidays, got %d", len(holidays))
	}

	// Sorted by date.
	for i := 1; i < len(holidays); i++ {
		if holidays[i].Date.Before(holidays[i-1].Date) {
			t.Errorf("holidays not sorted: %s before %s", holidays[i].Date, holidays[i-1].Date)
		}
	}

	var easterMonday *engine.Holiday
	for i := range holidays {
		if holidays[i].Name == "Lundi de Pâques" {
			easterMonday = &holidays[i]
		}
	}
	if easterMonday == nil {
		t.Fatal("missing Lundi de Pâques")
	}
	if !easterMonday.Date.Equal(engine.NewDate(2026, time.April, 6)) {
		t.Errorf("Lundi de Pâques 2026: expected 2026-04-06, got %s", easterMonday.Date)
	}
	if !easterMonday.IsMoveable {
		t.Error("Easter-derived holidays are moveable")
	}
}

func TestHolidayCalendar(t *testing.T) {
	cal := engine.NewHolidayCalendar(engine.BelgianHolidays(2026))

	if !cal.IsHoliday(engine.NewDate(2026, time.December, 25)) {
		t.Error("Christmas is a holiday")
	}
	if cal.IsHoliday(engine.NewDate(2026, time.December, 26)) {
		t.Error("Dec 26 is not a holiday")
	}
	if name, ok := cal.Name(engine.NewDate(2026, time.July, 21)); !ok || name != "Fête Nationale" {
		t.Errorf("expected Fête Nationale, got %q", name)
	}
}

func TestDateHelpers(t *testing.T) {
	d, err := engine.ParseDate("2026-01-12")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Errorf("2026-01-12 is a Monday, got %s", d.Weekday())
	}
	if d.String() != "2026-01-12" {
		t.Errorf("round trip failed: %s", d)
	}
	if _, err := engine.ParseDate("12/01/2026"); err == nil {
		t.Error("non-ISO date should fail to parse")
	}
	if engine.DaysBetween(d, d.AddDays(27)) != 27 {
		t.Error("DaysBetween arithmetic")
	}
}
