package engine_test

import (
	"testing"
	"time"

	"github.com/planningos/quota-engine/engine"
)

func TestPeriodsForYear_AnchorYear(t *testing.T) {
	pc := engine.NewPeriodCalculator()
	periods := pc.PeriodsForYear(2026)

	if len(periods) != 13 {
		t.Fatalf("expected 13 periods, got %d", len(periods))
	}
	if !periods[0].Start.Equal(engine.NewDate(2026, time.January, 12)) {
		t.Errorf("P1 should start on the anchor date, got %s", periods[0].Start)
	}
	for _, p := range periods {
		if p.DurationDays() != 28 {
			t.Errorf("%s: expected 28 days, got %d", p.Label(), p.DurationDays())
		}
		if p.HourQuota != 160 {
			t.Errorf("%s: expected 160h quota, got %d", p.Label(), p.HourQuota)
		}
	}
}

func TestPeriodsForYear_Contiguous(t *testing.T) {
	pc := engine.NewPeriodCalculator()
	periods := pc.PeriodsForYear(2027)

	for i := 1; i < len(periods); i++ {
		want := periods[i-1].End.AddDays(1)
		if !periods[i].Start.Equal(want) {
			t.Errorf("P%d should start %s, got %s", i+1, want, periods[i].Start)
		}
	}

	// The cycle advances 364 days per year.
	first2026 := pc.PeriodsForYear(2026)[0].Start
	if got := periods[0].Start; engine.DaysBetween(first2026, got) != 364 {
		t.Errorf("2027 cycle should start 364 days after 2026, got %d days", engine.DaysBetween(first2026, got))
	}
}

func TestPeriodForDate(t *testing.T) {
	pc := engine.NewPeriodCalculator()

	cases := []struct {
		date   engine.Date
		number int
	}{
		{engine.NewDate(2026, time.January, 12), 1},
		{engine.NewDate(2026, time.February, 8), 1},
		{engine.NewDate(2026, time.February, 9), 2},
		{engine.NewDate(2026, time.January, 11), 13}, // last day of the 2025 cycle
	}
	for _, tc := range cases {
		p, ok := pc.PeriodForDate(tc.date)
		if !ok {
			t.Fatalf("no period found for %s", tc.date)
		}
		if p.Number != tc.number {
			t.Errorf("%s: expected P%d, got P%d", tc.date, tc.number, p.Number)
		}
	}
}

func TestPeriodValidate(t *testing.T) {
	p := engine.Period{
		Start: engine.NewDate(2026, time.March, 1),
		End:   engine.NewDate(2026, time.February, 1),
	}
	if err := p.Validate(); err == nil {
		t.Error("inverted period should not validate")
	}
	if err := (engine.Period{}).Validate(); err == nil {
		t.Error("zero period should not validate")
	}
}

func TestPeriodCrossMonth(t *testing.T) {
	pc := engine.NewPeriodCalculator()
	p1 := pc.PeriodsForYear(2026)[0] // Jan 12 - Feb 8
	if !p1.IsCrossMonth() {
		t.Error("P1 2026 spans January and February")
	}
}
