package engine

import "fmt"

// =============================================================================
// PERIOD - The 28-day scheduling cycle
// =============================================================================

// Period is one fixed-length scheduling cycle. A year holds 13 periods of
// 28 days each (364 days), so period boundaries drift against the calendar
// year and are anchored to a reference date rather than to January 1st.
type Period struct {
	ID     string
	Year   int
	Number int // 1..PeriodsPerYear
	Start  Date
	End    Date

	// HourQuota is the expected worked-hour total for a full-time agent.
	HourQuota int
}

// Label returns the display label, e.g. "P3".
func (p Period) Label() string { return fmt.Sprintf("P%d", p.Number) }

// Contains reports whether the date falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// DurationDays returns the period length in days.
func (p Period) DurationDays() int { return DaysBetween(p.Start, p.End) + 1 }

// IsCrossMonth reports whether the period spans two calendar months.
func (p Period) IsCrossMonth() bool {
	return p.Start.Month() != p.End.Month() || p.Start.Year() != p.End.Year()
}

// Validate checks the period invariants.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrMissingPeriod
	}
	if p.End.Before(p.Start) {
		return &InputError{Field: "period", Reason: "endDate before startDate"}
	}
	return nil
}

// =============================================================================
// PERIOD CALCULATOR - Generates the period grid for any year
// =============================================================================

// PeriodConfig controls period generation.
type PeriodConfig struct {
	// Anchor is the first day of P1 in the anchor year.
	Anchor Date

	DaysPerPeriod  int
	PeriodsPerYear int

	// HourQuota applied to every generated period.
	HourQuota int
}

// DefaultPeriodConfig returns the production cycle: 13 periods of 28 days
// anchored at 2026-01-12, 160 hours per period (20 workdays x 8h).
func DefaultPeriodConfig() PeriodConfig {
	return PeriodConfig{
		Anchor:         NewDate(2026, 1, 12),
		DaysPerPeriod:  28,
		PeriodsPerYear: 13,
		HourQuota:      160,
	}
}

// PeriodCalculator derives period boundaries from the anchored cycle.
type PeriodCalculator struct {
	Config PeriodConfig
}

// NewPeriodCalculator returns a calculator with the default configuration.
func NewPeriodCalculator() PeriodCalculator {
	return PeriodCalculator{Config: DefaultPeriodConfig()}
}

// PeriodsForYear computes all periods for a year. The cycle advances
// 364 days per year (13 x 28), so the start drifts one or two days
// backward against the calendar each year.
func (pc PeriodCalculator) PeriodsForYear(year int) []Period {
	cfg := pc.Config
	deltaYears := year - cfg.Anchor.Year()
	yearStart := cfg.Anchor.AddDays(cfg.DaysPerPeriod * cfg.PeriodsPerYear * deltaYears)

	periods := make([]Period, 0, cfg.PeriodsPerYear)
	for i := 1; i <= cfg.PeriodsPerYear; i++ {
		start := yearStart.AddDays(cfg.DaysPerPeriod * (i - 1))
		periods = append(periods, Period{
			Year:      year,
			Number:    i,
			Start:     start,
			End:       start.AddDays(cfg.DaysPerPeriod - 1),
			HourQuota: cfg.HourQuota,
		})
	}
	return periods
}

// PeriodForDate finds the period containing a date. Cycle years drift
// against calendar years, so the adjacent years are checked for dates near
// the boundaries.
func (pc PeriodCalculator) PeriodForDate(d Date) (Period, bool) {
	year := d.Year()
	for _, y := range []int{year, year - 1, year + 1} {
		for _, p := range pc.PeriodsForYear(y) {
			if p.Contains(d) {
				return p, true
			}
		}
	}
	return Period{}, false
}
