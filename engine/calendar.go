/*
calendar.go - Public holiday calendar

PURPOSE:
  Holiday lookup for the balance engine (a worked shift on a holiday must
  be covered by a recovery day) and generation of the Belgian holiday set
  for any year, including the three Easter-derived moveable feasts.

EASTER:
  Uses the Anonymous Gregorian computus. The algorithm is pure integer
  arithmetic and valid for all Gregorian years.
*/
package engine

import (
	"sort"
	"time"
)

// =============================================================================
// HOLIDAY
// =============================================================================

// Holiday is one public-holiday date.
type Holiday struct {
	ID   string
	Date Date
	Name string

	// IsMoveable marks Easter-derived dates that change every year.
	IsMoveable bool
}

// =============================================================================
// HOLIDAY CALENDAR - Date set lookup
// =============================================================================

// HolidayCalendar answers "is this date a holiday?" for the balance engine.
type HolidayCalendar struct {
	byDate map[string]Holiday
}

// NewHolidayCalendar builds a calendar from a holiday list.
func NewHolidayCalendar(holidays []Holiday) HolidayCalendar {
	m := make(map[string]Holiday, len(holidays))
	for _, h := range holidays {
		m[h.Date.String()] = h
	}
	return HolidayCalendar{byDate: m}
}

// IsHoliday reports whether the date is a public holiday.
func (hc HolidayCalendar) IsHoliday(d Date) bool {
	_, ok := hc.byDate[d.String()]
	return ok
}

// Name returns the holiday name for a date, if any.
func (hc HolidayCalendar) Name(d Date) (string, bool) {
	h, ok := hc.byDate[d.String()]
	return h.Name, ok
}

// Len returns the number of distinct holiday dates.
func (hc HolidayCalendar) Len() int { return len(hc.byDate) }

// =============================================================================
// HOLIDAY GENERATION
// =============================================================================

// EasterSunday computes Easter for a year (Anonymous Gregorian computus).
func EasterSunday(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return NewDate(year, time.Month(month), day)
}

// BelgianHolidays returns the ten Belgian public holidays for a year,
// sorted by date: seven fixed dates plus Easter Monday, Ascension and
// Whit Monday.
func BelgianHolidays(year int) []Holiday {
	easter := EasterSunday(year)

	holidays := []Holiday{
		{Date: NewDate(year, time.January, 1), Name: "Nouvel An"},
		{Date: easter.AddDays(1), Name: "Lundi de Pâques", IsMoveable: true},
		{Date: NewDate(year, time.May, 1), Name: "Fête du Travail"},
		{Date: easter.AddDays(39), Name: "Ascension", IsMoveable: true},
		{Date: easter.AddDays(50), Name: "Lundi de Pentecôte", IsMoveable: true},
		{Date: NewDate(year, time.July, 21), Name: "Fête Nationale"},
		{Date: NewDate(year, time.August, 15), Name: "Assomption"},
		{Date: NewDate(year, time.November, 1), Name: "Toussaint"},
		{Date: NewDate(year, time.November, 11), Name: "Armistice"},
		{Date: NewDate(year, time.December, 25), Name: "Noël"},
	}

	// The moveable feasts can land before or after the fixed dates.
	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays
}
