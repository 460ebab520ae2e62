/*
Package engine implements the period quota and balance rules for PlanningOS.

PURPOSE:
  This package contains the pure domain core: given a user's daily shift
  assignments, the organization's shift-type catalog, and the holiday/period
  calendar, it computes worked-hour balances, rest/leave code tallies, and
  compliance diagnostics. Everything here is deterministic and side-effect
  free; persistence and transport live elsewhere.

KEY CONCEPTS IN THIS FILE (types.go):
  - ShiftType: catalog entry describing one shift code (duration, night
    minutes, whether it counts toward the hour quota)
  - ShiftCategory: the shift taxonomy (standard/intermediate/night/partial/
    special/rest/leave)
  - Schedule: one (user, date) assignment referencing a shift code
  - Catalog: code -> ShiftType lookup with active/inactive resolution

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for hour arithmetic, no float drift
  2. Determinism: identical inputs yield identical outputs, including the
     ordering of diagnostic lists
  3. Policy as data: thresholds and code roles come from CompliancePolicy,
     never from inlined constants

SEE ALSO:
  - policy.go: CompliancePolicy value object and defaults
  - balance.go: PeriodBalance / UserBalance computation
  - rollup.go: organization-wide PeriodStats aggregation
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHIFT CATEGORY - Taxonomy of shift codes
// =============================================================================

type ShiftCategory string

const (
	CategoryStandard     ShiftCategory = "standard"     // 101, 102, 6101, ...
	CategoryIntermediate ShiftCategory = "intermediate" // 111, 112, 6111, ...
	CategoryNight        ShiftCategory = "night"        // 121, 6121, 7121
	CategoryPartial      ShiftCategory = "partial"      // X_AM, X_PM
	CategorySpecial      ShiftCategory = "special"      // X_10, AG
	CategoryRest         ShiftCategory = "rest"         // RH, CH, RR, ZM
	CategoryLeave        ShiftCategory = "leave"        // CN, JC, CV
)

// Simplified maps the full taxonomy onto the coarse work/rest/leave/special
// set used by admin configuration screens.
func (c ShiftCategory) Simplified() string {
	switch c {
	case CategoryStandard, CategoryIntermediate, CategoryNight, CategoryPartial:
		return "work"
	case CategoryRest:
		return "rest"
	case CategoryLeave:
		return "leave"
	default:
		return "special"
	}
}

// IsWork reports whether the category represents actual presence.
func (c ShiftCategory) IsWork() bool { return c.Simplified() == "work" }

// Valid reports whether c is one of the known categories.
func (c ShiftCategory) Valid() bool {
	switch c {
	case CategoryStandard, CategoryIntermediate, CategoryNight,
		CategoryPartial, CategorySpecial, CategoryRest, CategoryLeave:
		return true
	}
	return false
}

// =============================================================================
// SHIFT TYPE - Catalog entry
// =============================================================================

// ShiftType describes one shift code: how long it is, how much of it falls
// at night, and whether it counts toward the period hour quota.
type ShiftType struct {
	ID          string
	Code        string
	Description string
	Category    ShiftCategory

	// Visual
	ColorHex     string
	DisplayOrder int

	// Hour calculations (minutes; converted to hours at aggregation time)
	DurationMinutes int
	NightMinutes    int

	// Behavior flags
	CountsTowardsQuota bool
	IsHolidayWork      bool // 7xxx codes: shift worked on a public holiday
	RequiresRecovery   bool // working this shift on a holiday demands an RR day

	IsActive bool
}

// Validate checks the catalog invariants.
func (st ShiftType) Validate() error {
	if st.Code == "" {
		return &InputError{Field: "code", Reason: "must not be empty"}
	}
	if !st.Category.Valid() {
		return &InputError{Field: "category", Reason: fmt.Sprintf("unknown category %q", st.Category)}
	}
	if st.DurationMinutes < 0 {
		return &InputError{Field: "durationMinutes", Reason: "must be >= 0"}
	}
	if st.NightMinutes < 0 || st.NightMinutes > st.DurationMinutes {
		return &InputError{Field: "nightMinutes", Reason: "must be within [0, durationMinutes]"}
	}
	return nil
}

var minutesPerHour = decimal.NewFromInt(60)

// Hours returns the shift duration in hours.
func (st ShiftType) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(st.DurationMinutes)).Div(minutesPerHour)
}

// NightHours returns the night portion in hours.
func (st ShiftType) NightHours() decimal.Decimal {
	return decimal.NewFromInt(int64(st.NightMinutes)).Div(minutesPerHour)
}

// =============================================================================
// CATALOG - Code lookup
// =============================================================================

// Catalog maps shift codes to their definitions. Inactive entries stay in
// the catalog (historical schedules reference them) but do not resolve.
type Catalog map[string]ShiftType

// NewCatalog builds a catalog from a list of shift types. Later duplicates
// of the same code win, mirroring an admin re-creating a code.
func NewCatalog(types []ShiftType) Catalog {
	c := make(Catalog, len(types))
	for _, st := range types {
		c[st.Code] = st
	}
	return c
}

// Resolve returns the active shift type for a code. A missing or inactive
// code does not resolve; the balance engine records it as a data
// inconsistency rather than failing the whole computation.
func (c Catalog) Resolve(code string) (ShiftType, bool) {
	st, ok := c[code]
	if !ok || !st.IsActive {
		return ShiftType{}, false
	}
	return st, true
}

// =============================================================================
// SCHEDULE - One (user, date) assignment
// =============================================================================

// Schedule is a single planning cell: at most one per (user, date).
// An empty ShiftCode means the day is unassigned.
type Schedule struct {
	ID        string
	UserID    string
	Date      Date
	ShiftCode string
	IsHoliday bool // holiday marker copied at creation time
	Notes     string
}

// HasShift reports whether the day carries an assignment.
func (s Schedule) HasShift() bool { return s.ShiftCode != "" }
