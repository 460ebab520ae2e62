/*
balance.go - Period and annual balance computation

PURPOSE:
  The central calculation: turn one user's daily shift assignments into a
  PeriodBalance (worked hours, night hours, rest/leave tallies, compliance
  findings) or a UserBalance (annual CN/JC leave balances plus one summary
  per period).

VALIDATION MODEL:
  Rules run in a FIXED order and append human-readable findings:
    1. weekly rest minimum        -> error
    2. habitual leave minimum     -> error
    3. seniority leave cap        -> error
    4. recovery cover for worked holidays -> error (policy-gated)
    5. hour quota tolerance       -> warning (does not flip IsValid)
    6. unknown/inactive codes     -> error, one per distinct code

  Errors flip IsValid to false. Warnings are listed but leave IsValid
  untouched. Domain violations are data, never Go errors: only a malformed
  call (missing period, nil catalog, fully out-of-range schedules) fails.

DETERMINISM:
  Schedules are sorted by date before aggregation, so diagnostic ordering
  never depends on input iteration order. Calling twice with identical
  inputs yields identical output.

SEE ALSO:
  - policy.go: thresholds and code roles
  - rollup.go: organization-wide aggregation of these balances
*/
package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD BALANCE - Derived aggregate for one (user, period)
// =============================================================================

// PeriodBalance is the computed, read-only aggregate for one user in one
// period. It is recomputed on demand and never edited.
type PeriodBalance struct {
	UserID   string
	PeriodID string

	TotalHours decimal.Decimal
	NightHours decimal.Decimal

	// Tallies of role-bearing codes. Independent of the quota flag: a rest
	// day counts as a rest day even though it contributes zero hours.
	CHCount int
	RHCount int
	CVCount int
	RRCount int
	CNCount int
	JCCount int

	// HolidaysWorked counts quota-bearing shifts landing on a holiday.
	HolidaysWorked int

	IsValid            bool
	ValidationErrors   []string
	ValidationWarnings []string
}

// Calculator evaluates balances under a compliance policy.
type Calculator struct {
	Policy CompliancePolicy
}

// NewCalculator returns a calculator with the default policy.
func NewCalculator() Calculator {
	return Calculator{Policy: DefaultPolicy()}
}

// PeriodBalance computes the balance for one user over one period.
//
// The schedules are expected to be pre-filtered to the user and the
// period's date range; rows for other users or outside the range are
// defensively discarded. If schedules are supplied but none overlap the
// period at all, the call fails with ErrPeriodMismatch - that is a caller
// bug, not a data irregularity.
func (c Calculator) PeriodBalance(
	userID string,
	period Period,
	schedules []Schedule,
	catalog Catalog,
	holidays HolidayCalendar,
) (PeriodBalance, error) {

	if err := period.Validate(); err != nil {
		return PeriodBalance{}, err
	}
	if catalog == nil {
		return PeriodBalance{}, ErrMissingCatalog
	}

	// Defensive filtering, then date order for deterministic diagnostics.
	rows := make([]Schedule, 0, len(schedules))
	for _, s := range schedules {
		if s.UserID != userID || !period.Contains(s.Date) {
			continue
		}
		rows = append(rows, s)
	}
	if len(schedules) > 0 && len(rows) == 0 {
		return PeriodBalance{}, fmt.Errorf("%w: period %s", ErrPeriodMismatch, period.Label())
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	b := PeriodBalance{
		UserID:     userID,
		PeriodID:   period.ID,
		TotalHours: decimal.Zero,
		NightHours: decimal.Zero,
	}

	var unknownCodes []string
	seenUnknown := map[string]bool{}

	for _, s := range rows {
		if !s.HasShift() {
			continue
		}

		st, ok := catalog.Resolve(s.ShiftCode)
		if !ok {
			if !seenUnknown[s.ShiftCode] {
				seenUnknown[s.ShiftCode] = true
				unknownCodes = append(unknownCodes, s.ShiftCode)
			}
			continue
		}

		if st.CountsTowardsQuota {
			b.TotalHours = b.TotalHours.Add(st.Hours())
			b.NightHours = b.NightHours.Add(st.NightHours())
			if holidays.IsHoliday(s.Date) {
				b.HolidaysWorked++
			}
		}

		switch s.ShiftCode {
		case c.Policy.Codes.HabitualLeave:
			b.CHCount++
		case c.Policy.Codes.WeeklyRest:
			b.RHCount++
		case c.Policy.Codes.SeniorityLeave:
			b.CVCount++
		case c.Policy.Codes.Recovery:
			b.RRCount++
		case c.Policy.Codes.NormalizedLeave:
			b.CNCount++
		case c.Policy.Codes.CompensationDay:
			b.JCCount++
		}
	}

	c.validate(&b, period, unknownCodes)
	return b, nil
}

// validate runs the compliance rules in their fixed order.
func (c Calculator) validate(b *PeriodBalance, period Period, unknownCodes []string) {
	p := c.Policy

	if b.RHCount < p.MinWeeklyRest {
		b.ValidationErrors = append(b.ValidationErrors,
			fmt.Sprintf("Insufficient weekly rest (RH): %d/%d", b.RHCount, p.MinWeeklyRest))
	}
	if b.CHCount < p.MinHabitualLeave {
		b.ValidationErrors = append(b.ValidationErrors,
			fmt.Sprintf("Insufficient habitual leave (CH): %d/%d", b.CHCount, p.MinHabitualLeave))
	}
	if b.CVCount > p.MaxSeniorityLeave {
		b.ValidationErrors = append(b.ValidationErrors,
			fmt.Sprintf("CV exceeds one per period: %d/%d", b.CVCount, p.MaxSeniorityLeave))
	}
	if p.RequireRecovery && b.HolidaysWorked > 0 && b.RRCount < b.HolidaysWorked {
		b.ValidationErrors = append(b.ValidationErrors,
			fmt.Sprintf("Missing recovery (RR): %d holiday(s) worked, %d RR planned",
				b.HolidaysWorked, b.RRCount))
	}

	quota := decimal.NewFromInt(int64(period.HourQuota))
	if b.TotalHours.Sub(quota).Abs().GreaterThan(p.HourQuotaTolerance) {
		b.ValidationWarnings = append(b.ValidationWarnings,
			fmt.Sprintf("Hours outside quota: %s/%d", b.TotalHours.StringFixed(1), period.HourQuota))
	}

	for _, code := range unknownCodes {
		b.ValidationErrors = append(b.ValidationErrors,
			fmt.Sprintf("Unknown or inactive shift code: %s", code))
	}

	b.IsValid = len(b.ValidationErrors) == 0
}

// =============================================================================
// USER BALANCE - Annual rollup for one user
// =============================================================================

// LeaveBalance tracks one annual leave entitlement (CN or JC).
// Remaining is deliberately unclamped: a negative value signals over-use,
// which the compliance rollup surfaces rather than hides.
type LeaveBalance struct {
	Entitlement int
	Carryover   int
	Total       int
	Used        int
	Remaining   int
}

// LeaveEntitlements carries a user's annual CN/JC grants.
type LeaveEntitlements struct {
	CNEntitlement int
	CNCarryover   int
	JCEntitlement int
	JCCarryover   int
}

// PeriodSummary is the per-period line of an annual balance view.
type PeriodSummary struct {
	PeriodID   string
	Number     int
	TotalHours decimal.Decimal
	NightHours decimal.Decimal
	CHCount    int
	RHCount    int
	CVCount    int
	IsValid    bool
}

// UserBalance is the derived annual view for one (user, year).
type UserBalance struct {
	UserID string
	Year   int
	CN     LeaveBalance
	JC     LeaveBalance

	// Periods holds one summary per period, in ascending period number.
	Periods []PeriodSummary
}

// UserBalance computes the annual rollup: one PeriodBalance per supplied
// period plus the CN/JC leave balances. Periods are processed in ascending
// number order regardless of input order.
func (c Calculator) UserBalance(
	userID string,
	year int,
	periods []Period,
	schedules []Schedule,
	catalog Catalog,
	holidays HolidayCalendar,
	ent LeaveEntitlements,
) (UserBalance, error) {

	if catalog == nil {
		return UserBalance{}, ErrMissingCatalog
	}

	ordered := make([]Period, len(periods))
	copy(ordered, periods)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	ub := UserBalance{UserID: userID, Year: year}

	cnUsed, jcUsed := 0, 0
	for _, p := range ordered {
		var inPeriod []Schedule
		for _, s := range schedules {
			if s.UserID == userID && p.Contains(s.Date) {
				inPeriod = append(inPeriod, s)
			}
		}

		pb, err := c.PeriodBalance(userID, p, inPeriod, catalog, holidays)
		if err != nil {
			return UserBalance{}, fmt.Errorf("period %s: %w", p.Label(), err)
		}

		cnUsed += pb.CNCount
		jcUsed += pb.JCCount

		ub.Periods = append(ub.Periods, PeriodSummary{
			PeriodID:   p.ID,
			Number:     p.Number,
			TotalHours: pb.TotalHours,
			NightHours: pb.NightHours,
			CHCount:    pb.CHCount,
			RHCount:    pb.RHCount,
			CVCount:    pb.CVCount,
			IsValid:    pb.IsValid,
		})
	}

	ub.CN = newLeaveBalance(ent.CNEntitlement, ent.CNCarryover, cnUsed)
	ub.JC = newLeaveBalance(ent.JCEntitlement, ent.JCCarryover, jcUsed)
	return ub, nil
}

func newLeaveBalance(entitlement, carryover, used int) LeaveBalance {
	total := entitlement + carryover
	return LeaveBalance{
		Entitlement: entitlement,
		Carryover:   carryover,
		Total:       total,
		Used:        used,
		Remaining:   total - used,
	}
}
