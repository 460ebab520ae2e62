/*
policy.go - Compliance policy value object

PURPOSE:
  Captures the organization's quota rules as data. The defaults below are
  the observed production rules (4 weekly rests, 4 habitual leaves, at most
  one seniority leave per 28-day period) but every threshold and every code
  role is overridable per deployment, so the balance engine reads intent
  instead of magic strings.

SEE ALSO:
  - balance.go: the rules are evaluated there, in a fixed order
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// CODE ROLES - Which code plays which semantic role
// =============================================================================

// CodeRoles maps semantic roles to the concrete shift codes used by an
// organization. Tallies and validation rules key off these, never off
// string literals.
type CodeRoles struct {
	WeeklyRest      string // RH - repos hebdomadaire
	HabitualLeave   string // CH - congé habituel
	SeniorityLeave  string // CV - congé vieillesse
	Recovery        string // RR - repos récupération (covers holidays worked)
	NormalizedLeave string // CN - congé normalisé (annual entitlement)
	CompensationDay string // JC - jour chômé (annual entitlement)
}

// DefaultCodeRoles returns the standard code assignment.
func DefaultCodeRoles() CodeRoles {
	return CodeRoles{
		WeeklyRest:      "RH",
		HabitualLeave:   "CH",
		SeniorityLeave:  "CV",
		Recovery:        "RR",
		NormalizedLeave: "CN",
		CompensationDay: "JC",
	}
}

// =============================================================================
// COMPLIANCE POLICY
// =============================================================================

// CompliancePolicy holds the per-period quota rules.
type CompliancePolicy struct {
	// MinWeeklyRest is the minimum number of weekly-rest days per period.
	MinWeeklyRest int

	// MinHabitualLeave is the minimum number of habitual-leave days per period.
	MinHabitualLeave int

	// MaxSeniorityLeave caps seniority-leave days per period.
	MaxSeniorityLeave int

	// HourQuotaTolerance is the allowed deviation (in hours) between the
	// worked total and the period's hour quota before a warning is raised.
	HourQuotaTolerance decimal.Decimal

	// RequireRecovery demands one recovery day per holiday worked.
	RequireRecovery bool

	Codes CodeRoles
}

// DefaultPolicy returns the production defaults: 4 RH, 4 CH, max 1 CV,
// zero quota tolerance, recovery cover required.
func DefaultPolicy() CompliancePolicy {
	return CompliancePolicy{
		MinWeeklyRest:      4,
		MinHabitualLeave:   4,
		MaxSeniorityLeave:  1,
		HourQuotaTolerance: decimal.Zero,
		RequireRecovery:    true,
		Codes:              DefaultCodeRoles(),
	}
}
