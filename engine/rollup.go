/*
rollup.go - Organization-wide compliance aggregation

PURPOSE:
  Aggregates per-user PeriodBalance results into the PeriodStats shown on
  the planner dashboard: compliance rate, hour totals, shift distribution,
  and the list of users with findings.

ORDER INDEPENDENCE:
  The result never depends on input iteration order: the distribution is
  sorted by count descending (ties broken by code ascending) and issues by
  user name then user id.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD STATS
// =============================================================================

// AgentPeriod is one user's contribution to a period rollup: the computed
// balance plus the schedules that produced it (the distribution needs the
// raw assignments, not just the tallies).
type AgentPeriod struct {
	UserID   string
	UserName string
	Balance  PeriodBalance

	Schedules []Schedule
}

// ShiftCount aggregates one shift code across the organization.
type ShiftCount struct {
	Code       string
	Count      int
	Hours      decimal.Decimal
	NightHours decimal.Decimal
}

// ValidationIssue carries one user's findings for the dashboard.
type ValidationIssue struct {
	UserID   string
	UserName string
	Errors   []string
	Warnings []string
}

// PeriodStats is the organization-wide view of one period.
type PeriodStats struct {
	PeriodID     string
	PeriodNumber int

	TotalAgents     int
	CompliantAgents int
	ComplianceRate  float64

	TotalHours      decimal.Decimal
	TotalNightHours decimal.Decimal

	ShiftDistribution []ShiftCount
	ValidationIssues  []ValidationIssue
}

// ComputePeriodStats aggregates per-user balances into dashboard stats.
// Users without findings are omitted from ValidationIssues to keep the
// dashboard list minimal. An empty input yields a zero compliance rate,
// not a division error.
func ComputePeriodStats(period Period, agents []AgentPeriod, catalog Catalog) PeriodStats {
	stats := PeriodStats{
		PeriodID:        period.ID,
		PeriodNumber:    period.Number,
		TotalAgents:     len(agents),
		TotalHours:      decimal.Zero,
		TotalNightHours: decimal.Zero,
	}

	dist := map[string]*ShiftCount{}

	for _, agent := range agents {
		if agent.Balance.IsValid {
			stats.CompliantAgents++
		}
		stats.TotalHours = stats.TotalHours.Add(agent.Balance.TotalHours)
		stats.TotalNightHours = stats.TotalNightHours.Add(agent.Balance.NightHours)

		for _, s := range agent.Schedules {
			if !s.HasShift() {
				continue
			}
			sc, ok := dist[s.ShiftCode]
			if !ok {
				sc = &ShiftCount{Code: s.ShiftCode, Hours: decimal.Zero, NightHours: decimal.Zero}
				dist[s.ShiftCode] = sc
			}
			sc.Count++
			// Unknown or inactive codes still appear in the distribution,
			// just without hour contributions.
			if st, ok := catalog.Resolve(s.ShiftCode); ok {
				sc.Hours = sc.Hours.Add(st.Hours())
				sc.NightHours = sc.NightHours.Add(st.NightHours())
			}
		}

		if len(agent.Balance.ValidationErrors) > 0 || len(agent.Balance.ValidationWarnings) > 0 {
			stats.ValidationIssues = append(stats.ValidationIssues, ValidationIssue{
				UserID:   agent.UserID,
				UserName: agent.UserName,
				Errors:   agent.Balance.ValidationErrors,
				Warnings: agent.Balance.ValidationWarnings,
			})
		}
	}

	if stats.TotalAgents > 0 {
		stats.ComplianceRate = float64(stats.CompliantAgents) / float64(stats.TotalAgents)
	}

	for _, sc := range dist {
		stats.ShiftDistribution = append(stats.ShiftDistribution, *sc)
	}
	sort.Slice(stats.ShiftDistribution, func(i, j int) bool {
		a, b := stats.ShiftDistribution[i], stats.ShiftDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Code < b.Code
	})

	sort.Slice(stats.ValidationIssues, func(i, j int) bool {
		a, b := stats.ValidationIssues[i], stats.ValidationIssues[j]
		if a.UserName != b.UserName {
			return a.UserName < b.UserName
		}
		return a.UserID < b.UserID
	})

	return stats
}
