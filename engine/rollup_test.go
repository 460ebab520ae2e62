package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planningos/quota-engine/engine"
)

func agentWith(userID, name string, valid bool, codes []string) engine.AgentPeriod {
	p := testPeriod()
	b := engine.PeriodBalance{UserID: userID, PeriodID: p.ID, IsValid: valid}
	if !valid {
		b.ValidationErrors = []string{"Insufficient weekly rest (RH): 3/4"}
	}
	return engine.AgentPeriod{
		UserID:    userID,
		UserName:  name,
		Balance:   b,
		Schedules: scheduleRun(userID, p.Start, codes),
	}
}

func TestPeriodStats_ComplianceRate(t *testing.T) {
	// GIVEN: 3 agents, 2 compliant
	// THEN: rate = 2/3 within 1e-4

	stats := engine.ComputePeriodStats(testPeriod(), []engine.AgentPeriod{
		agentWith("u1", "Anna", true, nil),
		agentWith("u2", "Bert", true, nil),
		agentWith("u3", "Cleo", false, nil),
	}, testCatalog())

	assert.Equal(t, 3, stats.TotalAgents)
	assert.Equal(t, 2, stats.CompliantAgents)
	assert.InDelta(t, 2.0/3.0, stats.ComplianceRate, 0.0001)
	assert.True(t, math.Abs(stats.ComplianceRate-0.6667) < 0.0001)
}

func TestPeriodStats_EmptyOrganization(t *testing.T) {
	stats := engine.ComputePeriodStats(testPeriod(), nil, testCatalog())

	assert.Zero(t, stats.TotalAgents)
	assert.Equal(t, 0.0, stats.ComplianceRate, "no agents means rate 0, not NaN")
	assert.Empty(t, stats.ValidationIssues)
}

func TestPeriodStats_ShiftDistributionOrdering(t *testing.T) {
	// Count descending, ties broken by code ascending.

	stats := engine.ComputePeriodStats(testPeriod(), []engine.AgentPeriod{
		agentWith("u1", "Anna", true, []string{"102", "101", "RH", "RH", "101"}),
		agentWith("u2", "Bert", true, []string{"102", "RH"}),
	}, testCatalog())

	require.Len(t, stats.ShiftDistribution, 3)
	assert.Equal(t, "RH", stats.ShiftDistribution[0].Code)
	assert.Equal(t, 3, stats.ShiftDistribution[0].Count)
	// 101 and 102 both have count 2: lexicographic tiebreak.
	assert.Equal(t, "101", stats.ShiftDistribution[1].Code)
	assert.Equal(t, "102", stats.ShiftDistribution[2].Code)

	assert.True(t, stats.ShiftDistribution[1].Hours.Equal(hours(16)))
	assert.True(t, stats.ShiftDistribution[0].Hours.IsZero(), "rest days carry no hours")
}

func TestPeriodStats_OrderIndependence(t *testing.T) {
	agents := []engine.AgentPeriod{
		agentWith("u1", "Anna", true, []string{"101"}),
		agentWith("u2", "Bert", false, []string{"102"}),
		agentWith("u3", "Cleo", false, []string{"101", "102"}),
	}
	reversed := []engine.AgentPeriod{agents[2], agents[1], agents[0]}

	a := engine.ComputePeriodStats(testPeriod(), agents, testCatalog())
	b := engine.ComputePeriodStats(testPeriod(), reversed, testCatalog())

	assert.Equal(t, a, b)
}

func TestPeriodStats_IssuesOmitCleanUsers(t *testing.T) {
	// Users without findings are absent, not present with empty lists.
	// Issues are sorted by user name.

	agents := []engine.AgentPeriod{
		agentWith("u3", "Zoe", false, nil),
		agentWith("u1", "Anna", true, nil),
		agentWith("u2", "Bert", false, nil),
	}
	stats := engine.ComputePeriodStats(testPeriod(), agents, testCatalog())

	require.Len(t, stats.ValidationIssues, 2)
	assert.Equal(t, "Bert", stats.ValidationIssues[0].UserName)
	assert.Equal(t, "Zoe", stats.ValidationIssues[1].UserName)
	require.NotEmpty(t, stats.ValidationIssues[0].Errors)
}

func TestPeriodStats_WarningOnlyUserIsSurfaced(t *testing.T) {
	a := agentWith("u1", "Anna", true, nil)
	a.Balance.ValidationWarnings = []string{"Hours outside quota: 120.0/160"}

	stats := engine.ComputePeriodStats(testPeriod(), []engine.AgentPeriod{a}, testCatalog())

	assert.Equal(t, 1, stats.CompliantAgents, "warnings do not break compliance")
	require.Len(t, stats.ValidationIssues, 1)
	assert.Empty(t, stats.ValidationIssues[0].Errors)
	assert.NotEmpty(t, stats.ValidationIssues[0].Warnings)
}
