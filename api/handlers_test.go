/*
handlers_test.go - End-to-end tests for the HTTP API

Runs the full stack against an in-memory SQLite database: router,
middleware, auth, store and engine. Each test drives real HTTP requests
through httptest.
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planningos/quota-engine/api"
	"github.com/planningos/quota-engine/auth"
	"github.com/planningos/quota-engine/engine"
	"github.com/planningos/quota-engine/store/sqlite"
)

type testAPI struct {
	server *httptest.Server
	store  *sqlite.Store

	adminToken   string
	plannerToken string
	agentToken   string
	agentID      string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	manager := auth.NewManager("test-secret", time.Hour)
	handler := api.NewHandler(store, manager, engine.DefaultPolicy(), log)
	server := httptest.NewServer(api.NewRouter(handler, []string{"*"}))
	t.Cleanup(server.Close)

	ta := &testAPI{server: server, store: store}

	ctx := context.Background()
	for _, st := range api.DefaultShiftTypes() {
		_, err := store.CreateShiftType(ctx, st)
		require.NoError(t, err)
	}
	pc := engine.NewPeriodCalculator()
	require.NoError(t, store.SavePeriods(ctx, pc.PeriodsForYear(2026)))
	require.NoError(t, store.SaveHolidays(ctx, engine.BelgianHolidays(2026)))

	ta.adminToken = ta.createUser(t, manager, "admin@example.org", auth.RoleAdmin, "")
	ta.plannerToken = ta.createUser(t, manager, "planner@example.org", auth.RolePlanner, "")
	ta.agentToken = ta.createUser(t, manager, "agent@example.org", auth.RoleAgent, "agent-1")
	ta.agentID = "agent-1"
	return ta
}

func (ta *testAPI) createUser(t *testing.T, manager *auth.Manager, email, role, id string) string {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	u := &sqlite.UserRecord{
		ID:            id,
		Email:         email,
		PasswordHash:  hash,
		FirstName:     "Test",
		LastName:      role,
		Role:          role,
		CNEntitlement: 24,
		CNCarryover:   2,
		JCEntitlement: 12,
		IsActive:      true,
	}
	require.NoError(t, ta.store.CreateUser(context.Background(), u))

	token, err := manager.GenerateToken(u.ID, u.Email, u.FullName(), u.Role)
	require.NoError(t, err)
	return token
}

// call performs a request and decodes the JSON response into out (if non-nil).
func (ta *testAPI) call(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ta.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ta *testAPI) periodID(t *testing.T, number int) string {
	t.Helper()
	var periods []api.PeriodDTO
	status := ta.call(t, http.MethodGet, "/api/periods?year=2026", ta.plannerToken, nil, &periods)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, periods, 13)
	return periods[number-1].ID
}

func (ta *testAPI) putShift(t *testing.T, userID, date, code string) {
	t.Helper()
	status := ta.call(t, http.MethodPost, "/api/schedules", ta.plannerToken,
		map[string]string{"user_id": userID, "date": date, "shift_code": code}, nil)
	require.Equal(t, http.StatusCreated, status)
}

func TestLogin(t *testing.T) {
	ta := newTestAPI(t)

	var resp api.LoginResponse
	status := ta.call(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "agent@example.org", "password": "password123"}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, auth.RoleAgent, resp.User.Role)

	status = ta.call(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "agent@example.org", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Unknown accounts get the same answer as bad passwords.
	status = ta.call(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "ghost@example.org", "password": "password123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var me api.UserDTO
	status = ta.call(t, http.MethodGet, "/api/auth/me", resp.Token, nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "agent@example.org", me.Email)
}

func TestUserAdministration_RoleGates(t *testing.T) {
	ta := newTestAPI(t)

	newUser := map[string]any{
		"email": "new@example.org", "password": "password123",
		"first_name": "New", "last_name": "Agent", "role": "agent",
	}

	status := ta.call(t, http.MethodPost, "/api/users", ta.agentToken, newUser, nil)
	assert.Equal(t, http.StatusForbidden, status, "agents cannot create users")

	status = ta.call(t, http.MethodPost, "/api/users", ta.plannerToken, newUser, nil)
	assert.Equal(t, http.StatusForbidden, status, "planners cannot create users")

	var created api.UserDTO
	status = ta.call(t, http.MethodPost, "/api/users", ta.adminToken, newUser, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, created.IsActive)

	status = ta.call(t, http.MethodPost, "/api/users", ta.adminToken, newUser, nil)
	assert.Equal(t, http.StatusConflict, status, "duplicate email")

	// Agents read themselves but not others.
	status = ta.call(t, http.MethodGet, "/api/users/"+ta.agentID, ta.agentToken, nil, nil)
	assert.Equal(t, http.StatusOK, status)
	status = ta.call(t, http.MethodGet, "/api/users/"+created.ID, ta.agentToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = ta.call(t, http.MethodDelete, "/api/users/"+created.ID, ta.adminToken, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestScheduleUpsert_ReplacesAndValidates(t *testing.T) {
	ta := newTestAPI(t)

	ta.putShift(t, ta.agentID, "2026-01-12", "101")
	ta.putShift(t, ta.agentID, "2026-01-12", "121")

	var rows []api.ScheduleDTO
	status := ta.call(t, http.MethodGet,
		"/api/schedules?from=2026-01-12&to=2026-01-12", ta.agentToken, nil, &rows)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, rows, 1, "upsert replaces the cell")
	assert.Equal(t, "121", rows[0].ShiftCode)

	status = ta.call(t, http.MethodPost, "/api/schedules", ta.plannerToken,
		map[string]string{"user_id": ta.agentID, "date": "2026-01-13", "shift_code": "NOPE"}, nil)
	assert.Equal(t, http.StatusBadRequest, status, "unknown codes are rejected at entry")

	status = ta.call(t, http.MethodPost, "/api/schedules", ta.agentToken,
		map[string]string{"user_id": ta.agentID, "date": "2026-01-14", "shift_code": "101"}, nil)
	assert.Equal(t, http.StatusForbidden, status, "agents cannot edit the grid")
}

func TestPeriodBalancesAndStatistics(t *testing.T) {
	ta := newTestAPI(t)

	// P1 2026: Jan 12 - Feb 8. 15 workdays, 4 RH, 4 CH, 1 CV.
	day := engine.NewDate(2026, time.January, 12)
	entries := []map[string]string{}
	addRun := func(code string, n int) {
		for i := 0; i < n; i++ {
			entries = append(entries, map[string]string{
				"user_id": ta.agentID, "date": day.String(), "shift_code": code,
			})
			day = day.AddDays(1)
		}
	}
	addRun("101", 10)
	addRun("121", 5)
	addRun("RH", 4)
	addRun("CH", 4)
	addRun("CV", 1)

	status := ta.call(t, http.MethodPost, "/api/schedules/bulk", ta.plannerToken,
		map[string]any{"entries": entries}, nil)
	require.Equal(t, http.StatusCreated, status)

	p1 := ta.periodID(t, 1)

	var balances []api.PeriodBalanceDTO
	status = ta.call(t, http.MethodGet, "/api/periods/"+p1+"/balances", ta.plannerToken, nil, &balances)
	require.Equal(t, http.StatusOK, status)

	var agent *api.PeriodBalanceDTO
	for i := range balances {
		if balances[i].UserID == ta.agentID {
			agent = &balances[i]
		}
	}
	require.NotNil(t, agent)
	assert.Equal(t, "120", agent.TotalHours)
	assert.Equal(t, 4, agent.RHCount)
	assert.Equal(t, 4, agent.CHCount)
	assert.Equal(t, 1, agent.CVCount)
	assert.True(t, agent.IsValid)
	assert.NotEmpty(t, agent.ValidationWarnings, "120h against a 160h quota warns")

	var stats api.PeriodStatsDTO
	status = ta.call(t, http.MethodGet, "/api/statistics/period/"+p1, ta.plannerToken, nil, &stats)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, stats.TotalAgents, "admin, planner and agent are active users")
	assert.Equal(t, "120", stats.TotalHours)
	assert.NotEmpty(t, stats.ShiftDistribution)

	status = ta.call(t, http.MethodGet, "/api/statistics/period/"+p1, ta.agentToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestUserBalanceEndpoint(t *testing.T) {
	ta := newTestAPI(t)

	// Three approved CN days worth of grid entries.
	for i := 0; i < 3; i++ {
		ta.putShift(t, ta.agentID, engine.NewDate(2026, time.March, 10).AddDays(i).String(), "CN")
	}

	var balance api.UserBalanceDTO
	status := ta.call(t, http.MethodGet,
		"/api/users/"+ta.agentID+"/balance?year=2026", ta.agentToken, nil, &balance)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 2026, balance.Year)
	assert.Len(t, balance.Periods, 13)
	assert.Equal(t, 26, balance.CN.Total)
	assert.Equal(t, 3, balance.CN.Used)
	assert.Equal(t, 23, balance.CN.Remaining)

	status = ta.call(t, http.MethodGet,
		"/api/users/planner-id/balance?year=2026", ta.agentToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status, "agents cannot read other balances")
}

func TestLeaveRequestFlow(t *testing.T) {
	ta := newTestAPI(t)

	var created api.LeaveRequestDTO
	status := ta.call(t, http.MethodPost, "/api/leave-requests", ta.agentToken, map[string]string{
		"leave_code": "CN", "start_date": "2026-05-04", "end_date": "2026-05-06",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, ta.agentID, created.UserID, "defaults to the caller")
	assert.Equal(t, "pending", created.Status)

	status = ta.call(t, http.MethodPost, "/api/leave-requests/"+created.ID+"/approve", ta.agentToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status, "agents cannot approve")

	var approved api.LeaveRequestDTO
	status = ta.call(t, http.MethodPost, "/api/leave-requests/"+created.ID+"/approve", ta.plannerToken, nil, &approved)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "approved", approved.Status)

	var rows []api.ScheduleDTO
	status = ta.call(t, http.MethodGet,
		"/api/schedules?from=2026-05-04&to=2026-05-06", ta.agentToken, nil, &rows)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, rows, 3, "approval materializes the leave on the grid")
	for _, row := range rows {
		assert.Equal(t, "CN", row.ShiftCode)
	}

	status = ta.call(t, http.MethodPost, "/api/leave-requests/"+created.ID+"/approve", ta.plannerToken, nil, nil)
	assert.Equal(t, http.StatusConflict, status, "already decided")

	status = ta.call(t, http.MethodPost, "/api/leave-requests", ta.agentToken, map[string]string{
		"leave_code": "101", "start_date": "2026-05-11", "end_date": "2026-05-11",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status, "only leave codes are requestable")
}

func TestLeaveRequestApproval_ConflictKeepsGridIntact(t *testing.T) {
	ta := newTestAPI(t)

	ta.putShift(t, ta.agentID, "2026-05-05", "101")

	var created api.LeaveRequestDTO
	status := ta.call(t, http.MethodPost, "/api/leave-requests", ta.agentToken, map[string]string{
		"leave_code": "CN", "start_date": "2026-05-04", "end_date": "2026-05-06",
	}, &created)
	require.Equal(t, http.StatusCreated, status)

	status = ta.call(t, http.MethodPost, "/api/leave-requests/"+created.ID+"/approve", ta.plannerToken, nil, nil)
	assert.Equal(t, http.StatusConflict, status)

	var rows []api.ScheduleDTO
	status = ta.call(t, http.MethodGet,
		"/api/schedules?from=2026-05-04&to=2026-05-06", ta.agentToken, nil, &rows)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, rows, 1, "nothing was written for the blocked range")
	assert.Equal(t, "101", rows[0].ShiftCode)
}

func TestGenerateEndpoints(t *testing.T) {
	ta := newTestAPI(t)

	var periods []api.PeriodDTO
	status := ta.call(t, http.MethodPost, "/api/periods/generate", ta.plannerToken,
		map[string]int{"year": 2027}, &periods)
	require.Equal(t, http.StatusCreated, status)
	assert.Len(t, periods, 13)

	var holidays []api.HolidayDTO
	status = ta.call(t, http.MethodPost, "/api/holidays/generate", ta.plannerToken,
		map[string]int{"year": 2027}, &holidays)
	require.Equal(t, http.StatusCreated, status)
	assert.Len(t, holidays, 10)

	status = ta.call(t, http.MethodPost, "/api/periods/generate", ta.agentToken,
		map[string]int{"year": 2028}, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestScheduleMatrix(t *testing.T) {
	ta := newTestAPI(t)
	ta.putShift(t, ta.agentID, "2026-01-12", "101")

	var matrix api.MatrixDTO
	status := ta.call(t, http.MethodGet,
		fmt.Sprintf("/api/schedules/matrix?period_id=%s", ta.periodID(t, 1)), ta.plannerToken, nil, &matrix)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, matrix.Rows, 3)

	var agentRow *api.MatrixRow
	for i := range matrix.Rows {
		if matrix.Rows[i].UserID == ta.agentID {
			agentRow = &matrix.Rows[i]
		}
	}
	require.NotNil(t, agentRow)
	assert.Equal(t, "101", agentRow.Cells["2026-01-12"])
}
