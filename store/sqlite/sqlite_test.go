package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planningos/quota-engine/engine"
	"github.com/planningos/quota-engine/planning"
	"github.com/planningos/quota-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *sqlite.Store, email string) *sqlite.UserRecord {
	t.Helper()
	u := &sqlite.UserRecord{
		Email:         email,
		PasswordHash:  "x",
		FirstName:     "Anna",
		LastName:      "Agent",
		Role:          "agent",
		CNEntitlement: 24,
		CNCarryover:   2,
		IsActive:      true,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestUsers_CRUD(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "anna@example.org")
	require.NotEmpty(t, u.ID, "IDs are generated on create")

	got, err := s.GetUserByEmail(ctx, "anna@example.org")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Anna Agent", got.FullName())
	assert.Equal(t, 24, got.Entitlements().CNEntitlement)

	got.FirstName = "Annie"
	require.NoError(t, s.UpdateUser(ctx, got))

	again, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Annie", again.FirstName)

	require.NoError(t, s.DeactivateUser(ctx, u.ID))
	active, err := s.ListUsers(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := s.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUsers_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, sqlite.ErrNotFound)

	err = s.UpdateUser(context.Background(), &sqlite.UserRecord{ID: "missing"})
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestShiftTypes_CatalogRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	morning, err := s.CreateShiftType(ctx, engine.ShiftType{
		Code:               "101",
		Description:        "Matin",
		Category:           engine.CategoryStandard,
		DurationMinutes:    480,
		NightMinutes:       120,
		CountsTowardsQuota: true,
		IsActive:           true,
	})
	require.NoError(t, err)

	retired, err := s.CreateShiftType(ctx, engine.ShiftType{
		Code:     "OLD",
		Category: engine.CategorySpecial,
		IsActive: false,
	})
	require.NoError(t, err)

	// Active-only listing hides the retired code.
	visible, err := s.ListShiftTypes(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "101", visible[0].Code)

	// The engine catalog still knows it, as inactive.
	catalog, err := s.Catalog(ctx)
	require.NoError(t, err)
	if _, ok := catalog.Resolve("OLD"); ok {
		t.Error("inactive codes must not resolve")
	}
	st, ok := catalog.Resolve("101")
	require.True(t, ok)
	assert.True(t, st.Hours().Equal(morning.Hours()))

	require.NoError(t, s.DeactivateShiftType(ctx, retired.ID))

	_, err = s.CreateShiftType(ctx, engine.ShiftType{Code: "101", Category: engine.CategoryStandard, IsActive: true})
	assert.Error(t, err, "codes are unique")
}

func TestPeriods_SaveIsIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	pc := engine.NewPeriodCalculator()
	periods := pc.PeriodsForYear(2026)

	require.NoError(t, s.SavePeriods(ctx, periods))
	require.NoError(t, s.SavePeriods(ctx, pc.PeriodsForYear(2026)))

	stored, err := s.ListPeriods(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, stored, 13)
	assert.Equal(t, 1, stored[0].Number)
	assert.True(t, stored[0].Start.Equal(engine.NewDate(2026, time.January, 12)))
	assert.Equal(t, 160, stored[0].HourQuota)

	got, err := s.GetPeriod(ctx, stored[4].ID)
	require.NoError(t, err)
	assert.Equal(t, stored[4], got)
}

func TestHolidays_YearFilter(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveHolidays(ctx, engine.BelgianHolidays(2026)))
	require.NoError(t, s.SaveHolidays(ctx, engine.BelgianHolidays(2027)))
	// Re-saving the same year must not duplicate dates.
	require.NoError(t, s.SaveHolidays(ctx, engine.BelgianHolidays(2026)))

	hs, err := s.ListHolidays(ctx, 2026)
	require.NoError(t, err)
	assert.Len(t, hs, 10)
	for _, h := range hs {
		assert.Equal(t, 2026, h.Date.Year())
	}

	all, err := s.ListHolidays(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestSchedules_UpsertReplacesCell(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "anna@example.org")
	day := engine.NewDate(2026, time.January, 12)

	require.NoError(t, s.UpsertSchedule(ctx, engine.Schedule{
		UserID: u.ID, Date: day, ShiftCode: "101",
	}))
	require.NoError(t, s.UpsertSchedule(ctx, engine.Schedule{
		UserID: u.ID, Date: day, ShiftCode: "121", IsHoliday: true,
	}))

	rows, err := s.ListSchedules(ctx, u.ID, day, day)
	require.NoError(t, err)
	require.Len(t, rows, 1, "one cell per user and date")
	assert.Equal(t, "121", rows[0].ShiftCode)
	assert.True(t, rows[0].IsHoliday)
}

func TestSchedules_ListAllUsersInRange(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "a@example.org")
	b := seedUser(t, s, "b@example.org")
	start := engine.NewDate(2026, time.January, 12)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.UpsertSchedule(ctx, engine.Schedule{UserID: a.ID, Date: start.AddDays(i), ShiftCode: "101"}))
		require.NoError(t, s.UpsertSchedule(ctx, engine.Schedule{UserID: b.ID, Date: start.AddDays(i), ShiftCode: "102"}))
	}

	all, err := s.ListSchedules(ctx, "", start, start.AddDays(1))
	require.NoError(t, err)
	assert.Len(t, all, 4, "empty user ID spans all users")

	mine, err := s.ListSchedules(ctx, a.ID, start, start.AddDays(27))
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestLeaveRequests_Lifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "anna@example.org")

	req := &planning.LeaveRequest{
		UserID:    u.ID,
		LeaveCode: "CN",
		Start:     engine.NewDate(2026, time.February, 2),
		End:       engine.NewDate(2026, time.February, 4),
		Status:    planning.StatusPending,
	}
	require.NoError(t, s.CreateLeaveRequest(ctx, req))

	got, err := s.GetLeaveRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, planning.StatusPending, got.Status)
	assert.True(t, got.DecidedAt.IsZero())

	got.Status = planning.StatusApproved
	got.DecidedBy = "planner-1"
	got.DecidedAt = time.Now().UTC()
	require.NoError(t, s.UpdateLeaveRequest(ctx, got))

	pending, err := s.ListLeaveRequests(ctx, u.ID, planning.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	approved, err := s.ListLeaveRequests(ctx, "", planning.StatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "planner-1", approved[0].DecidedBy)
	assert.False(t, approved[0].DecidedAt.IsZero())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "anna@example.org")
	day := engine.NewDate(2026, time.March, 2)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx planning.Store) error {
		if err := tx.UpsertSchedule(ctx, engine.Schedule{UserID: u.ID, Date: day, ShiftCode: "101"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, err := s.ListSchedules(ctx, u.ID, day, day)
	require.NoError(t, err)
	assert.Empty(t, rows, "failed transactions leave nothing behind")
}
