/*
Package planning handles the leave-request lifecycle.

PURPOSE:
  Agents submit leave requests for a date range; planners approve, reject
  or cancel them. Approval is the critical operation: it must reflect the
  request as one schedule entry per day, carrying the leave-type shift
  code, without ever leaving a half-written range behind.

LIFECYCLE:
  pending -> approved | rejected | cancelled

  All transitions start from pending and are terminal. Approval runs inside
  a single store transaction: if any day in the range already holds an
  assignment, nothing is written.

SEE ALSO:
  - engine: Schedule / Date / HolidayCalendar types
  - store/sqlite: the Store implementation
*/
package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/planningos/quota-engine/engine"
)

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// LeaveRequest is a user-submitted request for a leave date range.
type LeaveRequest struct {
	ID     string
	UserID string

	// LeaveCode is the shift code written to the schedule on approval
	// (e.g. CN, JC, CV).
	LeaveCode string

	Start  engine.Date
	End    engine.Date
	Reason string

	Status    Status
	DecidedBy string
	DecidedAt time.Time
	CreatedAt time.Time
}

// Days returns every date in the requested range, inclusive.
func (r *LeaveRequest) Days() []engine.Date {
	var days []engine.Date
	for d := r.Start; d.BeforeOrEqual(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Validate checks the request shape against the shift catalog.
func (r *LeaveRequest) Validate(catalog engine.Catalog) error {
	if r.UserID == "" {
		return errors.New("leave request: missing user")
	}
	if r.Start.IsZero() || r.End.IsZero() || r.End.Before(r.Start) {
		return errors.New("leave request: invalid date range")
	}
	st, ok := catalog.Resolve(r.LeaveCode)
	if !ok {
		return fmt.Errorf("leave request: unknown leave code %q", r.LeaveCode)
	}
	if st.Category != engine.CategoryLeave {
		return fmt.Errorf("leave request: code %q is not a leave type", r.LeaveCode)
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotPending is returned for a transition on a decided request.
	ErrNotPending = errors.New("leave request is not pending")

	// ErrDayOccupied is returned when an approval would overwrite an
	// existing assignment.
	ErrDayOccupied = errors.New("day already has an assignment")
)

// DayOccupiedError reports which day blocked an approval.
type DayOccupiedError struct {
	UserID string
	Date   engine.Date
	Code   string
}

func (e *DayOccupiedError) Error() string {
	return fmt.Sprintf("day already has an assignment: %s holds %s on %s", e.UserID, e.Code, e.Date)
}

func (e *DayOccupiedError) Unwrap() error { return ErrDayOccupied }

// =============================================================================
// STORE INTERFACE - What the service needs from persistence
// =============================================================================

// Store is the persistence surface the request service depends on.
// *sqlite.Store satisfies it.
type Store interface {
	GetLeaveRequest(ctx context.Context, id string) (*LeaveRequest, error)
	UpdateLeaveRequest(ctx context.Context, req *LeaveRequest) error

	ListSchedules(ctx context.Context, userID string, from, to engine.Date) ([]engine.Schedule, error)
	UpsertSchedule(ctx context.Context, s engine.Schedule) error
	ListHolidays(ctx context.Context, year int) ([]engine.Holiday, error)

	// WithTx runs fn against a transaction-scoped store; any error rolls
	// everything back.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// REQUEST SERVICE
// =============================================================================

// Service drives leave-request transitions.
type Service struct {
	Store Store

	// Now is overridable for tests.
	Now func() time.Time
}

func NewService(store Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Approve transitions a pending request to approved and writes one
// schedule entry per requested day. Transactional: a single occupied day
// aborts the whole approval.
func (s *Service) Approve(ctx context.Context, requestID, approverID string) (*LeaveRequest, error) {
	req, err := s.Store.GetLeaveRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPending, requestID, req.Status)
	}

	// Holiday markers are copied onto schedule rows at creation time.
	calendar, err := s.calendarFor(ctx, req.Start.Year(), req.End.Year())
	if err != nil {
		return nil, err
	}

	err = s.Store.WithTx(ctx, func(tx Store) error {
		existing, err := tx.ListSchedules(ctx, req.UserID, req.Start, req.End)
		if err != nil {
			return err
		}
		occupied := make(map[string]string, len(existing))
		for _, sch := range existing {
			if sch.HasShift() {
				occupied[sch.Date.String()] = sch.ShiftCode
			}
		}

		for _, day := range req.Days() {
			if code, taken := occupied[day.String()]; taken {
				return &DayOccupiedError{UserID: req.UserID, Date: day, Code: code}
			}
			if err := tx.UpsertSchedule(ctx, engine.Schedule{
				UserID:    req.UserID,
				Date:      day,
				ShiftCode: req.LeaveCode,
				IsHoliday: calendar.IsHoliday(day),
				Notes:     fmt.Sprintf("leave request %s", req.ID),
			}); err != nil {
				return err
			}
		}

		req.Status = StatusApproved
		req.DecidedBy = approverID
		req.DecidedAt = s.Now()
		return tx.UpdateLeaveRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Reject transitions a pending request to rejected.
func (s *Service) Reject(ctx context.Context, requestID, deciderID string) (*LeaveRequest, error) {
	return s.decide(ctx, requestID, deciderID, StatusRejected)
}

// Cancel transitions a pending request to cancelled. Only the owner or a
// planner should reach this; that check belongs to the API layer.
func (s *Service) Cancel(ctx context.Context, requestID, actorID string) (*LeaveRequest, error) {
	return s.decide(ctx, requestID, actorID, StatusCancelled)
}

func (s *Service) decide(ctx context.Context, requestID, actorID string, status Status) (*LeaveRequest, error) {
	req, err := s.Store.GetLeaveRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPending, requestID, req.Status)
	}
	req.Status = status
	req.DecidedBy = actorID
	req.DecidedAt = s.Now()
	if err := s.Store.UpdateLeaveRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) calendarFor(ctx context.Context, fromYear, toYear int) (engine.HolidayCalendar, error) {
	var all []engine.Holiday
	for y := fromYear; y <= toYear; y++ {
		hs, err := s.Store.ListHolidays(ctx, y)
		if err != nil {
			return engine.HolidayCalendar{}, err
		}
		all = append(all, hs...)
	}
	return engine.NewHolidayCalendar(all), nil
}
