/*
planning_handlers.go - Schedule grid, statistics and leave-request endpoints

PURPOSE:
  The planner-facing half of the API: editing the planning grid, reading
  the period matrix, computing organization-wide statistics, and driving
  the leave-request lifecycle.

ENDPOINTS:
  Schedules:
    GET    /api/schedules?user_id=&from=&to=   List schedule entries
    GET    /api/schedules/matrix?period_id=    Grid view for one period
    POST   /api/schedules                      Upsert one cell (staff)
    POST   /api/schedules/bulk                 Upsert many cells (staff)
    PATCH  /api/schedules/{id}                 Patch one cell (staff)
    DELETE /api/schedules/{id}                 Clear a cell (staff)

  Statistics:
    GET    /api/statistics/period/{id}         Organization-wide PeriodStats

  Leave requests:
    GET    /api/leave-requests?status=         List (agents see their own)
    POST   /api/leave-requests                 Submit
    POST   /api/leave-requests/{id}/approve    Approve (staff)
    POST   /api/leave-requests/{id}/reject     Reject (staff)
    POST   /api/leave-requests/{id}/cancel     Cancel (owner or staff)

SEE ALSO:
  - handlers.go: Handler struct, shared helpers
  - planning: the request service behind approve/reject/cancel
*/
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/planningos/quota-engine/auth"
	"github.com/planningos/quota-engine/engine"
	"github.com/planningos/quota-engine/planning"
	"github.com/planningos/quota-engine/store/sqlite"
)

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListSchedules returns schedule entries in a date range. Agents are
// restricted to their own rows.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	userID := r.URL.Query().Get("user_id")
	if claims.Role == auth.RoleAgent {
		userID = claims.UserID
	}

	from, err := engine.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'from' date", err)
		return
	}
	to, err := engine.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'to' date", err)
		return
	}

	schedules, err := h.Store.ListSchedules(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list schedules", err)
		return
	}

	dtos := make([]ScheduleDTO, len(schedules))
	for i, s := range schedules {
		dtos[i] = toScheduleDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetScheduleMatrix returns the planning grid for one period: one row per
// active user, cells keyed by ISO date.
// GET /api/schedules/matrix?period_id=
func (h *Handler) GetScheduleMatrix(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	period, err := h.Store.GetPeriod(ctx, r.URL.Query().Get("period_id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Period not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get period", err)
		return
	}

	users, err := h.Store.ListUsers(ctx, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}
	schedules, err := h.Store.ListSchedules(ctx, "", period.Start, period.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedules", err)
		return
	}

	cells := make(map[string]map[string]string)
	for _, s := range schedules {
		if !s.HasShift() {
			continue
		}
		if cells[s.UserID] == nil {
			cells[s.UserID] = make(map[string]string)
		}
		cells[s.UserID][s.Date.String()] = s.ShiftCode
	}

	matrix := MatrixDTO{Period: toPeriodDTO(period), Rows: []MatrixRow{}}
	for _, u := range users {
		row := MatrixRow{UserID: u.ID, UserName: u.FullName(), Cells: cells[u.ID]}
		if row.Cells == nil {
			row.Cells = map[string]string{}
		}
		matrix.Rows = append(matrix.Rows, row)
	}
	writeJSON(w, http.StatusOK, matrix)
}

// UpsertSchedule writes one planning cell. An existing assignment for the
// same (user, date) is replaced.
// POST /api/schedules
func (h *Handler) UpsertSchedule(w http.ResponseWriter, r *http.Request) {
	var req UpsertScheduleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}

	sch, err := h.buildSchedule(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}
	if err := h.Store.UpsertSchedule(r.Context(), sch); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save schedule", err)
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleDTO(sch))
}

// BulkUpsertSchedules writes many cells in one transaction.
// POST /api/schedules/bulk
func (h *Handler) BulkUpsertSchedules(w http.ResponseWriter, r *http.Request) {
	var req BulkScheduleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedules", err)
		return
	}

	schedules := make([]engine.Schedule, 0, len(req.Entries))
	for _, entry := range req.Entries {
		sch, err := h.buildSchedule(r, entry)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid schedule", err)
			return
		}
		schedules = append(schedules, sch)
	}

	if err := h.Store.BulkUpsertSchedules(r.Context(), schedules); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save schedules", err)
		return
	}
	h.Log.WithField("count", len(schedules)).Info("bulk schedule update")
	writeJSON(w, http.StatusCreated, map[string]int{"saved": len(schedules)})
}

// UpdateSchedule patches an existing cell in place. Only the provided
// fields change; the user and date stay fixed.
// PATCH /api/schedules/{id}
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req PatchScheduleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}

	sch, err := h.Store.GetSchedule(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Schedule not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get schedule", err)
		return
	}

	if req.ShiftCode != nil {
		if *req.ShiftCode != "" {
			catalog, err := h.Store.Catalog(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to load catalog", err)
				return
			}
			if _, ok := catalog.Resolve(*req.ShiftCode); !ok {
				writeError(w, http.StatusBadRequest, "Invalid schedule",
					&engine.InputError{Field: "shift_code", Reason: "unknown or inactive code"})
				return
			}
		}
		sch.ShiftCode = *req.ShiftCode
	}
	if req.Notes != nil {
		sch.Notes = *req.Notes
	}

	if err := h.Store.UpsertSchedule(r.Context(), sch); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(sch))
}

// DeleteSchedule clears a planning cell.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteSchedule(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Schedule not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete schedule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildSchedule validates the shift code against the catalog and stamps
// the holiday flag from the stored calendar.
func (h *Handler) buildSchedule(r *http.Request, req UpsertScheduleRequest) (engine.Schedule, error) {
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		return engine.Schedule{}, err
	}

	if req.ShiftCode != "" {
		catalog, err := h.Store.Catalog(r.Context())
		if err != nil {
			return engine.Schedule{}, err
		}
		if _, ok := catalog.Resolve(req.ShiftCode); !ok {
			return engine.Schedule{}, &engine.InputError{Field: "shift_code", Reason: "unknown or inactive code"}
		}
	}

	holidays, err := h.Store.ListHolidays(r.Context(), date.Year())
	if err != nil {
		return engine.Schedule{}, err
	}

	return engine.Schedule{
		UserID:    req.UserID,
		Date:      date,
		ShiftCode: req.ShiftCode,
		IsHoliday: engine.NewHolidayCalendar(holidays).IsHoliday(date),
		Notes:     req.Notes,
	}, nil
}

// =============================================================================
// STATISTICS HANDLERS
// =============================================================================

// GetPeriodStatistics computes the organization-wide rollup for a period.
// GET /api/statistics/period/{id}
func (h *Handler) GetPeriodStatistics(w http.ResponseWriter, r *http.Request) {
	period, users, byUser, catalog, calendar, ok := h.loadPeriodContext(w, r)
	if !ok {
		return
	}

	agents := make([]engine.AgentPeriod, 0, len(users))
	for _, u := range users {
		pb, err := h.Calc.PeriodBalance(u.ID, period, byUser[u.ID], catalog, calendar)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
			return
		}
		agents = append(agents, engine.AgentPeriod{
			UserID:    u.ID,
			UserName:  u.FullName(),
			Balance:   pb,
			Schedules: byUser[u.ID],
		})
	}

	stats := engine.ComputePeriodStats(period, agents, catalog)
	writeJSON(w, http.StatusOK, toPeriodStatsDTO(stats))
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// ListLeaveRequests lists requests; agents only see their own.
// GET /api/leave-requests?status=&user_id=
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	userID := r.URL.Query().Get("user_id")
	if claims.Role == auth.RoleAgent {
		userID = claims.UserID
	}

	requests, err := h.Store.ListLeaveRequests(r.Context(), userID, planning.Status(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}

	dtos := make([]LeaveRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLeaveRequest submits a pending request. Agents can only submit
// for themselves; staff may submit on behalf of a user.
// POST /api/leave-requests
func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var body CreateLeaveRequestRequest
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave request", err)
		return
	}

	claims, _ := auth.FromContext(r.Context())
	userID := body.UserID
	if userID == "" || claims.Role == auth.RoleAgent {
		userID = claims.UserID
	}

	start, err := engine.ParseDate(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	end, err := engine.ParseDate(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date", err)
		return
	}

	req := &planning.LeaveRequest{
		UserID:    userID,
		LeaveCode: body.LeaveCode,
		Start:     start,
		End:       end,
		Reason:    body.Reason,
		Status:    planning.StatusPending,
	}

	catalog, err := h.Store.Catalog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load catalog", err)
		return
	}
	if err := req.Validate(catalog); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave request", err)
		return
	}

	if err := h.Store.CreateLeaveRequest(r.Context(), req); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create leave request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(req))
}

// ApproveLeaveRequest approves and materializes the leave on the grid.
// POST /api/leave-requests/{id}/approve
func (h *Handler) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	req, err := h.Requests.Approve(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeLeaveError(w, err)
		return
	}
	h.Log.WithFields(logrus.Fields{"request_id": req.ID, "approver": claims.UserID}).Info("leave request approved")
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(req))
}

// RejectLeaveRequest rejects a pending request.
func (h *Handler) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	req, err := h.Requests.Reject(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeLeaveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(req))
}

// CancelLeaveRequest cancels a pending request. Owners may cancel their
// own; staff may cancel any.
func (h *Handler) CancelLeaveRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := auth.FromContext(ctx)
	id := chi.URLParam(r, "id")

	if claims.Role == auth.RoleAgent {
		req, err := h.Store.GetLeaveRequest(ctx, id)
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Leave request not found", nil)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get leave request", err)
			return
		}
		if req.UserID != claims.UserID {
			writeError(w, http.StatusForbidden, "Forbidden", nil)
			return
		}
	}

	req, err := h.Requests.Cancel(ctx, id, claims.UserID)
	if err != nil {
		writeLeaveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(req))
}

// writeLeaveError maps planning errors onto HTTP statuses.
func writeLeaveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		writeError(w, http.StatusNotFound, "Leave request not found", nil)
	case errors.Is(err, planning.ErrNotPending):
		writeError(w, http.StatusConflict, "Leave request already decided", err)
	case errors.Is(err, planning.ErrDayOccupied):
		writeError(w, http.StatusConflict, "A day in the range is already assigned", err)
	default:
		writeError(w, http.StatusInternalServerError, "Leave request operation failed", err)
	}
}
