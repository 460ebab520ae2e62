/*
handlers.go - HTTP handlers for authentication, catalog and reference data

PURPOSE:
  Exposes the quota engine via REST. Handlers parse and validate the HTTP
  request, fetch records from the store, delegate the actual computation
  to the engine, and serialize the result. No balance math happens here.

ENDPOINTS (this file):
  Auth:
    POST   /api/auth/login             Issue a JWT
    GET    /api/auth/me                Current user

  Users:
    GET    /api/users                  List users (staff)
    POST   /api/users                  Create user (admin)
    GET    /api/users/{id}             Get user (self or staff)
    PATCH  /api/users/{id}             Update user (admin)
    DELETE /api/users/{id}             Deactivate user (admin)
    GET    /api/users/{id}/balance     Annual balance rollup

  Shift types:
    GET    /api/shift-types            List catalog
    POST   /api/shift-types            Create (admin)
    GET    /api/shift-types/{id}       Get one
    PATCH  /api/shift-types/{id}       Update (admin)
    DELETE /api/shift-types/{id}       Deactivate (admin)

  Periods:
    GET    /api/periods?year=          List a year's periods
    POST   /api/periods/generate       Generate and store a year (staff)
    GET    /api/periods/{id}           Get one period
    GET    /api/periods/{id}/balances  Per-user balances (staff)

  Holidays:
    GET    /api/holidays?year=         List holidays
    POST   /api/holidays               Create one (staff)
    POST   /api/holidays/generate      Seed Belgian holidays for a year (staff)
    DELETE /api/holidays/{id}          Delete (staff)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: validation errors, invalid input
  - 401/403: authentication / role failures (middleware)
  - 404: record not found
  - 409: conflicts (duplicate codes, occupied days)
  - 500: internal errors

SEE ALSO:
  - planning_handlers.go: schedules, statistics, leave requests
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/planningos/quota-engine/auth"
	"github.com/planningos/quota-engine/engine"
	"github.com/planningos/quota-engine/planning"
	"github.com/planningos/quota-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Auth     *auth.Manager
	Requests *planning.Service
	Calc     engine.Calculator
	Periods  engine.PeriodCalculator
	Log      *logrus.Logger
}

// NewHandler wires the handler with its dependencies. The policy decides
// what the balance calculator flags.
func NewHandler(store *sqlite.Store, authMgr *auth.Manager, policy engine.CompliancePolicy, log *logrus.Logger) *Handler {
	return &Handler{
		Store:    store,
		Auth:     authMgr,
		Requests: planning.NewService(store),
		Calc:     engine.Calculator{Policy: policy},
		Periods:  engine.NewPeriodCalculator(),
		Log:      log,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login checks credentials and issues a token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid login request", err)
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), strings.ToLower(req.Email))
	if errors.Is(err, sqlite.ErrNotFound) {
		// Same response as a bad password: no account enumeration.
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Login failed", err)
		return
	}
	if !user.IsActive || auth.CheckPassword(user.PasswordHash, req.Password) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := h.Auth.GenerateToken(user.ID, user.Email, user.FullName(), user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Login failed", err)
		return
	}

	h.Log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user logged in")
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: toUserDTO(user)})
}

// Me returns the authenticated user.
// GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	user, err := h.Store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users; ?active=true restricts to active ones.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	users, err := h.Store.ListUsers(r.Context(), activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUser creates a user with a hashed password.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	user := &sqlite.UserRecord{
		Email:         strings.ToLower(req.Email),
		PasswordHash:  hash,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Matricule:     req.Matricule,
		Role:          req.Role,
		CNEntitlement: req.CNEntitlement,
		CNCarryover:   req.CNCarryover,
		JCEntitlement: req.JCEntitlement,
		JCCarryover:   req.JCCarryover,
		IsActive:      true,
	}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		writeError(w, http.StatusConflict, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// GetUser returns one user. Agents may only read themselves.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, _ := auth.FromContext(r.Context())
	if claims.Role == auth.RoleAgent && claims.UserID != id {
		writeError(w, http.StatusForbidden, "Forbidden", nil)
		return
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// UpdateUser applies a partial update.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid update", err)
		return
	}

	user, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}

	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update user", err)
			return
		}
		user.PasswordHash = hash
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Matricule != nil {
		user.Matricule = *req.Matricule
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.CNEntitlement != nil {
		user.CNEntitlement = *req.CNEntitlement
	}
	if req.CNCarryover != nil {
		user.CNCarryover = *req.CNCarryover
	}
	if req.JCEntitlement != nil {
		user.JCEntitlement = *req.JCEntitlement
	}
	if req.JCCarryover != nil {
		user.JCCarryover = *req.JCCarryover
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.Store.UpdateUser(r.Context(), user); err != nil {
		writeError(w, http.StatusConflict, "Failed to update user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// DeactivateUser soft-deletes a user.
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeactivateUser(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to deactivate user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUserBalance returns the annual rollup: one summary per period plus
// CN/JC leave balances. ?year= defaults to the current year.
// GET /api/users/{id}/balance
func (h *Handler) GetUserBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	claims, _ := auth.FromContext(ctx)
	if claims.Role == auth.RoleAgent && claims.UserID != id {
		writeError(w, http.StatusForbidden, "Forbidden", nil)
		return
	}

	year := queryYear(r, engine.Today().Year())

	user, err := h.Store.GetUser(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}

	periods, err := h.periodsForYear(ctx, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load periods", err)
		return
	}

	schedules, err := h.Store.ListSchedules(ctx, id, periods[0].Start, periods[len(periods)-1].End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedules", err)
		return
	}
	catalog, calendar, err := h.loadCatalogAndCalendar(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load reference data", err)
		return
	}

	ub, err := h.Calc.UserBalance(id, year, periods, schedules, catalog, calendar, user.Entitlements())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserBalanceDTO(ub))
}

// =============================================================================
// SHIFT TYPE HANDLERS
// =============================================================================

// ListShiftTypes returns the catalog; ?include_inactive=true shows retired codes.
func (h *Handler) ListShiftTypes(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	types, err := h.Store.ListShiftTypes(r.Context(), includeInactive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shift types", err)
		return
	}

	dtos := make([]ShiftTypeDTO, len(types))
	for i, st := range types {
		dtos[i] = toShiftTypeDTO(st)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateShiftType(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftTypeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift type", err)
		return
	}

	st, err := h.Store.CreateShiftType(r.Context(), engine.ShiftType{
		Code:               strings.ToUpper(req.Code),
		Description:        req.Description,
		Category:           engine.ShiftCategory(req.Category),
		ColorHex:           req.ColorHex,
		DisplayOrder:       req.DisplayOrder,
		DurationMinutes:    req.DurationMinutes,
		NightMinutes:       req.NightMinutes,
		CountsTowardsQuota: req.CountsTowardsQuota,
		IsHolidayWork:      req.IsHolidayWork,
		RequiresRecovery:   req.RequiresRecovery,
		IsActive:           true,
	})
	if err != nil {
		writeError(w, http.StatusConflict, "Failed to create shift type", err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftTypeDTO(st))
}

func (h *Handler) GetShiftType(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.GetShiftType(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Shift type not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift type", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftTypeDTO(st))
}

func (h *Handler) UpdateShiftType(w http.ResponseWriter, r *http.Request) {
	var req UpdateShiftTypeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid update", err)
		return
	}

	st, err := h.Store.GetShiftType(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Shift type not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift type", err)
		return
	}

	if req.Description != nil {
		st.Description = *req.Description
	}
	if req.Category != nil {
		st.Category = engine.ShiftCategory(*req.Category)
	}
	if req.ColorHex != nil {
		st.ColorHex = *req.ColorHex
	}
	if req.DisplayOrder != nil {
		st.DisplayOrder = *req.DisplayOrder
	}
	if req.DurationMinutes != nil {
		st.DurationMinutes = *req.DurationMinutes
	}
	if req.NightMinutes != nil {
		st.NightMinutes = *req.NightMinutes
	}
	if req.CountsTowardsQuota != nil {
		st.CountsTowardsQuota = *req.CountsTowardsQuota
	}
	if req.IsHolidayWork != nil {
		st.IsHolidayWork = *req.IsHolidayWork
	}
	if req.RequiresRecovery != nil {
		st.RequiresRecovery = *req.RequiresRecovery
	}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}

	if err := h.Store.UpdateShiftType(r.Context(), st); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to update shift type", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftTypeDTO(st))
}

func (h *Handler) DeactivateShiftType(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeactivateShiftType(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Shift type not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to deactivate shift type", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns the stored period grid for ?year= (default: current).
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.ListPeriods(r.Context(), queryYear(r, engine.Today().Year()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periods", err)
		return
	}

	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GeneratePeriods computes and stores the 13-period grid for a year.
// POST /api/periods/generate
func (h *Handler) GeneratePeriods(w http.ResponseWriter, r *http.Request) {
	var req GenerateYearRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	periods := h.Periods.PeriodsForYear(req.Year)
	if err := h.Store.SavePeriods(r.Context(), periods); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save periods", err)
		return
	}

	stored, err := h.Store.ListPeriods(r.Context(), req.Year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periods", err)
		return
	}
	dtos := make([]PeriodDTO, len(stored))
	for i, p := range stored {
		dtos[i] = toPeriodDTO(p)
	}
	h.Log.WithField("year", req.Year).Info("period grid generated")
	writeJSON(w, http.StatusCreated, dtos)
}

func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPeriod(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Period not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p))
}

// ListPeriodBalances computes one PeriodBalance per active user.
// GET /api/periods/{id}/balances
func (h *Handler) ListPeriodBalances(w http.ResponseWriter, r *http.Request) {
	period, users, byUser, catalog, calendar, ok := h.loadPeriodContext(w, r)
	if !ok {
		return
	}

	dtos := make([]PeriodBalanceDTO, 0, len(users))
	for _, u := range users {
		pb, err := h.Calc.PeriodBalance(u.ID, period, byUser[u.ID], catalog, calendar)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
			return
		}
		dtos = append(dtos, toPeriodBalanceDTO(pb, u.FullName()))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns holidays; ?year= filters, absent means all.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context(), queryYear(r, 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, holiday := range holidays {
		dtos[i] = toHolidayDTO(holiday)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid holiday", err)
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	holiday := engine.Holiday{Date: date, Name: req.Name}
	if err := h.Store.SaveHolidays(r.Context(), []engine.Holiday{holiday}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// GenerateHolidays seeds the Belgian holiday set for a year: the 7 fixed
// dates plus the 3 Easter-derived ones.
// POST /api/holidays/generate
func (h *Handler) GenerateHolidays(w http.ResponseWriter, r *http.Request) {
	var req GenerateYearRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	if err := h.Store.SaveHolidays(r.Context(), engine.BelgianHolidays(req.Year)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holidays", err)
		return
	}

	holidays, err := h.Store.ListHolidays(r.Context(), req.Year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, len(holidays))
	for i, holiday := range holidays {
		dtos[i] = toHolidayDTO(holiday)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Holiday not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// periodsForYear prefers the stored grid and falls back to computing it,
// so balance reads work before an admin has generated the year.
func (h *Handler) periodsForYear(ctx context.Context, year int) ([]engine.Period, error) {
	periods, err := h.Store.ListPeriods(ctx, year)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		periods = h.Periods.PeriodsForYear(year)
	}
	return periods, nil
}

func (h *Handler) loadCatalogAndCalendar(ctx context.Context) (engine.Catalog, engine.HolidayCalendar, error) {
	catalog, err := h.Store.Catalog(ctx)
	if err != nil {
		return nil, engine.HolidayCalendar{}, err
	}
	holidays, err := h.Store.ListHolidays(ctx, 0)
	if err != nil {
		return nil, engine.HolidayCalendar{}, err
	}
	return catalog, engine.NewHolidayCalendar(holidays), nil
}

// loadPeriodContext gathers everything a per-period computation needs:
// the period, active users, their schedules grouped by user, the catalog
// and the holiday calendar. Writes the error response itself.
func (h *Handler) loadPeriodContext(w http.ResponseWriter, r *http.Request) (
	engine.Period, []*sqlite.UserRecord, map[string][]engine.Schedule,
	engine.Catalog, engine.HolidayCalendar, bool,
) {
	ctx := r.Context()
	fail := func(status int, msg string, err error) (engine.Period, []*sqlite.UserRecord, map[string][]engine.Schedule, engine.Catalog, engine.HolidayCalendar, bool) {
		writeError(w, status, msg, err)
		return engine.Period{}, nil, nil, nil, engine.HolidayCalendar{}, false
	}

	period, err := h.Store.GetPeriod(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		return fail(http.StatusNotFound, "Period not found", nil)
	}
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to get period", err)
	}

	users, err := h.Store.ListUsers(ctx, true)
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to list users", err)
	}

	schedules, err := h.Store.ListSchedules(ctx, "", period.Start, period.End)
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to load schedules", err)
	}
	byUser := make(map[string][]engine.Schedule)
	for _, s := range schedules {
		byUser[s.UserID] = append(byUser[s.UserID], s)
	}

	catalog, calendar, err := h.loadCatalogAndCalendar(ctx)
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to load reference data", err)
	}
	return period, users, byUser, catalog, calendar, true
}

func queryYear(r *http.Request, fallback int) int {
	if raw := r.URL.Query().Get("year"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			return year
		}
	}
	return fallback
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return validate.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
