/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  Defines the JSON shapes exchanged with clients and the mapping between
  them and the domain types. Request bodies carry validation tags and are
  checked with go-playground/validator before any handler logic runs.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

CONVENTIONS:
  - snake_case JSON keys
  - dates as "2006-01-02" strings
  - decimal hour amounts as strings to avoid float drift in clients

SEE ALSO:
  - handlers.go: Uses these types
  - planning_handlers.go: Schedule and leave-request endpoints
*/
package api

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/planningos/quota-engine/engine"
	"github.com/planningos/quota-engine/planning"
	"github.com/planningos/quota-engine/store/sqlite"
)

var validate = validator.New()

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Matricule     string `json:"matricule,omitempty"`
	Role          string `json:"role"`
	CNEntitlement int    `json:"cn_entitlement"`
	CNCarryover   int    `json:"cn_carryover"`
	JCEntitlement int    `json:"jc_entitlement"`
	JCCarryover   int    `json:"jc_carryover"`
	IsActive      bool   `json:"is_active"`
}

type CreateUserRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Matricule     string `json:"matricule"`
	Role          string `json:"role" validate:"required,oneof=admin planner agent"`
	CNEntitlement int    `json:"cn_entitlement" validate:"gte=0"`
	CNCarryover   int    `json:"cn_carryover" validate:"gte=0"`
	JCEntitlement int    `json:"jc_entitlement" validate:"gte=0"`
	JCCarryover   int    `json:"jc_carryover" validate:"gte=0"`
}

// UpdateUserRequest is a partial update: nil fields are left untouched.
type UpdateUserRequest struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	Password      *string `json:"password" validate:"omitempty,min=8"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Matricule     *string `json:"matricule"`
	Role          *string `json:"role" validate:"omitempty,oneof=admin planner agent"`
	CNEntitlement *int    `json:"cn_entitlement" validate:"omitempty,gte=0"`
	CNCarryover   *int    `json:"cn_carryover" validate:"omitempty,gte=0"`
	JCEntitlement *int    `json:"jc_entitlement" validate:"omitempty,gte=0"`
	JCCarryover   *int    `json:"jc_carryover" validate:"omitempty,gte=0"`
	IsActive      *bool   `json:"is_active"`
}

func toUserDTO(u *sqlite.UserRecord) UserDTO {
	return UserDTO{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Matricule:     u.Matricule,
		Role:          u.Role,
		CNEntitlement: u.CNEntitlement,
		CNCarryover:   u.CNCarryover,
		JCEntitlement: u.JCEntitlement,
		JCCarryover:   u.JCCarryover,
		IsActive:      u.IsActive,
	}
}

// =============================================================================
// SHIFT TYPES
// =============================================================================

type ShiftTypeDTO struct {
	ID                 string `json:"id"`
	Code               string `json:"code"`
	Description        string `json:"description,omitempty"`
	Category           string `json:"category"`
	ColorHex           string `json:"color_hex,omitempty"`
	DisplayOrder       int    `json:"display_order"`
	DurationMinutes    int    `json:"duration_minutes"`
	NightMinutes       int    `json:"night_minutes"`
	CountsTowardsQuota bool   `json:"counts_towards_quota"`
	IsHolidayWork      bool   `json:"is_holiday_work"`
	RequiresRecovery   bool   `json:"requires_recovery"`
	IsActive           bool   `json:"is_active"`
}

type CreateShiftTypeRequest struct {
	Code               string `json:"code" validate:"required"`
	Description        string `json:"description"`
	Category           string `json:"category" validate:"required,oneof=standard intermediate night partial special rest leave"`
	ColorHex           string `json:"color_hex" validate:"omitempty,hexcolor"`
	DisplayOrder       int    `json:"display_order"`
	DurationMinutes    int    `json:"duration_minutes" validate:"gte=0,lte=1440"`
	NightMinutes       int    `json:"night_minutes" validate:"gte=0,lte=1440"`
	CountsTowardsQuota bool   `json:"counts_towards_quota"`
	IsHolidayWork      bool   `json:"is_holiday_work"`
	RequiresRecovery   bool   `json:"requires_recovery"`
}

type UpdateShiftTypeRequest struct {
	Description        *string `json:"description"`
	Category           *string `json:"category" validate:"omitempty,oneof=standard intermediate night partial special rest leave"`
	ColorHex           *string `json:"color_hex" validate:"omitempty,hexcolor"`
	DisplayOrder       *int    `json:"display_order"`
	DurationMinutes    *int    `json:"duration_minutes" validate:"omitempty,gte=0,lte=1440"`
	NightMinutes       *int    `json:"night_minutes" validate:"omitempty,gte=0,lte=1440"`
	CountsTowardsQuota *bool   `json:"counts_towards_quota"`
	IsHolidayWork      *bool   `json:"is_holiday_work"`
	RequiresRecovery   *bool   `json:"requires_recovery"`
	IsActive           *bool   `json:"is_active"`
}

func toShiftTypeDTO(st engine.ShiftType) ShiftTypeDTO {
	return ShiftTypeDTO{
		ID:                 st.ID,
		Code:               st.Code,
		Description:        st.Description,
		Category:           string(st.Category),
		ColorHex:           st.ColorHex,
		DisplayOrder:       st.DisplayOrder,
		DurationMinutes:    st.DurationMinutes,
		NightMinutes:       st.NightMinutes,
		CountsTowardsQuota: st.CountsTowardsQuota,
		IsHolidayWork:      st.IsHolidayWork,
		RequiresRecovery:   st.RequiresRecovery,
		IsActive:           st.IsActive,
	}
}

// =============================================================================
// PERIODS AND HOLIDAYS
// =============================================================================

type PeriodDTO struct {
	ID        string `json:"id"`
	Year      int    `json:"year"`
	Number    int    `json:"number"`
	Label     string `json:"label"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	HourQuota int    `json:"hour_quota"`
}

type GenerateYearRequest struct {
	Year int `json:"year" validate:"required,gte=2000,lte=2100"`
}

type HolidayDTO struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Name       string `json:"name"`
	IsMoveable bool   `json:"is_moveable"`
}

type CreateHolidayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required"`
}

func toPeriodDTO(p engine.Period) PeriodDTO {
	return PeriodDTO{
		ID:        p.ID,
		Year:      p.Year,
		Number:    p.Number,
		Label:     p.Label(),
		StartDate: p.Start.String(),
		EndDate:   p.End.String(),
		HourQuota: p.HourQuota,
	}
}

func toHolidayDTO(h engine.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date.String(), Name: h.Name, IsMoveable: h.IsMoveable}
}

// =============================================================================
// SCHEDULES
// =============================================================================

type ScheduleDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	ShiftCode string `json:"shift_code,omitempty"`
	IsHoliday bool   `json:"is_holiday"`
	Notes     string `json:"notes,omitempty"`
}

type UpsertScheduleRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	ShiftCode string `json:"shift_code"`
	Notes     string `json:"notes"`
}

type BulkScheduleRequest struct {
	Entries []UpsertScheduleRequest `json:"entries" validate:"required,min=1,dive"`
}

type PatchScheduleRequest struct {
	ShiftCode *string `json:"shift_code,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// MatrixRow is one user's line in the planning grid: date -> shift code.
type MatrixRow struct {
	UserID   string            `json:"user_id"`
	UserName string            `json:"user_name"`
	Cells    map[string]string `json:"cells"`
}

type MatrixDTO struct {
	Period PeriodDTO   `json:"period"`
	Rows   []MatrixRow `json:"rows"`
}

func toScheduleDTO(s engine.Schedule) ScheduleDTO {
	return ScheduleDTO{
		ID:        s.ID,
		UserID:    s.UserID,
		Date:      s.Date.String(),
		ShiftCode: s.ShiftCode,
		IsHoliday: s.IsHoliday,
		Notes:     s.Notes,
	}
}

// =============================================================================
// BALANCES AND STATISTICS
// =============================================================================

type PeriodBalanceDTO struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	PeriodID string `json:"period_id"`

	TotalHours string `json:"total_hours"`
	NightHours string `json:"night_hours"`

	CHCount int `json:"ch_count"`
	RHCount int `json:"rh_count"`
	CVCount int `json:"cv_count"`
	RRCount int `json:"rr_count"`
	CNCount int `json:"cn_count"`
	JCCount int `json:"jc_count"`

	HolidaysWorked int `json:"holidays_worked"`

	IsValid            bool     `json:"is_valid"`
	ValidationErrors   []string `json:"validation_errors,omitempty"`
	ValidationWarnings []string `json:"validation_warnings,omitempty"`
}

type LeaveBalanceDTO struct {
	Entitlement int `json:"entitlement"`
	Carryover   int `json:"carryover"`
	Total       int `json:"total"`
	Used        int `json:"used"`
	Remaining   int `json:"remaining"`
}

type PeriodSummaryDTO struct {
	PeriodID   string `json:"period_id"`
	Number     int    `json:"number"`
	TotalHours string `json:"total_hours"`
	NightHours string `json:"night_hours"`
	CHCount    int    `json:"ch_count"`
	RHCount    int    `json:"rh_count"`
	CVCount    int    `json:"cv_count"`
	IsValid    bool   `json:"is_valid"`
}

type UserBalanceDTO struct {
	UserID  string             `json:"user_id"`
	Year    int                `json:"year"`
	CN      LeaveBalanceDTO    `json:"cn"`
	JC      LeaveBalanceDTO    `json:"jc"`
	Periods []PeriodSummaryDTO `json:"periods"`
}

type ShiftCountDTO struct {
	Code       string `json:"code"`
	Count      int    `json:"count"`
	Hours      string `json:"hours"`
	NightHours string `json:"night_hours"`
}

type ValidationIssueDTO struct {
	UserID   string   `json:"user_id"`
	UserName string   `json:"user_name"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type PeriodStatsDTO struct {
	PeriodID          string               `json:"period_id"`
	PeriodNumber      int                  `json:"period_number"`
	TotalAgents       int                  `json:"total_agents"`
	CompliantAgents   int                  `json:"compliant_agents"`
	ComplianceRate    float64              `json:"compliance_rate"`
	TotalHours        string               `json:"total_hours"`
	TotalNightHours   string               `json:"total_night_hours"`
	ShiftDistribution []ShiftCountDTO      `json:"shift_distribution"`
	ValidationIssues  []ValidationIssueDTO `json:"validation_issues"`
}

func toPeriodBalanceDTO(b engine.PeriodBalance, userName string) PeriodBalanceDTO {
	return PeriodBalanceDTO{
		UserID:             b.UserID,
		UserName:           userName,
		PeriodID:           b.PeriodID,
		TotalHours:         b.TotalHours.String(),
		NightHours:         b.NightHours.String(),
		CHCount:            b.CHCount,
		RHCount:            b.RHCount,
		CVCount:            b.CVCount,
		RRCount:            b.RRCount,
		CNCount:            b.CNCount,
		JCCount:            b.JCCount,
		HolidaysWorked:     b.HolidaysWorked,
		IsValid:            b.IsValid,
		ValidationErrors:   b.ValidationErrors,
		ValidationWarnings: b.ValidationWarnings,
	}
}

func toLeaveBalanceDTO(b engine.LeaveBalance) LeaveBalanceDTO {
	return LeaveBalanceDTO{
		Entitlement: b.Entitlement,
		Carryover:   b.Carryover,
		Total:       b.Total,
		Used:        b.Used,
		Remaining:   b.Remaining,
	}
}

func toUserBalanceDTO(ub engine.UserBalance) UserBalanceDTO {
	dto := UserBalanceDTO{
		UserID: ub.UserID,
		Year:   ub.Year,
		CN:     toLeaveBalanceDTO(ub.CN),
		JC:     toLeaveBalanceDTO(ub.JC),
	}
	for _, p := range ub.Periods {
		dto.Periods = append(dto.Periods, PeriodSummaryDTO{
			PeriodID:   p.PeriodID,
			Number:     p.Number,
			TotalHours: p.TotalHours.String(),
			NightHours: p.NightHours.String(),
			CHCount:    p.CHCount,
			RHCount:    p.RHCount,
			CVCount:    p.CVCount,
			IsValid:    p.IsValid,
		})
	}
	return dto
}

func toPeriodStatsDTO(s engine.PeriodStats) PeriodStatsDTO {
	dto := PeriodStatsDTO{
		PeriodID:          s.PeriodID,
		PeriodNumber:      s.PeriodNumber,
		TotalAgents:       s.TotalAgents,
		CompliantAgents:   s.CompliantAgents,
		ComplianceRate:    s.ComplianceRate,
		TotalHours:        s.TotalHours.String(),
		TotalNightHours:   s.TotalNightHours.String(),
		ShiftDistribution: []ShiftCountDTO{},
		ValidationIssues:  []ValidationIssueDTO{},
	}
	for _, sc := range s.ShiftDistribution {
		dto.ShiftDistribution = append(dto.ShiftDistribution, ShiftCountDTO{
			Code:       sc.Code,
			Count:      sc.Count,
			Hours:      sc.Hours.String(),
			NightHours: sc.NightHours.String(),
		})
	}
	for _, vi := range s.ValidationIssues {
		dto.ValidationIssues = append(dto.ValidationIssues, ValidationIssueDTO(vi))
	}
	return dto
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type LeaveRequestDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	LeaveCode string `json:"leave_code"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason,omitempty"`
	Status    string `json:"status"`
	DecidedBy string `json:"decided_by,omitempty"`
	DecidedAt string `json:"decided_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

type CreateLeaveRequestRequest struct {
	// UserID may be omitted by agents: it defaults to the caller.
	UserID    string `json:"user_id"`
	LeaveCode string `json:"leave_code" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason"`
}

func toLeaveRequestDTO(req *planning.LeaveRequest) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:        req.ID,
		UserID:    req.UserID,
		LeaveCode: req.LeaveCode,
		StartDate: req.Start.String(),
		EndDate:   req.End.String(),
		Reason:    req.Reason,
		Status:    string(req.Status),
		DecidedBy: req.DecidedBy,
		CreatedAt: req.CreatedAt.Format(time.RFC3339),
	}
	if !req.DecidedAt.IsZero() {
		dto.DecidedAt = req.DecidedAt.Format(time.RFC3339)
	}
	return dto
}
