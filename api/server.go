/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, the middleware stack, and the route table.
  This is the wiring layer that connects URLs to handlers and role
  requirements.

MIDDLEWARE STACK:
  1. RequestID:  unique ID per request for tracing
  2. RealIP:     honor proxy headers for logging
  3. Recoverer:  panic recovery (500 instead of crash)
  4. logrus:     structured request logging
  5. CORS:       cross-origin requests for the frontend

ROLE MODEL:
  admin    user and catalog administration plus everything below
  planner  schedule edits, leave decisions, statistics
  agent    own schedule, own balance, leave submission

SEE ALSO:
  - handlers.go / planning_handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/planningos/quota-engine/auth"
)

// NewRouter creates the router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	staff := auth.RequireRole(auth.RoleAdmin, auth.RolePlanner)
	admin := auth.RequireRole(auth.RoleAdmin)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)

			r.Get("/auth/me", h.Me)

			r.Route("/users", func(r chi.Router) {
				r.With(staff).Get("/", h.ListUsers)
				r.With(admin).Post("/", h.CreateUser)
				r.Get("/{id}", h.GetUser)
				r.With(admin).Patch("/{id}", h.UpdateUser)
				r.With(admin).Delete("/{id}", h.DeactivateUser)
				r.Get("/{id}/balance", h.GetUserBalance)
			})

			r.Route("/shift-types", func(r chi.Router) {
				r.Get("/", h.ListShiftTypes)
				r.With(admin).Post("/", h.CreateShiftType)
				r.Get("/{id}", h.GetShiftType)
				r.With(admin).Patch("/{id}", h.UpdateShiftType)
				r.With(admin).Delete("/{id}", h.DeactivateShiftType)
			})

			r.Route("/periods", func(r chi.Router) {
				r.Get("/", h.ListPeriods)
				r.With(staff).Post("/generate", h.GeneratePeriods)
				r.Get("/{id}", h.GetPeriod)
				r.With(staff).Get("/{id}/balances", h.ListPeriodBalances)
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/", h.ListSchedules)
				r.With(staff).Get("/matrix", h.GetScheduleMatrix)
				r.With(staff).Post("/", h.UpsertSchedule)
				r.With(staff).Post("/bulk", h.BulkUpsertSchedules)
				r.With(staff).Patch("/{id}", h.UpdateSchedule)
				r.With(staff).Delete("/{id}", h.DeleteSchedule)
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.ListHolidays)
				r.With(staff).Post("/", h.CreateHoliday)
				r.With(staff).Post("/generate", h.GenerateHolidays)
				r.With(staff).Delete("/{id}", h.DeleteHoliday)
			})

			r.With(staff).Get("/statistics/period/{id}", h.GetPeriodStatistics)

			r.Route("/leave-requests", func(r chi.Router) {
				r.Get("/", h.ListLeaveRequests)
				r.Post("/", h.CreateLeaveRequest)
				r.With(staff).Post("/{id}/approve", h.ApproveLeaveRequest)
				r.With(staff).Post("/{id}/reject", h.RejectLeaveRequest)
				r.Post("/{id}/cancel", h.CancelLeaveRequest)
			})
		})
	})

	return r
}

// requestLogger emits one structured log line per request.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("http request")
		})
	}
}
