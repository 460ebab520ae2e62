/*
seed.go - First-run bootstrap data

PURPOSE:
  Fills an empty database with everything a fresh deployment needs: the
  default shift catalog, the period grid and holiday set for the current
  and next cycle years, and a bootstrap admin account.

IDEMPOTENCE:
  Each section seeds only when its table is empty (users, shift types) or
  upserts by natural key (periods, holidays), so running Seed on every
  startup is safe.
*/
package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/planningos/quota-engine/auth"
	"github.com/planningos/quota-engine/engine"
	"github.com/planningos/quota-engine/store/sqlite"
)

// Seed bootstraps an empty database. Safe to call on every startup.
func Seed(ctx context.Context, store *sqlite.Store, log *logrus.Logger) error {
	if err := seedShiftTypes(ctx, store, log); err != nil {
		return err
	}
	if err := seedCalendar(ctx, store, log); err != nil {
		return err
	}
	return seedAdmin(ctx, store, log)
}

func seedShiftTypes(ctx context.Context, store *sqlite.Store, log *logrus.Logger) error {
	existing, err := store.ListShiftTypes(ctx, true)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, st := range DefaultShiftTypes() {
		if _, err := store.CreateShiftType(ctx, st); err != nil {
			return err
		}
	}
	log.WithField("count", len(DefaultShiftTypes())).Info("seeded default shift catalog")
	return nil
}

func seedCalendar(ctx context.Context, store *sqlite.Store, log *logrus.Logger) error {
	pc := engine.NewPeriodCalculator()
	year := engine.Today().Year()

	for _, y := range []int{year, year + 1} {
		if err := store.SavePeriods(ctx, pc.PeriodsForYear(y)); err != nil {
			return err
		}
		if err := store.SaveHolidays(ctx, engine.BelgianHolidays(y)); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{"from": year, "to": year + 1}).Info("seeded periods and holidays")
	return nil
}

func seedAdmin(ctx context.Context, store *sqlite.Store, log *logrus.Logger) error {
	users, err := store.ListUsers(ctx, false)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	// One-time bootstrap credential; rotate it right after first login.
	password := uuid.NewString()
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &sqlite.UserRecord{
		Email:        "admin@planningos.local",
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "PlanningOS",
		Role:         auth.RoleAdmin,
		IsActive:     true,
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"email":    admin.Email,
		"password": password,
	}).Warn("bootstrap admin created - change this password immediately")
	return nil
}

// DefaultShiftTypes is the catalog seeded on first run: day/intermediate/
// night prestations with their reinforcement (6xxx) and holiday-work
// (7xxx) variants, partial shifts, and the rest/leave codes.
func DefaultShiftTypes() []engine.ShiftType {
	work := func(code, desc string, cat engine.ShiftCategory, order, duration, night int, holidayWork bool) engine.ShiftType {
		return engine.ShiftType{
			Code:               code,
			Description:        desc,
			Category:           cat,
			DisplayOrder:       order,
			DurationMinutes:    duration,
			NightMinutes:       night,
			CountsTowardsQuota: true,
			IsHolidayWork:      holidayWork,
			RequiresRecovery:   holidayWork,
			IsActive:           true,
		}
	}
	off := func(code, desc string, cat engine.ShiftCategory, order int) engine.ShiftType {
		return engine.ShiftType{
			Code:         code,
			Description:  desc,
			Category:     cat,
			DisplayOrder: order,
			IsActive:     true,
		}
	}

	return []engine.ShiftType{
		// Day and night prestations. Full shifts outside the night codes
		// still brush the night window for 2 hours.
		work("101", "Matin", engine.CategoryStandard, 10, 480, 120, false),
		work("102", "Après-midi", engine.CategoryStandard, 11, 480, 120, false),
		work("111", "Matin intermédiaire", engine.CategoryIntermediate, 12, 480, 120, false),
		work("112", "Après-midi intermédiaire", engine.CategoryIntermediate, 13, 480, 120, false),
		work("121", "Nuit", engine.CategoryNight, 14, 480, 480, false),

		// Reinforcement variants.
		work("6101", "Matin renfort", engine.CategoryStandard, 20, 480, 120, false),
		work("6102", "Après-midi renfort", engine.CategoryStandard, 21, 480, 120, false),
		work("6121", "Nuit renfort", engine.CategoryNight, 22, 480, 480, false),

		// Holiday-work variants: they earn a recovery day.
		work("7101", "Matin férié", engine.CategoryStandard, 30, 480, 120, true),
		work("7102", "Après-midi férié", engine.CategoryStandard, 31, 480, 120, true),
		work("7121", "Nuit férié", engine.CategoryNight, 32, 480, 480, true),

		// Partial shifts.
		work("X_AM", "Demi-jour matin", engine.CategoryPartial, 40, 240, 120, false),
		work("X_PM", "Demi-jour après-midi", engine.CategoryPartial, 41, 240, 120, false),

		work("X_10", "Prestation 10h", engine.CategorySpecial, 50, 600, 0, false),
		work("AG", "Assemblée générale", engine.CategorySpecial, 51, 480, 0, false),

		// Rest codes: zero hours, never quota-bearing.
		off("RH", "Repos hebdomadaire", engine.CategoryRest, 60),
		off("CH", "Congé hebdomadaire", engine.CategoryRest, 61),
		off("RR", "Repos récupération", engine.CategoryRest, 62),
		off("ZM", "Zone morte", engine.CategoryRest, 63),

		// Leave codes.
		off("CN", "Congé normalisé", engine.CategoryLeave, 70),
		off("JC", "Jour de compensation", engine.CategoryLeave, 71),
		off("CV", "Congé d'ancienneté", engine.CategoryLeave, 72),
	}
}
