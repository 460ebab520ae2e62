/*
scheduler.go - Automated calendar roll-forward

PURPOSE:
  Periodically makes sure the period grid and holiday set exist for the
  current and the next cycle year, so the planning screens never run off
  the end of the generated calendar around new year.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Upserts by natural key, so repeated runs are no-ops
  - Manual generation via the API stays possible alongside it

USAGE:
  scheduler := NewCalendarScheduler(store, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GeneratePeriods / GenerateHolidays (manual counterpart)
  - seed.go: the first-run variant of the same idea
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/planningos/quota-engine/engine"
	"github.com/planningos/quota-engine/store/sqlite"
)

// CalendarScheduler keeps the stored calendar ahead of the clock.
type CalendarScheduler struct {
	Store         *sqlite.Store
	Log           *logrus.Logger
	CheckInterval time.Duration

	periods engine.PeriodCalculator

	mu      sync.Mutex
	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

func NewCalendarScheduler(store *sqlite.Store, log *logrus.Logger) *CalendarScheduler {
	return &CalendarScheduler{
		Store:         store,
		Log:           log,
		CheckInterval: 12 * time.Hour,
		periods:       engine.NewPeriodCalculator(),
	}
}

// Start launches the background loop. One immediate pass runs before the
// first tick.
func (s *CalendarScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.ticker = time.NewTicker(s.CheckInterval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runOnce()
		for {
			select {
			case <-s.ticker.C:
				s.runOnce()
			case <-s.stop:
				return
			}
		}
	}()
	s.Log.WithField("interval", s.CheckInterval.String()).Info("calendar scheduler started")
}

// Stop halts the loop and waits for an in-flight pass to finish.
func (s *CalendarScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.ticker.Stop()
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	s.Log.Info("calendar scheduler stopped")
}

func (s *CalendarScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	year := engine.Today().Year()
	for _, y := range []int{year, year + 1} {
		if err := s.ensureYear(ctx, y); err != nil {
			s.Log.WithError(err).WithField("year", y).Error("calendar roll-forward failed")
			return
		}
	}
}

func (s *CalendarScheduler) ensureYear(ctx context.Context, year int) error {
	stored, err := s.Store.ListPeriods(ctx, year)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		if err := s.Store.SavePeriods(ctx, s.periods.PeriodsForYear(year)); err != nil {
			return err
		}
		s.Log.WithField("year", year).Info("generated period grid")
	}

	holidays, err := s.Store.ListHolidays(ctx, year)
	if err != nil {
		return err
	}
	if len(holidays) == 0 {
		if err := s.Store.SaveHolidays(ctx, engine.BelgianHolidays(year)); err != nil {
			return err
		}
		s.Log.WithField("year", year).Info("generated holiday set")
	}
	return nil
}
