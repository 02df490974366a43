/*
scheduler.go - Automated overdue sweep

PURPOSE:
  Periodically flags pending installments whose due date has passed, so
  the back office and the contract view show them as overdue without
  anyone running the sweep by hand.

DESIGN:
  - Cron expression (robfig/cron, standard 5-field syntax), default daily
  - Runs once immediately on Start; Stop waits for that run too
  - Each run uses today's date; already overdue or paid installments are
    left alone by the service, so overlapping runs are harmless
  - SkipIfStillRunning keeps at most one sweep in flight

USAGE:
  scheduler, err := NewOverdueScheduler(svc, "0 6 * * *", logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: SweepOverdue endpoint (manual run)
  - insurance/service.go: Service.SweepOverdue
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/warp/insurance-engine/insurance"
	"github.com/warp/insurance-engine/schedule"
)

// OverdueScheduler runs Service.SweepOverdue on a cron schedule.
type OverdueScheduler struct {
	Service *insurance.Service
	Spec    string
	Timeout time.Duration

	log   *logrus.Logger
	cron  *cron.Cron
	today func() schedule.Date

	mu      sync.Mutex
	started bool
	initial sync.WaitGroup
}

// NewOverdueScheduler validates spec and builds a stopped scheduler.
func NewOverdueScheduler(svc *insurance.Service, spec string, log *logrus.Logger) (*OverdueScheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s := &OverdueScheduler{
		Service: svc,
		Spec:    spec,
		Timeout: 5 * time.Minute,
		log:     log,
		cron:    c,
		today:   schedule.Today,
	}
	if _, err := c.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid overdue schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the scheduler.
func (s *OverdueScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.RunOnce(context.Background())
	}()
	s.cron.Start()

	s.log.WithField("schedule", s.Spec).Info("overdue scheduler started")
}

// Stop stops the scheduler and waits for any running sweep, including the
// one started by Start.
func (s *OverdueScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.initial.Wait()
	s.started = false
	s.log.Info("overdue scheduler stopped")
}

// RunOnce sweeps as of today. Errors are logged, not returned.
func (s *OverdueScheduler) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(insurance.WithActor(ctx, "scheduler"), s.Timeout)
	defer cancel()

	asOf := s.today()
	flagged, err := s.Service.SweepOverdue(ctx, asOf)
	if err != nil {
		s.log.WithError(err).WithField("as_of", asOf.String()).Error("overdue sweep failed")
		return 0
	}
	return flagged
}
