package cleanup

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/robfig/cron/v3"
)

// Scheduler runs a Job on two cron schedules. A run still in progress when
// its next tick fires makes that tick a no-op.
type Scheduler struct {
	cron *cron.Cron
	log  logging.Logger
}

func NewScheduler(job *Job, schedule, deepSchedule string, log logging.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  log.With("module", "cleanup-scheduler"),
	}

	if _, err := s.cron.AddFunc(schedule, func() { _ = job.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("cleanup schedule %q: %w", schedule, err)
	}
	if _, err := s.cron.AddFunc(deepSchedule, func() { _ = job.Deep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("deep cleanup schedule %q: %w", deepSchedule, err)
	}
	return s, nil
}

// Start runs the schedules until ctx is done, then waits for a run in
// progress to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	s.log.Info(ctx, "cleanup scheduler started", "jobs", len(s.cron.Entries()))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.log.Info(context.Background(), "cleanup scheduler stopped")
	return nil
}
