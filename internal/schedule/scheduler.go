package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler fires a single job on a cron cadence, plus once unconditionally
// at startup so operators get immediate confirmation the configuration works.
// Overlapping ticks are skipped, never run in parallel: concurrent dumps
// against the same credentials and temp directory would corrupt state.
type Scheduler struct {
	cron  *cron.Cron
	entry cron.EntryID
	job   func()
	log   zerolog.Logger
}

// New validates the expression and registers the job. Standard 5-field cron
// expressions plus descriptors like @daily are accepted.
func New(expr string, log zerolog.Logger, job func()) (*Scheduler, error) {
	s := &Scheduler{job: job, log: log}

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.PrintfLogger(&s.log)),
	))

	entry, err := s.cron.AddFunc(expr, job)
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	s.entry = entry
	return s, nil
}

// Start runs the job once synchronously, starts the cron loop, and blocks
// until ctx is canceled. The startup run finishes before the loop starts, so
// it can never overlap a scheduled run.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info().Msg("running startup backup")
	s.job()

	s.cron.Start()
	s.log.Info().
		Time("next_run", s.cron.Entry(s.entry).Next).
		Msg("backup schedule started")

	<-ctx.Done()
}

// Stop halts scheduling and waits up to timeout for an in-flight run to
// drain.
func (s *Scheduler) Stop(timeout time.Duration) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(timeout):
		s.log.Warn().Dur("timeout", timeout).Msg("gave up waiting for running backup")
	}
}
