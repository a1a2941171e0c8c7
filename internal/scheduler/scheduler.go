// Package scheduler re-runs a job on a cron schedule until its context ends.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is one scheduled run. Its context is cancelled when the scheduler stops.
type Job func(ctx context.Context, run int) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse validates spec, accepting five-field cron expressions and
// descriptors such as "@hourly" or "@every 30m".
func Parse(spec string) (cron.Schedule, error) {
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Run executes job once immediately, then on every tick of spec, until ctx is
// cancelled. Overlapping ticks are skipped while a run is in progress. Job
// errors are logged and do not stop the schedule.
func Run(ctx context.Context, spec string, job Job) error {
	sched, err := Parse(spec)
	if err != nil {
		return err
	}

	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	var (
		mu  sync.Mutex
		run int
	)
	exec := func() {
		mu.Lock()
		run++
		n := run
		mu.Unlock()

		start := time.Now()
		if err := job(ctx, n); err != nil {
			log.Error().Err(err).Int("run", n).Msg("Scheduled run failed")
			return
		}
		log.Debug().Int("run", n).Dur("elapsed", time.Since(start)).Msg("Scheduled run completed")
	}

	c.Schedule(sched, cron.FuncJob(exec))

	exec()
	if ctx.Err() != nil {
		return nil
	}

	c.Start()
	log.Info().Str("schedule", spec).Time("next", sched.Next(time.Now())).Msg("Watching")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
