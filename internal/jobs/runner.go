// Package jobs runs the bot's recurring background work: the nurture
// tick, the card-of-the-day publish, the admin digest and the member
// reminder.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/taroverse/engagebot/internal/logger"
)

// Job is one recurring task. Run is invoked sequentially per job: a
// tick that is still running when the next interval elapses delays it,
// so a job never overlaps its own runs.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Runner struct {
	jobs   []Job
	logger *logger.Logger
	wg     sync.WaitGroup
}

func NewRunner(logger *logger.Logger) *Runner {
	return &Runner{
		logger: logger,
	}
}

// Register adds a job. Must be called before Start.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Start launches one goroutine per job and returns immediately. The
// jobs stop when ctx is cancelled; Wait blocks until they all exit.
func (r *Runner) Start(ctx context.Context) {
	for _, job := range r.jobs {
		r.wg.Add(1)
		go func(job Job) {
			defer r.wg.Done()
			r.loop(ctx, job)
		}(job)
	}
}

// Wait blocks until all job goroutines have exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, job Job) {
	t := time.NewTicker(job.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			started := time.Now()
			if err := job.Run(ctx); err != nil {
				r.logger.Error("job failed",
					"job", job.Name,
					"duration", time.Since(started).String(),
					"error", err.Error())
				continue
			}
			r.logger.Debug("job finished",
				"job", job.Name,
				"duration", time.Since(started).String())
		}
	}
}
