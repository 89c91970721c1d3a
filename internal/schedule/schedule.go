package schedule

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Runner fires a sync job on a cron schedule. Ticks that arrive while the
// previous run is still in flight are skipped, so scheduled runs never
// overlap each other — the one place the check-then-insert dedup would
// otherwise double-write.
type Runner struct {
	cron   *cron.Cron
	job    func()
	logger *slog.Logger
	mu     sync.Mutex
}

func New(spec string, job func(), logger *slog.Logger) (*Runner, error) {
	r := &Runner{
		cron:   cron.New(),
		job:    job,
		logger: logger,
	}
	if _, err := r.cron.AddFunc(spec, r.tick); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return r, nil
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running job to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	r.mu.Lock()
	r.mu.Unlock()
}

// Run executes the job immediately, under the same no-overlap guard as
// scheduled ticks. Used by the on-demand sync triggers.
func (r *Runner) Run() {
	r.tick()
}

func (r *Runner) tick() {
	if !r.mu.TryLock() {
		r.logger.Warn("previous run still in flight, skipping tick")
		return
	}
	defer r.mu.Unlock()
	r.job()
}
