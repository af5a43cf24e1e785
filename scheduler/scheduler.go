// Package scheduler runs harvests periodically on a cron schedule.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"shop-harvester/services"
	"shop-harvester/utils"
)

// Runner performs one harvest run. *services.HarvestService satisfies it.
type Runner interface {
	Run(opts services.RunOptions) (*services.RunSummary, error)
}

// Scheduler triggers Runner on a cron spec. A run still in progress when the
// next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	opts   services.RunOptions
	logger *utils.Logger
}

func New(runner Runner, opts services.RunOptions, logger *utils.Logger) *Scheduler {
	cl := cron.PrintfLogger(logger.Named("cron"))
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		runner: runner,
		opts:   opts,
		logger: logger,
	}
}

// Schedule registers the harvest job under spec (standard five-field cron
// syntax or descriptors such as "@every 6h").
func (s *Scheduler) Schedule(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("scheduler: bad schedule %q: %w", spec, err)
	}
	s.logger.Info("[scheduler] Harvest scheduled: %s", spec)
	return nil
}

func (s *Scheduler) runOnce() {
	summary, err := s.runner.Run(s.opts)
	if err != nil {
		s.logger.Error("[scheduler] Harvest failed: %v", err)
		return
	}
	s.logger.Info("[scheduler] Harvest stored %d records", summary.Total)
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for a running harvest to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
