package scheduler

import (
	"swipetriage/internal/providers"
	"swipetriage/internal/services"
	"swipetriage/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

const defaultRolloverCheck = time.Minute

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
}

// Jobs is the part of the triage service driven by the clock.
type Jobs interface {
	Restore() error
	RolloverQuota() error
	Refresh() <-chan services.ScanOutcome
}

// Scheduler runs the background jobs: the daily quota rollover, checked on
// a short period so a day change is noticed promptly, and the periodic
// library rescan.
type Scheduler struct {
	config *structures.Config
	logger providers.Logger
	jobs   Jobs
	cron   *gron.Cron
	scanMu sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	check := s.config.Quota.RolloverCheck
	if check <= 0 {
		check = defaultRolloverCheck
	}
	s.cron.AddFunc(gron.Every(check), s.rollover)

	if interval := s.config.Library.RescanInterval; interval > 0 {
		s.cron.AddFunc(gron.Every(interval), s.rescan)
	}

	s.cron.Start()
}

func (s *Scheduler) rollover() {
	if err := s.jobs.RolloverQuota(); err != nil {
		s.logger.Errorf(providers.TypeQuota, "Error while rolling over quota: %s", err)
	}
}

// rescan skips a tick while the previous rescan is still running.
func (s *Scheduler) rescan() {
	if !s.scanMu.TryLock() {
		s.logger.Debugf(providers.TypeLibrary, "Rescan still running, skipping tick")
		return
	}
	defer s.scanMu.Unlock()

	outcome := <-s.jobs.Refresh()
	switch {
	case outcome.Err != nil:
		s.logger.Errorf(providers.TypeLibrary, "Periodic rescan failed: %s", outcome.Err)
	case outcome.Applied:
		s.logger.Infof(providers.TypeLibrary, "Periodic rescan found %d assets", outcome.Assets)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.jobs.Restore()
}

func NewScheduler(config *structures.Config, logger providers.Logger, jobs Jobs) SchedulerInterface {
	return &Scheduler{
		config: config,
		logger: logger,
		jobs:   jobs,
	}
}
