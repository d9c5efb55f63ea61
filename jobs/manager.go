package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/cppla/wellbeing/utils"
)

// Manager owns the cron engine. Schedules use the six-field form with seconds.
type Manager struct {
	engine       *cron.Cron
	demoPurgeJob *DemoPurgeJob
}

func NewCronManager(demoPurgeJob *DemoPurgeJob) *Manager {
	return &Manager{
		engine:       cron.New(cron.WithSeconds()),
		demoPurgeJob: demoPurgeJob,
	}
}

// RegisterJobs adds the demo purge at the given schedule. An empty schedule
// leaves the purge to the CLI.
func (s *Manager) RegisterJobs(demoPurgeSchedule string) error {
	if demoPurgeSchedule == "" {
		utils.Sugar.Infof("demo purge schedule empty, cron purge disabled")
		return nil
	}
	if _, err := s.engine.AddJob(demoPurgeSchedule, s.demoPurgeJob); err != nil {
		return fmt.Errorf("register demo purge %q: %w", demoPurgeSchedule, err)
	}
	return nil
}

func (s *Manager) Start() {
	utils.Logger.Info("cron engine started")
	s.engine.Start()
}

// Stop waits for running jobs to finish.
func (s *Manager) Stop() {
	<-s.engine.Stop().Done()
	utils.Logger.Info("cron engine stopped")
}

// Entries reports how many jobs are scheduled.
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}
