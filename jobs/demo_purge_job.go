package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cppla/wellbeing/utils"
)

const demoPurgeTimeout = 5 * time.Minute

// DemoPurger is implemented by services.DemoService.
type DemoPurger interface {
	PurgeExpired(ctx context.Context, hours int) (int, error)
}

// DemoPurgeJob deletes expired demo accounts on a schedule.
type DemoPurgeJob struct {
	purger DemoPurger
	hours  int
}

func NewDemoPurgeJob(purger DemoPurger, hours int) *DemoPurgeJob {
	return &DemoPurgeJob{purger: purger, hours: hours}
}

func (s *DemoPurgeJob) Run() {
	traceID := "job-demo-purge-" + uuid.NewString()
	logger := utils.Logger.With(zap.String("trace_id", traceID))

	ctx, cancel := context.WithTimeout(context.Background(), demoPurgeTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.purger.PurgeExpired(ctx, s.hours)
	if err != nil {
		logger.Error("demo purge failed", zap.Int("hours", s.hours), zap.Error(err))
		return
	}
	logger.Info("demo purge finished",
		zap.Int("hours", s.hours),
		zap.Int("purged", n),
		zap.Duration("took", time.Since(start)),
	)
}
