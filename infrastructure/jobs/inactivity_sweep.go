package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hilthontt/roombot/application/usecases/room"
	"github.com/hilthontt/roombot/infrastructure/logger"
	"go.uber.org/zap"
)

type Sweeper interface {
	Sweep(ctx context.Context) (room.SweepResult, error)
}

// InactivitySweepJob disbands idle rooms on a fixed interval, independent of each room's timeout.
type InactivitySweepJob struct {
	sweeper  Sweeper
	logger   *logger.Logger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewInactivitySweepJob(sweeper Sweeper, logger *logger.Logger, interval time.Duration) *InactivitySweepJob {
	return &InactivitySweepJob{
		sweeper:  sweeper,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (j *InactivitySweepJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("Inactivity sweep job started",
		zap.Duration("interval", j.interval),
	)

	j.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			j.runSweep(ctx)
		case <-j.stopChan:
			j.logger.Info("Inactivity sweep job stopped")
			return
		case <-ctx.Done():
			j.logger.Info("Inactivity sweep job context cancelled")
			return
		}
	}
}

func (j *InactivitySweepJob) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
}

func (j *InactivitySweepJob) runSweep(ctx context.Context) {
	startTime := time.Now()

	result, err := j.sweeper.Sweep(ctx)
	if err != nil {
		sentry.CaptureException(err)
		j.logger.Error("Inactivity sweep finished with failures",
			zap.Error(err),
			zap.Int("checked", result.Checked),
			zap.Int("disbanded", result.Disbanded),
			zap.Int("failed", result.Failed),
			zap.Duration("duration", time.Since(startTime)),
		)
		return
	}

	j.logger.Debug("Inactivity sweep completed",
		zap.Int("checked", result.Checked),
		zap.Int("disbanded", result.Disbanded),
		zap.Duration("duration", time.Since(startTime)),
	)
}
