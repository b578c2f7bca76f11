package room

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type SweepResult struct {
	Checked   int `json:"checked"`
	Disbanded int `json:"disbanded"`
	Failed    int `json:"failed"`
}

// Sweep disbands every live room whose inactivity timeout has elapsed. A room already being
// swept by a concurrent pass is skipped. Failures are collected and the pass continues.
func (uc *roomUseCase) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	now := uc.now()

	var (
		result SweepResult
		errs   []error
	)

	for _, room := range uc.Rooms() {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if !uc.sweeping.Add(room.ID()) {
			continue
		}

		result.Checked++
		disbanded, err := room.disbandIfIdle(ctx, now)
		uc.sweeping.Remove(room.ID())

		switch {
		case err != nil:
			result.Failed++
			errs = append(errs, err)
			uc.logger.Error("failed to disband idle room", zap.Stringer("roomID", room.ID()), zap.Error(err))
		case disbanded:
			result.Disbanded++
		}
	}

	uc.metrics.ObserveSweep(time.Since(start), result.Failed)
	return result, errors.Join(errs...)
}
