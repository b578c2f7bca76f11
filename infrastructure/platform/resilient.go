// Package platform wraps chat-platform adapters with the call policy every room operation relies on.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/hilthontt/roombot/domain/gateway"
	"github.com/hilthontt/roombot/domain/model"
	"github.com/hilthontt/roombot/infrastructure/logger"
	"github.com/hilthontt/roombot/infrastructure/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Options struct {
	CallTimeout       time.Duration
	MaxAttempts       int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Resilient bounds every call with a timeout, paces calls through a shared rate limiter,
// and retries transport failures. ErrAbsent is never retried.
type Resilient struct {
	next    gateway.Platform
	opts    Options
	limiter *rate.Limiter
	logger  *logger.Logger
	metrics *metrics.Metrics
}

var _ gateway.Platform = (*Resilient)(nil)

func NewResilient(next gateway.Platform, opts Options, logger *logger.Logger, m *metrics.Metrics) *Resilient {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Resilient{
		next:    next,
		opts:    opts,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
		metrics: m,
	}
}

func (r *Resilient) do(ctx context.Context, op string, call func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		if waitErr := r.limiter.Wait(ctx); waitErr != nil {
			return errors.Join(waitErr, err)
		}

		err = r.attempt(ctx, call)
		if err == nil || gateway.IsAbsent(err) {
			return err
		}

		r.metrics.PlatformRetry(op)
		r.logger.Warn("platform call failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", r.opts.MaxAttempts),
			zap.Error(err),
		)

		if attempt == r.opts.MaxAttempts || ctx.Err() != nil {
			break
		}

		select {
		case <-time.After(r.opts.RetryBackoff * time.Duration(attempt)):
		case <-ctx.Done():
			return errors.Join(ctx.Err(), err)
		}
	}
	return err
}

func (r *Resilient) attempt(ctx context.Context, call func(ctx context.Context) error) error {
	if r.opts.CallTimeout <= 0 {
		return call(ctx)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.opts.CallTimeout)
	defer cancel()
	return call(callCtx)
}

func (r *Resilient) CreateAccessGroup(ctx context.Context, community model.ID, name string, color int) (model.ID, error) {
	var id model.ID
	err := r.do(ctx, "CreateAccessGroup", func(ctx context.Context) error {
		var err error
		id, err = r.next.CreateAccessGroup(ctx, community, name, color)
		return err
	})
	return id, err
}

func (r *Resilient) CreateChannel(ctx context.Context, community model.ID, spec gateway.ChannelSpec) (model.ID, error) {
	var id model.ID
	err := r.do(ctx, "CreateChannel", func(ctx context.Context) error {
		var err error
		id, err = r.next.CreateChannel(ctx, community, spec)
		return err
	})
	return id, err
}

func (r *Resilient) Grant(ctx context.Context, community, group, player model.ID) error {
	return r.do(ctx, "Grant", func(ctx context.Context) error {
		return r.next.Grant(ctx, community, group, player)
	})
}

func (r *Resilient) Revoke(ctx context.Context, community, group, player model.ID) error {
	return r.do(ctx, "Revoke", func(ctx context.Context) error {
		return r.next.Revoke(ctx, community, group, player)
	})
}

func (r *Resilient) SetChannelTopic(ctx context.Context, channel model.ID, topic string) error {
	return r.do(ctx, "SetChannelTopic", func(ctx context.Context) error {
		return r.next.SetChannelTopic(ctx, channel, topic)
	})
}

func (r *Resilient) DeleteAccessGroup(ctx context.Context, community, group model.ID) error {
	return r.do(ctx, "DeleteAccessGroup", func(ctx context.Context) error {
		return r.next.DeleteAccessGroup(ctx, community, group)
	})
}

func (r *Resilient) DeleteChannel(ctx context.Context, channel model.ID) error {
	return r.do(ctx, "DeleteChannel", func(ctx context.Context) error {
		return r.next.DeleteChannel(ctx, channel)
	})
}

func (r *Resilient) ResolveGroup(ctx context.Context, community, group model.ID) (*gateway.Group, error) {
	var g *gateway.Group
	err := r.do(ctx, "ResolveGroup", func(ctx context.Context) error {
		var err error
		g, err = r.next.ResolveGroup(ctx, community, group)
		return err
	})
	return g, err
}

func (r *Resilient) ResolveChannel(ctx context.Context, channel model.ID) (*gateway.Channel, error) {
	var c *gateway.Channel
	err := r.do(ctx, "ResolveChannel", func(ctx context.Context) error {
		var err error
		c, err = r.next.ResolveChannel(ctx, channel)
		return err
	})
	return c, err
}
