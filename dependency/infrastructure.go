package dependency

import (
	"context"
	"errors"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/hilthontt/roombot/domain/gateway"
	"github.com/hilthontt/roombot/infrastructure/cache"
	"github.com/hilthontt/roombot/infrastructure/events"
	"github.com/hilthontt/roombot/infrastructure/jobs"
	"github.com/hilthontt/roombot/infrastructure/metrics"
	"github.com/hilthontt/roombot/infrastructure/persistence/database"
	"github.com/hilthontt/roombot/infrastructure/persistence/migration"
	"github.com/hilthontt/roombot/infrastructure/platform"
	"github.com/hilthontt/roombot/infrastructure/platform/discord"
	"github.com/hilthontt/roombot/infrastructure/platform/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "roombot"

func (c *Container) initInfrastructure() error {
	c.initSentry()

	c.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(c.TracerProvider)
	c.Tracer = otel.Tracer(serviceName)

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewMetrics(c.Registry)
	c.RuntimeGauges = metrics.NewRuntimeGauges(c.Registry)

	c.Logger.Info("Metrics initialized successfully")

	db, err := database.Open(c.Config, c.Logger)
	if err != nil {
		return err
	}
	c.DB = db

	if err := migration.Up1(c.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := c.initEvents(); err != nil {
		return err
	}

	if err := c.initPlatform(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initSentry() {
	if c.Config.Sentry.Dsn == "" {
		c.Logger.Info("Sentry disabled, no DSN configured")
		return
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              c.Config.Sentry.Dsn,
		Debug:            c.Config.Sentry.Debug,
		Environment:      c.Config.Sentry.Environment,
		AttachStacktrace: true,
	})
	if err != nil {
		c.Logger.Error("failed to initialize sentry", zap.Error(err))
		return
	}
	c.Logger.Info("Sentry initialized", zap.String("environment", c.Config.Sentry.Environment))
}

func (c *Container) initEvents() error {
	if !c.Config.Redis.Enabled {
		c.EventPublisher = events.NopPublisher{}
		c.Logger.Info("Room events disabled")
		return nil
	}

	client, err := cache.NewRedisClient(c.ctx, c.Config)
	if err != nil {
		return err
	}
	c.RedisClient = client
	c.EventPublisher = events.NewEventPublisher(client, c.Config.Redis.Channel)

	c.Logger.Info("Room events enabled",
		zap.String("address", c.Config.GetRedisAddress()),
		zap.String("channel", c.Config.Redis.Channel),
	)
	return nil
}

func (c *Container) initPlatform() error {
	var next gateway.Platform

	switch c.Config.Platform.Driver {
	case "discord":
		session, err := discord.NewSession(c.Config.Bot.Token)
		if err != nil {
			return err
		}
		if err := session.Open(); err != nil {
			return fmt.Errorf("failed to open discord session: %w", err)
		}
		c.DiscordSession = session
		next = discord.New(session)
	case "memory":
		c.Logger.Warn("Using in-memory platform, rooms are not visible on Discord")
		next = memory.New()
	default:
		return errors.New("unsupported platform driver: " + c.Config.Platform.Driver)
	}

	c.Platform = platform.NewResilient(next, platform.Options{
		CallTimeout:       c.Config.Platform.CallTimeout,
		MaxAttempts:       c.Config.Platform.MaxAttempts,
		RetryBackoff:      c.Config.Platform.RetryBackoff,
		RequestsPerSecond: c.Config.Platform.RequestsPerSecond,
		Burst:             c.Config.Platform.Burst,
	}, c.Logger, c.Metrics)

	c.Logger.Info("Platform initialized", zap.String("driver", c.Config.Platform.Driver))
	return nil
}

func (c *Container) initBackgroundJobs(ctx context.Context) {
	c.InactivitySweepJob = jobs.NewInactivitySweepJob(c.RoomUC, c.Logger, c.Config.Rooms.SweepInterval)

	go c.InactivitySweepJob.Start(ctx)

	c.Logger.Info("Background jobs initialized and started successfully")
}
