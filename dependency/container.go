package dependency

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	roomUseCase "github.com/hilthontt/roombot/application/usecases/room"
	"github.com/hilthontt/roombot/domain/gateway"
	"github.com/hilthontt/roombot/domain/repository"
	"github.com/hilthontt/roombot/infrastructure/config"
	"github.com/hilthontt/roombot/infrastructure/events"
	"github.com/hilthontt/roombot/infrastructure/jobs"
	"github.com/hilthontt/roombot/infrastructure/logger"
	"github.com/hilthontt/roombot/infrastructure/metrics"
	"github.com/hilthontt/roombot/presentation/controllers/room"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type Container struct {
	Config *config.Config
	Logger *logger.Logger

	TracerProvider *sdktrace.TracerProvider
	Tracer         trace.Tracer
	Registry       *prometheus.Registry
	Metrics        *metrics.Metrics
	RuntimeGauges  *metrics.RuntimeGauges

	DB             *gorm.DB
	RedisClient    *redis.Client
	EventPublisher events.Publisher
	DiscordSession *discordgo.Session
	Platform       gateway.Platform

	RoomRepo repository.RoomRepository

	RoomUC roomUseCase.RoomUseCase

	RoomController room.RoomController

	InactivitySweepJob *jobs.InactivitySweepJob

	ctx    context.Context
	cancel context.CancelFunc
}

func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	loggerInstance, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	c.Logger = loggerInstance

	c.Logger.Info("Initializing roombot dependencies")

	if err := c.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("error initializing infrastructure: %w", err)
	}

	c.initRepositories()

	if err := c.initUseCases(); err != nil {
		return nil, fmt.Errorf("error initializing use cases: %w", err)
	}

	c.initControllers()

	c.Logger.Info("All dependencies initialized successfully")

	return c, nil
}
