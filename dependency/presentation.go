package dependency

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/hilthontt/roombot/domain/model"
	"github.com/hilthontt/roombot/infrastructure/metrics"
	"github.com/hilthontt/roombot/infrastructure/persistence/database"
	"github.com/hilthontt/roombot/presentation/controllers/room"
	"github.com/hilthontt/roombot/presentation/middlewares"
	"github.com/hilthontt/roombot/presentation/routes"
	"go.uber.org/zap"
)

func (c *Container) initControllers() {
	c.RoomController = room.NewRoomController(c.RoomUC)

	c.Logger.Info("Controllers initialized successfully")
}

// Start restores persisted rooms and then starts the sweeper. It must run before the router
// serves traffic.
func (c *Container) Start() error {
	rooms, err := c.RoomUC.LoadAll(c.ctx)
	if err != nil && !errors.Is(err, model.ErrMalformedRecord) {
		return err
	}
	if err != nil {
		c.Logger.Warn("Some rooms could not be restored", zap.Error(err))
	}
	c.Logger.Info("Rooms restored", zap.Int("count", len(rooms)))

	c.initBackgroundJobs(c.ctx)
	return nil
}

func (c *Container) SetupRouter() *gin.Engine {
	switch c.Config.Server.RunMode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	binding.Validator = new(middlewares.DefaultValidator)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         5 * time.Second,
	}))
	router.Use(middlewares.GinLogger(c.Logger))
	router.Use(middlewares.ReportErrors())

	router.GET("/health", c.healthCheckHandler)

	c.registerObservabilityRoutes(router)

	c.registerAPIRoutes(router)

	c.Logger.Info("Router configured successfully")

	return router
}

func (c *Container) registerAPIRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		routes.RoomRoutes(v1, c.RoomController)
	}
}

func (c *Container) healthCheckHandler(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status": "healthy",
		"rooms":  len(c.RoomUC.Rooms()),
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (c *Container) registerObservabilityRoutes(router *gin.Engine) {
	metricsGroup := router.Group("/observability")
	{
		metrics.GetHandler(metricsGroup, c.Registry, c.RuntimeGauges)
	}
}

func (c *Container) Shutdown() error {
	c.Logger.Info("Shutting down dependencies...")

	if c.InactivitySweepJob != nil {
		c.InactivitySweepJob.Stop()
	}

	if c.cancel != nil {
		c.cancel()
	}

	var errs []error

	if c.TracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.TracerProvider.Shutdown(ctx); err != nil {
			c.Logger.Error("failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.DiscordSession != nil {
		if err := c.DiscordSession.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.DB != nil {
		if err := database.Close(c.DB); err != nil {
			errs = append(errs, err)
		}
	}

	sentry.Flush(2 * time.Second)

	c.Logger.Info("Dependencies shut down successfully")

	if err := c.Logger.Sync(); err != nil {
		c.Logger.Debug("failed to sync logger", zap.Error(err))
	}

	return errors.Join(errs...)
}

// Context is cancelled by Shutdown.
func (c *Container) Context() context.Context {
	return c.ctx
}
