package server

import (
	"clearpath-signals/config"
	"clearpath-signals/constant"
	"clearpath-signals/handler"
	"clearpath-signals/pkg/auth"
	"clearpath-signals/pkg/broadcast"
	"clearpath-signals/pkg/cvclient"
	"clearpath-signals/pkg/rabbitmq"
	"clearpath-signals/pkg/storage"
	"clearpath-signals/pkg/throttle"
	"clearpath-signals/repository"
	"clearpath-signals/service"
	"context"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	repo := repository.NewRepo(cfg.DB)
	if err := repo.Migrate(ctx); err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to migrate database")
	}

	if err := storage.EnsureBucket(ctx, cfg.Storage, cfg.MinIOBucket); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("bucket", cfg.MinIOBucket).Msg("EnsureBucket")
	}

	hub := broadcast.NewHub()
	limiter := throttle.New(cfg.Throttle.Interval, cfg.Throttle.TTL, cfg.Throttle.Capacity)

	ingestService := service.NewIngestService(repo, limiter, hub)
	uploadService := service.NewUploadService(
		repo,
		storage.NewMinioStore(cfg.Storage, cfg.MinIOBucket),
		cvclient.New(cfg.CVService.URL, cfg.CVService.Timeout),
		ingestService,
		cfg.Upload.MaxFileSize,
		cfg.Upload.URLExpiry,
	)
	services := handler.Services{
		Ingest:     ingestService,
		Upload:     uploadService,
		Simulation: service.NewSimulationService(repo),
		Logs:       service.NewLogService(repo),
		Auth:       service.NewAuthService(repo, auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)),
	}

	if cfg.Queue.Enabled {
		startQueueConsumer(ctx, cfg, handler.ServiceDependencies{IngestService: ingestService})
	}

	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(*zerolog.Ctx(ctx)))
	addHealth(r, hub)
	handler.New(services, hub, cfg.Upload.MaxFileSize).Routes(r)

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Str("port", cfg.Server.HttpPort).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	uploadService.Drain()
	ingestService.Drain()
	hub.Close()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

// startQueueConsumer consumes CV service messages from RabbitMQ alongside the HTTP callbacks.
func startQueueConsumer(ctx context.Context, cfg *config.Config, deps handler.ServiceDependencies) {
	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
		return
	}

	consumer := rabbitmq.NewConsumer[handler.ServiceDependencies](
		conn,
		rabbitmq.TopologyFromConfig(cfg.Queue, handler.QueueRoutingKeys...),
		cfg.Server.Workers,
		handler.QueueHandler,
		rabbitmq.WithRetryable(handler.Retryable),
	)
	go func() {
		if err := consumer.Consume(ctx, deps); err != nil && !errors.Is(err, context.Canceled) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("ingest consumer error")
		}
	}()
}

func addHealth(r *gin.Engine, hub *broadcast.Hub) {
	r.GET("/health", func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(200, gin.H{
			"status":      "ok",
			"subscribers": len(stats.Subscribers),
			"published":   stats.TotalPublished,
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
