package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"pahla_backend/internals/bootstrap"
	"pahla_backend/internals/configs"
	database "pahla_backend/internals/databases"
	"pahla_backend/internals/features/nominations/reminders"
	authScheduler "pahla_backend/internals/features/users/auth/scheduler"
	helper "pahla_backend/internals/helpers"
	"pahla_backend/internals/logger"
	middlewares "pahla_backend/internals/middlewares"
	routes "pahla_backend/internals/route"
)

func main() {
	configs.LoadEnv()
	cfg := configs.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.With("main")

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		BodyLimit:               25 * 1024 * 1024,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return helper.FromFiberError(c, fe)
			}
			log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			return helper.JsonError(c, fiber.StatusInternalServerError, "")
		},
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, cfg)

	// DB connect + pool + warm-up
	database.ConnectDB(cfg.DB)
	database.TunePool()
	database.WarmUpQueries()
	if configs.GetEnvBool("DB_AUTO_MIGRATE", true) {
		if err := database.Migrate(database.DB); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
	}

	infra, err := bootstrap.NewInfra(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("infrastructure")
	}
	svcs := bootstrap.Build(database.DB, cfg, infra)

	// scheduler after the DB is ready
	sched, err := reminders.Schedule(cfg.ReminderCron, svcs.Reminders, bootstrap.ReminderTimeout)
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.ReminderCron).Msg("invalid REMINDER_CRON")
	}
	if sched != nil {
		sched.Start()
	}
	cleanup, err := authScheduler.StartRevokedTokenCleanup(svcs.Auth, configs.GetEnv("TOKEN_CLEANUP_CRON", "@daily"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid TOKEN_CLEANUP_CRON")
	}

	routes.SetupRoutes(app, database.DB, cfg.JWTSecret, svcs)

	app.Server().ReadTimeout = 30 * time.Second
	app.Server().WriteTimeout = 60 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown: stop the scheduler, drain requests, close the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	if sched != nil {
		<-sched.Stop().Done()
	}
	<-cleanup.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	database.Close()
}
