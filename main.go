package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"schoolhub_backend/internals/configs"
	database "schoolhub_backend/internals/databases"
	schoolScheduler "schoolhub_backend/internals/features/schools/schools/scheduler"
	authScheduler "schoolhub_backend/internals/features/users/auth/scheduler"
	helper "schoolhub_backend/internals/helpers"
	middlewares "schoolhub_backend/internals/middlewares"
	loggerMiddleware "schoolhub_backend/internals/middlewares/logger"
	routes "schoolhub_backend/internals/route"
	"schoolhub_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          helper.ErrorHandler,
		DisableStartupMessage: true,
		BodyLimit:             6 * 1024 * 1024, // logo uploads are capped at 5 MB
		ProxyHeader:           fiber.HeaderXForwardedFor,
	})

	metrics, err := middlewares.NewMetrics()
	if err != nil {
		log.Fatalf("metrics init: %v", err)
	}

	// order matters: recover first, metrics see the final status
	app.Use(middlewares.RecoveryMiddleware())
	app.Use(middlewares.CorsMiddleware())
	app.Use(middlewares.RequestContext(configs.GetEnvDuration("REQUEST_TIMEOUT", 5*time.Second)))
	app.Use(loggerMiddleware.LoggerMiddleware())
	app.Use(metrics.Middleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(middlewares.GlobalRateLimiter())

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	if configs.GetEnvBool("DB_AUTO_MIGRATE", false) {
		if err := database.AutoMigrate(database.DB); err != nil {
			log.Fatalf("auto-migrate: %v", err)
		}
	}
	if configs.GetEnvBool("SEED_DEMO", false) {
		seeds.RunAllSeeds(context.Background(), database.DB)
	}

	// ⏱ schedulers after the DB is ready
	trialCron := schoolScheduler.StartTrialSweeper(database.DB)
	blacklistCron := authScheduler.StartBlacklistCleanupScheduler(database.DB)

	routes.BaseRoutes(app, database.DB, metrics)
	routes.SetupRoutes(app, database.DB)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop crons, drain HTTP, close the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")

	<-trialCron.Stop().Done()
	<-blacklistCron.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
