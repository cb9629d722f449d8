package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"foodcourt/cmd"
	"foodcourt/internal/adapters/out/postgres/assignmentrepo"
	"foodcourt/internal/adapters/out/postgres/orderrepo"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB, err := gorm.Open(gorm_postgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err = gormDB.AutoMigrate(&orderrepo.OrderDTO{}, &assignmentrepo.AssignmentDTO{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	app := cmd.NewCompositionRoot(configs, gormDB, logger)
	defer app.Shutdown()

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	// A missing .env is fine in containers where everything comes from the
	// real environment.
	_ = godotenv.Load(".env")

	return cmd.Config{
		HTTPPort:   envOr("HTTP_PORT", "8080"),
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     envOr("DB_USER", "postgres"),
		DBPassword: envOr("DB_PASSWORD", "postgres"),
		DBName:     envOr("DB_NAME", "foodcourt"),
		DBSslMode:  envOr("DB_SSLMODE", "disable"),

		EphemeralBackend: envOr("EPHEMERAL_BACKEND", "memory"),
		RedisAddr:        envOr("REDIS_ADDR", "localhost:6379"),

		PresenceTTLSeconds: envIntOr("PRESENCE_TTL_SECONDS", 30),
		MaxIdleSeconds:     envIntOr("WS_MAX_IDLE_SECONDS", 90),
		OutboxCapacity:     envIntOr("WS_OUTBOX_CAPACITY", 64),

		BaseFeeCents:   int64(envIntOr("DELIVERY_BASE_FEE_CENTS", 500)),
		PerKmRateCents: int64(envIntOr("DELIVERY_PER_KM_CENTS", 200)),

		WebhookSecretIfood:    os.Getenv("WEBHOOK_SECRET_IFOOD"),
		WebhookSecretRappi:    os.Getenv("WEBHOOK_SECRET_RAPPI"),
		WebhookSecretUberEats: os.Getenv("WEBHOOK_SECRET_UBEREATS"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %q", key, raw)
	}
	return value
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	e.HideBanner = true
	app.CreateHTTPServer().RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil {
			e.Logger.Info("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
