package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"gatekeeper-backend/internal/admin"
	"gatekeeper-backend/internal/auth"
	"gatekeeper-backend/internal/config"
	"gatekeeper-backend/internal/engine"
	"gatekeeper-backend/internal/instrument"
	"gatekeeper-backend/internal/metadata"
	"gatekeeper-backend/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, db: %s:%d/%s)", cfg.Server.Port, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	// 2. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Bootstrap system tables
	if err := db.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap system tables: %v", err)
	}
	log.Println("System tables ready")

	// 4. Create registry, load rule sets, precompile conditions
	reg := metadata.NewRegistry()
	if err := metadata.LoadAll(ctx, db.Pool, reg, engine.CompileRuleSets); err != nil {
		log.Printf("WARN: Failed to load rule sets: %v", err)
	}

	// 5. Instrumentation (buffered event writer)
	var inst instrument.Instrumenter = &instrument.NoopInstrumenter{}
	if cfg.Instrumentation.Enabled {
		buffer := instrument.NewEventBuffer(db.Pool, cfg.Instrumentation.BufferSize, cfg.Instrumentation.FlushIntervalMs)
		defer buffer.Stop()
		inst = instrument.NewInstrumenter(buffer)
		log.Println("Instrumentation enabled")
	}

	// 6. Build the validation engine
	var opts []engine.Option
	if cfg.Uniqueness.Enabled {
		opts = append(opts, engine.WithUniquenessChecker(
			store.NewSQLUniquenessChecker(db.Pool, cfg.Uniqueness.Table)))
		log.Printf("Uniqueness checker enabled (table: %s)", cfg.Uniqueness.Table)
	}
	eng := engine.New(opts...)

	// 7. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(instrument.Middleware(inst))

	// 8. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 9. Auth routes (before middleware — no auth required)
	authHandler := auth.NewAuthHandler(db, cfg.JWTSecret)
	auth.RegisterAuthRoutes(app, authHandler)

	// 10. Auth middleware for all protected routes
	authMW := auth.AuthMiddleware(cfg.JWTSecret)
	adminMW := auth.RequireAdmin()

	// 11. Register admin routes (auth + admin required)
	adminHandler := admin.NewHandler(db, reg)
	admin.RegisterAdminRoutes(app, adminHandler, authMW, adminMW)

	// 12. Register validation routes (auth required)
	engineHandler := engine.NewHandler(eng, reg)
	engine.RegisterValidationRoutes(app, engineHandler, authMW)

	// 13. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *engine.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(engine.ErrorResponse{
		Error: &engine.AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
