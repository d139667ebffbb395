package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"math-agent-be/internal/bootstrap"
	"math-agent-be/internal/config"
	"math-agent-be/internal/server"
	"math-agent-be/internal/tracer"
	"math-agent-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{
		Verbose: cfg.App.Environment != "production",
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()

	// 4. Tracer
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, container.Logger)

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.ConsumerService.Consume(ctx); err != nil {
		container.Logger.Error("MAIN", "Failed to start knowledge ingestion consumer", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// 6. Run Server
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			container.Logger.Error("MAIN", "Server stopped", map[string]interface{}{
				"error": err.Error(),
			})
			stop()
		}
	}()

	<-ctx.Done()
	container.Logger.Info("MAIN", "Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("MAIN", "Graceful shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		container.Logger.Warn("MAIN", "Tracer shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
