package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/bootstrap"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/config"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/server"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/tracer"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/database"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	isProd := cfg.App.Environment == "production"

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, isProd)
	defer sysLogger.Sync()

	// 2. Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLogger)

	// 3. Database (optional in memory mode)
	var gormDB *gorm.DB
	if cfg.Database.EvidenceStore == "postgres" {
		db, err := database.Open(cfg.Database.Connection, isProd, database.PoolConfig{
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else {
		sysLogger.Warn("main", "Running with the in-memory evidence store, documents are lost on restart", nil)
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}

	srv := server.New(cfg, container)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// 5. Ingest worker
	g.Go(func() error {
		return container.ConsumerService.Consume(gctx)
	})

	// 6. HTTP server
	g.Go(func() error {
		return srv.Run()
	})

	// 7. Shutdown on signal or first failure
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sysLogger.Info("main", "Shutting down", nil)
		err := srv.Shutdown(shutdownCtx)
		if closeErr := container.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		if traceErr := shutdownTracer(shutdownCtx); traceErr != nil {
			err = errors.Join(err, traceErr)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		sysLogger.Error("main", "Exited with error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
