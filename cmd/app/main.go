package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking/cmd"
	"parking/internal/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := run(configs); err != nil {
		log.Fatal(err)
	}
}

func run(configs cmd.Config) error {
	slogger, syncLogger, err := logger.New(configs.LoggerConfig())
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = syncLogger() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cmd.NewCompositionRoot(ctx, configs, slogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slogger.Error("Failed to close resources", "error", err)
		}
	}()

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	e := app.CreateHTTPHandler()
	addr := fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slogger.InfoContext(gctx, "HTTP server listening", "addr", addr, "store", configs.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
