package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nabilh59/smart-meter/internal/audit"
	"github.com/nabilh59/smart-meter/internal/billing"
	"github.com/nabilh59/smart-meter/internal/config"
	"github.com/nabilh59/smart-meter/internal/grid"
	"github.com/nabilh59/smart-meter/internal/hub"
	"github.com/nabilh59/smart-meter/internal/meter"
	"github.com/nabilh59/smart-meter/internal/server"
)

func main() {
	cfg := config.Load()

	auditLog, err := audit.NewFileLog(cfg.AuditLogPath, func(err error) {
		log.Printf("audit log write failed: %v", err)
	})
	if err != nil {
		log.Fatalf("Failed to open audit log: %v", err)
	}

	engine, err := billing.NewEngine(billing.Config{
		PricePerKwh: cfg.PricePerKwh,
		InitialBill: cfg.InitialBill,
		MaxReading:  cfg.MaxReading,
	})
	if err != nil {
		log.Fatalf("Invalid billing configuration: %v", err)
	}

	h := hub.NewHub(meter.NewStore(), engine, grid.NewState(), auditLog)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.New(h, cfg.Debug).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Smart meter server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
