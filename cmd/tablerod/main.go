package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/adapters/assets"
	httpadapter "github.com/MateoFB/TarotPoetico-Tablero/internal/adapters/http"
	wsadapter "github.com/MateoFB/TarotPoetico-Tablero/internal/adapters/ws"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/app"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/config"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/domain"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/session"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	resolver, err := assets.NewRegistry()
	if err != nil {
		logger.Error("failed to load style registry", "error", err)
		os.Exit(1)
	}
	if !resolver.HasStyle(domain.Style(cfg.DefaultStyle)) {
		logger.Error("default style not registered", "style", cfg.DefaultStyle)
		os.Exit(1)
	}
	if _, err := domain.ParseFilter(cfg.DefaultFilter); err != nil {
		logger.Error("invalid default filter", "filter", cfg.DefaultFilter, "error", err)
		os.Exit(1)
	}

	manager := session.NewManager(
		resolver,
		func() domain.RNG { return stdRNG{} },
		cfg.SettleDelay,
		cfg.ShuffleAnim,
		logger,
	)

	svc := app.NewTableService(manager, resolver, cfg.PublicBaseURL, domain.Style(cfg.DefaultStyle))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))

	httpadapter.NewHandler(svc).Register(e)
	e.GET("/v1/tables/:id/ws", wsadapter.NewHandler(manager, logger).Serve)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	manager.Shutdown()
}
