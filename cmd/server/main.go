package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/damon-houk/quickrate/internal/application/service"
	"github.com/damon-houk/quickrate/internal/config"
	"github.com/damon-houk/quickrate/internal/infrastructure/api"
	"github.com/damon-houk/quickrate/internal/infrastructure/handler"
	"github.com/damon-houk/quickrate/internal/infrastructure/logger"
	"github.com/damon-houk/quickrate/internal/infrastructure/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logger.InfoLevel
	}
	log := logger.NewJSONLogger(os.Stdout, level).WithFields(map[string]interface{}{
		"app": "quickrate",
		"env": cfg.Env,
	})
	logger.SetDefaultLogger(log)

	log.Info("Starting quickrate exchange rate service", nil)

	client, err := api.NewKoreaEximClient(api.ClientConfig{
		BaseURL: cfg.Provider.BaseURL,
		AuthKey: cfg.Provider.AuthKey,
		Timeout: cfg.Provider.Timeout,
	}, nil, log)
	if err != nil {
		log.Fatal("Failed to create exchange rate client", map[string]interface{}{
			"error": err.Error(),
		})
	}

	rateService := service.NewRateService(client, log)
	rateHandler := handler.NewRateHandler(rateService, log)
	limiter := middleware.NewLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: handler.NewRouter(rateHandler, limiter, cfg.HTTP.AllowedOrigins, log),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"addr": cfg.HTTP.Addr,
		})
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	case <-ctx.Done():
		log.Info("Shutting down", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
