package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/shopcore/retail-backend/internal/config"
	"github.com/shopcore/retail-backend/internal/es"
	"github.com/shopcore/retail-backend/internal/events"
	"github.com/shopcore/retail-backend/internal/handlers"
	"github.com/shopcore/retail-backend/internal/logging"
	loggingmw "github.com/shopcore/retail-backend/internal/middleware/logging"
	httpserver "github.com/shopcore/retail-backend/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	jwtSecret := []byte(cfg.JWTSecret)
	refreshSecret := []byte(cfg.RefreshSecret)

	var producer *events.Producer
	if cfg.KafkaAddress != "" {
		producer = events.NewProducer([]string{cfg.KafkaAddress})
	}

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:                   db,
		JWTSecret:            jwtSecret,
		AuthHandler:          &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: producer},
		ProductHandler:       &handlers.ProductHandler{DB: db, Producer: producer, ES: esClient},
		SupplierHandler:      &handlers.SupplierHandler{DB: db},
		SupplierOrderHandler: &handlers.SupplierOrderHandler{DB: db, Producer: producer},
		CustomerOrderHandler: &handlers.CustomerOrderHandler{DB: db, Producer: producer},
		PaymentHandler:       &handlers.PaymentHandler{DB: db, Producer: producer},
		CustomerHandler:      &handlers.CustomerHandler{DB: db},
		AdminHandler:         &handlers.AdminHandler{DB: db},
		SearchHandler:        &handlers.SearchHandler{ES: esClient, Index: es.ProductIndex},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
