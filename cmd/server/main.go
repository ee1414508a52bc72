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

	"ridepool/config"
	"ridepool/internal/database"
	"ridepool/internal/router"
	"ridepool/pkg/checkout"
	"ridepool/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("[MAIN] database connection failed: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("[MAIN] migration failed: %v", err)
	}

	var provider checkout.Provider
	if cfg.Checkout.BaseURL != "" {
		provider = checkout.NewHTTPProvider(cfg.Checkout.BaseURL, cfg.Checkout.APIKey)
	} else {
		log.Printf("[MAIN] no checkout provider configured, using in-memory stub")
		provider = checkout.NewStubProvider()
	}

	var cloud cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		cloud, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("[MAIN] cloudinary setup failed: %v", err)
		}
	} else {
		log.Printf("[MAIN] cloudinary not configured, media uploads disabled")
		cloud = cloudinary.Disabled()
	}

	engine := router.Setup(cfg, db, provider, cloud)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("[MAIN] listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[MAIN] server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("[MAIN] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[MAIN] forced shutdown: %v", err)
	}
	log.Printf("[MAIN] stopped")
}
