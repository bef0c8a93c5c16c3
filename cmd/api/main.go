package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/insomnia-fuel/cafe-api/pkg/auth"
	"github.com/insomnia-fuel/cafe-api/pkg/checkout"
	"github.com/insomnia-fuel/cafe-api/pkg/config"
	"github.com/insomnia-fuel/cafe-api/pkg/logger"
	"github.com/insomnia-fuel/cafe-api/pkg/mailer"
	"github.com/insomnia-fuel/cafe-api/pkg/media"
	"github.com/insomnia-fuel/cafe-api/pkg/payment"
	"github.com/insomnia-fuel/cafe-api/pkg/repository"
	"github.com/insomnia-fuel/cafe-api/pkg/server"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting cafe API",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	// MongoDB
	mongo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongo.Close(ctx); err != nil {
			log.Error("Failed to close MongoDB client", zap.Error(err))
		}
	}()

	ctx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := mongo.Ping(ctx); err != nil {
		cancelPing()
		log.Fatal("MongoDB ping failed", zap.Error(err))
	}
	if err := mongo.EnsureIndexes(ctx); err != nil {
		cancelPing()
		log.Fatal("Failed to ensure indexes", zap.Error(err))
	}
	cancelPing()
	log.Info("MongoDB connected, indexes ensured")

	// Redis (optional; the menu cache degrades to direct reads without it)
	var cache server.MenuCache
	if cfg.Redis.Addr != "" {
		redisRepo := repository.NewRedisRepository(&cfg.Redis)
		defer redisRepo.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisRepo.Ping(pingCtx); err != nil {
			log.Warn("Redis connection failed, menu cache disabled", zap.Error(err))
		} else {
			log.Info("Redis connected")
			cache = redisRepo
		}
		cancel()
	}

	// Repositories
	orders := repository.NewOrderRepository(mongo)
	carts := repository.NewCartRepository(mongo)
	users := repository.NewUserRepository(mongo)
	menu := repository.NewMenuRepository(mongo)
	contact := repository.NewContactRepository(mongo)
	gallery := repository.NewGalleryRepository(mongo)

	// External collaborators
	gateway := payment.NewStripeGateway(&cfg.Stripe)
	notifier := mailer.New(&cfg.SMTP, cfg.Auth.AdminEmails, log)
	cloudinary := media.NewCloudinary(&cfg.Cloudinary)
	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)

	coordinator := checkout.NewCoordinator(
		gateway, orders, carts, users, notifier, log,
		cfg.Stripe.Currency, cfg.Server.ClientURL)

	srv := server.New(cfg, log, server.Deps{
		Verifier: verifier,
		Checkout: coordinator,
		Orders:   orders,
		Carts:    carts,
		Users:    users,
		Menu:     menu,
		Contact:  contact,
		Gallery:  gallery,
		Cache:    cache,
		Media:    cloudinary,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Received shutdown signal")
	case err := <-serverErr:
		log.Fatal("Server error", zap.Error(err))
	}

	log.Info("Service stopped")
}
