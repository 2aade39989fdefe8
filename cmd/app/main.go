package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/mechamederoot1/projeto-unipass/docs"
	"github.com/mechamederoot1/projeto-unipass/internal/admin"
	"github.com/mechamederoot1/projeto-unipass/internal/audit"
	"github.com/mechamederoot1/projeto-unipass/internal/checkin"
	"github.com/mechamederoot1/projeto-unipass/internal/config"
	"github.com/mechamederoot1/projeto-unipass/internal/coupon"
	"github.com/mechamederoot1/projeto-unipass/internal/db"
	"github.com/mechamederoot1/projeto-unipass/internal/gamification"
	"github.com/mechamederoot1/projeto-unipass/internal/gym"
	"github.com/mechamederoot1/projeto-unipass/internal/logger"
	"github.com/mechamederoot1/projeto-unipass/internal/maintenance"
	"github.com/mechamederoot1/projeto-unipass/internal/payment"
	"github.com/mechamederoot1/projeto-unipass/internal/review"
	"github.com/mechamederoot1/projeto-unipass/internal/server"
	"github.com/mechamederoot1/projeto-unipass/internal/subscription"
	"github.com/mechamederoot1/projeto-unipass/internal/support"
	"github.com/mechamederoot1/projeto-unipass/internal/user"
)

// @title UniPass API
// @version 1.0
// @description Multi-gym membership platform: directory, check-ins, subscriptions, gamification.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting UniPass application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.Currency)

	auditRepo := audit.NewRepository(database)
	gymRepo := gym.NewRepository(database)

	userService := user.NewService(user.NewRepository(database), cfg.JWTSecret)
	gymService := gym.NewService(gymRepo)
	couponService := coupon.NewService(coupon.NewRepository(database))
	subscriptionService := subscription.NewService(
		subscription.NewRepository(database), gateway, couponService, auditRepo, cfg.Currency)
	gamificationService := gamification.NewService(
		gamification.NewRepository(database),
		gamification.NewLeaderboardCache(redisClient))
	checkinService := checkin.NewService(
		checkin.NewRepository(database), subscriptionService, gamificationService,
		auditRepo, cfg.StaleCheckinWindow)
	reviewService := review.NewService(review.NewRepository(database), gamificationService)
	supportService := support.NewService(support.NewRepository(database), auditRepo)
	adminService := admin.NewService(
		admin.NewRepository(database), gymRepo, checkinService, auditRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := maintenance.New(checkinService, subscriptionService,
		cfg.SweepInterval, cfg.BillingInterval)
	go runner.Start(ctx)

	srv := server.New(cfg, server.Handlers{
		Users:         user.NewHandler(userService),
		Gyms:          gym.NewHandler(gymService),
		Checkins:      checkin.NewHandler(checkinService),
		Subscriptions: subscription.NewHandler(subscriptionService),
		Gamification:  gamification.NewHandler(gamificationService),
		Reviews:       review.NewHandler(reviewService),
		Support:       support.NewHandler(supportService),
		Admin:         admin.NewHandler(adminService),
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
