package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"coursepay/internal/bus"
	"coursepay/internal/client"
	"coursepay/internal/config"
	"coursepay/internal/logger"
	"coursepay/internal/reconcile"
	"coursepay/internal/repository"
	"coursepay/internal/server"
	"coursepay/internal/service"
	"coursepay/internal/snapshot"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	zlog, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer zlog.Sync()

	db := client.InitDBClient(cfg.DatabaseURL)
	gateway := client.NewGatewayClient(&cfg.Gateway)

	snapshotTTL := time.Duration(cfg.Checkout.SnapshotTTLMinutes) * time.Minute
	var snapshots snapshot.Store
	if cfg.Redis.Addr != "" {
		snapshots = snapshot.NewRedisStore(client.NewRedisClient(&cfg.Redis), snapshotTTL)
	} else {
		zlog.Warn("no redis configured, checkout snapshots are in-memory")
		snapshots = snapshot.NewMemoryStore(snapshotTTL)
	}

	courseRepo := repository.NewCourseRepository(db)
	if err := courseRepo.Seed(context.Background()); err != nil {
		zlog.Fatal("seed courses", zap.Error(err))
	}
	cartRepo := repository.NewCartRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gatewayEventRepo := repository.NewGatewayEventRepository(db)

	events := bus.New()
	syncEngine := reconcile.NewEngine(service.NewWishlistAdder(wishlistRepo), reconcile.ClearAlways, zlog)

	enrollmentService := service.NewEnrollmentService(db, enrollmentRepo, cartRepo, events, zlog)
	cartService := service.NewCartService(cartRepo, courseRepo, enrollmentRepo, enrollmentService, events)
	wishlistService := service.NewWishlistService(wishlistRepo, syncEngine, events)
	couponService := service.NewCouponService(couponRepo)
	transactionService := service.NewTransactionService(
		db, gateway,
		transactionRepo,
		couponRepo,
		gatewayEventRepo,
		enrollmentRepo,
		enrollmentService,
		cfg.Checkout.RefundRevokesAccess,
		zlog,
	)
	checkoutService := service.NewCheckoutService(
		db, gateway, snapshots,
		cartRepo,
		transactionRepo,
		enrollmentRepo,
		couponService,
		transactionService,
		cfg.BaseURL,
		zlog,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(
		&cfg.Auth,
		cartService,
		wishlistService,
		checkoutService,
		couponService,
		transactionService,
	)

	zlog.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	zlog.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
