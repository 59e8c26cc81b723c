package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nexuscart/internal/cache"
	"nexuscart/internal/config"
	"nexuscart/internal/db"
	"nexuscart/internal/events"
	"nexuscart/internal/httpserver"
	"nexuscart/internal/image"
	cartrepo "nexuscart/internal/repository/cart"
	orderrepo "nexuscart/internal/repository/order"
	productrepo "nexuscart/internal/repository/product"
	tokenrepo "nexuscart/internal/repository/token"
	userrepo "nexuscart/internal/repository/user"
	authsvc "nexuscart/internal/service/auth"
	cartsvc "nexuscart/internal/service/cart"
	catalogsvc "nexuscart/internal/service/catalog"
	ordersvc "nexuscart/internal/service/order"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	rdb := cache.New(cfg.RedisAddr)
	defer rdb.Close()

	uploader, err := image.NewCloudinary(cfg.CloudinaryURL)
	if err != nil {
		logger.Fatalf("init image storage: %v", err)
	}
	if uploader == nil {
		logger.Printf("CLOUDINARY_URL not set, product image uploads disabled")
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, events.TopicOrders, 256)
		producer.Start(ctx)
	} else {
		logger.Printf("KAFKA_BROKERS not set, order events disabled")
	}

	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	authService := authsvc.New(userRepo, tokenRepo)
	catalogService := catalogsvc.New(productRepo, uploader, rdb, logger)
	cartService := cartsvc.New(cartRepo, catalogService, rdb, logger)
	var orderService *ordersvc.Service
	if producer != nil {
		orderService = ordersvc.New(orderRepo, cartRepo, catalogService, producer, rdb, logger)
	} else {
		orderService = ordersvc.New(orderRepo, cartRepo, catalogService, nil, rdb, logger)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		AuthSvc:        authService,
		CatalogSvc:     catalogService,
		CartSvc:        cartService,
		OrderSvc:       orderService,
		Redis:          rdb,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}

	if producer != nil {
		cancel()
		producer.WaitClosed()
	}
}
