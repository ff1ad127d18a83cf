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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/angeeelvega/payment-app-backend/internal/cache"
	"github.com/angeeelvega/payment-app-backend/internal/config"
	"github.com/angeeelvega/payment-app-backend/internal/gateway"
	h "github.com/angeeelvega/payment-app-backend/internal/http"
	"github.com/angeeelvega/payment-app-backend/internal/publisher"
	"github.com/angeeelvega/payment-app-backend/internal/repository"
	"github.com/angeeelvega/payment-app-backend/internal/service"
	"github.com/angeeelvega/payment-app-backend/pkg/metrics"
)

func main() {
	cfg := config.Load()

	// Database
	cred := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := repository.NewRepository(cred)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cred); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Product cache; the service degrades to the database when Redis is down
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	var productCache cache.ProductCache
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unavailable at %s, running without product cache: %v", cfg.RedisAddr, err)
	} else {
		productCache = cache.NewRedisCache(redisClient)
	}
	defer redisClient.Close()

	// Payment gateway client
	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:      cfg.GatewayBaseURL,
		PublicKey:    cfg.GatewayPublicKey,
		PrivateKey:   cfg.GatewayPrivateKey,
		IntegrityKey: cfg.GatewayIntegrityKey,
	})

	paymentMetrics := metrics.NewPaymentMetrics()

	svc := service.New(repo, gatewayClient, productCache, service.Config{
		BaseFee:     cfg.BaseFee,
		DeliveryFee: cfg.DeliveryFee,
		Currency:    cfg.Currency,
	}, paymentMetrics)

	transactionHandler := h.NewTransactionHandler(svc, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(svc, cfg.RequestTimeout)

	// Outbox publisher
	pollerCtx, stopPoller := context.WithCancel(context.Background())
	poller := publisher.NewOutboxPoller(repo, cfg.KafkaBrokers...)
	go poller.Run(pollerCtx)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", transactionHandler.CreateTransaction)
			r.Get("/{transaction_id}", transactionHandler.GetTransaction)
			r.Post("/{transaction_id}/payment", transactionHandler.ProcessPayment)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{product_id}", productHandler.GetProduct)
			r.Get("/{product_id}/quote", productHandler.QuoteProduct)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second, // payment polling can take up to ~10s
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("payment service starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopPoller()
	if err := poller.Close(); err != nil {
		log.Printf("failed to close kafka writer: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server stopped")
}
