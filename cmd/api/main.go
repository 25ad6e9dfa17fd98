package main

import (
	"context"
	"log"

	"order-history/internal/core/cache"
	"order-history/internal/core/config"
	"order-history/internal/core/logger"
	"order-history/internal/core/server"
	orderadapter "order-history/internal/features/orders/adapters"
	orderhandler "order-history/internal/features/orders/handler"
	orderpoller "order-history/internal/features/orders/poller"
	orderservice "order-history/internal/features/orders/service"

	"go.uber.org/zap"
)

// @title Order History API
// @version 1.0
// @description Customer order history with status filtering, manual refresh and periodic polling.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx := context.Background()

	// Credential storage
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("failed to create redis adapter", zap.Error(err))
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("redis health check failed", zap.Error(err))
	}
	l.Info("credential storage verified")

	credStore := orderadapter.NewRedisCredentialStore(redisCache)

	// Commerce backend
	commerce := orderadapter.NewCommerceAdapter(cfg.Commerce)
	if err := commerce.HealthCheck(ctx); err != nil {
		l.Fatal("commerce backend health check failed", zap.Error(err))
	}
	l.Info("commerce backend reachable", zap.String("url", cfg.Commerce.APIURL))

	// Order service and refresh scheduler
	orderSvc := orderservice.NewOrderService(commerce, credStore)

	p := orderpoller.New(orderSvc, cfg.Poll.Interval())
	p.Start(ctx)
	defer p.Stop()

	hdl := orderhandler.NewOrderHandler(orderSvc, p)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/orders", hdl.GetOrders)
	srv.App.Post("/orders/refresh", hdl.Refresh)
	srv.App.Put("/orders/filter", hdl.SetFilter)
	srv.App.Post("/orders/:id/cancel", hdl.CancelOrder)

	if err := srv.Run(); err != nil {
		l.Fatal("server failed to start", zap.Error(err))
	}
}
