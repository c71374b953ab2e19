package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/p2p-wager-backend/internal/notification/cache"
	nhttp "github.com/radieske/p2p-wager-backend/internal/notification/http"
	"github.com/radieske/p2p-wager-backend/internal/notification/repo"
	"github.com/radieske/p2p-wager-backend/internal/notification/ws"
	sharedcache "github.com/radieske/p2p-wager-backend/internal/shared/cache"
	"github.com/radieske/p2p-wager-backend/internal/shared/config"
	"github.com/radieske/p2p-wager-backend/internal/shared/db"
	"github.com/radieske/p2p-wager-backend/internal/shared/logger"
	"github.com/radieske/p2p-wager-backend/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres (projeção de notificações, somente leitura)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de feed + Pub/Sub do WebSocket)
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer redisClient.Close()

	// WebSocket hub alimentado pelo Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws.StartRedisSubscriber(ctx, redisClient, hub)

	feedCache := cache.New(redisClient, time.Duration(cfg.FeedCacheTTLSeconds)*time.Second)
	api := &nhttp.API{
		ReadRepo: &repo.ReadRepo{DB: pg},
		Cache:    feedCache,
		WS:       hub.HandleWS,
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("notification-service listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, api.Router()); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
