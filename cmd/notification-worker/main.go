package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/p2p-wager-backend/internal/notification-worker/consumer"
	"github.com/radieske/p2p-wager-backend/internal/notification-worker/pubsub"
	"github.com/radieske/p2p-wager-backend/internal/notification/cache"
	sharedcache "github.com/radieske/p2p-wager-backend/internal/shared/cache"
	"github.com/radieske/p2p-wager-backend/internal/shared/config"
	skafka "github.com/radieske/p2p-wager-backend/internal/shared/kafka"
	"github.com/radieske/p2p-wager-backend/internal/shared/logger"
	"github.com/radieske/p2p-wager-backend/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis: cache de feed e canal de broadcast pro WebSocket
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	feedCache := cache.New(redisClient, time.Duration(cfg.FeedCacheTTLSeconds)*time.Second)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	// Configura o consumer Kafka (consumer group notification-worker)
	reader := skafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetActivity, "notification-worker")
	defer reader.Close()

	var dlqWriter *kafka.Writer
	if cfg.TopicBetActivityDLQ != "" {
		dlqWriter = skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetActivityDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "notif_worker_messages_consumed_total", Help: "mensagens consumidas"})
	invalidated := prometheus.NewCounter(prometheus.CounterOpts{Name: "notif_worker_feed_invalidations_total", Help: "feeds invalidados"})
	broadcasts := prometheus.NewCounter(prometheus.CounterOpts{Name: "notif_worker_broadcasts_total", Help: "broadcasts publicados"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "notif_worker_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, invalidated, broadcasts, errorsBy)

	proc := &consumer.Processor{
		Log:           log,
		Reader:        reader,
		Cache:         feedCache,
		Broadcaster:   broadcaster,
		Channel:       cfg.RedisPubSubChannel,
		DLQ:           dlqWriter,
		OnConsumed:    func() { consumed.Inc() },
		OnInvalidated: func() { invalidated.Inc() },
		OnBroadcast:   func() { broadcasts.Inc() },
		OnError:       func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("notification-worker started",
		zap.String("consume", cfg.TopicBetActivity),
		zap.String("channel", cfg.RedisPubSubChannel),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("notification-worker stopped")
}
