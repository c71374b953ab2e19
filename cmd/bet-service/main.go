package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/p2p-wager-backend/internal/bet-service/engine"
	bhttp "github.com/radieske/p2p-wager-backend/internal/bet-service/http"
	kpub "github.com/radieske/p2p-wager-backend/internal/bet-service/producer"
	"github.com/radieske/p2p-wager-backend/internal/bet-service/repo"
	"github.com/radieske/p2p-wager-backend/internal/shared/config"
	"github.com/radieske/p2p-wager-backend/internal/shared/db"
	skafka "github.com/radieske/p2p-wager-backend/internal/shared/kafka"
	"github.com/radieske/p2p-wager-backend/internal/shared/logger"
	"github.com/radieske/p2p-wager-backend/internal/shared/metrics"
	"github.com/radieske/p2p-wager-backend/migrations"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Aplica migrações pendentes antes de aceitar tráfego
	if err := migrations.Run(pg); err != nil {
		log.Fatal("migrations", zap.Error(err))
	}

	// Kafka writer (topic bet_activity)
	writer := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetActivity)
	defer writer.Close()

	// deps
	betRepo := repo.NewPostgres(pg)
	friendRepo := repo.NewFriends(pg)
	eng := engine.New(pg)
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicBetActivity)

	// HTTP público
	api := bhttp.NewServer(log, eng, betRepo, friendRepo, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("bet-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
