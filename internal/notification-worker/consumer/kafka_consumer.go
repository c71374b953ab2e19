package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/p2p-wager-backend/internal/notification-worker/pubsub"
	"github.com/radieske/p2p-wager-backend/pkg/contracts/events"
)

// FeedCache descarta o feed montado de um usuário
type FeedCache interface {
	InvalidateFeed(ctx context.Context, userID string) error
}

// Broadcaster publica a atualização no canal Redis Pub/Sub do WebSocket
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome eventos de atividade de apostas do Kafka, invalida o cache
// de feed dos usuários afetados e publica a atualização pro WebSocket.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log         *zap.Logger
	Reader      *kafka.Reader
	Cache       FeedCache
	Broadcaster Broadcaster
	Channel     string
	DLQ         *kafka.Writer // opcional; mensagens indecifráveis vão pra cá

	OnConsumed    func()       // métricas (counter++)
	OnInvalidated func()       // métricas
	OnBroadcast   func()       // métricas
	OnError       func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		p.Process(ctx, m.Value)
	}
}

// Process trata um evento de atividade: invalida o feed de cada usuário
// afetado e publica a atualização no canal de broadcast
func (p *Processor) Process(ctx context.Context, value []byte) {
	var ev events.BetActivity
	if err := json.Unmarshal(value, &ev); err != nil {
		p.Log.Warn("invalid message", zap.Error(err))
		if p.OnError != nil {
			p.OnError("decode")
		}
		p.toDLQ(ctx, value)
		return
	}

	for _, userID := range ev.AffectedUserIDs {
		if userID == "" {
			continue
		}

		if err := p.Cache.InvalidateFeed(ctx, userID); err != nil {
			p.Log.Warn("feed invalidation failed", zap.String("userId", userID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("invalidate")
			}
			// não bloqueia o broadcast se falhar a invalidação
		} else if p.OnInvalidated != nil {
			p.OnInvalidated() // callback de métrica: cache invalidado
		}

		msg := pubsub.WSUpdate{UserID: userID, Payload: ev}
		b, _ := json.Marshal(msg)
		if err := p.Broadcaster.Publish(ctx, p.Channel, b); err != nil {
			p.Log.Warn("ws broadcast publish failed", zap.String("userId", userID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("broadcast")
			}
			continue
		}
		if p.OnBroadcast != nil {
			p.OnBroadcast() // callback de métrica: broadcast publicado
		}
	}
}

// toDLQ manda a mensagem crua pra fila morta, quando configurada
func (p *Processor) toDLQ(ctx context.Context, value []byte) {
	if p.DLQ == nil {
		return
	}
	if err := p.DLQ.WriteMessages(ctx, kafka.Message{Value: value, Time: time.Now()}); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("dlq")
		}
	}
}
