package listener

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
)

// StockListener consumes order events and turns each ordered item into a
// Sale movement on the variant's ledger.
type StockListener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewStockListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, log logger.ZapLogger) *StockListener {
	return &StockListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("starting stock listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping stock listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type orderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   orderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type orderPayload struct {
	ID    string             `json:"id"`
	Items []orderItemPayload `json:"items"`
}

type orderItemPayload struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event orderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal order event", zap.Error(err))
		return
	}

	if event.EventType != "OrderCreated" {
		return
	}

	l.logger.Info("processing OrderCreated event", zap.String("order_id", event.Payload.ID))

	for _, item := range event.Payload.Items {
		notes := "order sale"
		_, err := l.uc.AdjustStock(ctx, &dto.AdjustStockInput{
			VariantID:    item.VariantID,
			Quantity:     item.Quantity,
			MovementType: string(model.MovementSale),
			ReferenceID:  &event.Payload.ID,
			Notes:        &notes,
		})
		if err != nil {
			// Insufficient stock here means the order raced ahead of the
			// ledger; surface it loudly, the order service reconciles.
			if apperror.IsKind(err, apperror.KindConflict) {
				l.logger.Warn("order deduction rejected",
					zap.String("order_id", event.Payload.ID),
					zap.String("variant_id", item.VariantID),
					zap.Error(err),
				)
				continue
			}
			l.logger.Error("failed to deduct stock for order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("variant_id", item.VariantID),
				zap.Error(err),
			)
		}
	}
}
