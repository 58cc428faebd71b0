package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/search"
)

const productIndex = "catalog_products"

const productMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"sku": { "type": "keyword" },
			"status": { "type": "keyword" },
			"base_price": { "type": "double" },
			"group_id": { "type": "keyword" },
			"created_at": { "type": "date" }
		}
	}
}`

// Dispatcher drains the pending domain events a workflow hands it after a
// successful save: each event is published to the catalog topic, and the
// search index is kept in sync with the product document. Publish and
// index failures are logged, never propagated into the workflow result.
type Dispatcher struct {
	producer *broker.KafkaProducer
	es       *search.Client
	logger   logger.ZapLogger
}

func NewDispatcher(producer *broker.KafkaProducer, es *search.Client, log logger.ZapLogger) *Dispatcher {
	return &Dispatcher{producer: producer, es: es, logger: log}
}

type envelope struct {
	EventID     string      `json:"event_id"`
	EventType   string      `json:"event_type"`
	AggregateID string      `json:"aggregate_id"`
	Payload     interface{} `json:"payload,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

func (d *Dispatcher) Dispatch(ctx context.Context, events []model.Event) {
	if d == nil || d.producer == nil {
		return
	}
	for _, ev := range events {
		data, err := json.Marshal(envelope{
			EventID:     uuid.New().String(),
			EventType:   ev.Name,
			AggregateID: ev.AggregateID,
			Payload:     ev.Payload,
			Timestamp:   ev.OccurredAt,
		})
		if err != nil {
			d.logger.Error("failed to marshal domain event", zap.String("event", ev.Name), zap.Error(err))
			continue
		}
		if err := d.producer.Publish(ctx, []byte(ev.AggregateID), data); err != nil {
			d.logger.Error("failed to publish domain event",
				zap.String("event", ev.Name),
				zap.String("aggregate_id", ev.AggregateID),
				zap.Error(err),
			)
		}
	}
}

// SyncProduct indexes the product document for search. Index creation is
// attempted lazily; in production the migration pipeline owns it.
func (d *Dispatcher) SyncProduct(ctx context.Context, p *model.Product) {
	if d == nil || d.es == nil {
		return
	}
	_ = d.es.CreateIndex(ctx, productIndex, productMapping)

	if err := d.es.Index(ctx, productIndex, p.ID, p); err != nil {
		d.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (d *Dispatcher) RemoveProduct(ctx context.Context, productID string) {
	if d == nil || d.es == nil {
		return
	}
	if err := d.es.Delete(ctx, productIndex, productID); err != nil {
		d.logger.Error("failed to remove product from index", zap.String("product_id", productID), zap.Error(err))
	}
}
