package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"catalog/internal/domain/model"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const TypeStockChanged = "StockChanged"

// 在庫が変わったときに流すイベント
type StockChanged struct {
	EventID     string               `json:"event_id"`
	Type        string               `json:"type"`
	Kind        model.AdjustmentKind `json:"kind"`
	ProductID   int64                `json:"product_id"`
	Category    string               `json:"category"`
	Quantity    int64                `json:"quantity"`
	StockBefore int64                `json:"stock_before"`
	StockAfter  int64                `json:"stock_after"`
	ActorID     string               `json:"actor_id"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

// 調整履歴からイベントを作る
func NewStockChanged(adj model.InventoryAdjustment, category string, now time.Time) StockChanged {
	return StockChanged{
		EventID:     uuid.NewString(),
		Type:        TypeStockChanged,
		Kind:        adj.Kind,
		ProductID:   adj.ProductID,
		Category:    category,
		Quantity:    adj.Quantity,
		StockBefore: adj.StockBefore,
		StockAfter:  adj.StockAfter,
		ActorID:     adj.ActorID,
		OccurredAt:  now,
	}
}

type Publisher interface {
	PublishStockChanged(ctx context.Context, ev StockChanged) error
	Close() error
}

// kafka.Writerのうち使う部分だけ
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func newKafkaPublisherWithWriter(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

// product_idをキーにして同じ商品のイベント順を保つ
func (p *KafkaPublisher) PublishStockChanged(ctx context.Context, ev StockChanged) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal stock changed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ProductID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write stock changed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// KAFKA_BROKERS未設定のとき
type NopPublisher struct{}

func (NopPublisher) PublishStockChanged(context.Context, StockChanged) error { return nil }
func (NopPublisher) Close() error                                            { return nil }
