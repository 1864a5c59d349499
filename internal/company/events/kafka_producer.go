package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	e "github.com/gartstein/olt/internal/company/errors"
	"github.com/gartstein/olt/internal/company/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	SettingsUpdated EventType = "settings_updated"
)

// Event is published for every settings mutation.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       EventType       `json:"type"`
	Namespace  string          `json:"namespace"`
	State      models.AppState `json:"state"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter
	events    chan Event
	namespace string
	logger    *zap.Logger
	closeChan chan struct{}
}

func NewProducer(brokers []string, logger *zap.Logger, topic, namespace string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%w: no Kafka brokers configured", e.ErrInvalidInput)
	}

	// Create topic if it doesn't exist
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}
	p := newProducer(newWriter(brokers, topic), logger, namespace)

	go p.eventLoop()
	return p, nil
}

// newWriter hashes message keys so that every event of a namespace goes to
// the same partition regardless of the topic's partition count.
func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
		Topic:    topic,
	}
}

func newProducer(writer KafkaWriter, logger *zap.Logger, namespace string) *Producer {
	return &Producer{
		writer:    writer,
		events:    make(chan Event, 100),
		namespace: namespace,
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
	}
}

// Produce queues an event without blocking. Events are published in the
// order Produce is called, which for concurrent setters of the settings
// store is not necessarily the order their mutations were applied. It has the shape of a settings
// store listener, so it can be passed to Store.Subscribe directly.
func (p *Producer) Produce(state models.AppState) {
	event := Event{
		ID:         uuid.New(),
		Type:       SettingsUpdated,
		Namespace:  p.namespace,
		State:      state,
		OccurredAt: time.Now().UTC(),
	}
	select {
	case p.events <- event:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID.String()),
		)
	}
}

func (p *Producer) eventLoop() {
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return
	}
	// Keyed by namespace; the Hash balancer keeps one namespace on one partition.
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Namespace),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID.String()),
		)
		return
	}
}

func (p *Producer) Close() {
	close(p.closeChan)
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}
