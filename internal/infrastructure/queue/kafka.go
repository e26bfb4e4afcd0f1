package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// activityEvent is the JSON envelope published for each audit entry.
type activityEvent struct {
	Type       string               `json:"type"`
	IssueID    string               `json:"issueId"`
	Activity   domain.IssueActivity `json:"activity"`
	OccurredAt time.Time            `json:"occurredAt"`
}

// KafkaPublisher forwards issue activity to a Kafka topic. Messages are keyed
// by issue id so one issue's entries land on the same partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      zerolog.Logger
}

// NewKafkaConfig returns the producer settings used by the publisher.
func NewKafkaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	return config
}

// NewKafkaPublisher dials brokers and returns a ready publisher.
func NewKafkaPublisher(brokers []string, topic string, log zerolog.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewKafkaConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, topic, log), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

func (p *KafkaPublisher) Publish(_ context.Context, a domain.IssueActivity) error {
	data, err := json.Marshal(activityEvent{
		Type:       "issue." + string(a.Action),
		IssueID:    a.IssueID,
		Activity:   a,
		OccurredAt: a.At,
	})
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(a.IssueID),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send activity: %w", err)
	}

	p.log.Debug().
		Str("issue_id", a.IssueID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("activity published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
