package events

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes events to a Kafka topic.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaSink{writer: w}
}

func (s *KafkaSink) Publish(ctx context.Context, message []byte) error {
	return s.writer.WriteMessages(ctx, kafka.Message{Value: message})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
