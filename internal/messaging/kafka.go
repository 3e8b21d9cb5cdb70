package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/insertapp/insert/internal/config"
)

const (
	ReviewEventsTopic    = "review-events"
	ReviewEventsDLQTopic = "review-events-dlq"
	ConsumerGroup        = "points-processors"
)

// ReviewEvent is published whenever a review is accepted. The points
// processor consumes it to award points and recompute the user's level.
type ReviewEvent struct {
	ReviewID   uuid.UUID `json:"review_id"`
	UserID     uuid.UUID `json:"user_id"`
	PlaceName  string    `json:"place_name"`
	Rating     int       `json:"rating"`
	HasContent bool      `json:"has_content"`
	Timestamp  time.Time `json:"timestamp"`
	RetryCount int       `json:"retry_count"`
}

type kafkaProducer struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

type kafkaConsumer struct {
	reader *kafka.Reader
	logger *logrus.Logger
}

type MessageBus struct {
	producer  *kafkaProducer
	consumer  *kafkaConsumer
	dlqWriter *kafka.Writer
	logger    *logrus.Logger
}

func NewMessageBus(cfg *config.Config, logger *logrus.Logger) (*MessageBus, error) {
	topic := cfg.Kafka.Topics.ReviewEvents
	if topic == "" {
		topic = ReviewEventsTopic
	}

	producer := &kafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{}, // Key by user id so one user's events stay ordered
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		logger: logger,
	}

	consumer := &kafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          topic,
			GroupID:        ConsumerGroup,
			MinBytes:       10e3,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		}),
		logger: logger,
	}

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        ReviewEventsDLQTopic,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &MessageBus{
		producer:  producer,
		consumer:  consumer,
		dlqWriter: dlqWriter,
		logger:    logger,
	}, nil
}

func (mb *MessageBus) PublishReviewEvent(event ReviewEvent) error {
	event.Timestamp = time.Now()

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(event.UserID.String()),
		Value: messageBytes,
		Headers: []kafka.Header{
			{Key: "review_id", Value: []byte(event.ReviewID.String())},
			{Key: "user_id", Value: []byte(event.UserID.String())},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mb.producer.writer.WriteMessages(ctx, kafkaMessage); err != nil {
		mb.logger.WithError(err).WithField("review_id", event.ReviewID).Error("Failed to publish review event")
		return fmt.Errorf("failed to write review event to Kafka: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"review_id": event.ReviewID,
		"user_id":   event.UserID,
	}).Info("Review event published")

	return nil
}

func (mb *MessageBus) ConsumeReviewEvents(ctx context.Context, handler func(context.Context, ReviewEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := mb.consumer.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				mb.logger.WithError(err).Error("Failed to read review event from Kafka")
				continue
			}

			var event ReviewEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				mb.logger.WithError(err).Error("Failed to unmarshal review event")
				continue
			}

			if err := mb.processWithRetry(ctx, event, handler); err != nil {
				mb.logger.WithError(err).WithField("review_id", event.ReviewID).Error("Failed to process review event after retries")

				if dlqErr := mb.sendToDLQ(ctx, event, err); dlqErr != nil {
					mb.logger.WithError(dlqErr).Error("Failed to send review event to DLQ")
				}
			}
		}
	}
}

func (mb *MessageBus) processWithRetry(ctx context.Context, event ReviewEvent, handler func(context.Context, ReviewEvent) error) error {
	maxRetries := 3
	baseDelay := time.Second

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<uint(attempt-1))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		event.RetryCount = attempt
		if err := handler(ctx, event); err != nil {
			mb.logger.WithError(err).WithFields(logrus.Fields{
				"review_id": event.ReviewID,
				"attempt":   attempt,
			}).Warn("Review event processing failed")

			if attempt == maxRetries {
				return fmt.Errorf("max retries exceeded: %w", err)
			}
			continue
		}

		return nil
	}

	return fmt.Errorf("unexpected retry loop exit")
}

func (mb *MessageBus) sendToDLQ(ctx context.Context, event ReviewEvent, originalError error) error {
	dlqMessage := map[string]interface{}{
		"original_event": event,
		"error":          originalError.Error(),
		"dlq_timestamp":  time.Now(),
	}

	dlqBytes, err := json.Marshal(dlqMessage)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	kafkaMessage := kafka.Message{
		Key:   []byte(event.ReviewID.String()),
		Value: dlqBytes,
		Headers: []kafka.Header{
			{Key: "review_id", Value: []byte(event.ReviewID.String())},
			{Key: "original_topic", Value: []byte(ReviewEventsTopic)},
			{Key: "error", Value: []byte(originalError.Error())},
		},
	}

	if err := mb.dlqWriter.WriteMessages(ctx, kafkaMessage); err != nil {
		return fmt.Errorf("failed to write message to DLQ: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"review_id": event.ReviewID,
		"error":     originalError.Error(),
	}).Warn("Review event sent to DLQ")

	return nil
}

func (mb *MessageBus) Close() error {
	if err := mb.producer.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	if err := mb.consumer.reader.Close(); err != nil {
		return fmt.Errorf("failed to close consumer: %w", err)
	}
	if err := mb.dlqWriter.Close(); err != nil {
		return fmt.Errorf("failed to close DLQ writer: %w", err)
	}
	return nil
}
