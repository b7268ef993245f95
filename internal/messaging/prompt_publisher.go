package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"prompt-server/internal/interfaces"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	// ExchangePromptUpdates - Имя fanout exchange для событий версий промптов.
	ExchangePromptUpdates = "prompt_updates"
)

// amqpChannel - часть *amqp091.Channel, которую использует издатель.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

var (
	_ interfaces.PromptEventPublisher = (*RabbitMQPromptPublisher)(nil)
	_ interfaces.PromptEventPublisher = NoopPromptPublisher{}
)

// RabbitMQPromptPublisher реализует PromptEventPublisher для RabbitMQ.
type RabbitMQPromptPublisher struct {
	ch amqpChannel
}

// NewRabbitMQPromptPublisher открывает канал на уже установленном соединении
// и объявляет exchange. Переподключения - забота вызывающего кода.
func NewRabbitMQPromptPublisher(conn *amqp091.Connection) (*RabbitMQPromptPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open a channel")
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return newPromptPublisher(ch)
}

func newPromptPublisher(ch amqpChannel) (*RabbitMQPromptPublisher, error) {
	// Durable fanout, переживает перезапуск брокера
	err := ch.ExchangeDeclare(
		ExchangePromptUpdates, // name
		"fanout",              // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		_ = ch.Close()
		log.Error().Err(err).Str("exchange", ExchangePromptUpdates).Msg("Failed to declare exchange")
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", ExchangePromptUpdates, err)
	}

	log.Info().Str("exchange", ExchangePromptUpdates).Msg("Prompt update exchange declared")
	return &RabbitMQPromptPublisher{ch: ch}, nil
}

// PublishPromptEvent публикует событие изменения промпта.
func (p *RabbitMQPromptPublisher) PublishPromptEvent(ctx context.Context, event interfaces.PromptEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Int("promptId", event.PromptID).Msg("Failed to marshal prompt event")
		return fmt.Errorf("failed to marshal prompt event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangePromptUpdates, // exchange
		"",                    // routing key не нужен для fanout
		false,                 // mandatory
		false,                 // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Type:         string(event.EventType),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		log.Error().Err(err).
			Str("eventType", string(event.EventType)).
			Int("promptId", event.PromptID).
			Str("version", event.Version).
			Msg("Failed to publish prompt event")
		return fmt.Errorf("failed to publish prompt event: %w", err)
	}

	log.Debug().
		Str("eventType", string(event.EventType)).
		Int("promptId", event.PromptID).
		Str("version", event.Version).
		Msg("Prompt event published")
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQPromptPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

// NoopPromptPublisher используется, когда RABBITMQ_URL не задан.
type NoopPromptPublisher struct{}

func (NoopPromptPublisher) PublishPromptEvent(_ context.Context, event interfaces.PromptEvent) error {
	log.Debug().Str("eventType", string(event.EventType)).Int("promptId", event.PromptID).Msg("Prompt events disabled, event dropped")
	return nil
}
