package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"alfredoptarigan/kryptohire/internal/models"
)

// ProgressEvent is published after every optimize iteration.
type ProgressEvent struct {
	ResumeID  uuid.UUID                  `json:"resume_id"`
	UserID    uuid.UUID                  `json:"user_id"`
	Iteration models.OptimizationHistory `json:"iteration"`
	Target    float64                    `json:"target_score"`
	Done      bool                       `json:"done"`
}

// EventPublisher never fails the caller; delivery problems are logged.
type EventPublisher interface {
	PublishOptimizeProgress(ctx context.Context, event ProgressEvent)
	Close() error
}

type rabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	exchange string
	log      *slog.Logger
}

func NewRabbitPublisher(url, exchange string, log *slog.Logger) (EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &rabbitPublisher{conn: conn, exchange: exchange, log: log}, nil
}

func (p *rabbitPublisher) PublishOptimizeProgress(ctx context.Context, event ProgressEvent) {
	if err := p.publish(OptimizeRoutingKey(event.ResumeID), event); err != nil {
		p.log.WarnContext(ctx, "failed to publish optimize progress",
			"resume_id", event.ResumeID, "iteration", event.Iteration.Iteration, "error", err)
	}
}

func (p *rabbitPublisher) publish(routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *rabbitPublisher) Close() error {
	return p.conn.Close()
}

func OptimizeRoutingKey(resumeID uuid.UUID) string {
	return "optimize." + resumeID.String()
}

type noopPublisher struct{}

func NewNoopPublisher() EventPublisher { return noopPublisher{} }

func (noopPublisher) PublishOptimizeProgress(context.Context, ProgressEvent) {}
func (noopPublisher) Close() error { return nil }
