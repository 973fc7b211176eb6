/**
 * @description
 * This package provides a producer for publishing ledger events to RabbitMQ.
 * The service publishes two kinds of events: transfer notifications after a
 * committed transfer, and password-reset requests consumed by the mailer.
 * It only publishes; there is no consumer side in this service.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/rabbitmq/amqp091-go: The RabbitMQ client library.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const (
	eventsExchange          = "ledger.events"
	transferRoutingKey      = "transaction.completed"
	passwordResetRoutingKey = "user.password_reset"
)

// TransferEvent is published after a transfer commits. Amounts travel as
// decimal strings to keep precision across consumers.
type TransferEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	RefNo         string    `json:"ref_no"`
	UserID        uuid.UUID `json:"user_id"`
	AccountID     uuid.UUID `json:"account_id"`
	TransType     string    `json:"trans_type"`
	Amount        string    `json:"amount"`
	Charge        string    `json:"charge"`
	TotalAmount   string    `json:"total_amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// PasswordResetEvent carries the raw reset token to the mailer. This is the
// only place the raw token exists outside the requesting user's inbox.
type PasswordResetEvent struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	ResetToken  string    `json:"reset_token"`
	RequestedAt time.Time `json:"requested_at"`
}

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	PublishTransferEvent(ctx context.Context, event TransferEvent) error
	PublishPasswordResetEvent(ctx context.Context, event PasswordResetEvent) error
	Close()
}

// EventProducer holds the RabbitMQ connection and channel for publishing.
type EventProducer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	if idx := strings.Index(strings.ToLower(clean), "amqp"); idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer connects to RabbitMQ with a bounded dial timeout so
// startup does not hang indefinitely.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: ch}, nil
}

// PublishTransferEvent publishes a committed-transfer notification.
func (p *EventProducer) PublishTransferEvent(ctx context.Context, event TransferEvent) error {
	return p.publish(ctx, transferRoutingKey, event)
}

// PublishPasswordResetEvent publishes a password-reset request for the mailer.
func (p *EventProducer) PublishPasswordResetEvent(ctx context.Context, event PasswordResetEvent) error {
	return p.publish(ctx, passwordResetRoutingKey, event)
}

func (p *EventProducer) publish(ctx context.Context, routingKey string, body any) error {
	// Declare the durable topic exchange up front; redeclaration is a no-op.
	if err := p.channel.ExchangeDeclare(eventsExchange, "topic", true, false, false, false, nil); err != nil {
		log.Printf("level=warn component=rabbitmq_producer msg=\"exchange declare failed; reopening channel\" exchange=%s err=%v", eventsExchange, err)
		ch, chErr := p.conn.Channel()
		if chErr != nil {
			return chErr
		}
		p.channel = ch
		if err := p.channel.ExchangeDeclare(eventsExchange, "topic", true, false, false, false, nil); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(publishCtx,
		eventsExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		},
	)
}

// Close shuts down the channel and the connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
