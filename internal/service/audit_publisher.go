// Package service holds outbound integrations that sit between handlers and
// external systems. The audit publisher ships events to RabbitMQ; failures
// are logged and returned so callers can ignore them without interrupting
// the request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/coworkhq/member-portal/internal/queue"
)

const auditQueueName = "portal.audit"

// AuditPublisher publishes audit events best-effort. A zero URL disables
// publishing entirely (Publish becomes a no-op).
type AuditPublisher struct {
	url string
}

func NewAuditPublisher(url string) *AuditPublisher { return &AuditPublisher{url: url} }

// Enabled reports whether a broker URL is configured.
func (p *AuditPublisher) Enabled() bool { return p.url != "" }

// Publish sends one event to the portal.audit queue. The queue is declared
// durable and messages persistent so events survive broker restarts. Any
// error is logged and returned; callers discard it.
func (p *AuditPublisher) Publish(ctx context.Context, event q.AuditEvent) error {
	if !p.Enabled() {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(auditQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", auditQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
