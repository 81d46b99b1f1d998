package event

import (
	"encoding/json"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// Routing keys published by the tutor.
const (
	SessionStarted   = "tutor.session.started"
	AnswerSubmitted  = "tutor.answer.submitted"
	SessionCompleted = "tutor.session.completed"
	ChatMessage      = "tutor.chat.message"
)

// EventPublisher emits tutor events on a topic exchange. A nil publisher is
// valid and drops everything, so callers never guard the optional RabbitMQ
// wiring.
type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends payload under the routing key. Failures are logged and
// swallowed; events are best-effort and never fail a request.
func (p *EventPublisher) Publish(routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"type":       routingKey,
		"payload":    payload,
		"occurredAt": time.Now().UTC(),
	})
	if err != nil {
		log.Printf("event marshal failed: %v", err)
		return
	}

	err = p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		log.Printf("event publish %s failed: %v", routingKey, err)
	}
}

func (p *EventPublisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
