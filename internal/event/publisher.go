package event

import (
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// Publisher emits catalog domain events (question.*, category.*) to a topic
// exchange. Publishing is fire-and-forget: a failed publish is logged, never
// surfaced to the request that triggered it.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      zerolog.Logger
}

func NewPublisher(amqpURL, exchange string, log zerolog.Logger) (*Publisher, error) {
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
	return &Publisher{conn: conn, channel: ch, exchange: exchange, log: log}, nil
}

// Publish sends the event using its type as the routing key.
func (p *Publisher) Publish(eventType string, payload any) error {
	body, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		return err
	}

	err = p.channel.Publish(p.exchange, eventType, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		p.log.Error().Err(err).Str("event", eventType).Msg("event publish failed")
		return err
	}
	p.log.Debug().Str("event", eventType).Msg("event published")
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
