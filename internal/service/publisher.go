package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/bomberos-dev/guardias/backend/internal/config"
	"github.com/bomberos-dev/guardias/backend/internal/domain"
)

// AMQPPublisher sends roster-change messages to the notification queue the
// WhatsApp pipeline and cmd/notifier consume.
type AMQPPublisher struct {
	cfg     *config.Config
	channel *amqp.Channel
}

func NewAMQPPublisher(cfg *config.Config, channel *amqp.Channel) *AMQPPublisher {
	return &AMQPPublisher{
		cfg:     cfg,
		channel: channel,
	}
}

func (p *AMQPPublisher) Publish(msg domain.NotificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(
		ctx,
		"",
		p.cfg.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
