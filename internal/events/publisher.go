// Package events публикует события проходов в RabbitMQ.
package events

import (
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-access-control/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

// routingKeyScan — ключ маршрутизации событий сканирования.
const routingKeyScan = "scan"

// Publisher отправляет события проходов в exchange access.
type Publisher struct {
	ch *amqp.Channel
}

// New создает Publisher поверх открытого канала.
func New(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// Publish публикует событие прохода.
func (p *Publisher) Publish(event models.AccessEvent) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.AccessExchange, routingKeyScan, event)
}
