// Package rabbitmq publishes workflow events to an AMQP queue.
// It is the optional side of the system: when no broker URI is
// configured none of this runs.
package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/madpaura/docker-webui/controller"
	"github.com/madpaura/docker-webui/model"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

var _ controller.Notifier = new(Notifier)

type Notifier struct {
	l         *logrus.Logger
	uri       string
	queueName string

	Connection *amqp.Connection
	Channel    *amqp.Channel
	Queue      amqp.Queue
}

func NewNotifier(uri, queueName string, logger *logrus.Logger) *Notifier {
	return &Notifier{
		l:         logger,
		uri:       uri,
		queueName: queueName,
	}
}

func (n *Notifier) Connect() error {
	n.l.Info("connecting to rabbitmq")
	n.l.Debug(n.uri)

	var err error
	n.Connection, err = amqp.Dial(n.uri)
	if err != nil {
		return fmt.Errorf("amqp.Dial: %w", err)
	}

	n.Channel, err = n.Connection.Channel()
	if err != nil {
		return fmt.Errorf("n.Connection.Channel: %w", err)
	}

	n.Queue, err = n.Channel.QueueDeclare(
		n.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("n.Channel.QueueDeclare: %w", err)
	}

	return nil
}

func (n *Notifier) Close() error {
	if n.Channel != nil {
		if err := n.Channel.Close(); err != nil {
			return fmt.Errorf("n.Channel.Close: %w", err)
		}
	}
	if n.Connection != nil {
		if err := n.Connection.Close(); err != nil {
			return fmt.Errorf("n.Connection.Close: %w", err)
		}
	}
	return nil
}

func (n *Notifier) Publish(event model.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	n.l.Debugf("publishing %s event for session %s", event.Kind, event.SessionID)
	if err := n.Channel.Publish(
		"",          // exchange
		n.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		}); err != nil {
		return fmt.Errorf("n.Channel.Publish: %w", err)
	}

	return nil
}
