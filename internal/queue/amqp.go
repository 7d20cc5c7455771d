package queue

import (
	"github.com/streadway/amqp"
)

// TelemetryQueueName is the durable AMQP queue the collector publishes
// device frames to and the ingest worker consumes from.
const TelemetryQueueName = "telemetry_frames"

// TelemetryPublisher pushes raw telemetry frames onto AMQP.
type TelemetryPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewTelemetryPublisher(amqpURL string) (*TelemetryPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		TelemetryQueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &TelemetryPublisher{conn: conn, ch: ch}, nil
}

// Publish sends one raw frame as received from a device.
func (p *TelemetryPublisher) Publish(frame []byte) error {
	return p.ch.Publish(
		"",
		TelemetryQueueName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        frame,
		},
	)
}

func (p *TelemetryPublisher) Close() {
	p.ch.Close()
	p.conn.Close()
}

// ConsumeTelemetry opens the queue for consumption. The caller ranges
// over the returned deliveries and acks each one.
func ConsumeTelemetry(amqpURL string) (*amqp.Connection, <-chan amqp.Delivery, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	if _, err := ch.QueueDeclare(
		TelemetryQueueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		conn.Close()
		return nil, nil, err
	}

	deliveries, err := ch.Consume(
		TelemetryQueueName,
		"",    // consumer tag
		false, // autoAck: frames are acked after ingest
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	return conn, deliveries, nil
}
