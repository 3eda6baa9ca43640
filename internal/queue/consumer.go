package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ReminderHandler delivers one reminder.  Returning an error rejects the
// message without requeueing so a poison message cannot loop.
type ReminderHandler func(ctx context.Context, ev ReminderEvent) error

// StartReminderConsumer connects to RabbitMQ, declares the event.reminders
// queue (durable), and consumes messages until ctx is cancelled.  It runs a
// reconnect loop with capped exponential backoff; processing errors are
// logged and the offending message rejected so the service keeps operating.
func StartReminderConsumer(ctx context.Context, handler ReminderHandler) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("reminder-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(ctx, conn, handler); err != nil {
			log.Printf("reminder-consumer: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}
		_ = conn.Close()
		return
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, handler ReminderHandler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("reminder-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(reminderQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(reminderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			var ev ReminderEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				log.Printf("reminder-consumer: unmarshal failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			if err := handler(ctx, ev); err != nil {
				log.Printf("reminder-consumer: deliver reminder failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}
