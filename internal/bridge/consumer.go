package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/1broseidon/viewwall/internal/ipc"
)

// Source tags commands that arrived over AMQP in metrics.
const Source = "amqp"

const defaultPrefetch = 8

// Dispatcher executes a command against the daemon. *ipc.Server satisfies it.
type Dispatcher interface {
	Handle(source string, req *ipc.Request) *ipc.Response
}

// Replier publishes a reply for deliveries that carry reply_to.
type Replier func(ctx context.Context, raw amqp.Delivery, reply Reply) error

// Consumer reads commands from the bridge queue and dispatches them.
type Consumer struct {
	conn       *Connection
	logger     *slog.Logger
	queue      string
	prefetch   int
	dispatcher Dispatcher
	reply      Replier
}

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	Queue      string
	Prefetch   int
	Dispatcher Dispatcher
}

// NewConsumer creates a consumer on conn.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}
	c := &Consumer{
		conn:       conn,
		logger:     logger,
		queue:      cfg.Queue,
		prefetch:   prefetch,
		dispatcher: cfg.Dispatcher,
	}
	c.reply = c.publishReply
	return c
}

// Start consumes until ctx is done, resubscribing after every reconnect.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		deliveries, err := c.setupConsume()
		if err != nil {
			c.logger.Error("failed to setup consume", "queue", c.queue, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				c.logger.Info("reconnected, restarting consumer", "queue", c.queue)
				continue
			}
		}

		c.logger.Info("consumer started", "queue", c.queue)

		if err := c.processDeliveries(ctx, deliveries); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("deliveries channel closed, reconnecting", "queue", c.queue)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				continue
			}
		}
	}
}

func (c *Consumer) setupConsume() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, fmt.Errorf("no channel available")
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}

	return deliveries, nil
}

func (c *Consumer) processDeliveries(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}
			c.handleDelivery(ctx, raw)
		}
	}
}

// handleDelivery dispatches one command. Malformed or rejected commands are
// dead-lettered; they would fail the same way on redelivery.
func (c *Consumer) handleDelivery(ctx context.Context, raw amqp.Delivery) {
	msg, err := ParseMessage(raw.Body)
	if err != nil {
		c.logger.Error("failed to parse message", "queue", c.queue, "error", err, "body", string(raw.Body))
		raw.Nack(false, false)
		return
	}
	if msg.ID == "" {
		msg.ID = raw.MessageId
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	logger := c.logger.With("message_id", msg.ID, "type", msg.Type)
	logger.Debug("received message", "queue", c.queue)

	req, err := msg.Request()
	if err != nil {
		logger.Warn("rejected message", "error", err)
		c.sendReply(ctx, raw, Reply{ID: msg.ID, Response: ipc.NewErrorResponse(err.Error())}, logger)
		raw.Nack(false, false)
		return
	}

	resp := c.dispatcher.Handle(Source, req)
	c.sendReply(ctx, raw, Reply{ID: msg.ID, Response: resp}, logger)

	if resp == nil || resp.Status != "OK" {
		errMsg := "no response"
		if resp != nil {
			errMsg = resp.Error
		}
		logger.Warn("command failed", "error", errMsg)
		raw.Nack(false, false)
		return
	}

	if err := raw.Ack(false); err != nil {
		logger.Error("failed to ack message", "error", err)
	}
}

func (c *Consumer) sendReply(ctx context.Context, raw amqp.Delivery, reply Reply, logger *slog.Logger) {
	if raw.ReplyTo == "" || c.reply == nil {
		return
	}
	if err := c.reply(ctx, raw, reply); err != nil {
		logger.Warn("failed to publish reply", "reply_to", raw.ReplyTo, "error", err)
	}
}

func (c *Consumer) publishReply(ctx context.Context, raw amqp.Delivery, reply Reply) error {
	ch := c.conn.Channel()
	if ch == nil {
		return fmt.Errorf("no channel available")
	}

	body, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	return ch.PublishWithContext(ctx,
		"",          // default exchange
		raw.ReplyTo, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: raw.CorrelationId,
			MessageId:     uuid.NewString(),
			Timestamp:     time.Now(),
			Body:          body,
		},
	)
}
