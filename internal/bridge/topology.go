package bridge

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/1broseidon/viewwall/internal/config"
)

// deadLetterSuffix names the exchange and queue rejected commands go to.
const deadLetterSuffix = ".dlq"

// Topology names the exchange, queue and binding the bridge consumes from.
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
}

// TopologyFromConfig reads the AMQP names from cfg.
func TopologyFromConfig(cfg config.AMQPConfig) Topology {
	return Topology{Exchange: cfg.Exchange, Queue: cfg.Queue, RoutingKey: cfg.RoutingKey}
}

// DeadLetterQueue is where rejected commands end up.
func (t Topology) DeadLetterQueue() string { return t.Queue + deadLetterSuffix }

// DeadLetterExchange routes rejected commands to DeadLetterQueue.
func (t Topology) DeadLetterExchange() string { return t.Exchange + deadLetterSuffix }

// Declare creates the topic exchange, the command queue with its dead letter
// queue, and the bindings. It is idempotent.
func (t Topology) Declare(ch *amqp.Channel) error {
	exchanges := []struct {
		name string
		kind string
	}{
		{t.Exchange, amqp.ExchangeTopic},
		{t.DeadLetterExchange(), amqp.ExchangeFanout},
	}
	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			ex.name, // name
			ex.kind, // type
			true,    // durable
			false,   // auto-deleted
			false,   // internal
			false,   // no-wait
			nil,     // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	queues := []struct {
		name string
		args amqp.Table
	}{
		{t.Queue, amqp.Table{"x-dead-letter-exchange": t.DeadLetterExchange()}},
		{t.DeadLetterQueue(), nil},
	}
	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.name, // name
			true,   // durable
			false,  // delete when unused
			false,  // exclusive
			false,  // no-wait
			q.args, // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	bindings := []struct {
		queue      string
		routingKey string
		exchange   string
	}{
		{t.Queue, t.RoutingKey, t.Exchange},
		{t.DeadLetterQueue(), "", t.DeadLetterExchange()},
	}
	for _, b := range bindings {
		if err := ch.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
