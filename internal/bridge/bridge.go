package bridge

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/1broseidon/viewwall/internal/config"
)

// Run connects to the broker in cfg, declares the topology and consumes
// until ctx is done. It returns nil when the bridge is disabled.
func Run(ctx context.Context, cfg config.AMQPConfig, d Dispatcher, logger *slog.Logger) error {
	if cfg.URL == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "bridge")

	topo := TopologyFromConfig(cfg)
	conn, err := DialWithRetry(ctx, cfg.URL, logger, func(ch *amqp.Channel) error {
		return topo.Declare(ch)
	})
	if err != nil {
		return fmt.Errorf("amqp bridge: %w", err)
	}
	defer conn.Close()

	consumer := NewConsumer(conn, logger, ConsumerConfig{Queue: topo.Queue, Dispatcher: d})
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
