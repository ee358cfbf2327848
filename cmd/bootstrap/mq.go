package bootstrap

import (
	"context"
	"log/slog"

	"shuttlecourt/internal/infra/mq"
	"shuttlecourt/internal/pkg/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
)

var MQModule = fx.Module("mq",
	fx.Provide(
		NewMQConnection,
		NewPublisher,
	),
)

func NewMQConnection(lc fx.Lifecycle, cfg config.Config) (*amqp.Connection, error) {
	conn, cleanup, err := mq.Connect(cfg.MQ)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return conn, nil
}

func NewPublisher(lc fx.Lifecycle, conn *amqp.Connection, cfg config.Config, logger *slog.Logger) (*mq.Publisher, error) {
	pub, err := mq.NewPublisher(conn, cfg.MQ, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})

	return pub, nil
}
