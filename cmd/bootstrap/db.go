package bootstrap

import (
	"context"

	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/pkg/config"
	"shuttlecourt/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
	fx.Invoke(runMigrations),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := postgres.Connect(context.Background(), cfg.DB)
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

	return pool, nil
}

func runMigrations(pool *pgxpool.Pool) error {
	return migrations.Run(context.Background(), pool)
}
