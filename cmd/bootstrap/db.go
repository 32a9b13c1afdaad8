package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"table-reservation/internal/infra/db"
	"table-reservation/internal/infra/memstore"
	"table-reservation/internal/infra/uow"
	"table-reservation/internal/pkg/config"
	"table-reservation/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

const connectTimeout = 10 * time.Second

var DBModule = fx.Module("db",
	fx.Provide(
		NewStore,
	),
)

// NewStore opens the reservation store selected by STORE_DRIVER.
func NewStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.UnitOfWork, error) {
	if cfg.DB.Driver == config.StoreDriverMemory {
		logger.Warn("using in-memory reservation store, data is lost on restart")
		return memstore.New(logger), nil
	}

	pool, err := NewDB(lc, cfg, logger)
	if err != nil {
		return nil, err
	}
	return uow.NewPostgresUoW(pool, logger), nil
}

func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	if cfg.DB.Migrate {
		if err := db.Migrate(ctx, pool); err != nil {
			cleanup()
			return nil, err
		}
		logger.Info("database schema applied")
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
