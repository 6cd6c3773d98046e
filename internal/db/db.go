package db

import (
	"context"
	"database/sql"

	"authapi/internal/config"
	"authapi/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func NewPostgresConnection(cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)

	if err != nil {
		return nil, err
	}

	err = pool.Ping(context.Background())
	if err != nil {
		return nil, err
	}

	if err := runMigrations(context.Background(), cfg.DatabaseURL); err != nil {
		return nil, err
	}

	return pool, nil
}

// runMigrations прогоняет встроенные goose-миграции.
// goose работает поверх database/sql, поэтому открываем отдельное
// соединение через pgx/stdlib и закрываем его после миграций.
func runMigrations(ctx context.Context, dsn string) error {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, conn, ".")
}
