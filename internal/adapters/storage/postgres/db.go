package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"smart-feeding/internal/adapters/storage/sqldb"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Dialect de Postgres para sqldb.
var Dialect = sqldb.Dialect{
	Name: "postgres",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS documents (
			seq        BIGSERIAL PRIMARY KEY,
			kind       TEXT NOT NULL,
			id         TEXT NOT NULL,
			owner_id   TEXT NOT NULL DEFAULT '',
			parent_id  TEXT NOT NULL DEFAULT '',
			lookup     TEXT NULL,
			version    BIGINT NOT NULL,
			body       TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			UNIQUE (kind, id)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS documents_lookup_uq ON documents (kind, lookup) WHERE lookup IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS documents_owner_idx ON documents (kind, owner_id, seq)`,
		`CREATE INDEX IF NOT EXISTS documents_parent_idx ON documents (kind, parent_id, seq)`,
	},
	DollarPlaceholders: true,
	IsUniqueViolation:  isUniqueViolation,
}

// OpenStore abre la base, aplica el schema y devuelve el backend listo.
func OpenStore(ctx context.Context, dsn string) (*sqldb.Store, *sql.DB, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	store := sqldb.New(db, Dialect)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
