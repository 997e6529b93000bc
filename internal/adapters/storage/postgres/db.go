// Package postgres implementa los repositorios sobre PostgreSQL (pgx vía database/sql).
// Los sets (miembros, likes) y los comentarios viven en columnas JSONB y se mutan
// con un único UPDATE condicional, sin read-then-write.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"petora-connect/internal/platform/apperr"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound envuelve apperr.ErrNotFound para que los servicios respondan 404 sin traducir.
var ErrNotFound = fmt.Errorf("row %w", apperr.ErrNotFound)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// scanner cubre *sql.Row y *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
