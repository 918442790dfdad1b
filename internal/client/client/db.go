package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cofit/cofitcli/internal/client/migrations"
	"github.com/cofit/cofitcli/internal/client/repositories/kv"
	"github.com/cofit/cofitcli/internal/client/repositories/mediaindex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the stores backed by one SQLite database.
type Repositories struct {
	KV    kv.Repository
	Media mediaindex.Repository
	DB    *sql.DB
}

func (r *Repositories) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (or creates) the SQLite file at dsn and brings its
// schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// the CLI is single-user; one connection avoids SQLITE_BUSY between
	// pooled conns and keeps :memory: databases coherent
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repositories{
		KV:    kv.NewSQLiteRepository(db),
		Media: mediaindex.NewSQLiteRepository(db),
		DB:    db,
	}, nil
}
