// Package storage is the PostgreSQL-backed document store shared by the admin proxy and the
// storefront: identities, user profiles, bans, businesses, system logs and orders.
//
// Public methods manage connections and transactions; the lowercase counterparts hold the
// SQL and accept a pg.Querier so they work inside or outside a transaction.
package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/a2z-dev/a2z/shared/config"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/logger"
	"github.com/a2z-dev/a2z/shared/storage/pg"
	"github.com/google/uuid"
)

const writeTimeout = 5 * time.Second

type Storage struct {
	db *sql.DB
}

// New connects to the database and applies pending migrations.
func New(cfg *config.Config, connCfg pg.ConnectionConfig) (*Storage, error) {
	logger.Log.Info("connecting to db", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
	db, err := pg.Connect(cfg, connCfg)
	if err != nil {
		return nil, err
	}
	if err := pg.RunMigrations(pg.URL(cfg.Private.Pg)); err != nil {
		db.Close()
		return nil, err
	}
	logger.Log.Info("successfully connected to db")
	return &Storage{db: db}, nil
}

// NewFromDB wraps an existing connection pool. The schema must already be migrated.
func NewFromDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// Ping is used by readiness probes.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return pg.WithTx(ctx, s.db, fn)
}

// isUUID guards uuid columns so malformed ids read as "not found" instead of a driver error.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(what string) error {
	return errors.New(errors.NotFound, what+" not found")
}
