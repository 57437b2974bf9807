package session

import (
	"context"
	"database/sql"

	"github.com/virapagina/virapagina/internal/client/repositories/localstore"
	"github.com/virapagina/virapagina/internal/dbx"
)

// Storage is the durable store behind a Manager.
type Storage interface {
	localstore.Repository

	// Atomic runs fn against a repository whose writes commit together or
	// not at all.
	Atomic(ctx context.Context, fn func(ctx context.Context, repo localstore.Repository) error) error
}

type sqlStorage struct {
	*localstore.SQLiteRepository
	db *sql.DB
}

// NewSQLStorage adapts a migrated local database to Storage.
func NewSQLStorage(db *sql.DB) Storage {
	return &sqlStorage{SQLiteRepository: localstore.NewSQLiteRepository(db), db: db}
}

func (s *sqlStorage) Atomic(ctx context.Context, fn func(ctx context.Context, repo localstore.Repository) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, localstore.NewSQLiteRepository(tx))
	})
}
