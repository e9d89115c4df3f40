// internal/database/querier.go

// Package database is the hand-written persistence layer over PostgreSQL.
// Store works against either a pool or a transaction via the DBTX interface.
package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github-activity-service/internal/model"
)

// DBTX is the subset of pgx operations the store needs. Both *pgxpool.Pool
// and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier is the set of storage operations used by the syncer and the API.
type Querier interface {
	UpsertProfile(ctx context.Context, profile model.Profile, syncedAt time.Time) error
	GetProfile(ctx context.Context) (model.Profile, error)

	UpsertRepository(ctx context.Context, repo model.Repository, syncedAt time.Time) error
	DeleteRepositoriesNotIn(ctx context.Context, githubIDs []int64) (int64, error)
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	ListRepositoryIDs(ctx context.Context) ([]int64, error)

	UpsertEvent(ctx context.Context, event model.Event, syncedAt time.Time) error
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ListRecentEvents(ctx context.Context, limit int32) ([]model.Event, error)

	ReplaceStats(ctx context.Context, stats model.Stats, syncedAt time.Time) error
	GetStats(ctx context.Context) (model.Stats, error)
}

// Store implements Querier.
type Store struct {
	db DBTX
}

var _ Querier = (*Store)(nil)

// New creates a Store bound to the given pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}
