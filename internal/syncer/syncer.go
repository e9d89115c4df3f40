// internal/syncer/syncer.go
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github-activity-service/internal/database"
	"github-activity-service/internal/model"
	"github-activity-service/internal/stats"
	"github-activity-service/internal/topics"
)

// eventRetention is how long synced activity events are kept before the
// retention sweep removes them.
const eventRetention = 90 * 24 * time.Hour

// Fetcher is the read-only view of the GitHub client the syncer needs.
type Fetcher interface {
	GetProfile(ctx context.Context, username string) (model.Profile, error)
	GetRepositories(ctx context.Context, username string) ([]model.Repository, error)
	GetEvents(ctx context.Context, username string) ([]model.Event, error)
}

// snapshot is the result of one cycle's fan-out fetch. All three parts must
// be present before any write happens.
type snapshot struct {
	profile model.Profile
	repos   []model.Repository
	events  []model.Event
}

// Syncer orchestrates the fetch → infer → reconcile → aggregate pipeline.
type Syncer struct {
	dbpool   *pgxpool.Pool
	fetcher  Fetcher
	logger   *slog.Logger
	username string
	interval time.Duration
	now      func() time.Time
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(dbpool *pgxpool.Pool, fetcher Fetcher, logger *slog.Logger, username string, interval time.Duration) *Syncer {
	return &Syncer{
		dbpool:   dbpool,
		fetcher:  fetcher,
		logger:   logger,
		username: username,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs one sync immediately and then on every tick until ctx is done.
// Cycle errors are logged and never stop the loop; the next tick is the only
// retry mechanism.
func (s *Syncer) Start(ctx context.Context) {
	s.logger.Info("Starting syncer", "username", s.username, "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.SyncNow(ctx); err != nil {
		s.logger.Error("Initial sync failed, existing data keeps serving", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := s.SyncNow(ctx); err != nil {
				s.logger.Error("Scheduled sync failed, existing data keeps serving", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("Syncer shutting down", "reason", ctx.Err())
			return
		}
	}
}

// SyncNow performs a single sync cycle: fetch everything, then write
// everything inside one transaction. A fetch failure aborts before any write;
// a write failure rolls the whole cycle back, so readers only ever observe
// complete snapshots.
func (s *Syncer) SyncNow(ctx context.Context) error {
	started := s.now()
	s.logger.Info("Starting sync cycle", "username", s.username)

	snap, err := s.fetchAll(ctx)
	if err != nil {
		return err
	}

	tx, err := s.dbpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin sync transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction is already committed.

	if err := s.persist(ctx, database.New(tx), snap, s.now()); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sync transaction: %w", err)
	}

	s.logger.Info("Sync cycle finished",
		"duration", s.now().Sub(started).String(),
		"repos", len(snap.repos),
		"events", len(snap.events),
	)
	return nil
}

// fetchAll issues the three upstream reads concurrently and fails the whole
// cycle if any one of them fails.
func (s *Syncer) fetchAll(ctx context.Context) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := s.fetcher.GetProfile(gctx, s.username)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		snap.profile = profile
		return nil
	})
	g.Go(func() error {
		repos, err := s.fetcher.GetRepositories(gctx, s.username)
		if err != nil {
			return fmt.Errorf("fetch repositories: %w", err)
		}
		snap.repos = repos
		return nil
	})
	g.Go(func() error {
		events, err := s.fetcher.GetEvents(gctx, s.username)
		if err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		snap.events = events
		return nil
	})

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// persist reconciles the fetched snapshot into storage and overwrites the
// stats singleton. Repositories are upserted before pruning so the prune only
// ever runs against a complete fetched set.
func (s *Syncer) persist(ctx context.Context, q database.Querier, snap snapshot, now time.Time) error {
	if err := q.UpsertProfile(ctx, snap.profile, now); err != nil {
		return err
	}

	fetchedIDs := make([]int64, 0, len(snap.repos))
	for i := range snap.repos {
		snap.repos[i].Topics = topics.Infer(snap.repos[i])
		if err := q.UpsertRepository(ctx, snap.repos[i], now); err != nil {
			return err
		}
		fetchedIDs = append(fetchedIDs, snap.repos[i].GithubID)
	}

	pruned, err := q.DeleteRepositoriesNotIn(ctx, fetchedIDs)
	if err != nil {
		return err
	}
	if pruned > 0 {
		s.logger.Info("Pruned repositories no longer present upstream", "count", pruned)
	}

	for _, event := range snap.events {
		if err := q.UpsertEvent(ctx, event, now); err != nil {
			return err
		}
	}

	purged, err := q.DeleteEventsBefore(ctx, now.Add(-eventRetention))
	if err != nil {
		return err
	}
	if purged > 0 {
		s.logger.Info("Purged events past the retention window", "count", purged)
	}

	aggregate := stats.Aggregate(snap.repos, snap.events, snap.profile, now)
	return q.ReplaceStats(ctx, aggregate, now)
}
