// internal/database/store.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github-activity-service/internal/model"
)

const upsertProfileSQL = `
INSERT INTO github_profiles (
	login, name, avatar_url, html_url, bio, location, blog,
	public_repos, public_gists, followers, following,
	github_created_at, github_updated_at, synced_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (login) DO UPDATE SET
	name = EXCLUDED.name,
	avatar_url = EXCLUDED.avatar_url,
	html_url = EXCLUDED.html_url,
	bio = EXCLUDED.bio,
	location = EXCLUDED.location,
	blog = EXCLUDED.blog,
	public_repos = EXCLUDED.public_repos,
	public_gists = EXCLUDED.public_gists,
	followers = EXCLUDED.followers,
	following = EXCLUDED.following,
	github_created_at = EXCLUDED.github_created_at,
	github_updated_at = EXCLUDED.github_updated_at,
	synced_at = EXCLUDED.synced_at`

func (s *Store) UpsertProfile(ctx context.Context, p model.Profile, syncedAt time.Time) error {
	_, err := s.db.Exec(ctx, upsertProfileSQL,
		p.Login, p.Name, p.AvatarURL, p.HTMLURL, p.Bio, p.Location, p.Blog,
		p.PublicRepos, p.PublicGists, p.Followers, p.Following,
		p.GithubCreatedAt, p.GithubUpdatedAt, syncedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

const getProfileSQL = `
SELECT login, name, avatar_url, html_url, bio, location, blog,
	public_repos, public_gists, followers, following,
	github_created_at, github_updated_at, synced_at
FROM github_profiles
ORDER BY synced_at DESC
LIMIT 1`

func (s *Store) GetProfile(ctx context.Context) (model.Profile, error) {
	var p model.Profile
	err := s.db.QueryRow(ctx, getProfileSQL).Scan(
		&p.Login, &p.Name, &p.AvatarURL, &p.HTMLURL, &p.Bio, &p.Location, &p.Blog,
		&p.PublicRepos, &p.PublicGists, &p.Followers, &p.Following,
		&p.GithubCreatedAt, &p.GithubUpdatedAt, &p.SyncedAt,
	)
	return p, err
}

const upsertRepositorySQL = `
INSERT INTO github_repos (
	github_id, name, full_name, description, html_url, homepage, language,
	topics, stargazers_count, forks_count, watchers_count, open_issues_count,
	size, fork, archived, visibility, default_branch,
	pushed_at, github_created_at, github_updated_at, synced_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
ON CONFLICT (github_id) DO UPDATE SET
	name = EXCLUDED.name,
	full_name = EXCLUDED.full_name,
	description = EXCLUDED.description,
	html_url = EXCLUDED.html_url,
	homepage = EXCLUDED.homepage,
	language = EXCLUDED.language,
	topics = EXCLUDED.topics,
	stargazers_count = EXCLUDED.stargazers_count,
	forks_count = EXCLUDED.forks_count,
	watchers_count = EXCLUDED.watchers_count,
	open_issues_count = EXCLUDED.open_issues_count,
	size = EXCLUDED.size,
	fork = EXCLUDED.fork,
	archived = EXCLUDED.archived,
	visibility = EXCLUDED.visibility,
	default_branch = EXCLUDED.default_branch,
	pushed_at = EXCLUDED.pushed_at,
	github_created_at = EXCLUDED.github_created_at,
	github_updated_at = EXCLUDED.github_updated_at,
	synced_at = EXCLUDED.synced_at`

func (s *Store) UpsertRepository(ctx context.Context, r model.Repository, syncedAt time.Time) error {
	_, err := s.db.Exec(ctx, upsertRepositorySQL,
		r.GithubID, r.Name, r.FullName, r.Description, r.HTMLURL, r.Homepage, r.Language,
		r.Topics, r.StargazersCount, r.ForksCount, r.WatchersCount, r.OpenIssuesCount,
		r.Size, r.Fork, r.Archived, r.Visibility, r.DefaultBranch,
		r.PushedAt, r.GithubCreatedAt, r.GithubUpdatedAt, syncedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert repository %d: %w", r.GithubID, err)
	}
	return nil
}

// DeleteRepositoriesNotIn prunes every repository whose upstream identifier
// is not in githubIDs. An empty slice deletes all rows, which is the correct
// reading of "upstream has no repositories".
func (s *Store) DeleteRepositoriesNotIn(ctx context.Context, githubIDs []int64) (int64, error) {
	if githubIDs == nil {
		githubIDs = []int64{}
	}
	tag, err := s.db.Exec(ctx,
		`DELETE FROM github_repos WHERE NOT (github_id = ANY($1))`, githubIDs)
	if err != nil {
		return 0, fmt.Errorf("prune repositories: %w", err)
	}
	return tag.RowsAffected(), nil
}

const listRepositoriesSQL = `
SELECT github_id, name, full_name, description, html_url, homepage, language,
	topics, stargazers_count, forks_count, watchers_count, open_issues_count,
	size, fork, archived, visibility, default_branch,
	pushed_at, github_created_at, github_updated_at, synced_at
FROM github_repos
ORDER BY pushed_at DESC`

func (s *Store) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	rows, err := s.db.Query(ctx, listRepositoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		var r model.Repository
		err := rows.Scan(
			&r.GithubID, &r.Name, &r.FullName, &r.Description, &r.HTMLURL, &r.Homepage, &r.Language,
			&r.Topics, &r.StargazersCount, &r.ForksCount, &r.WatchersCount, &r.OpenIssuesCount,
			&r.Size, &r.Fork, &r.Archived, &r.Visibility, &r.DefaultBranch,
			&r.PushedAt, &r.GithubCreatedAt, &r.GithubUpdatedAt, &r.SyncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

func (s *Store) ListRepositoryIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT github_id FROM github_repos ORDER BY github_id`)
	if err != nil {
		return nil, fmt.Errorf("list repository ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan repository id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const upsertEventSQL = `
INSERT INTO github_events (github_id, type, repo_name, payload, event_at, synced_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (github_id) DO UPDATE SET
	type = EXCLUDED.type,
	repo_name = EXCLUDED.repo_name,
	payload = EXCLUDED.payload,
	event_at = EXCLUDED.event_at,
	synced_at = EXCLUDED.synced_at`

func (s *Store) UpsertEvent(ctx context.Context, e model.Event, syncedAt time.Time) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = s.db.Exec(ctx, upsertEventSQL,
		e.GithubID, e.Type, e.RepoName, payload, e.EventAt, syncedAt)
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", e.GithubID, err)
	}
	return nil
}

func (s *Store) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM github_events WHERE event_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge events: %w", err)
	}
	return tag.RowsAffected(), nil
}

const listRecentEventsSQL = `
SELECT github_id, type, repo_name, payload, event_at, synced_at
FROM github_events
ORDER BY event_at DESC
LIMIT $1`

func (s *Store) ListRecentEvents(ctx context.Context, limit int32) ([]model.Event, error) {
	rows, err := s.db.Query(ctx, listRecentEventsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var payload []byte
		if err := rows.Scan(&e.GithubID, &e.Type, &e.RepoName, &payload, &e.EventAt, &e.SyncedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ReplaceStats overwrites the singleton aggregate row in full.
func (s *Store) ReplaceStats(ctx context.Context, stats model.Stats, syncedAt time.Time) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	_, err = s.db.Exec(ctx, `
INSERT INTO github_stats (id, data, synced_at) VALUES (1, $1, $2)
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, synced_at = EXCLUDED.synced_at`,
		data, syncedAt)
	if err != nil {
		return fmt.Errorf("replace stats: %w", err)
	}
	return nil
}

func (s *Store) GetStats(ctx context.Context) (model.Stats, error) {
	var (
		data     []byte
		syncedAt time.Time
	)
	err := s.db.QueryRow(ctx, `SELECT data, synced_at FROM github_stats WHERE id = 1`).
		Scan(&data, &syncedAt)
	if err != nil {
		return model.Stats{}, err
	}

	var stats model.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return model.Stats{}, fmt.Errorf("unmarshal stats: %w", err)
	}
	stats.SyncedAt = &syncedAt
	return stats, nil
}
