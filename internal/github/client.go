// internal/github/client.go
package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github-activity-service/internal/cache"
	apperrors "github-activity-service/internal/errors"
	"github-activity-service/internal/model"
)

const (
	// GitHub's maximum page size; repository listing pages at this size.
	perPage = 100

	// How long a per-repo language breakdown stays cached before the
	// upstream API is hit again.
	languagesTTL = 5 * time.Minute
)

// Client is a wrapper around the go-github client. It translates upstream
// records into internal models and non-success statuses into FetchError.
type Client struct {
	gh        *github.Client
	logger    *slog.Logger
	languages *cache.TTL[map[string]int]
}

// NewClient creates and configures a new Client instance. An empty token is
// allowed: requests go out unauthenticated with a lower rate limit.
func NewClient(token string, logger *slog.Logger) *Client {
	return NewClientWithClock(token, logger, cache.SystemClock{})
}

// NewClientWithClock is NewClient with an injectable clock for the language
// cache, used by tests to exercise expiry.
func NewClientWithClock(token string, logger *slog.Logger, clock cache.Clock) *Client {
	// A nil http client means unauthenticated requests.
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	return &Client{
		gh:        github.NewClient(httpClient),
		logger:    logger,
		languages: cache.NewTTL[map[string]int](clock),
	}
}

// SetBaseURL points the client at a different API root, e.g. a test server.
func (c *Client) SetBaseURL(base string) error {
	gh, err := github.NewClient(c.gh.Client()).WithEnterpriseURLs(base, base)
	if err != nil {
		return err
	}
	c.gh = gh
	return nil
}

// GetProfile fetches the account's public profile.
func (c *Client) GetProfile(ctx context.Context, username string) (model.Profile, error) {
	user, _, err := c.gh.Users.Get(ctx, username)
	if err != nil {
		return model.Profile{}, wrapError(err)
	}
	return toInternalProfile(user), nil
}

// GetRepositories fetches all public repositories of the account, sorted by
// last update descending. It handles API pagination transparently.
func (c *Client) GetRepositories(ctx context.Context, username string) ([]model.Repository, error) {
	var allRepos []model.Repository

	opts := &github.RepositoryListByUserOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		c.logger.Debug("Fetching repositories page", "username", username, "page", opts.Page)

		repos, resp, err := c.gh.Repositories.ListByUser(ctx, username, opts)
		if err != nil {
			return nil, wrapError(err)
		}

		for _, repo := range repos {
			allRepos = append(allRepos, toInternalRepository(repo))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

// GetEvents fetches the most recent page of the account's public activity
// events. Only a single page is requested; the feed is bounded upstream.
func (c *Client) GetEvents(ctx context.Context, username string) ([]model.Event, error) {
	events, _, err := c.gh.Activity.ListEventsPerformedByUser(ctx, username, false,
		&github.ListOptions{PerPage: perPage})
	if err != nil {
		return nil, wrapError(err)
	}

	result := make([]model.Event, 0, len(events))
	for _, e := range events {
		result = append(result, toInternalEvent(e))
	}
	return result, nil
}

// GetLanguages fetches the byte-count-per-language breakdown for one of the
// account's repositories. Results are cached briefly so dashboard refreshes
// do not hammer the upstream API; language bytes are never persisted.
func (c *Client) GetLanguages(ctx context.Context, username, repo string) (map[string]int, error) {
	key := username + "/" + repo
	if langs, ok := c.languages.Get(key); ok {
		return langs, nil
	}

	langs, _, err := c.gh.Repositories.ListLanguages(ctx, username, repo)
	if err != nil {
		return nil, wrapError(err)
	}

	c.languages.Put(key, langs, languagesTTL)
	return langs, nil
}

// wrapError converts go-github error responses into FetchError so callers
// can abort a sync cycle on any non-success status.
func wrapError(err error) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return &apperrors.FetchError{
			StatusCode: errResp.Response.StatusCode,
			Status:     errResp.Response.Status,
		}
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return &apperrors.FetchError{
			StatusCode: rateErr.Response.StatusCode,
			Status:     rateErr.Response.Status,
		}
	}
	return err
}

// toInternalProfile translates a github.User object to our internal model.Profile.
func toInternalProfile(u *github.User) model.Profile {
	return model.Profile{
		Login:           u.GetLogin(),
		Name:            u.Name,
		AvatarURL:       u.GetAvatarURL(),
		HTMLURL:         u.GetHTMLURL(),
		Bio:             u.Bio,
		Location:        u.Location,
		Blog:            u.Blog,
		PublicRepos:     u.GetPublicRepos(),
		PublicGists:     u.GetPublicGists(),
		Followers:       u.GetFollowers(),
		Following:       u.GetFollowing(),
		GithubCreatedAt: u.GetCreatedAt().Time,
		GithubUpdatedAt: u.GetUpdatedAt().Time,
	}
}

// toInternalRepository translates a github.Repository object to our internal model.Repository.
func toInternalRepository(r *github.Repository) model.Repository {
	return model.Repository{
		GithubID:        r.GetID(),
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		Description:     r.Description,
		HTMLURL:         r.GetHTMLURL(),
		Homepage:        r.Homepage,
		Language:        r.Language,
		Topics:          r.Topics,
		StargazersCount: r.GetStargazersCount(),
		ForksCount:      r.GetForksCount(),
		WatchersCount:   r.GetWatchersCount(),
		OpenIssuesCount: r.GetOpenIssuesCount(),
		Size:            r.GetSize(),
		Fork:            r.GetFork(),
		Archived:        r.GetArchived(),
		Visibility:      r.GetVisibility(),
		DefaultBranch:   r.GetDefaultBranch(),
		PushedAt:        r.GetPushedAt().Time,
		GithubCreatedAt: r.GetCreatedAt().Time,
		GithubUpdatedAt: r.GetUpdatedAt().Time,
	}
}

// toInternalEvent translates a github.Event to our internal model.Event,
// extracting the type-dependent payload fields the dashboard renders.
func toInternalEvent(e *github.Event) model.Event {
	ev := model.Event{
		GithubID: e.GetID(),
		Type:     e.GetType(),
		RepoName: e.GetRepo().GetName(),
		EventAt:  e.GetCreatedAt().Time,
	}

	payload, err := e.ParsePayload()
	if err != nil {
		return ev
	}

	switch p := payload.(type) {
	case *github.PushEvent:
		for _, c := range p.Commits {
			ev.Payload.Commits = append(ev.Payload.Commits, model.EventCommit{
				SHA:     shortSHA(c.GetSHA()),
				Message: c.GetMessage(),
			})
		}
	case *github.PullRequestEvent:
		ev.Payload.Action = p.GetAction()
	case *github.IssuesEvent:
		ev.Payload.Action = p.GetAction()
	case *github.CreateEvent:
		ev.Payload.Ref = p.GetRef()
		ev.Payload.RefType = p.GetRefType()
	}

	return ev
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
