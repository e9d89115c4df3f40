// internal/model/models.go
package model

import "time"

// Event type strings as they appear in the GitHub events feed.
const (
	EventTypePush        = "PushEvent"
	EventTypePullRequest = "PullRequestEvent"
	EventTypeIssues      = "IssuesEvent"
	EventTypeCreate      = "CreateEvent"
)

// Profile represents the public profile of the synced GitHub account.
type Profile struct {
	Login           string     `json:"login"`
	Name            *string    `json:"name"`
	AvatarURL       string     `json:"avatar_url"`
	HTMLURL         string     `json:"html_url"`
	Bio             *string    `json:"bio"`
	Location        *string    `json:"location"`
	Blog            *string    `json:"blog"`
	PublicRepos     int        `json:"public_repos"`
	PublicGists     int        `json:"public_gists"`
	Followers       int        `json:"followers"`
	Following       int        `json:"following"`
	GithubCreatedAt time.Time  `json:"github_created_at"`
	GithubUpdatedAt time.Time  `json:"github_updated_at"`
	SyncedAt        *time.Time `json:"synced_at,omitempty"`
}

// Repository represents the metadata of one of the account's repositories.
type Repository struct {
	GithubID        int64      `json:"github_id"`
	Name            string     `json:"name"`
	FullName        string     `json:"full_name"`
	Description     *string    `json:"description"`
	HTMLURL         string     `json:"html_url"`
	Homepage        *string    `json:"homepage"`
	Language        *string    `json:"language"`
	Topics          []string   `json:"topics"`
	StargazersCount int        `json:"stargazers_count"`
	ForksCount      int        `json:"forks_count"`
	WatchersCount   int        `json:"watchers_count"`
	OpenIssuesCount int        `json:"open_issues_count"`
	Size            int        `json:"size"`
	Fork            bool       `json:"fork"`
	Archived        bool       `json:"archived"`
	Visibility      string     `json:"visibility"`
	DefaultBranch   string     `json:"default_branch"`
	PushedAt        time.Time  `json:"pushed_at"`
	GithubCreatedAt time.Time  `json:"github_created_at"`
	GithubUpdatedAt time.Time  `json:"github_updated_at"`
	SyncedAt        *time.Time `json:"synced_at,omitempty"`
}

// EventCommit is one commit entry inside a push event payload.
// The SHA is shortened to 7 characters, matching what the dashboard renders.
type EventCommit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// EventPayload is the type-dependent part of an activity event.
// Commits is only set for push events; Action/Ref/RefType for the rest.
type EventPayload struct {
	Action  string        `json:"action,omitempty"`
	Commits []EventCommit `json:"commits,omitempty"`
	Ref     string        `json:"ref,omitempty"`
	RefType string        `json:"ref_type,omitempty"`
}

// Event represents a single activity event from the account's public feed.
// Events are immutable once synced and are purged after the retention window.
type Event struct {
	GithubID string       `json:"github_id"`
	Type     string       `json:"type"`
	RepoName string       `json:"repo"`
	Payload  EventPayload `json:"payload"`
	EventAt  time.Time    `json:"event_at"`
	SyncedAt *time.Time   `json:"synced_at,omitempty"`
}

// MonthlyActivity is one month's bucket in the activity chart, oldest first.
type MonthlyActivity struct {
	Month   string `json:"month"`
	Commits int    `json:"commits"`
	PRs     int    `json:"prs"`
	Issues  int    `json:"issues"`
}

// ProjectStatus partitions all repositories into three buckets.
type ProjectStatus struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Archived int `json:"archived"`
}

// TopRepo is the reduced repository projection embedded in Stats.
type TopRepo struct {
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Homepage        *string   `json:"homepage"`
	Language        *string   `json:"language"`
	Topics          []string  `json:"topics"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

// StatsProfile is the reduced profile snapshot embedded in Stats.
type StatsProfile struct {
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	AvatarURL   string  `json:"avatar_url"`
	Bio         *string `json:"bio"`
	PublicRepos int     `json:"public_repos"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
}

// Stats is the singleton aggregate recomputed and overwritten on every
// successful sync cycle.
type Stats struct {
	TotalStars           int               `json:"totalStars"`
	TotalForks           int               `json:"totalForks"`
	TotalCommits         int               `json:"totalCommits"`
	TotalPRs             int               `json:"totalPRs"`
	TotalIssues          int               `json:"totalIssues"`
	TotalCreateEvents    int               `json:"totalCreateEvents"`
	RepoCount            int               `json:"repoCount"`
	LanguageDistribution map[string]int    `json:"languageDistribution"`
	MonthlyActivity      []MonthlyActivity `json:"monthlyActivity"`
	CommitsByMonth       map[string]int    `json:"commitsByMonth"`
	DayOfWeekActivity    [7]int            `json:"dayOfWeekActivity"`
	HourActivity         [24]int           `json:"hourActivity"`
	ProjectStatus        ProjectStatus     `json:"projectStatus"`
	TopRepos             []TopRepo         `json:"topRepos"`
	Profile              StatsProfile      `json:"profile"`
	SyncedAt             *time.Time        `json:"synced_at,omitempty"`
}
