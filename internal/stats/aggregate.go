// internal/stats/aggregate.go

// Package stats derives the dashboard aggregate from a freshly fetched
// snapshot of repositories, events, and the account profile.
package stats

import (
	"sort"
	"time"

	"github-activity-service/internal/model"
	"github-activity-service/internal/topics"
)

// activeWindow is how recently a repository must have been pushed to count
// as active.
const activeWindow = 90 * 24 * time.Hour

const topRepoCount = 6

// Aggregate computes the Stats payload for one sync cycle. It is a pure
// function of its inputs plus the supplied reference time; running it twice
// on the same inputs yields identical output. All calendar bucketing is done
// in UTC.
func Aggregate(repos []model.Repository, events []model.Event, profile model.Profile, now time.Time) model.Stats {
	s := model.Stats{
		RepoCount:            len(repos),
		LanguageDistribution: map[string]int{},
		CommitsByMonth:       map[string]int{},
		Profile: model.StatsProfile{
			Login:       profile.Login,
			Name:        profile.Name,
			AvatarURL:   profile.AvatarURL,
			Bio:         profile.Bio,
			PublicRepos: profile.PublicRepos,
			Followers:   profile.Followers,
			Following:   profile.Following,
		},
	}

	for _, r := range repos {
		s.TotalStars += r.StargazersCount
		s.TotalForks += r.ForksCount
		if r.Language != nil {
			s.LanguageDistribution[*r.Language]++
		}
		switch {
		case r.Archived:
			s.ProjectStatus.Archived++
		case now.Sub(r.PushedAt) < activeWindow:
			s.ProjectStatus.Active++
		}
	}
	s.ProjectStatus.Inactive = len(repos) - s.ProjectStatus.Active - s.ProjectStatus.Archived

	// Month buckets are keyed by the short month label only, so activity from
	// the same month of different years merges. The event feed never spans a
	// full year, which keeps this harmless in practice.
	monthIndex := map[string]int{}
	var monthly []model.MonthlyActivity

	for _, e := range events {
		at := e.EventAt.UTC()
		month := at.Format("Jan")

		i, ok := monthIndex[month]
		if !ok {
			i = len(monthly)
			monthIndex[month] = i
			monthly = append(monthly, model.MonthlyActivity{Month: month})
		}

		switch e.Type {
		case model.EventTypePush:
			n := len(e.Payload.Commits)
			s.TotalCommits += n
			s.CommitsByMonth[month] += n
			monthly[i].Commits += n
		case model.EventTypePullRequest:
			s.TotalPRs++
			monthly[i].PRs++
		case model.EventTypeIssues:
			s.TotalIssues++
			monthly[i].Issues++
		case model.EventTypeCreate:
			s.TotalCreateEvents++
		}

		// The feed uses Sunday=0; the dashboard week starts at Monday.
		day := int(at.Weekday())
		if day == 0 {
			s.DayOfWeekActivity[6]++
		} else {
			s.DayOfWeekActivity[day-1]++
		}
		s.HourActivity[at.Hour()]++
	}

	// The feed is newest-first, so the grouped months are too; reverse for
	// chronological chart rendering.
	for l, r := 0, len(monthly)-1; l < r; l, r = l+1, r-1 {
		monthly[l], monthly[r] = monthly[r], monthly[l]
	}
	s.MonthlyActivity = monthly

	s.TopRepos = topRepos(repos)

	return s
}

// topRepos returns the topRepoCount most popular repositories by stars+forks.
func topRepos(repos []model.Repository) []model.TopRepo {
	ranked := make([]model.Repository, len(repos))
	copy(ranked, repos)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].StargazersCount+ranked[i].ForksCount >
			ranked[j].StargazersCount+ranked[j].ForksCount
	})

	if len(ranked) > topRepoCount {
		ranked = ranked[:topRepoCount]
	}

	top := make([]model.TopRepo, 0, len(ranked))
	for _, r := range ranked {
		top = append(top, model.TopRepo{
			Name:            r.Name,
			Description:     r.Description,
			HTMLURL:         r.HTMLURL,
			Homepage:        r.Homepage,
			Language:        r.Language,
			Topics:          topics.Infer(r),
			StargazersCount: r.StargazersCount,
			ForksCount:      r.ForksCount,
			UpdatedAt:       r.GithubUpdatedAt,
			PushedAt:        r.PushedAt,
		})
	}
	return top
}
