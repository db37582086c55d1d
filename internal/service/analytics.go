package service

import (
	"context"
	"time"

	"github.com/atinyakov/JobTracker/internal/models"
)

// recentWindow is the trailing period counted by ApplicationsLast30Days.
const recentWindow = 30 * 24 * time.Hour

// StatsRepository is the read the analytics summary is computed from.
type StatsRepository interface {
	ListApplicationStats(ctx context.Context, userID string) ([]models.ApplicationStat, error)
}

// AnalyticsService computes dashboard statistics.
type AnalyticsService struct {
	repo StatsRepository
	now  func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(repo StatsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now}
}

// Summary aggregates the user's applications. The recent window is the
// closed interval [now-30d, now].
func (s *AnalyticsService) Summary(ctx context.Context, userID string) (models.Summary, error) {
	stats, err := s.repo.ListApplicationStats(ctx, userID)
	if err != nil {
		return models.Summary{}, err
	}
	return summarize(stats, s.now()), nil
}

func summarize(stats []models.ApplicationStat, now time.Time) models.Summary {
	out := models.Summary{
		TotalApplications: len(stats),
		StatusBreakdown:   make(map[models.Status]int, len(models.Statuses)),
	}
	for _, st := range models.Statuses {
		out.StatusBreakdown[st] = 0
	}

	since := now.Add(-recentWindow)
	interviews := 0
	for _, a := range stats {
		out.StatusBreakdown[a.Status]++
		if a.Status.ReachedInterview() {
			interviews++
		}
		if !a.CreatedAt.Before(since) && !a.CreatedAt.After(now) {
			out.ApplicationsLast30Days++
		}
	}
	if out.TotalApplications > 0 {
		out.InterviewRate = float64(interviews) / float64(out.TotalApplications)
	}
	return out
}
