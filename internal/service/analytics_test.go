package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/JobTracker/internal/models"
)

func newTestAnalytics(stats []models.ApplicationStat, err error) *AnalyticsService {
	svc := NewAnalyticsService(&mockAppRepo{
		ListApplicationStatsFunc: func(context.Context, string) ([]models.ApplicationStat, error) {
			return stats, err
		},
	})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestSummary_Empty(t *testing.T) {
	got, err := newTestAnalytics(nil, nil).Summary(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 0, got.TotalApplications)
	assert.Equal(t, 0.0, got.InterviewRate)
	assert.Len(t, got.StatusBreakdown, len(models.Statuses))
	for _, st := range models.Statuses {
		assert.Zero(t, got.StatusBreakdown[st])
	}
}

func TestSummary_InterviewRate(t *testing.T) {
	stats := []models.ApplicationStat{
		{Status: models.StatusInterview, CreatedAt: fixedNow},
		{Status: models.StatusInterview, CreatedAt: fixedNow},
		{Status: models.StatusApplied, CreatedAt: fixedNow},
		{Status: models.StatusRejected, CreatedAt: fixedNow},
	}
	got, err := newTestAnalytics(stats, nil).Summary(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 4, got.TotalApplications)
	assert.Equal(t, 0.5, got.InterviewRate)
	assert.Equal(t, 2, got.StatusBreakdown[models.StatusInterview])
	assert.Equal(t, 1, got.StatusBreakdown[models.StatusApplied])
	assert.Equal(t, 0, got.StatusBreakdown[models.StatusOffer])
}

func TestSummary_OfferCountsAsInterview(t *testing.T) {
	stats := []models.ApplicationStat{
		{Status: models.StatusOffer, CreatedAt: fixedNow},
		{Status: models.StatusDrafting, CreatedAt: fixedNow},
	}
	got, err := newTestAnalytics(stats, nil).Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.InterviewRate)
}

func TestSummary_RecentWindow(t *testing.T) {
	day := 24 * time.Hour
	stats := []models.ApplicationStat{
		{Status: models.StatusApplied, CreatedAt: fixedNow},                  // today
		{Status: models.StatusApplied, CreatedAt: fixedNow.Add(-30 * day)},   // boundary
		{Status: models.StatusApplied, CreatedAt: fixedNow.Add(-31 * day)},   // too old
		{Status: models.StatusApplied, CreatedAt: fixedNow.Add(-30*day - 1)}, // just outside
	}
	got, err := newTestAnalytics(stats, nil).Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalApplications)
	assert.Equal(t, 2, got.ApplicationsLast30Days)
}

func TestSummary_Error(t *testing.T) {
	wantErr := errors.New("db down")
	_, err := newTestAnalytics(nil, wantErr).Summary(context.Background(), "u1")
	assert.ErrorIs(t, err, wantErr)
}
