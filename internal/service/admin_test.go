package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aman-churiwal/inquiry-webhook/internal/models"
	"github.com/aman-churiwal/inquiry-webhook/internal/repository"
)

type fakeDeliveryReader struct {
	rows      []repository.OutcomeCount
	avg       float64
	err       error
	deletedAt time.Time
}

func (f *fakeDeliveryReader) CountByOutcome(context.Context, time.Time, time.Time) ([]repository.OutcomeCount, error) {
	return f.rows, f.err
}

func (f *fakeDeliveryReader) GetAverageResponseTime(context.Context, time.Time, time.Time) (float64, error) {
	return f.avg, nil
}

func (f *fakeDeliveryReader) DeleteOldLogs(_ context.Context, before time.Time) (int64, error) {
	f.deletedAt = before
	return 3, nil
}

type emptyInquiryReader struct{}

func (emptyInquiryReader) FindByTimeRange(context.Context, time.Time, time.Time, int, int) ([]models.Inquiry, error) {
	return nil, nil
}

func (emptyInquiryReader) CountByTimeRange(context.Context, time.Time, time.Time) (int64, error) {
	return 0, nil
}

func TestAdminService_DeliveryStats(t *testing.T) {
	t.Parallel()

	deliveries := &fakeDeliveryReader{
		rows: []repository.OutcomeCount{
			{Endpoint: "inquiry", Outcome: models.OutcomeInserted, Count: 5},
			{Endpoint: "recruit", Outcome: models.OutcomeInserted, Count: 2},
			{Endpoint: "inquiry", Outcome: models.OutcomeRateLimited, Count: 1},
		},
		avg: 12.5,
	}
	svc := NewAdminService(emptyInquiryReader{}, nil, deliveries)

	stats, err := svc.DeliveryStats(context.Background(), time.Time{}, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 8, stats.Total)
	require.EqualValues(t, 7, stats.ByOutcome[models.OutcomeInserted])
	require.EqualValues(t, 1, stats.ByOutcome[models.OutcomeRateLimited])
	require.Equal(t, 12.5, stats.AvgResponseTime)

	deliveries.err = errors.New("boom")
	_, err = svc.DeliveryStats(context.Background(), time.Time{}, time.Now())
	require.ErrorContains(t, err, "count deliveries")
}

func TestAdminService_ListInquiriesNeverNil(t *testing.T) {
	t.Parallel()

	svc := NewAdminService(emptyInquiryReader{}, nil, &fakeDeliveryReader{})
	page, err := svc.ListInquiries(context.Background(), time.Time{}, time.Now(), 10, 0)
	require.NoError(t, err)
	require.NotNil(t, page.Items)
	require.Equal(t, 10, page.Limit)
}

func TestAdminService_CleanupOldLogs(t *testing.T) {
	t.Parallel()

	deliveries := &fakeDeliveryReader{}
	svc := NewAdminService(emptyInquiryReader{}, nil, deliveries)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	deleted, err := svc.CleanupOldLogs(context.Background(), 90)
	require.NoError(t, err)
	require.EqualValues(t, 3, deleted)
	require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), deliveries.deletedAt)
}
