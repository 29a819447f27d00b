package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-churiwal/inquiry-webhook/internal/models"
	"github.com/aman-churiwal/inquiry-webhook/internal/repository"
)

type InquiryReader interface {
	FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]models.Inquiry, error)
	CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error)
}

type RecruitReader interface {
	FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]models.RecruitInquiry, error)
	CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error)
}

type DeliveryLogReader interface {
	CountByOutcome(ctx context.Context, from, to time.Time) ([]repository.OutcomeCount, error)
	GetAverageResponseTime(ctx context.Context, from, to time.Time) (float64, error)
	DeleteOldLogs(ctx context.Context, before time.Time) (int64, error)
}

// AdminService backs the read-only staff API.
type AdminService struct {
	inquiries  InquiryReader
	recruits   RecruitReader
	deliveries DeliveryLogReader
	now        func() time.Time
}

func NewAdminService(inquiries InquiryReader, recruits RecruitReader, deliveries DeliveryLogReader) *AdminService {
	return &AdminService{
		inquiries:  inquiries,
		recruits:   recruits,
		deliveries: deliveries,
		now:        time.Now,
	}
}

// Page is one page of a listing together with the total in range.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func (s *AdminService) ListInquiries(ctx context.Context, from, to time.Time, limit, offset int) (*Page[models.Inquiry], error) {
	items, err := s.inquiries.FindByTimeRange(ctx, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	total, err := s.inquiries.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("count inquiries: %w", err)
	}
	if items == nil {
		items = []models.Inquiry{}
	}
	return &Page[models.Inquiry]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *AdminService) ListRecruitInquiries(ctx context.Context, from, to time.Time, limit, offset int) (*Page[models.RecruitInquiry], error) {
	items, err := s.recruits.FindByTimeRange(ctx, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recruit inquiries: %w", err)
	}
	total, err := s.recruits.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("count recruit inquiries: %w", err)
	}
	if items == nil {
		items = []models.RecruitInquiry{}
	}
	return &Page[models.RecruitInquiry]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// Holds delivery counts for a time range
type DeliveryStats struct {
	From            time.Time                 `json:"from"`
	To              time.Time                 `json:"to"`
	Total           int64                     `json:"total"`
	AvgResponseTime float64                   `json:"avg_response_time_ms"`
	ByOutcome       map[string]int64          `json:"by_outcome"`
	Rows            []repository.OutcomeCount `json:"rows"`
}

func (s *AdminService) DeliveryStats(ctx context.Context, from, to time.Time) (*DeliveryStats, error) {
	rows, err := s.deliveries.CountByOutcome(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("count deliveries: %w", err)
	}

	stats := &DeliveryStats{
		From:      from,
		To:        to,
		ByOutcome: make(map[string]int64),
		Rows:      rows,
	}
	if stats.Rows == nil {
		stats.Rows = []repository.OutcomeCount{}
	}
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByOutcome[row.Outcome] += row.Count
	}

	if stats.Total == 0 {
		return stats, nil
	}

	avg, err := s.deliveries.GetAverageResponseTime(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("average response time: %w", err)
	}
	stats.AvgResponseTime = avg

	return stats, nil
}

// Deletes delivery logs older than the retention period
func (s *AdminService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	cutOffDate := s.now().AddDate(0, 0, -retentionDays)
	return s.deliveries.DeleteOldLogs(ctx, cutOffDate)
}
