package repository

import (
	"context"
	"time"

	"github.com/aman-churiwal/inquiry-webhook/internal/models"
	"github.com/aman-churiwal/inquiry-webhook/internal/storage"
)

type DeliveryLogRepository struct {
	db *storage.Postgres
}

func NewDeliveryLogRepository(db *storage.Postgres) *DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

// Inserts multiple delivery logs (for batch insertion)
func (r *DeliveryLogRepository) CreateBatch(ctx context.Context, logs []models.DeliveryLog) error {
	if len(logs) == 0 {
		return nil
	}

	return r.db.Conn(ctx).Create(&logs).Error
}

// Retrieves logs within a time range
func (r *DeliveryLogRepository) FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]models.DeliveryLog, error) {
	var logs []models.DeliveryLog

	err := r.db.Conn(ctx).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error

	return logs, err
}

// OutcomeCount is one row of CountByOutcome.
type OutcomeCount struct {
	Endpoint string `json:"endpoint"`
	Outcome  string `json:"outcome"`
	Count    int64  `json:"count"`
}

// Counts deliveries per endpoint and outcome in a time range
func (r *DeliveryLogRepository) CountByOutcome(ctx context.Context, from, to time.Time) ([]OutcomeCount, error) {
	var counts []OutcomeCount

	err := r.db.Conn(ctx).
		Model(&models.DeliveryLog{}).
		Select("endpoint, outcome, COUNT(*) as count").
		Where("timestamp BETWEEN ? AND ?", from, to).
		Group("endpoint, outcome").
		Order("endpoint, outcome").
		Scan(&counts).Error

	return counts, err
}

// Calculates average response time
func (r *DeliveryLogRepository) GetAverageResponseTime(ctx context.Context, from, to time.Time) (float64, error) {
	var avg *float64

	err := r.db.Conn(ctx).
		Model(&models.DeliveryLog{}).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Select("AVG(response_time_ms)").
		Scan(&avg).Error

	if avg == nil {
		return 0, err
	}
	return *avg, err
}

// Deletes logs older than the specified time
func (r *DeliveryLogRepository) DeleteOldLogs(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.Conn(ctx).
		Where("timestamp < ?", before).
		Delete(&models.DeliveryLog{})

	return result.RowsAffected, result.Error
}
