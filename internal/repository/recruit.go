package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aman-churiwal/inquiry-webhook/internal/models"
	"github.com/aman-churiwal/inquiry-webhook/internal/storage"
)

type RecruitRepository struct {
	db *storage.Postgres
}

func NewRecruitRepository(db *storage.Postgres) *RecruitRepository {
	return &RecruitRepository{db: db}
}

func (r *RecruitRepository) WithKeyLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return r.db.WithKeyLock(ctx, "recruit_inquiries:"+key, fn)
}

// Returns the newest recruit inquiry for phone created at or after since
func (r *RecruitRepository) FindRecent(ctx context.Context, phone string, since time.Time) (*models.RecruitInquiry, error) {
	var inquiry models.RecruitInquiry
	err := r.db.Conn(ctx).
		Where("phone = ? AND created_at >= ?", phone, since).
		Order("created_at DESC").
		First(&inquiry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return &inquiry, err
}

func (r *RecruitRepository) Create(ctx context.Context, inquiry *models.RecruitInquiry) error {
	return r.db.Conn(ctx).Create(inquiry).Error
}

func (r *RecruitRepository) UpdateRequest(ctx context.Context, id uuid.UUID, request string) error {
	return r.db.Conn(ctx).
		Model(&models.RecruitInquiry{}).
		Where("id = ?", id).
		Update("request", request).Error
}

func (r *RecruitRepository) FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]models.RecruitInquiry, error) {
	var inquiries []models.RecruitInquiry

	err := r.db.Conn(ctx).
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&inquiries).Error

	return inquiries, err
}

func (r *RecruitRepository) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64

	err := r.db.Conn(ctx).
		Model(&models.RecruitInquiry{}).
		Where("created_at BETWEEN ? AND ?", from, to).
		Count(&count).Error

	return count, err
}
