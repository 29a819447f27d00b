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

type InquiryRepository struct {
	db *storage.Postgres
}

func NewInquiryRepository(db *storage.Postgres) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// Serializes callers sharing a dedupe key for the duration of fn
func (r *InquiryRepository) WithKeyLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return r.db.WithKeyLock(ctx, "inquiries:"+key, fn)
}

// Returns the newest inquiry for phone and campaign created at or after since
func (r *InquiryRepository) FindRecent(ctx context.Context, phone, campaign string, since time.Time) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := r.db.Conn(ctx).
		Where("phone = ? AND utm_campaign = ? AND created_at >= ?", phone, campaign, since).
		Order("created_at DESC").
		First(&inquiry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return &inquiry, err
}

func (r *InquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	return r.db.Conn(ctx).Create(inquiry).Error
}

// Updates only the request note of an existing inquiry
func (r *InquiryRepository) UpdateRequest(ctx context.Context, id uuid.UUID, request string) error {
	return r.db.Conn(ctx).
		Model(&models.Inquiry{}).
		Where("id = ?", id).
		Update("request", request).Error
}

// Retrieves inquiries within a time range, newest first
func (r *InquiryRepository) FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry

	err := r.db.Conn(ctx).
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&inquiries).Error

	return inquiries, err
}

func (r *InquiryRepository) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64

	err := r.db.Conn(ctx).
		Model(&models.Inquiry{}).
		Where("created_at BETWEEN ? AND ?", from, to).
		Count(&count).Error

	return count, err
}
