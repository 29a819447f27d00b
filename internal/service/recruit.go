package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aman-churiwal/inquiry-webhook/internal/models"
	"github.com/aman-churiwal/inquiry-webhook/internal/sanitize"
	"github.com/aman-churiwal/inquiry-webhook/internal/validation"
)

type RecruitStore interface {
	WithKeyLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
	FindRecent(ctx context.Context, phone string, since time.Time) (*models.RecruitInquiry, error)
	Create(ctx context.Context, inquiry *models.RecruitInquiry) error
	UpdateRequest(ctx context.Context, id uuid.UUID, request string) error
}

type RecruitService struct {
	store RecruitStore
	opts  Options
}

func NewRecruitService(store RecruitStore, opts Options) *RecruitService {
	return &RecruitService{store: store, opts: opts.withDefaults()}
}

// Submit stores a validated job application. Applications are deduplicated on
// phone alone.
func (s *RecruitService) Submit(ctx context.Context, p validation.RecruitPayload) (*Result, error) {
	now := s.opts.Now()

	date, err := inquiryDate(sanitize.StripMarkup(p.Date), now, s.opts.Location)
	if err != nil {
		return nil, fmt.Errorf("parse inquiry date: %w", err)
	}

	inquiry := &models.RecruitInquiry{
		ID:          uuid.New(),
		Name:        sanitize.StripMarkup(p.Name),
		Phone:       sanitize.StripMarkup(p.Phone),
		Age:         sanitize.StripMarkup(p.Age),
		Area:        sanitize.StripMarkup(p.Area),
		Career:      sanitize.StripMarkup(p.Career),
		Request:     sanitize.StripMarkup(p.Request),
		RefererPage: sanitize.StripMarkup(p.RefererPage),
		UTMCampaign: sanitize.StripMarkup(p.UTMCampaign),
		SourceURL:   sanitize.StripMarkup(p.SourceURL),
		InquiryDate: date,
		CreatedAt:   now,
	}

	var result *Result
	err = s.store.WithKeyLock(ctx, inquiry.Phone, func(ctx context.Context) error {
		existing, err := s.store.FindRecent(ctx, inquiry.Phone, now.Add(-s.opts.Window))
		if err != nil {
			return fmt.Errorf("find recent recruit inquiry: %w", err)
		}

		switch action := Decide(existing != nil, inquiry.Request); action {
		case ActionInsert:
			if err := s.store.Create(ctx, inquiry); err != nil {
				return fmt.Errorf("create recruit inquiry: %w", err)
			}
			result = newResult(inquiry.ID.String(), action, "Application")
		case ActionUpdate:
			if err := s.store.UpdateRequest(ctx, existing.ID, inquiry.Request); err != nil {
				return fmt.Errorf("update recruit inquiry request: %w", err)
			}
			result = newResult(existing.ID.String(), action, "application")
		default:
			result = newResult(existing.ID.String(), action, "application")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
