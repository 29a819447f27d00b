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

// InquiryStore persists inquiries. WithKeyLock serializes every call sharing
// key; FindRecent and the writes called from inside fn use its ctx.
type InquiryStore interface {
	WithKeyLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
	FindRecent(ctx context.Context, phone, campaign string, since time.Time) (*models.Inquiry, error)
	Create(ctx context.Context, inquiry *models.Inquiry) error
	UpdateRequest(ctx context.Context, id uuid.UUID, request string) error
}

type InquiryService struct {
	store InquiryStore
	opts  Options
}

func NewInquiryService(store InquiryStore, opts Options) *InquiryService {
	return &InquiryService{store: store, opts: opts.withDefaults()}
}

// Submit stores a validated inquiry, folding it into a record with the same
// phone and campaign created within the dedupe window.
func (s *InquiryService) Submit(ctx context.Context, p validation.InquiryPayload) (*Result, error) {
	now := s.opts.Now()

	date, err := inquiryDate(sanitize.StripMarkup(p.Date), now, s.opts.Location)
	if err != nil {
		return nil, fmt.Errorf("parse inquiry date: %w", err)
	}

	inquiry := &models.Inquiry{
		ID:           uuid.New(),
		CustomerName: sanitize.StripMarkup(p.Name),
		Phone:        sanitize.StripMarkup(p.Phone),
		ProductName:  sanitize.StripMarkup(p.Product),
		UTMCampaign:  sanitize.StripMarkup(p.UTMCampaign),
		SourceURL:    sanitize.StripMarkup(p.SourceURL),
		InquiryDate:  date,
		Birthday:     sanitize.StripMarkup(p.Birthday),
		Sex:          sanitize.StripMarkup(p.Sex),
		Request:      sanitize.StripMarkup(p.Request),
		CreatedAt:    now,
	}

	var result *Result
	key := inquiry.Phone + "\x00" + inquiry.UTMCampaign
	err = s.store.WithKeyLock(ctx, key, func(ctx context.Context) error {
		existing, err := s.store.FindRecent(ctx, inquiry.Phone, inquiry.UTMCampaign, now.Add(-s.opts.Window))
		if err != nil {
			return fmt.Errorf("find recent inquiry: %w", err)
		}

		switch action := Decide(existing != nil, inquiry.Request); action {
		case ActionInsert:
			if err := s.store.Create(ctx, inquiry); err != nil {
				return fmt.Errorf("create inquiry: %w", err)
			}
			result = newResult(inquiry.ID.String(), action, "Inquiry")
		case ActionUpdate:
			if err := s.store.UpdateRequest(ctx, existing.ID, inquiry.Request); err != nil {
				return fmt.Errorf("update inquiry request: %w", err)
			}
			result = newResult(existing.ID.String(), action, "inquiry")
		default:
			result = newResult(existing.ID.String(), action, "inquiry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
