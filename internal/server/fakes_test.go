package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aman-churiwal/inquiry-webhook/internal/models"
	"github.com/aman-churiwal/inquiry-webhook/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type memInquiryStore struct {
	lock sync.Mutex
	mu   sync.Mutex
	rows []models.Inquiry
	err  error
}

func (s *memInquiryStore) WithKeyLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return fn(ctx)
}

func (s *memInquiryStore) FindRecent(_ context.Context, phone, campaign string, since time.Time) (*models.Inquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	var found *models.Inquiry
	for i := range s.rows {
		row := s.rows[i]
		if row.Phone != phone || row.UTMCampaign != campaign || row.CreatedAt.Before(since) {
			continue
		}
		if found == nil || row.CreatedAt.After(found.CreatedAt) {
			found = &row
		}
	}
	return found, nil
}

func (s *memInquiryStore) Create(_ context.Context, inquiry *models.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, *inquiry)
	return nil
}

func (s *memInquiryStore) UpdateRequest(_ context.Context, id uuid.UUID, request string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Request = request
			return nil
		}
	}
	return errors.New("not found")
}

func (s *memInquiryStore) FindByTimeRange(_ context.Context, from, to time.Time, limit, offset int) ([]models.Inquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Inquiry
	for _, row := range s.rows {
		if !row.CreatedAt.Before(from) && !row.CreatedAt.After(to) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memInquiryStore) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	rows, err := s.FindByTimeRange(ctx, from, to, len(s.snapshot()), 0)
	return int64(len(rows)), err
}

func (s *memInquiryStore) snapshot() []models.Inquiry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Inquiry(nil), s.rows...)
}

type memRecruitStore struct {
	lock sync.Mutex
	mu   sync.Mutex
	rows []models.RecruitInquiry
}

func (s *memRecruitStore) WithKeyLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return fn(ctx)
}

func (s *memRecruitStore) FindRecent(_ context.Context, phone string, since time.Time) (*models.RecruitInquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *models.RecruitInquiry
	for i := range s.rows {
		row := s.rows[i]
		if row.Phone != phone || row.CreatedAt.Before(since) {
			continue
		}
		if found == nil || row.CreatedAt.After(found.CreatedAt) {
			found = &row
		}
	}
	return found, nil
}

func (s *memRecruitStore) Create(_ context.Context, inquiry *models.RecruitInquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, *inquiry)
	return nil
}

func (s *memRecruitStore) UpdateRequest(_ context.Context, id uuid.UUID, request string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Request = request
			return nil
		}
	}
	return errors.New("not found")
}

func (s *memRecruitStore) FindByTimeRange(context.Context, time.Time, time.Time, int, int) ([]models.RecruitInquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RecruitInquiry(nil), s.rows...), nil
}

func (s *memRecruitStore) CountByTimeRange(context.Context, time.Time, time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rows)), nil
}

func (s *memRecruitStore) snapshot() []models.RecruitInquiry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RecruitInquiry(nil), s.rows...)
}

type memDeliveryStore struct {
	mu   sync.Mutex
	logs []models.DeliveryLog
}

func (s *memDeliveryStore) CreateBatch(_ context.Context, logs []models.DeliveryLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, logs...)
	return nil
}

func (s *memDeliveryStore) CountByOutcome(context.Context, time.Time, time.Time) ([]repository.OutcomeCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[[2]string]int64{}
	for _, l := range s.logs {
		counts[[2]string{l.Endpoint, l.Outcome}]++
	}
	var out []repository.OutcomeCount
	for k, n := range counts {
		out = append(out, repository.OutcomeCount{Endpoint: k[0], Outcome: k[1], Count: n})
	}
	return out, nil
}

func (s *memDeliveryStore) GetAverageResponseTime(context.Context, time.Time, time.Time) (float64, error) {
	return 1, nil
}

func (s *memDeliveryStore) DeleteOldLogs(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *memDeliveryStore) snapshot() []models.DeliveryLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DeliveryLog(nil), s.logs...)
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = map[string]models.User{}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.Email] = *user
	return nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
