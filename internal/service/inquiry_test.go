package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aman-churiwal/inquiry-webhook/internal/models"
	"github.com/aman-churiwal/inquiry-webhook/internal/validation"
)

type fakeInquiryStore struct {
	lock sync.Mutex
	mu   sync.Mutex
	rows []models.Inquiry

	findErr   error
	createErr error
	updates   int
	lockKeys  []string
}

func (f *fakeInquiryStore) WithKeyLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.mu.Lock()
	f.lockKeys = append(f.lockKeys, key)
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeInquiryStore) FindRecent(_ context.Context, phone, campaign string, since time.Time) (*models.Inquiry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var found *models.Inquiry
	for i := range f.rows {
		row := f.rows[i]
		if row.Phone == phone && row.UTMCampaign == campaign && !row.CreatedAt.Before(since) {
			if found == nil || row.CreatedAt.After(found.CreatedAt) {
				found = &row
			}
		}
	}
	return found, nil
}

func (f *fakeInquiryStore) Create(_ context.Context, inquiry *models.Inquiry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, *inquiry)
	return nil
}

func (f *fakeInquiryStore) UpdateRequest(_ context.Context, id uuid.UUID, request string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Request = request
			return nil
		}
	}
	return errors.New("not found")
}

func strPtr(s string) *string { return &s }

func newTestInquiryService(store InquiryStore, now *time.Time) *InquiryService {
	return NewInquiryService(store, Options{
		Location: time.UTC,
		Now:      func() time.Time { return *now },
	})
}

func TestInquiryService_InsertSanitizes(t *testing.T) {
	t.Parallel()

	store := &fakeInquiryStore{}
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestInquiryService(store, &now)

	res, err := svc.Submit(context.Background(), validation.InquiryPayload{
		Name:        strPtr("<b>Kim</b>"),
		Phone:       strPtr("010-1111-2222"),
		Product:     strPtr("<i>Plan A</i>"),
		UTMCampaign: strPtr("camp-a"),
		Birthday:    strPtr("1990-01-01"),
		Request:     strPtr("a &lt;3 b<script>"),
	})
	require.NoError(t, err)
	require.Equal(t, ActionInsert, res.Action)
	require.False(t, res.Duplicate)

	require.Len(t, store.rows, 1)
	row := store.rows[0]
	require.Equal(t, res.ID, row.ID.String())
	require.Equal(t, "Kim", row.CustomerName)
	require.Equal(t, "Plan A", row.ProductName)
	require.Equal(t, "a &lt;3 b", row.Request)
	require.Equal(t, "", row.Sex)
	require.Equal(t, now, row.CreatedAt)
	require.Equal(t, []string{"010-1111-2222\x00camp-a"}, store.lockKeys)
}

func TestInquiryService_UpdateOnlyTouchesRequest(t *testing.T) {
	t.Parallel()

	store := &fakeInquiryStore{}
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestInquiryService(store, &now)
	ctx := context.Background()

	first, err := svc.Submit(ctx, validation.InquiryPayload{Name: strPtr("Kim"), Phone: strPtr("010-1111-2222"), UTMCampaign: strPtr("camp-a")})
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	res, err := svc.Submit(ctx, validation.InquiryPayload{
		Name:        strPtr("Park"),
		Phone:       strPtr("010-1111-2222"),
		UTMCampaign: strPtr("camp-a"),
		Request:     strPtr("<p>추가 문의</p>"),
	})
	require.NoError(t, err)
	require.Equal(t, ActionUpdate, res.Action)
	require.True(t, res.Duplicate)
	require.Equal(t, first.ID, res.ID)
	require.Equal(t, "Duplicate inquiry updated", res.Message)

	require.Len(t, store.rows, 1)
	require.Equal(t, "추가 문의", store.rows[0].Request)
	require.Equal(t, "Kim", store.rows[0].CustomerName)
}

func TestInquiryService_IgnoreWritesNothing(t *testing.T) {
	t.Parallel()

	store := &fakeInquiryStore{}
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestInquiryService(store, &now)
	ctx := context.Background()

	payload := validation.InquiryPayload{Phone: strPtr("010-1111-2222"), UTMCampaign: strPtr("camp-a"), Request: strPtr("   ")}
	_, err := svc.Submit(ctx, payload)
	require.NoError(t, err)

	// A request that sanitizes to empty counts as absent.
	payload.Request = strPtr("<br/>")
	res, err := svc.Submit(ctx, payload)
	require.NoError(t, err)
	require.Equal(t, ActionIgnore, res.Action)
	require.Zero(t, store.updates)
	require.Len(t, store.rows, 1)
}

func TestInquiryService_WindowBoundary(t *testing.T) {
	t.Parallel()

	store := &fakeInquiryStore{}
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestInquiryService(store, &now)
	ctx := context.Background()
	payload := validation.InquiryPayload{Phone: strPtr("010-3333-4444"), UTMCampaign: strPtr("camp-b")}

	_, err := svc.Submit(ctx, payload)
	require.NoError(t, err)

	// Exactly at the boundary the earlier record still counts.
	now = now.Add(DedupeWindow)
	res, err := svc.Submit(ctx, payload)
	require.NoError(t, err)
	require.Equal(t, ActionIgnore, res.Action)

	now = now.Add(time.Nanosecond)
	res, err = svc.Submit(ctx, payload)
	require.NoError(t, err)
	require.Equal(t, ActionInsert, res.Action)
	require.Len(t, store.rows, 2)
}

func TestInquiryService_ConcurrentSubmitsKeepOneRecord(t *testing.T) {
	t.Parallel()

	store := &fakeInquiryStore{}
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestInquiryService(store, &now)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), validation.InquiryPayload{Phone: strPtr("010-1111-2222"), UTMCampaign: strPtr("camp-a")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	require.Len(t, store.rows, 1)
}

func TestInquiryService_StoreErrors(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	boom := errors.New("boom")

	store := &fakeInquiryStore{findErr: boom}
	_, err := newTestInquiryService(store, &now).Submit(context.Background(), validation.InquiryPayload{})
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "find recent inquiry")

	store = &fakeInquiryStore{createErr: boom}
	_, err = newTestInquiryService(store, &now).Submit(context.Background(), validation.InquiryPayload{})
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "create inquiry")
}
