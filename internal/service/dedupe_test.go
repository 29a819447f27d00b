package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		found   bool
		request string
		want    Action
	}{
		{"no match inserts", false, "", ActionInsert},
		{"no match with request inserts", false, "call me", ActionInsert},
		{"match with request updates", true, "추가 문의", ActionUpdate},
		{"match without request ignores", true, "", ActionIgnore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Decide(tt.found, tt.request))
		})
	}
}

func TestNewResult(t *testing.T) {
	t.Parallel()

	r := newResult("id-1", ActionInsert, "Inquiry")
	require.False(t, r.Duplicate)
	require.Equal(t, "Inquiry received", r.Message)

	r = newResult("id-1", ActionUpdate, "inquiry")
	require.True(t, r.Duplicate)
	require.Equal(t, "Duplicate inquiry updated", r.Message)

	r = newResult("id-1", ActionIgnore, "inquiry")
	require.True(t, r.Duplicate)
	require.Equal(t, "Duplicate inquiry ignored", r.Message)
	require.Equal(t, "ignore", r.Action.String())
}

func TestInquiryDate(t *testing.T) {
	t.Parallel()

	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// 16:00 UTC on April 30 is already May 1 in Seoul.
	now := time.Date(2024, 4, 30, 16, 0, 0, 0, time.UTC)

	d, err := inquiryDate("", now, seoul)
	require.NoError(t, err)
	require.Equal(t, "2024-05-01", time.Time(d).Format("2006-01-02"))

	d, err = inquiryDate("2023-12-24", now, seoul)
	require.NoError(t, err)
	require.Equal(t, "2023-12-24", time.Time(d).Format("2006-01-02"))

	_, err = inquiryDate("2023-02-30", now, seoul)
	require.Error(t, err)
}
