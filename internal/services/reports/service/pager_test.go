package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/services/reports/domain"
)

func spendRows(n int) []domain.CampaignSpendRow {
	out := make([]domain.CampaignSpendRow, n)
	for i := range out {
		out[i] = domain.CampaignSpendRow{CampaignName: "c", Date: "2024-01-01"}
	}
	return out
}

func pageFn(f *fakeSpend) PageFunc[domain.CampaignSpendRow] {
	return func(ctx context.Context, offset, size int) (domain.Page[domain.CampaignSpendRow], error) {
		return f.SpendPage(ctx, "2024-01-01", offset, size)
	}
}

func TestFetchAll_ZeroRecordsIsOneCall(t *testing.T) {
	f := &fakeSpend{total: 0}
	rows, err := FetchAll(context.Background(), 300, pageFn(f))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, []int{0}, f.offsets)
}

func TestFetchAll_WalksPagesInOrder(t *testing.T) {
	f := &fakeSpend{total: 650, rows: spendRows(650)}
	rows, err := FetchAll(context.Background(), 300, pageFn(f))
	require.NoError(t, err)
	assert.Len(t, rows, 650)
	assert.Equal(t, []int{0, 300, 600}, f.offsets)
}

func TestFetchAll_ClampsPageSize(t *testing.T) {
	assert.Equal(t, 300, ClampPageSize(1000))
	assert.Equal(t, 1, ClampPageSize(0))
	assert.Equal(t, 1, ClampPageSize(-5))
	assert.Equal(t, 50, ClampPageSize(50))

	f := &fakeSpend{total: 301, rows: spendRows(301)}
	_, err := FetchAll(context.Background(), 5000, pageFn(f))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 300}, f.offsets)
}

func TestFetchAll_EarlyStopOnEmptyPage(t *testing.T) {
	f := &fakeSpend{total: 900, rows: spendRows(400)}
	rows, err := FetchAll(context.Background(), 300, pageFn(f))
	require.NoError(t, err)
	assert.Len(t, rows, 400)
	assert.Equal(t, []int{0, 300, 600}, f.offsets)
}

func TestFetchAll_ErrorDiscardsRows(t *testing.T) {
	calls := 0
	rows, err := FetchAll(context.Background(), 2, func(_ context.Context, offset, size int) (domain.Page[int], error) {
		calls++
		if offset == 2 {
			return domain.Page[int]{}, errBoom
		}
		return domain.Page[int]{Total: 6, Rows: []int{offset, offset + 1}}, nil
	})
	assert.Nil(t, rows)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeRequestFailed))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls)
}

func TestFetchAll_EmptyFirstPageWithTotal(t *testing.T) {
	f := &fakeSpend{total: 10}
	rows, err := FetchAll(context.Background(), 300, pageFn(f))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Len(t, f.offsets, 1)
}
