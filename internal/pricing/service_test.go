package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

func fullPrices(year int) []pricing.Price {
	return []pricing.Price{
		{Year: year, Type: pricing.TypeFull, Price: decimal.RequireFromString("100")},
		{Year: year, Type: pricing.TypeSecondChild, Price: decimal.RequireFromString("90")},
		{Year: year, Type: pricing.TypeThirdChild, Price: decimal.RequireFromString("80")},
		{Year: year, Type: pricing.TypeDeposit, Price: decimal.RequireFromString("20")},
	}
}

func TestTable_Complete(t *testing.T) {
	tests := []struct {
		name   string
		prices []pricing.Price
		want   bool
	}{
		{name: "AllRequired", prices: fullPrices(2026), want: true},
		{name: "Empty", prices: nil, want: false},
		{name: "MissingDeposit", prices: fullPrices(2026)[:3], want: false},
		{name: "OtherYear", prices: fullPrices(2025), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := pricing.NewTable(2026, tt.prices)
			assert.Equal(t, tt.want, table.Complete())
		})
	}
}

func TestTable_PriceFor(t *testing.T) {
	table := pricing.NewTable(2026, fullPrices(2026))

	p, err := table.PriceFor(pricing.TypeSecondChild)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("90").Equal(p))

	_, err = table.PriceFor(pricing.TypeEarlyBirdDiscount)
	assert.ErrorIs(t, err, pricing.ErrNotFound)

	var nilTable *pricing.Table

	_, ok := nilTable.Get(pricing.TypeFull)
	assert.False(t, ok)
}

func TestService_PriceFor(t *testing.T) {
	type testCase struct {
		name      string
		priceType pricing.PriceType
		setupMock func(m *pricing.MockRepository)
		want      decimal.Decimal
		wantErr   error
	}

	tests := []testCase{
		{
			name:      "Found",
			priceType: pricing.TypeFull,
			setupMock: func(m *pricing.MockRepository) {
				m.EXPECT().ListPrices(gomock.Any(), 2026).Return(fullPrices(2026), nil)
			},
			want: decimal.RequireFromString("100"),
		},
		{
			name:      "NotPublished",
			priceType: pricing.TypeFull,
			setupMock: func(m *pricing.MockRepository) {
				m.EXPECT().ListPrices(gomock.Any(), 2026).Return(nil, nil)
			},
			wantErr: pricing.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := pricing.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := pricing.NewService(repo).PriceFor(context.Background(), 2026, tt.priceType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestChecker_MemoisesTables(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := pricing.NewMockRepository(ctrl)
	repo.EXPECT().ListPrices(gomock.Any(), 2026).Return(fullPrices(2026), nil).Times(1)

	checker := pricing.NewChecker(pricing.NewService(repo))

	for range 3 {
		table, err := checker.Table(context.Background(), 2026)
		require.NoError(t, err)
		assert.True(t, table.Complete())
	}
}

func TestChecker_PropagatesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := pricing.NewMockRepository(ctrl)
	repo.EXPECT().ListPrices(gomock.Any(), 2026).Return(nil, errors.New("db down"))

	_, err := pricing.NewChecker(pricing.NewService(repo)).Table(context.Background(), 2026)
	assert.Error(t, err)
}
