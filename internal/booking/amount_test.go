package booking_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

func TestExpectedAmountDue(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *booking.Booking)
		want  string
	}{
		{name: "Full", setup: func(*booking.Booking) {}, want: "100"},
		{name: "SecondChild", setup: func(b *booking.Booking) { b.PriceType = pricing.TypeSecondChild }, want: "90"},
		{name: "ThirdChild", setup: func(b *booking.Booking) { b.PriceType = pricing.TypeThirdChild }, want: "80"},
		{name: "Transport", setup: func(b *booking.Booking) { b.SouthWalesTransport = true }, want: "115"},
		{name: "EarlyBird", setup: func(b *booking.Booking) { b.EarlyBirdDiscount = true }, want: "90"},
		{
			name: "TransportAndEarlyBird",
			setup: func(b *booking.Booking) {
				b.SouthWalesTransport = true
				b.EarlyBirdDiscount = true
			},
			want: "105",
		},
		{
			name: "CustomKeepsAmount",
			setup: func(b *booking.Booking) {
				b.PriceType = pricing.TypeCustom
				b.AmountDue = dec("55.50")
			},
			want: "55.5",
		},
		{name: "DepositKept", setup: func(b *booking.Booking) { b.State = booking.StateCancelledDepositKept }, want: "20"},
		{name: "FullRefund", setup: func(b *booking.Booking) { b.State = booking.StateCancelledFullRefund }, want: "0"},
		{name: "HalfRefund", setup: func(b *booking.Booking) { b.State = booking.StateCancelledHalfRefund }, want: "50"},
		{
			name: "HalfRefundIsHalfFullPrice",
			setup: func(b *booking.Booking) {
				b.State = booking.StateCancelledHalfRefund
				b.PriceType = pricing.TypeThirdChild
				b.SouthWalesTransport = true
				b.EarlyBirdDiscount = true
			},
			want: "50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBooking(newCamp(), uuid.New(), "Amy")
			tt.setup(b)

			got, err := booking.ExpectedAmountDue(b, priceTable(2026))
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestExpectedAmountDue_MissingPrice(t *testing.T) {
	b := newBooking(newCamp(), uuid.New(), "Amy")
	table := pricing.NewTable(2026, []pricing.Price{{Year: 2026, Type: pricing.TypeSecondChild, Price: dec("90")}})

	_, err := booking.ExpectedAmountDue(b, table)
	assert.ErrorIs(t, err, pricing.ErrNotFound)
}

func TestAutoSetAmountDue_Idempotent(t *testing.T) {
	b := newBooking(newCamp(), uuid.New(), "Amy")
	b.EarlyBirdDiscount = true
	b.SouthWalesTransport = true

	table := priceTable(2026)

	require.NoError(t, b.AutoSetAmountDue(table))
	first := b.AmountDue

	require.NoError(t, b.AutoSetAmountDue(table))
	assert.True(t, first.Equal(b.AmountDue))
	assert.Equal(t, "105.00", b.AmountDue.StringFixed(2))
}

func TestAmountNowDue(t *testing.T) {
	const fullPaymentDue = 90 * 24 * time.Hour

	tests := []struct {
		name          string
		campStart     time.Time
		amountDue     decimal.Decimal
		allowDeposits bool
		want          string
	}{
		{
			name:          "DepositWhenCampIsFarOff",
			campStart:     now.AddDate(0, 6, 0),
			amountDue:     dec("100"),
			allowDeposits: true,
			want:          "20",
		},
		{
			name:          "FullWhenCampIsClose",
			campStart:     now.AddDate(0, 0, 30),
			amountDue:     dec("100"),
			allowDeposits: true,
			want:          "100",
		},
		{
			name:      "FullWhenDepositsNotAllowed",
			campStart: now.AddDate(0, 6, 0),
			amountDue: dec("100"),
			want:      "100",
		},
		{
			name:          "AmountBelowDeposit",
			campStart:     now.AddDate(0, 6, 0),
			amountDue:     dec("15"),
			allowDeposits: true,
			want:          "15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camp := newCamp()
			camp.StartDate = tt.campStart

			b := newBooking(camp, uuid.New(), "Amy")
			b.AmountDue = tt.amountDue

			got := booking.AmountNowDue(b, priceTable(2026), tt.allowDeposits, fullPaymentDue, now)
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
