package booking_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func priceTable(year int) *pricing.Table {
	return pricing.NewTable(year, []pricing.Price{
		{Year: year, Type: pricing.TypeFull, Price: dec("100")},
		{Year: year, Type: pricing.TypeSecondChild, Price: dec("90")},
		{Year: year, Type: pricing.TypeThirdChild, Price: dec("80")},
		{Year: year, Type: pricing.TypeDeposit, Price: dec("20")},
		{Year: year, Type: pricing.TypeEarlyBirdDiscount, Price: dec("10")},
		{Year: year, Type: pricing.TypeSouthWalesTransport, Price: dec("15")},
	})
}

// staticPrices serves fixed tables by year.
type staticPrices map[int]*pricing.Table

func (s staticPrices) Table(_ context.Context, year int) (*pricing.Table, error) {
	if t, ok := s[year]; ok {
		return t, nil
	}

	return pricing.NewTable(year, nil), nil
}

func newCamp() *booking.Camp {
	return &booking.Camp{
		ID:               uuid.New(),
		Name:             "Camp 3",
		Year:             2026,
		StartDate:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC),
		MinimumAge:       11,
		MaximumAge:       17,
		MaxCampers:       80,
		MaxMaleCampers:   40,
		MaxFemaleCampers: 40,
	}
}

func newBooking(camp *booking.Camp, accountID uuid.UUID, first string) *booking.Booking {
	return &booking.Booking{
		ID:          uuid.New(),
		AccountID:   accountID,
		Account:     booking.Contact{ID: accountID, Name: "Jane Smith", Email: "a@b.com"},
		CampID:      camp.ID,
		Camp:        camp,
		FirstName:   first,
		LastName:    "Smith",
		Sex:         booking.SexFemale,
		DateOfBirth: time.Date(2012, 5, 1, 0, 0, 0, 0, time.UTC),
		PriceType:   pricing.TypeFull,
		State:       booking.StateInfoComplete,
		CreatedAt:   now.Add(-time.Hour),
	}
}
