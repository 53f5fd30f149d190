package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	"github.com/MrJamesThe3rd/campbooking/internal/ledger"
	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type staticPrices map[int]*pricing.Table

func (s staticPrices) Table(_ context.Context, year int) (*pricing.Table, error) {
	return s[year], nil
}

var prices = staticPrices{2026: pricing.NewTable(2026, []pricing.Price{
	{Year: 2026, Type: pricing.TypeFull, Price: dec("100")},
	{Year: 2026, Type: pricing.TypeSecondChild, Price: dec("90")},
	{Year: 2026, Type: pricing.TypeThirdChild, Price: dec("80")},
	{Year: 2026, Type: pricing.TypeDeposit, Price: dec("20")},
})}

// farCamp starts well outside the full-payment window, so only deposits are due.
func farCamp() *booking.Camp {
	return &booking.Camp{ID: uuid.New(), Name: "Camp 1", Year: 2026, StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
}

// nearCamp starts inside the full-payment window.
func nearCamp() *booking.Camp {
	return &booking.Camp{ID: uuid.New(), Name: "Camp 2", Year: 2026, StartDate: now.AddDate(0, 0, 20)}
}

func unconfirmed(camp *booking.Camp, accountID uuid.UUID, amount string, created time.Time) *booking.Booking {
	expires := now.Add(12 * time.Hour)

	return &booking.Booking{
		ID:             uuid.New(),
		AccountID:      accountID,
		Account:        booking.Contact{ID: accountID, Name: "Jane Smith", Email: "a@b.com"},
		CampID:         camp.ID,
		Camp:           camp,
		FirstName:      "Amy",
		LastName:       "Smith",
		PriceType:      pricing.TypeFull,
		AmountDue:      dec(amount),
		State:          booking.StateBooked,
		BookingExpires: &expires,
		CreatedAt:      created,
	}
}

type mocks struct {
	repo *ledger.MockRepository
	tx   *ledger.MockAllocationTx
}

func newMocks(t *testing.T) mocks {
	ctrl := gomock.NewController(t)

	return mocks{repo: ledger.NewMockRepository(ctrl), tx: ledger.NewMockAllocationTx(ctrl)}
}

func (m mocks) service() *ledger.Service {
	return ledger.NewService(m.repo, prices, ledger.DefaultPolicy())
}

// expectAllocation wires one allocation pass over the given account state.
func (m mocks) expectAllocation(acct *ledger.Account, bs []*booking.Booking) {
	m.repo.EXPECT().BeginAllocation(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().LockAccount(gomock.Any(), acct.ID).Return(acct, nil)
	m.tx.EXPECT().ListAccountBookings(gomock.Any(), acct.ID).Return(bs, nil)
	m.tx.EXPECT().Rollback().Return(nil)
}
