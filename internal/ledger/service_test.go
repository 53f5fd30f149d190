package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	"github.com/MrJamesThe3rd/campbooking/internal/ledger"
	"github.com/MrJamesThe3rd/campbooking/internal/notify"
)

func TestService_RecordAndDeleteKeepTotals(t *testing.T) {
	m := newMocks(t)
	svc := m.service()
	ctx := context.Background()

	acct := &ledger.Account{ID: uuid.New()}
	stored := map[uuid.UUID]*ledger.Payment{}

	apply := func(p *ledger.Payment, sign int64) {
		for _, e := range p.Entries() {
			require.Equal(t, acct.ID, e.AccountID)
			acct.TotalReceived = acct.TotalReceived.Add(e.Amount.Mul(decimal.NewFromInt(sign)))
		}
	}

	m.repo.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *ledger.Payment) error {
		p.ID = uuid.New()
		stored[p.ID] = p
		apply(p, 1)

		return nil
	}).Times(2)
	m.repo.EXPECT().GetPayment(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id uuid.UUID) (*ledger.Payment, error) {
		return stored[id], nil
	})
	m.repo.EXPECT().DeletePayment(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *ledger.Payment) error {
		delete(stored, p.ID)
		apply(p, -1)

		return nil
	})

	// Only the incoming payment triggers an allocation pass.
	m.expectAllocation(acct, nil)

	_, err := svc.Record(ctx, &ledger.Payment{Kind: ledger.KindManual, AccountID: acct.ID, Amount: dec("100")}, now)
	require.NoError(t, err)
	assert.Equal(t, "100.00", acct.TotalReceived.StringFixed(2))

	refund, err := svc.Record(ctx, &ledger.Payment{Kind: ledger.KindRefund, AccountID: acct.ID, Amount: dec("100")}, now)
	require.NoError(t, err)
	assert.Equal(t, "0.00", acct.TotalReceived.StringFixed(2))
	assert.Equal(t, now, refund.Payment.CreatedAt)

	deleted, err := svc.Delete(ctx, refund.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.KindRefund, deleted.Kind)
	assert.Equal(t, "100.00", acct.TotalReceived.StringFixed(2))
}

func TestService_Record(t *testing.T) {
	t.Run("DepositConfirmsPlace", func(t *testing.T) {
		m := newMocks(t)
		acct := &ledger.Account{ID: uuid.New()}
		b := unconfirmed(farCamp(), acct.ID, "100", now.Add(-time.Hour))

		m.repo.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *ledger.Payment) error {
			acct.TotalReceived = acct.TotalReceived.Add(p.Amount)
			return nil
		})
		m.repo.EXPECT().BeginAllocation(gomock.Any()).Return(m.tx, nil)
		m.tx.EXPECT().LockAccount(gomock.Any(), acct.ID).Return(acct, nil)
		m.tx.EXPECT().ListAccountBookings(gomock.Any(), acct.ID).Return([]*booking.Booking{b}, nil)
		m.tx.EXPECT().ConfirmBookings(gomock.Any(), []uuid.UUID{b.ID}).Return(nil)
		m.tx.EXPECT().Commit().Return(nil)
		m.tx.EXPECT().Rollback().Return(nil)

		res, err := m.service().Record(context.Background(),
			&ledger.Payment{Kind: ledger.KindManual, AccountID: acct.ID, Amount: dec("20")}, now)
		require.NoError(t, err)

		require.Len(t, res.Confirmed, 1)
		assert.Nil(t, b.BookingExpires)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, notify.KindPlaceConfirmed, res.Notifications[0].Kind)

		m.repo.EXPECT().GetAccount(gomock.Any(), acct.ID).Return(acct, nil).Times(3)
		m.repo.EXPECT().ListAccountBookings(gomock.Any(), acct.ID).Return([]*booking.Booking{b}, nil).Times(3)

		full, err := m.service().BalanceFull(context.Background(), acct.ID, now)
		require.NoError(t, err)
		assert.Equal(t, "80.00", full.StringFixed(2))

		dueNow, err := m.service().BalanceDueNow(context.Background(), acct.ID, now)
		require.NoError(t, err)
		assert.Equal(t, "0.00", dueNow.StringFixed(2))

		confirmed, err := m.service().BalanceConfirmed(context.Background(), acct.ID, now)
		require.NoError(t, err)
		assert.Equal(t, "0.00", confirmed.StringFixed(2))
	})

	t.Run("InvalidPayment", func(t *testing.T) {
		m := newMocks(t)

		_, err := m.service().Record(context.Background(),
			&ledger.Payment{Kind: ledger.KindManual, AccountID: uuid.New(), Amount: dec("-5")}, now)
		assert.ErrorIs(t, err, ledger.ErrInvalidPayment)
	})

	t.Run("AllocationFailureKeepsPayment", func(t *testing.T) {
		m := newMocks(t)

		m.repo.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
		m.repo.EXPECT().BeginAllocation(gomock.Any()).Return(nil, errors.New("db down"))

		res, err := m.service().Record(context.Background(),
			&ledger.Payment{Kind: ledger.KindManual, AccountID: uuid.New(), Amount: dec("20")}, now)
		require.NoError(t, err)
		assert.NotNil(t, res.Payment)
		assert.Empty(t, res.Confirmed)
	})

	t.Run("TransferAllocatesToRecipient", func(t *testing.T) {
		m := newMocks(t)
		from := uuid.New()
		to := &ledger.Account{ID: uuid.New(), TotalReceived: dec("50")}

		m.repo.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
		m.expectAllocation(to, nil)

		_, err := m.service().Record(context.Background(),
			&ledger.Payment{Kind: ledger.KindTransfer, AccountID: to.ID, FromAccountID: &from, Amount: dec("50")}, now)
		require.NoError(t, err)
	})
}

func TestService_AllocateFunds(t *testing.T) {
	older := now.Add(-2 * time.Hour)
	newer := now.Add(-time.Hour)

	tests := []struct {
		name          string
		total         string
		bookings      func(acct uuid.UUID) []*booking.Booking
		wantConfirmed []int
	}{
		{
			name:  "OldestFirst",
			total: "120",
			bookings: func(acct uuid.UUID) []*booking.Booking {
				return []*booking.Booking{
					unconfirmed(nearCamp(), acct, "100", newer),
					unconfirmed(nearCamp(), acct, "100", older),
				}
			},
			wantConfirmed: []int{1},
		},
		{
			name:  "StopsAtFirstUncovered",
			total: "50",
			bookings: func(acct uuid.UUID) []*booking.Booking {
				return []*booking.Booking{
					unconfirmed(nearCamp(), acct, "100", older),
					unconfirmed(farCamp(), acct, "100", newer),
				}
			},
		},
		{
			name:  "CumulativeCoverage",
			total: "120",
			bookings: func(acct uuid.UUID) []*booking.Booking {
				return []*booking.Booking{
					unconfirmed(nearCamp(), acct, "100", older),
					unconfirmed(farCamp(), acct, "100", newer),
				}
			},
			wantConfirmed: []int{0, 1},
		},
		{
			name:  "CancelledChargesReduceCredit",
			total: "100",
			bookings: func(acct uuid.UUID) []*booking.Booking {
				cancelled := unconfirmed(nearCamp(), acct, "20", older)
				cancelled.State = booking.StateCancelledDepositKept
				cancelled.BookingExpires = nil

				return []*booking.Booking{cancelled, unconfirmed(nearCamp(), acct, "100", newer)}
			},
		},
		{
			name:  "ConfirmedPlacesReduceCredit",
			total: "100",
			bookings: func(acct uuid.UUID) []*booking.Booking {
				paid := unconfirmed(farCamp(), acct, "100", older)
				paid.BookingExpires = nil

				return []*booking.Booking{paid, unconfirmed(farCamp(), acct, "100", newer)}
			},
			wantConfirmed: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks(t)
			acct := &ledger.Account{ID: uuid.New(), TotalReceived: dec(tt.total)}
			bs := tt.bookings(acct.ID)

			m.repo.EXPECT().BeginAllocation(gomock.Any()).Return(m.tx, nil)
			m.tx.EXPECT().LockAccount(gomock.Any(), acct.ID).Return(acct, nil)
			m.tx.EXPECT().ListAccountBookings(gomock.Any(), acct.ID).Return(bs, nil)
			m.tx.EXPECT().Rollback().Return(nil)

			var want []uuid.UUID
			for _, i := range tt.wantConfirmed {
				want = append(want, bs[i].ID)
			}

			if len(want) > 0 {
				m.tx.EXPECT().ConfirmBookings(gomock.Any(), gomock.Len(len(want))).DoAndReturn(
					func(_ context.Context, ids []uuid.UUID) error {
						assert.ElementsMatch(t, want, ids)
						return nil
					})
				m.tx.EXPECT().Commit().Return(nil)
			}

			confirmed, err := m.service().AllocateFunds(context.Background(), acct.ID, now)
			require.NoError(t, err)

			var got []uuid.UUID
			for _, b := range confirmed {
				got = append(got, b.ID)
				assert.True(t, b.Confirmed())
			}

			assert.ElementsMatch(t, want, got)
		})
	}
}

func TestService_Balance(t *testing.T) {
	m := newMocks(t)
	acct := &ledger.Account{ID: uuid.New(), TotalReceived: dec("50")}

	confirmedFar := unconfirmed(farCamp(), acct.ID, "100", now)
	confirmedFar.BookingExpires = nil
	pendingNear := unconfirmed(nearCamp(), acct.ID, "90", now)
	halfRefund := unconfirmed(nearCamp(), acct.ID, "40", now)
	halfRefund.State = booking.StateCancelledHalfRefund
	halfRefund.BookingExpires = nil
	basket := unconfirmed(nearCamp(), acct.ID, "80", now)
	basket.State = booking.StateInfoComplete
	basket.BookingExpires = nil

	bs := []*booking.Booking{confirmedFar, pendingNear, halfRefund, basket}

	m.repo.EXPECT().GetAccount(gomock.Any(), acct.ID).Return(acct, nil).AnyTimes()
	m.repo.EXPECT().ListAccountBookings(gomock.Any(), acct.ID).Return(bs, nil).AnyTimes()

	svc := m.service()
	ctx := context.Background()

	tests := []struct {
		name string
		opts ledger.BalanceOptions
		want string
	}{
		// 100 + 90 + 40 - 50
		{name: "Full", want: "180.00"},
		// 20 + 90 + 40 - 50
		{name: "DueNow", opts: ledger.BalanceOptions{AllowDeposits: true}, want: "100.00"},
		// 20 + 40 - 50
		{name: "ConfirmedOnly", opts: ledger.BalanceOptions{ConfirmedOnly: true, AllowDeposits: true}, want: "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Balance(ctx, acct.ID, tt.opts, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}

	t.Run("UnknownAccount", func(t *testing.T) {
		m := newMocks(t)
		m.repo.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Return(nil, ledger.ErrNotFound)

		_, err := m.service().BalanceFull(ctx, uuid.New(), now)
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestService_Amend(t *testing.T) {
	id := uuid.New()
	p := &ledger.Payment{ID: id, Kind: ledger.KindManual, Amount: dec("25")}

	t.Run("NoteOnly", func(t *testing.T) {
		m := newMocks(t)
		m.repo.EXPECT().GetPayment(gomock.Any(), id).Return(p, nil)
		m.repo.EXPECT().UpdatePaymentNote(gomock.Any(), id, "cheque 1044").Return(nil)

		require.NoError(t, m.service().Amend(context.Background(), id, dec("25.00"), "cheque 1044"))
	})

	t.Run("AmountChanged", func(t *testing.T) {
		m := newMocks(t)
		m.repo.EXPECT().GetPayment(gomock.Any(), id).Return(p, nil)

		err := m.service().Amend(context.Background(), id, dec("30"), "cheque 1044")
		assert.ErrorIs(t, err, ledger.ErrPaymentImmutable)
	})

	t.Run("NotFound", func(t *testing.T) {
		m := newMocks(t)
		m.repo.EXPECT().GetPayment(gomock.Any(), id).Return(nil, ledger.ErrNotFound)

		err := m.service().Amend(context.Background(), id, dec("25"), "")
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestService_PendingTotal(t *testing.T) {
	m := newMocks(t)
	acct := uuid.New()

	m.repo.EXPECT().ListPending(gomock.Any(), acct).Return([]ledger.PendingPayment{
		{TxnID: "A", Amount: dec("50"), CreatedAt: now.AddDate(0, 0, -10)},
		{TxnID: "B", Amount: dec("30"), CreatedAt: now.AddDate(0, -4, 0)},
		{TxnID: "C", Amount: dec("10"), CreatedAt: now, Resolved: true},
	}, nil)

	got, err := m.service().PendingTotal(context.Background(), acct, now)
	require.NoError(t, err)
	assert.Equal(t, "50.00", got.StringFixed(2))
}

func TestService_EnsureAccount(t *testing.T) {
	t.Run("Existing", func(t *testing.T) {
		m := newMocks(t)
		existing := &ledger.Account{ID: uuid.New()}
		m.repo.EXPECT().FindAccountByEmail(gomock.Any(), "jane@example.com").Return(existing, nil)

		got, created, err := m.service().EnsureAccount(context.Background(), " Jane@Example.com ", now)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Same(t, existing, got)
	})

	t.Run("Created", func(t *testing.T) {
		m := newMocks(t)
		m.repo.EXPECT().FindAccountByEmail(gomock.Any(), "jane@example.com").Return(nil, ledger.ErrNotFound)
		m.repo.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *ledger.Account) error {
			a.ID = uuid.New()
			return nil
		})

		got, created, err := m.service().EnsureAccount(context.Background(), "Jane@example.com", now)
		require.NoError(t, err)
		assert.True(t, created)
		require.NotNil(t, got.Email)
		assert.Equal(t, "jane@example.com", *got.Email)
		assert.Regexp(t, `^CB[0-9A-F]{8}$`, got.PaymentRef)
		assert.Equal(t, now, got.CreatedAt)
	})

	t.Run("LookupError", func(t *testing.T) {
		m := newMocks(t)
		m.repo.EXPECT().FindAccountByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, _, err := m.service().EnsureAccount(context.Background(), "jane@example.com", now)
		assert.Error(t, err)
	})
}
