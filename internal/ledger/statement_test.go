package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/campbooking/internal/importer"
	"github.com/MrJamesThe3rd/campbooking/internal/ledger"
	"github.com/MrJamesThe3rd/campbooking/internal/notify"
)

func TestService_ImportStatement(t *testing.T) {
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	acct := &ledger.Account{ID: uuid.New(), PaymentRef: "CB1A2B3C4D"}

	lines := []importer.Line{
		{Date: day, Description: "BGC SMITH CB1A2B3C4D", Amount: dec("40"), TxnID: "stmt-1"},
		{Date: day, Description: "BGC SMITH CB1A2B3C4D", Amount: dec("40"), TxnID: "stmt-2"},
		{Date: day, Description: "CARD PAYMENT TESCO", Amount: dec("-12.50"), TxnID: "stmt-3"},
		{Date: day, Description: "BGC J JONES CAMP", Amount: dec("25"), TxnID: "stmt-4"},
	}

	t.Run("RecordsMatchedLines", func(t *testing.T) {
		m := newMocks(t)

		m.repo.EXPECT().FindPaymentByTxn(gomock.Any(), "stmt-1").Return(nil, ledger.ErrNotFound)
		m.repo.EXPECT().FindPaymentByTxn(gomock.Any(), "stmt-2").Return(&ledger.Payment{TxnID: "stmt-2"}, nil)
		m.repo.EXPECT().FindPaymentByTxn(gomock.Any(), "stmt-4").Return(nil, ledger.ErrNotFound)
		m.repo.EXPECT().FindAccountByReference(gomock.Any(), "BGC SMITH CB1A2B3C4D").Return(acct, nil)
		m.repo.EXPECT().FindAccountByReference(gomock.Any(), "BGC J JONES CAMP").Return(nil, ledger.ErrNotFound)
		m.repo.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *ledger.Payment) error {
			assert.Equal(t, ledger.KindManual, p.Kind)
			assert.Equal(t, acct.ID, p.AccountID)
			assert.Equal(t, "stmt-1", p.TxnID)
			assert.Equal(t, "BGC SMITH CB1A2B3C4D", p.Note)

			return nil
		})
		m.expectAllocation(acct, nil)

		res, err := m.service().ImportStatement(context.Background(), lines, now)
		require.NoError(t, err)

		assert.Len(t, res.Recorded, 1)
		assert.Equal(t, 1, res.Duplicates)
		assert.Equal(t, 1, res.Unrecognised)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, notify.KindUnrecognisedPayment, res.Notifications[0].Kind)
		assert.Equal(t, "25.00", res.Notifications[0].Amount.StringFixed(2))
	})

	t.Run("LookupError", func(t *testing.T) {
		m := newMocks(t)
		m.repo.EXPECT().FindPaymentByTxn(gomock.Any(), "stmt-1").Return(nil, errors.New("db down"))

		_, err := m.service().ImportStatement(context.Background(), lines[:1], now)
		assert.Error(t, err)
	})
}
