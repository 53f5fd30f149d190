package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/campbooking/internal/ledger"
)

type paymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Kind          ledger.Kind     `json:"kind"`
	AccountID     uuid.UUID       `json:"account_id"`
	FromAccountID *uuid.UUID      `json:"from_account_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	TxnID         string          `json:"txn_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toPaymentResponse(p *ledger.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		Kind:          p.Kind,
		AccountID:     p.AccountID,
		FromAccountID: p.FromAccountID,
		Amount:        p.Amount,
		TxnID:         p.TxnID,
		Note:          p.Note,
		CreatedAt:     p.CreatedAt,
	}
}

type resultResponse struct {
	Payment   paymentResponse `json:"payment"`
	Confirmed []uuid.UUID     `json:"confirmed_bookings"`
}

func toResultResponse(res *ledger.Result) resultResponse {
	confirmed := make([]uuid.UUID, len(res.Confirmed))
	for i, b := range res.Confirmed {
		confirmed[i] = b.ID
	}

	return resultResponse{Payment: toPaymentResponse(res.Payment), Confirmed: confirmed}
}
