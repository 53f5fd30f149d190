package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPaymentImmutable = errors.New("payment amount cannot be changed, delete it and record a new one")
	ErrInvalidPayment   = errors.New("invalid payment")
)

// Account is the identity anchor for a family or payer. Accounts are never
// deleted.
type Account struct {
	ID      uuid.UUID
	Email   *string // nil for paper bookings
	Name    string
	Address string
	// PaymentRef is quoted by payers on bank transfers and matched against
	// statement descriptions.
	PaymentRef string

	// TotalReceived is the sum of every payment entry for the account,
	// maintained by the store in the same transaction as the payment.
	TotalReceived       decimal.Decimal
	LastPaymentReminder *time.Time
	CreatedAt           time.Time
}

// Kind discriminates the payment variants.
type Kind string

const (
	KindManual   Kind = "manual"
	KindRefund   Kind = "refund"
	KindTransfer Kind = "transfer"
	KindOnline   Kind = "online"
)

// Payment is a ledger record. Amount is as entered: manual payments, refunds
// and transfers carry a positive amount and Kind decides the sign of each
// entry. Online payments carry the gateway's signed gross.
type Payment struct {
	ID        uuid.UUID
	Kind      Kind
	AccountID uuid.UUID
	// FromAccountID is the debited account of a transfer; AccountID is credited.
	FromAccountID *uuid.UUID
	Amount        decimal.Decimal
	// TxnID is the external transaction id for online payments and imported
	// statement lines. Unique when set.
	TxnID       string
	ParentTxnID string
	Note        string
	CreatedAt   time.Time
}

// Entry is the signed effect of a payment on one account's total.
type Entry struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

// Entries returns the per-account effects of the payment.
func (p *Payment) Entries() []Entry {
	switch p.Kind {
	case KindRefund:
		return []Entry{{AccountID: p.AccountID, Amount: p.Amount.Neg()}}
	case KindTransfer:
		return []Entry{
			{AccountID: *p.FromAccountID, Amount: p.Amount.Neg()},
			{AccountID: p.AccountID, Amount: p.Amount},
		}
	}

	return []Entry{{AccountID: p.AccountID, Amount: p.Amount}}
}

func (p *Payment) Validate() error {
	if p.AccountID == uuid.Nil {
		return fmt.Errorf("%w: missing account", ErrInvalidPayment)
	}

	switch p.Kind {
	case KindManual, KindRefund:
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: %s amount must be positive", ErrInvalidPayment, p.Kind)
		}
	case KindTransfer:
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: transfer amount must be positive", ErrInvalidPayment)
		}

		if p.FromAccountID == nil || *p.FromAccountID == p.AccountID {
			return fmt.Errorf("%w: transfer needs two different accounts", ErrInvalidPayment)
		}
	case KindOnline:
		if p.Amount.IsZero() {
			return fmt.Errorf("%w: zero online payment", ErrInvalidPayment)
		}

		if p.TxnID == "" {
			return fmt.Errorf("%w: online payment without transaction id", ErrInvalidPayment)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPayment, p.Kind)
	}

	return nil
}

// PendingPayment is a gateway payment that has been started but not cleared.
type PendingPayment struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	TxnID     string
	Amount    decimal.Decimal
	CreatedAt time.Time
	Resolved  bool
}
