package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/campbooking/internal/notify"
)

// IPNStatus is the payment_status of a gateway notification.
type IPNStatus string

const (
	IPNCompleted        IPNStatus = "Completed"
	IPNPending          IPNStatus = "Pending"
	IPNRefunded         IPNStatus = "Refunded"
	IPNReversed         IPNStatus = "Reversed"
	IPNCanceledReversal IPNStatus = "Canceled_Reversal"
	IPNDenied           IPNStatus = "Denied"
	IPNFailed           IPNStatus = "Failed"
	IPNExpired          IPNStatus = "Expired"
	IPNVoided           IPNStatus = "Voided"
)

const customPrefix = "account:"

// IPN is a verified payment gateway notification.
type IPN struct {
	TxnID       string
	ParentTxnID string
	Status      IPNStatus
	Gross       decimal.Decimal
	// Custom is the pass-through field set when the payment was started,
	// see AccountCustom.
	Custom     string
	PayerEmail string
}

// AccountCustom is the value to pass through the gateway so that the
// notification can be matched back to the paying account.
func AccountCustom(id uuid.UUID) string {
	return customPrefix + id.String()
}

func (n IPN) AccountID() (uuid.UUID, bool) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(n.Custom), customPrefix)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

// ProcessIPN applies a gateway notification to the ledger. Repeated
// notifications for the same transaction are ignored, and notifications that
// cannot be matched to an account or parent transaction are reported to
// operators instead of failing.
func (s *Service) ProcessIPN(ctx context.Context, n IPN, now time.Time) (*Result, error) {
	accountID, ok := n.AccountID()
	if !ok {
		return unrecognised(n, "no account in custom field", now), nil
	}

	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return unrecognised(n, "unknown account "+accountID.String(), now), nil
		}

		return nil, err
	}

	switch n.Status {
	case IPNCompleted:
		return s.recordOnline(ctx, n, accountID, n.Gross.Abs(), now)
	case IPNPending:
		p := &PendingPayment{AccountID: accountID, TxnID: n.TxnID, Amount: n.Gross.Abs(), CreatedAt: now}
		if err := s.repo.SavePending(ctx, p); err != nil {
			return nil, fmt.Errorf("saving pending payment: %w", err)
		}

		slog.Info("payment pending", "txn_id", n.TxnID, "account_id", accountID, "amount", p.Amount.StringFixed(2))

		return &Result{}, nil
	case IPNRefunded, IPNReversed, IPNCanceledReversal:
		if _, err := s.repo.FindPaymentByTxn(ctx, n.ParentTxnID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return unrecognised(n, "unknown parent transaction "+n.ParentTxnID, now), nil
			}

			return nil, err
		}

		amount := n.Gross.Abs()
		if n.Status != IPNCanceledReversal {
			amount = amount.Neg()
		}

		return s.recordOnline(ctx, n, accountID, amount, now)
	case IPNDenied, IPNFailed, IPNExpired, IPNVoided:
		if err := s.repo.ResolvePending(ctx, n.TxnID); err != nil {
			return nil, fmt.Errorf("resolving pending payment: %w", err)
		}

		slog.Info("pending payment abandoned", "txn_id", n.TxnID, "status", n.Status)

		return &Result{}, nil
	}

	slog.Warn("ignoring payment notification", "txn_id", n.TxnID, "status", n.Status)

	return &Result{}, nil
}

func (s *Service) recordOnline(ctx context.Context, n IPN, accountID uuid.UUID, amount decimal.Decimal, now time.Time) (*Result, error) {
	existing, err := s.repo.FindPaymentByTxn(ctx, n.TxnID)
	if err == nil {
		slog.Warn("duplicate payment notification", "txn_id", n.TxnID, "payment_id", existing.ID)
		return &Result{Payment: existing}, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("finding payment %s: %w", n.TxnID, err)
	}

	res, err := s.Record(ctx, &Payment{
		Kind:        KindOnline,
		AccountID:   accountID,
		Amount:      amount,
		TxnID:       n.TxnID,
		ParentTxnID: n.ParentTxnID,
		Note:        string(n.Status),
	}, now)
	if err != nil {
		if errors.Is(err, ErrInvalidPayment) {
			return unrecognised(n, err.Error(), now), nil
		}

		return nil, err
	}

	if err := s.repo.ResolvePending(ctx, n.TxnID); err != nil {
		return nil, fmt.Errorf("resolving pending payment: %w", err)
	}

	return res, nil
}

func unrecognised(n IPN, reason string, now time.Time) *Result {
	slog.Warn("unrecognised payment", "txn_id", n.TxnID, "status", n.Status, "reason", reason)

	return &Result{Notifications: []notify.Notification{{
		Kind:      notify.KindUnrecognisedPayment,
		Audience:  notify.AudienceOperators,
		Email:     n.PayerEmail,
		Amount:    n.Gross,
		Reference: n.TxnID,
		Reason:    reason,
		CreatedAt: now,
	}}}
}
