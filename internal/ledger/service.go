package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	"github.com/MrJamesThe3rd/campbooking/internal/notify"
	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*Account, error)
	// FindAccountByReference returns the account whose payment reference
	// appears in text.
	FindAccountByReference(ctx context.Context, text string) (*Account, error)
	CreateAccount(ctx context.Context, a *Account) error

	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindPaymentByTxn(ctx context.Context, txnID string) (*Payment, error)
	// CreatePayment stores p and applies its entries to the account totals in
	// one transaction.
	CreatePayment(ctx context.Context, p *Payment) error
	// DeletePayment removes p and reverses its entries in one transaction.
	DeletePayment(ctx context.Context, p *Payment) error
	UpdatePaymentNote(ctx context.Context, id uuid.UUID, note string) error

	ListPending(ctx context.Context, accountID uuid.UUID) ([]PendingPayment, error)
	// SavePending inserts or updates the pending payment with the same TxnID.
	SavePending(ctx context.Context, p *PendingPayment) error
	ResolvePending(ctx context.Context, txnID string) error

	ListAccountBookings(ctx context.Context, accountID uuid.UUID) ([]*booking.Booking, error)
	BeginAllocation(ctx context.Context) (AllocationTx, error)
}

// AllocationTx holds the account row lock while funds are distributed.
type AllocationTx interface {
	LockAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	ListAccountBookings(ctx context.Context, accountID uuid.UUID) ([]*booking.Booking, error)
	ConfirmBookings(ctx context.Context, ids []uuid.UUID) error
	Commit() error
	Rollback() error
}

type Policy struct {
	// FullPaymentDue is how long before a camp starts the full price, not
	// just the deposit, becomes due.
	FullPaymentDue time.Duration
	// PendingAbandonMonths after which a pending gateway payment is ignored.
	PendingAbandonMonths int
	LateBookingThreshold time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		FullPaymentDue:       90 * 24 * time.Hour,
		PendingAbandonMonths: 3,
		LateBookingThreshold: 30 * 24 * time.Hour,
	}
}

type Service struct {
	repo   Repository
	prices pricing.Source
	policy Policy
}

func NewService(repo Repository, prices pricing.Source, policy Policy) *Service {
	return &Service{repo: repo, prices: prices, policy: policy}
}

// Result describes what a payment event changed and which notifications are now due.
type Result struct {
	Payment       *Payment
	Confirmed     []*booking.Booking
	Notifications []notify.Notification
}

func (s *Service) Account(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// EnsureAccount returns the account registered to email, creating it on first
// use. The bool reports whether it was created.
func (s *Service) EnsureAccount(ctx context.Context, email string, now time.Time) (*Account, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	a, err := s.repo.FindAccountByEmail(ctx, email)
	if err == nil {
		return a, false, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("finding account: %w", err)
	}

	a = &Account{
		Email:      &email,
		PaymentRef: newPaymentRef(),
		CreatedAt:  now,
	}

	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, false, fmt.Errorf("creating account: %w", err)
	}

	slog.Info("account created", "account_id", a.ID)

	return a, true, nil
}

func newPaymentRef() string {
	return "CB" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Record stores a payment, updating account totals, then distributes any new
// credit across the credited account's unconfirmed places.
func (s *Service) Record(ctx context.Context, p *Payment, now time.Time) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}

	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}

	slog.Info("payment recorded",
		"payment_id", p.ID,
		"kind", p.Kind,
		"account_id", p.AccountID,
		"amount", p.Amount.StringFixed(2),
	)

	res := &Result{Payment: p}

	for _, e := range p.Entries() {
		if !e.Amount.IsPositive() {
			continue
		}

		confirmed, err := s.AllocateFunds(ctx, e.AccountID, now)
		if err != nil {
			// The payment stands; the places will be picked up by the next allocation.
			slog.Error("failed to allocate payment", "account_id", e.AccountID, "payment_id", p.ID, "error", err)
			continue
		}

		res.Confirmed = append(res.Confirmed, confirmed...)
	}

	res.Notifications = booking.ConfirmedNotifications(res.Confirmed, now, s.policy.LateBookingThreshold)

	return res, nil
}

// Delete removes a payment and reverses its effect on account totals.
// Places already confirmed stay confirmed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeletePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("deleting payment: %w", err)
	}

	slog.Info("payment deleted", "payment_id", p.ID, "kind", p.Kind, "account_id", p.AccountID)

	return p, nil
}

// Amend changes a payment's note. Changing the amount is refused.
func (s *Service) Amend(ctx context.Context, id uuid.UUID, amount decimal.Decimal, note string) error {
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return err
	}

	if !p.Amount.Equal(amount) {
		return ErrPaymentImmutable
	}

	return s.repo.UpdatePaymentNote(ctx, id, note)
}

// AllocateFunds confirms, oldest first, every unconfirmed place the account's
// remaining credit covers together with the places ranked ahead of it. It
// stops at the first place that cannot be covered.
func (s *Service) AllocateFunds(ctx context.Context, accountID uuid.UUID, now time.Time) ([]*booking.Booking, error) {
	tx, err := s.repo.BeginAllocation(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin allocation: %w", err)
	}
	defer tx.Rollback()

	acct, err := tx.LockAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	bs, err := tx.ListAccountBookings(ctx, accountID)
	if err != nil {
		return nil, err
	}

	tables := pricing.NewChecker(s.prices)
	available := acct.TotalReceived

	var unconfirmed []*booking.Booking

	for _, b := range bs {
		switch {
		case b.State.Cancelled():
			available = available.Sub(b.AmountDue)
		case b.Confirmed():
			due, err := s.nowDue(ctx, tables, b, now)
			if err != nil {
				return nil, err
			}

			available = available.Sub(due)
		case b.Unconfirmed():
			unconfirmed = append(unconfirmed, b)
		}
	}

	slices.SortStableFunc(unconfirmed, func(a, b *booking.Booking) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return strings.Compare(a.ID.String(), b.ID.String())
	})

	var confirmed []*booking.Booking

	for _, b := range unconfirmed {
		due, err := s.nowDue(ctx, tables, b, now)
		if err != nil {
			return nil, err
		}

		if due.GreaterThan(available) {
			break
		}

		available = available.Sub(due)
		confirmed = append(confirmed, b)
	}

	if len(confirmed) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(confirmed))
	for i, b := range confirmed {
		ids[i] = b.ID
	}

	if err := tx.ConfirmBookings(ctx, ids); err != nil {
		return nil, fmt.Errorf("confirming bookings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit allocation: %w", err)
	}

	for _, b := range confirmed {
		b.BookingExpires = nil
	}

	slog.Info("places confirmed", "account_id", accountID, "count", len(confirmed))

	return confirmed, nil
}

func (s *Service) nowDue(ctx context.Context, tables *pricing.Checker, b *booking.Booking, now time.Time) (decimal.Decimal, error) {
	table, err := tables.Table(ctx, b.Camp.Year)
	if err != nil {
		return decimal.Zero, err
	}

	return booking.AmountNowDue(b, table, true, s.policy.FullPaymentDue, now), nil
}

type BalanceOptions struct {
	// ConfirmedOnly counts only places whose expiry clock has been cleared.
	ConfirmedOnly bool
	// AllowDeposits counts only the deposit for places not yet fully due.
	AllowDeposits bool
}

// Balance is what the account owes: the charges for its booked and
// cancelled places less everything received. Negative means in credit.
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID, opts BalanceOptions, now time.Time) (decimal.Decimal, error) {
	acct, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	bs, err := s.repo.ListAccountBookings(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("listing bookings: %w", err)
	}

	tables := pricing.NewChecker(s.prices)
	total := decimal.Zero

	for _, b := range bs {
		if b.State.Cancelled() {
			total = total.Add(b.AmountDue)
			continue
		}

		if b.State != booking.StateBooked || (opts.ConfirmedOnly && !b.Confirmed()) {
			continue
		}

		due := b.AmountDue
		if opts.AllowDeposits {
			if due, err = s.nowDue(ctx, tables, b, now); err != nil {
				return decimal.Zero, err
			}
		}

		total = total.Add(due)
	}

	return total.Sub(acct.TotalReceived), nil
}

func (s *Service) BalanceFull(ctx context.Context, accountID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	return s.Balance(ctx, accountID, BalanceOptions{}, now)
}

func (s *Service) BalanceDueNow(ctx context.Context, accountID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	return s.Balance(ctx, accountID, BalanceOptions{AllowDeposits: true}, now)
}

func (s *Service) BalanceConfirmed(ctx context.Context, accountID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	return s.Balance(ctx, accountID, BalanceOptions{ConfirmedOnly: true, AllowDeposits: true}, now)
}

// PendingTotal sums unresolved gateway payments for the account. Payments
// pending for longer than the abandon window are treated as abandoned.
func (s *Service) PendingTotal(ctx context.Context, accountID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	ps, err := s.repo.ListPending(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("listing pending payments: %w", err)
	}

	cutoff := now.AddDate(0, -s.policy.PendingAbandonMonths, 0)
	total := decimal.Zero

	for _, p := range ps {
		if p.Resolved || p.CreatedAt.Before(cutoff) {
			continue
		}

		total = total.Add(p.Amount)
	}

	return total, nil
}
