package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/campbooking/internal/lock"
	"github.com/MrJamesThe3rd/campbooking/internal/notify"
	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=booking
type Reader interface {
	ListAccountBookings(ctx context.Context, accountID uuid.UUID, year int) ([]*Booking, error)
	CountBookedPlaces(ctx context.Context, campID uuid.UUID) (Places, error)
	ListAgreements(ctx context.Context, year int) ([]Agreement, error)
}

type Repository interface {
	Reader
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateBooking(ctx context.Context, b *Booking) error
	// ListUnconfirmed returns booked places still awaiting payment, ordered by account then creation.
	ListUnconfirmed(ctx context.Context) ([]*Booking, error)
	// ExpireBooking and MarkExpiryWarned report false when the place was
	// confirmed or otherwise changed after it was listed.
	ExpireBooking(ctx context.Context, b *Booking, now time.Time) (bool, error)
	MarkExpiryWarned(ctx context.Context, id uuid.UUID) (bool, error)

	BeginBasket(ctx context.Context) (BasketTx, error)
}

type BasketTx interface {
	Reader
	ListBasket(ctx context.Context, accountID uuid.UUID) ([]*Booking, error)
	UpdateBookings(ctx context.Context, bs []*Booking) error
	Commit() error
	Rollback() error
}

// Funds is the payment ledger as seen from bookings.
type Funds interface {
	PendingTotal(ctx context.Context, accountID uuid.UUID, now time.Time) (decimal.Decimal, error)
	// AllocateFunds confirms whatever unconfirmed places the account's balance
	// now covers and returns them.
	AllocateFunds(ctx context.Context, accountID uuid.UUID, now time.Time) ([]*Booking, error)
}

// Policy holds the time-based business rules, all configurable.
type Policy struct {
	LockName             string
	ExpiryWindow         time.Duration
	WarningLead          time.Duration
	LateBookingThreshold time.Duration
	EarlyBirdCutoff      func(year int) time.Time
}

func DefaultPolicy() Policy {
	return Policy{
		LockName:             "booking",
		ExpiryWindow:         24 * time.Hour,
		WarningLead:          12 * time.Hour,
		LateBookingThreshold: 30 * 24 * time.Hour,
		EarlyBirdCutoff: func(year int) time.Time {
			return time.Date(year, time.May, 1, 0, 0, 0, 0, time.UTC)
		},
	}
}

type Service struct {
	repo   Repository
	prices pricing.Source
	locker lock.Locker
	funds  Funds
	policy Policy
}

func NewService(repo Repository, prices pricing.Source, locker lock.Locker, funds Funds, policy Policy) *Service {
	return &Service{repo: repo, prices: prices, locker: locker, funds: funds, policy: policy}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// Check is the eligibility verdict for a single booking.
type Check struct {
	Booking  *Booking
	Problems []string
	Warnings []string
}

func (s *Service) Check(ctx context.Context, id uuid.UUID, now time.Time) (*Check, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	table, err := s.prices.Table(ctx, b.Camp.Year)
	if err != nil {
		return nil, err
	}

	in, err := checkInput(ctx, s.repo, b, table, now)
	if err != nil {
		return nil, err
	}

	return &Check{Booking: b, Problems: Problems(b, in), Warnings: Warnings(b, in)}, nil
}

func checkInput(ctx context.Context, r Reader, b *Booking, table *pricing.Table, now time.Time) (CheckInput, error) {
	in := CheckInput{Now: now, Prices: table}

	var err error

	if in.AccountBookings, err = r.ListAccountBookings(ctx, b.AccountID, b.Camp.Year); err != nil {
		return in, fmt.Errorf("listing account bookings: %w", err)
	}

	if in.Booked, err = r.CountBookedPlaces(ctx, b.CampID); err != nil {
		return in, fmt.Errorf("counting booked places: %w", err)
	}

	if in.Agreements, err = r.ListAgreements(ctx, b.Camp.Year); err != nil {
		return in, fmt.Errorf("listing agreements: %w", err)
	}

	return in, nil
}

// BasketResult reports the outcome of BookBasketNow. When Problems is
// non-empty nothing was changed.
type BasketResult struct {
	Booked        []*Booking
	Problems      map[uuid.UUID][]string
	Notifications []notify.Notification
}

func (r *BasketResult) OK() bool {
	return len(r.Problems) == 0
}

// BookBasketNow moves every basket booking of the account to Booked, all or
// nothing, while holding the global booking lock. ErrBusy means the lock was
// not available and nothing changed.
func (s *Service) BookBasketNow(ctx context.Context, accountID uuid.UUID, now time.Time) (*BasketResult, error) {
	unlock, err := s.locker.Acquire(ctx, s.policy.LockName)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			slog.Warn("booking lock busy", "account_id", accountID)
			return nil, ErrBusy
		}

		return nil, fmt.Errorf("acquiring booking lock: %w", err)
	}

	defer func() {
		if err := unlock(); err != nil {
			slog.Error("failed to release booking lock", "error", err)
		}
	}()

	result, err := s.bookBasket(ctx, accountID, now)
	if err != nil || !result.OK() {
		return result, err
	}

	var confirmed []*Booking

	seen := make(map[uuid.UUID]bool)

	for _, b := range result.Booked {
		if b.BookingExpires == nil {
			confirmed = append(confirmed, b)
			seen[b.ID] = true
		}
	}

	credited, err := s.funds.AllocateFunds(ctx, accountID, now)
	if err != nil {
		// The places are booked; they will be confirmed by the next payment.
		slog.Error("failed to allocate existing funds", "account_id", accountID, "error", err)
	}

	for _, b := range credited {
		if !seen[b.ID] {
			confirmed = append(confirmed, b)
		}
	}
	result.Notifications = ConfirmedNotifications(confirmed, now, s.policy.LateBookingThreshold)

	slog.Info("basket booked", "account_id", accountID, "places", len(result.Booked), "confirmed", len(confirmed))

	return result, nil
}

func (s *Service) bookBasket(ctx context.Context, accountID uuid.UUID, now time.Time) (*BasketResult, error) {
	btx, err := s.repo.BeginBasket(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin basket: %w", err)
	}
	defer btx.Rollback()

	basket, err := btx.ListBasket(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing basket: %w", err)
	}

	if len(basket) == 0 {
		return nil, ErrEmptyBasket
	}

	tables := pricing.NewChecker(s.prices)
	problems := make(map[uuid.UUID][]string)

	for _, b := range basket {
		table, err := tables.Table(ctx, b.Camp.Year)
		if err != nil {
			return nil, err
		}

		in, err := checkInput(ctx, btx, b, table, now)
		if err != nil {
			return nil, err
		}

		if ps := Problems(b, in); len(ps) > 0 {
			problems[b.ID] = ps
		}
	}

	if len(problems) > 0 {
		return &BasketResult{Problems: problems}, nil
	}

	for _, b := range basket {
		table, err := tables.Table(ctx, b.Camp.Year)
		if err != nil {
			return nil, err
		}

		b.EarlyBirdDiscount = s.earlyBirdAvailable(b, table, now)
		b.State = StateBooked
		b.ExpiryWarningSent = false

		if err := b.AutoSetAmountDue(table); err != nil {
			return nil, fmt.Errorf("setting amount due for %s: %w", b.ID, err)
		}

		b.BookingExpires = nil

		if !b.AmountDue.IsZero() {
			expires := now.Add(s.policy.ExpiryWindow)
			b.BookingExpires = &expires
		}
	}

	if err := btx.UpdateBookings(ctx, basket); err != nil {
		return nil, fmt.Errorf("saving basket: %w", err)
	}

	if err := btx.Commit(); err != nil {
		return nil, fmt.Errorf("commit basket: %w", err)
	}

	return &BasketResult{Booked: basket}, nil
}

func (s *Service) earlyBirdAvailable(b *Booking, table *pricing.Table, now time.Time) bool {
	if b.PriceType == pricing.TypeCustom || s.policy.EarlyBirdCutoff == nil {
		return false
	}

	discount, ok := table.Get(pricing.TypeEarlyBirdDiscount)
	if !ok || !discount.IsPositive() {
		return false
	}

	return now.Before(s.policy.EarlyBirdCutoff(b.Camp.Year))
}

// AdminUpdate saves an administrator's edit, bypassing eligibility checks
// but re-deriving the cached amount due.
func (s *Service) AdminUpdate(ctx context.Context, b *Booking) error {
	table, err := s.prices.Table(ctx, b.Camp.Year)
	if err != nil {
		return err
	}

	if err := b.AutoSetAmountDue(table); err != nil {
		return fmt.Errorf("setting amount due: %w", err)
	}

	return s.repo.UpdateBooking(ctx, b)
}

type SweepResult struct {
	Expired       []*Booking
	Warned        []*Booking
	Skipped       []*Booking
	Notifications []notify.Notification
}

// SweepExpired expires unpaid places past their deadline and warns accounts
// whose places are about to expire. Accounts with a pending payment are
// left alone until the payment resolves. A booking that cannot be swept is
// logged and skipped; its error is joined into the returned error.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (*SweepResult, error) {
	unconfirmed, err := s.repo.ListUnconfirmed(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unconfirmed bookings: %w", err)
	}

	var toExpire, toWarn []*Booking

	for _, b := range unconfirmed {
		if !b.Unconfirmed() {
			continue
		}

		switch {
		case !b.BookingExpires.After(now):
			toExpire = append(toExpire, b)
		case !b.ExpiryWarningSent && !now.Before(b.BookingExpires.Add(-s.policy.WarningLead)):
			toWarn = append(toWarn, b)
		}
	}

	result := &SweepResult{}
	tables := pricing.NewChecker(s.prices)

	var errs []error

	for _, group := range GroupByAccount(toExpire) {
		held, err := s.hasPendingPayment(ctx, group[0].AccountID, now)
		if err != nil {
			slog.Error("skipping expiry", "account_id", group[0].AccountID, "error", err)
			errs = append(errs, err)

			continue
		}

		if held {
			result.Skipped = append(result.Skipped, group...)
			continue
		}

		var expired []*Booking

		for _, b := range group {
			ok, err := s.expire(ctx, b, tables, now)
			if err != nil {
				slog.Error("skipping expiry", "booking_id", b.ID, "error", err)
				errs = append(errs, err)

				continue
			}

			if ok {
				expired = append(expired, b)
			}
		}

		if len(expired) == 0 {
			continue
		}

		result.Expired = append(result.Expired, expired...)
		result.Notifications = append(result.Notifications, accountNotification(notify.KindPlacesExpired, expired, now))
	}

	for _, group := range GroupByAccount(toWarn) {
		held, err := s.hasPendingPayment(ctx, group[0].AccountID, now)
		if err != nil {
			slog.Error("skipping expiry warning", "account_id", group[0].AccountID, "error", err)
			errs = append(errs, err)

			continue
		}

		if held {
			result.Skipped = append(result.Skipped, group...)
			continue
		}

		var warned []*Booking

		for _, b := range group {
			ok, err := s.repo.MarkExpiryWarned(ctx, b.ID)
			if err != nil {
				slog.Error("skipping expiry warning", "booking_id", b.ID, "error", err)
				errs = append(errs, fmt.Errorf("marking expiry warning for %s: %w", b.ID, err))

				continue
			}

			if ok {
				b.ExpiryWarningSent = true
				warned = append(warned, b)
			}
		}

		if len(warned) == 0 {
			continue
		}

		result.Warned = append(result.Warned, warned...)
		result.Notifications = append(result.Notifications, accountNotification(notify.KindExpiryWarning, warned, now))
	}

	if len(result.Expired)+len(result.Warned)+len(result.Skipped) > 0 {
		slog.Info("expiry sweep done", "expired", len(result.Expired), "warned", len(result.Warned), "skipped", len(result.Skipped))
	}

	return result, errors.Join(errs...)
}

func (s *Service) hasPendingPayment(ctx context.Context, accountID uuid.UUID, now time.Time) (bool, error) {
	pending, err := s.funds.PendingTotal(ctx, accountID, now)
	if err != nil {
		return false, fmt.Errorf("pending payments for %s: %w", accountID, err)
	}

	return pending.IsPositive(), nil
}

// expire returns a lapsed booking to the basket at the undiscounted price;
// the early-bird offer is forfeited. It reports false, leaving b untouched,
// when the place was confirmed after it was listed.
func (s *Service) expire(ctx context.Context, b *Booking, tables *pricing.Checker, now time.Time) (bool, error) {
	table, err := tables.Table(ctx, b.Camp.Year)
	if err != nil {
		return false, fmt.Errorf("prices for %s: %w", b.ID, err)
	}

	lapsed := *b
	lapsed.State = StateInfoComplete
	lapsed.BookingExpires = nil
	lapsed.EarlyBirdDiscount = false
	lapsed.ExpiryWarningSent = false

	if err := lapsed.AutoSetAmountDue(table); err != nil {
		return false, fmt.Errorf("setting amount due for %s: %w", b.ID, err)
	}

	ok, err := s.repo.ExpireBooking(ctx, &lapsed, now)
	if err != nil {
		return false, fmt.Errorf("expiring %s: %w", b.ID, err)
	}

	if ok {
		*b = lapsed
	}

	return ok, nil
}
