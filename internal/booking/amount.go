package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

var two = decimal.NewFromInt(2)

// ExpectedAmountDue derives the charge for a booking from its price type,
// state and early-bird flag, using the price table for the camp's year.
func ExpectedAmountDue(b *Booking, prices *pricing.Table) (decimal.Decimal, error) {
	if b.PriceType == pricing.TypeCustom {
		return b.AmountDue, nil
	}

	switch b.State {
	case StateCancelledDepositKept:
		deposit, err := prices.PriceFor(pricing.TypeDeposit)
		if err != nil {
			return decimal.Zero, fmt.Errorf("deposit price for %d: %w", b.Camp.Year, err)
		}

		return deposit, nil
	case StateCancelledFullRefund:
		return decimal.Zero, nil
	case StateCancelledHalfRefund:
		full, err := prices.PriceFor(pricing.TypeFull)
		if err != nil {
			return decimal.Zero, fmt.Errorf("full price for %d: %w", b.Camp.Year, err)
		}

		return full.Div(two).Round(2), nil
	}

	return placePrice(b, prices)
}

// placePrice is the normal price for the booking's price type with any
// transport surcharge added and early-bird discount taken off.
func placePrice(b *Booking, prices *pricing.Table) (decimal.Decimal, error) {
	amount, err := prices.PriceFor(b.PriceType)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s price for %d: %w", b.PriceType, b.Camp.Year, err)
	}

	if b.SouthWalesTransport {
		if surcharge, ok := prices.Get(pricing.TypeSouthWalesTransport); ok {
			amount = amount.Add(surcharge)
		}
	}

	if b.EarlyBirdDiscount {
		if discount, ok := prices.Get(pricing.TypeEarlyBirdDiscount); ok {
			amount = amount.Sub(discount)
		}
	}

	return amount, nil
}

// AutoSetAmountDue caches ExpectedAmountDue in AmountDue. It must be called
// explicitly after any change to state, price type or discount flags.
func (b *Booking) AutoSetAmountDue(prices *pricing.Table) error {
	amount, err := ExpectedAmountDue(b, prices)
	if err != nil {
		return err
	}

	b.AmountDue = amount.Round(2)

	return nil
}

// AmountNowDue is what must have been paid for the booking to be confirmed.
// When deposits are allowed only the deposit is due until the camp is within
// the full-payment window.
func AmountNowDue(b *Booking, prices *pricing.Table, allowDeposits bool, fullPaymentDue time.Duration, now time.Time) decimal.Decimal {
	if !allowDeposits || !b.Camp.StartDate.After(now.Add(fullPaymentDue)) {
		return b.AmountDue
	}

	deposit, ok := prices.Get(pricing.TypeDeposit)
	if !ok {
		return b.AmountDue
	}

	return decimal.Min(deposit, b.AmountDue)
}
