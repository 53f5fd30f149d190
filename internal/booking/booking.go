package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

var (
	ErrNotFound    = errors.New("booking not found")
	ErrBusy        = errors.New("booking system busy, please try again")
	ErrEmptyBasket = errors.New("no places in basket")
)

// State is the lifecycle state of a booking.
//
//	InfoComplete -> Booked (expires unless nothing is due) -> confirmed by payment
//	                       \-> expired by the sweeper, back to InfoComplete
//
// Approved and the Cancelled* states are only ever set by an administrator.
type State string

const (
	StateInfoComplete         State = "info_complete"
	StateApproved             State = "approved"
	StateBooked               State = "booked"
	StateCancelledDepositKept State = "cancelled_deposit_kept"
	StateCancelledHalfRefund  State = "cancelled_half_refund"
	StateCancelledFullRefund  State = "cancelled_full_refund"
)

func (s State) Cancelled() bool {
	switch s {
	case StateCancelledDepositKept, StateCancelledHalfRefund, StateCancelledFullRefund:
		return true
	}

	return false
}

type Sex string

const (
	SexMale   Sex = "m"
	SexFemale Sex = "f"
)

// Camp is read-only from the engine's point of view.
type Camp struct {
	ID               uuid.UUID
	Name             string
	Year             int
	StartDate        time.Time
	EndDate          time.Time
	MinimumAge       int
	MaximumAge       int
	MaxCampers       int
	MaxMaleCampers   int
	MaxFemaleCampers int
	LastBookingDate  *time.Time
}

// AgeBaseDate is the date ages are measured on: 31 August of the camp year.
func (c *Camp) AgeBaseDate() time.Time {
	return time.Date(c.Year, time.August, 31, 0, 0, 0, 0, time.UTC)
}

// Contact identifies the account that owns a booking, loaded alongside it.
type Contact struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Agreement is a camp-specific condition that must be accepted before booking.
// A nil CampID applies to every camp of the year.
type Agreement struct {
	ID     uuid.UUID
	Name   string
	Year   int
	CampID *uuid.UUID
	Active bool
}

func (a Agreement) AppliesTo(c *Camp) bool {
	if !a.Active || a.Year != c.Year {
		return false
	}

	return a.CampID == nil || *a.CampID == c.ID
}

// Booking is one camper's place on one camp.
type Booking struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Account   Contact // Loaded via JOIN
	CampID    uuid.UUID
	Camp      *Camp // Loaded via JOIN

	FirstName           string
	LastName            string
	Sex                 Sex
	DateOfBirth         time.Time
	SouthWalesTransport bool
	SeriousIllness      bool
	AgreementsChecked   []uuid.UUID

	PriceType         pricing.PriceType
	AmountDue         decimal.Decimal
	EarlyBirdDiscount bool
	State             State
	Shelved           bool
	BookingExpires    *time.Time
	ExpiryWarningSent bool

	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (b *Booking) Name() string {
	return b.FirstName + " " + b.LastName
}

// InBasket reports whether the booking is waiting in the basket to be booked.
func (b *Booking) InBasket() bool {
	return !b.Shelved && (b.State == StateInfoComplete || b.State == StateApproved)
}

// Unconfirmed reports whether the booking holds a place that still needs paying for.
func (b *Booking) Unconfirmed() bool {
	return b.State == StateBooked && b.BookingExpires != nil
}

func (b *Booking) Confirmed() bool {
	return b.State == StateBooked && b.BookingExpires == nil
}

// AgeOnCamp is the camper's age in whole years on the camp's age base date.
func (b *Booking) AgeOnCamp() int {
	base := b.Camp.AgeBaseDate()
	dob := b.DateOfBirth

	age := base.Year() - dob.Year()
	if base.Month() < dob.Month() || (base.Month() == dob.Month() && base.Day() < dob.Day()) {
		age--
	}

	return age
}

// Places counts booked places on a camp.
type Places struct {
	Total  int
	Male   int
	Female int
}

func (p Places) For(s Sex) int {
	switch s {
	case SexMale:
		return p.Male
	case SexFemale:
		return p.Female
	}

	return 0
}
