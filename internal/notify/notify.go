// Package notify carries "this message is now due" facts from the booking
// engine to whatever composes and sends email. Nothing here formats mail.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindPlaceConfirmed      Kind = "place_confirmed"
	KindLateBooking         Kind = "late_booking"
	KindExpiryWarning       Kind = "expiry_warning"
	KindPlacesExpired       Kind = "places_expired"
	KindUnrecognisedPayment Kind = "unrecognised_payment"

	// KindVerifyEmail carries the signed token in Reference.
	KindVerifyEmail Kind = "verify_email"
)

// Audience says who the message is for.
type Audience string

const (
	AudienceAccount    Audience = "account"
	AudienceCampAdmins Audience = "camp_admins"
	AudienceOperators  Audience = "operators"
)

// Place is one booking itemised in a notification.
type Place struct {
	BookingID  uuid.UUID       `json:"booking_id"`
	CamperName string          `json:"camper_name"`
	CampID     uuid.UUID       `json:"camp_id"`
	CampName   string          `json:"camp_name"`
	CampStart  time.Time       `json:"camp_start"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	Expires    *time.Time      `json:"expires,omitempty"`
}

type Notification struct {
	Kind      Kind      `json:"kind"`
	Audience  Audience  `json:"audience"`
	AccountID uuid.UUID `json:"account_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Places    []Place   `json:"places,omitempty"`

	// Payment context, set for payment-triggered and unrecognised-payment facts.
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	Reason    string          `json:"reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ns []Notification) error
}
