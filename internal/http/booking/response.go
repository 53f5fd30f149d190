package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

type bookingResponse struct {
	ID                uuid.UUID         `json:"id"`
	AccountID         uuid.UUID         `json:"account_id"`
	CampID            uuid.UUID         `json:"camp_id"`
	CampName          string            `json:"camp_name,omitempty"`
	Name              string            `json:"name"`
	PriceType         pricing.PriceType `json:"price_type"`
	AmountDue         decimal.Decimal   `json:"amount_due"`
	EarlyBirdDiscount bool              `json:"early_bird_discount"`
	State             booking.State     `json:"state"`
	Shelved           bool              `json:"shelved"`
	Confirmed         bool              `json:"confirmed"`
	BookingExpires    *time.Time        `json:"booking_expires,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         *time.Time        `json:"updated_at,omitempty"`
}

func toResponse(b *booking.Booking) bookingResponse {
	resp := bookingResponse{
		ID:                b.ID,
		AccountID:         b.AccountID,
		CampID:            b.CampID,
		Name:              b.Name(),
		PriceType:         b.PriceType,
		AmountDue:         b.AmountDue,
		EarlyBirdDiscount: b.EarlyBirdDiscount,
		State:             b.State,
		Shelved:           b.Shelved,
		Confirmed:         b.Confirmed(),
		BookingExpires:    b.BookingExpires,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}

	if b.Camp != nil {
		resp.CampName = b.Camp.Name
	}

	return resp
}

func toResponseList(bs []*booking.Booking) []bookingResponse {
	resp := make([]bookingResponse, len(bs))
	for i, b := range bs {
		resp[i] = toResponse(b)
	}

	return resp
}

type checkResponse struct {
	Booking  bookingResponse `json:"booking"`
	Problems []string        `json:"problems"`
	Warnings []string        `json:"warnings"`
}

func toCheckResponse(c *booking.Check) checkResponse {
	return checkResponse{
		Booking:  toResponse(c.Booking),
		Problems: nonNil(c.Problems),
		Warnings: nonNil(c.Warnings),
	}
}

type basketResponse struct {
	Booked   []bookingResponse       `json:"booked"`
	Problems map[uuid.UUID][]string `json:"problems,omitempty"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
