package booking_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	bookinghttp "github.com/MrJamesThe3rd/campbooking/internal/http/booking"
	"github.com/MrJamesThe3rd/campbooking/internal/notify"
	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

type fakeService struct {
	booking *booking.Booking
	check   *booking.Check
	basket  *booking.BasketResult
	err     error
	updated *booking.Booking
}

func (f *fakeService) Get(context.Context, uuid.UUID) (*booking.Booking, error) {
	return f.booking, f.err
}

func (f *fakeService) Check(context.Context, uuid.UUID, time.Time) (*booking.Check, error) {
	return f.check, f.err
}

func (f *fakeService) BookBasketNow(context.Context, uuid.UUID, time.Time) (*booking.BasketResult, error) {
	return f.basket, f.err
}

func (f *fakeService) AdminUpdate(_ context.Context, b *booking.Booking) error {
	f.updated = b
	return nil
}

type recordingPublisher struct {
	published []notify.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, ns []notify.Notification) error {
	p.published = append(p.published, ns...)
	return nil
}

func newRouter(svc *fakeService, pub *recordingPublisher) http.Handler {
	r := chi.NewRouter()
	bookinghttp.NewHandler(svc, pub).Routes(r)

	return r
}

func sampleBooking() *booking.Booking {
	return &booking.Booking{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Camp:      &booking.Camp{Name: "Camp 1", Year: 2026},
		FirstName: "Amy",
		LastName:  "Smith",
		PriceType: pricing.TypeFull,
		AmountDue: decimal.NewFromInt(100),
		State:     booking.StateInfoComplete,
	}
}

func TestHandler_Check(t *testing.T) {
	b := sampleBooking()

	tests := []struct {
		name       string
		path       string
		svc        *fakeService
		wantStatus int
	}{
		{
			name:       "Valid",
			path:       "/" + b.ID.String() + "/check",
			svc:        &fakeService{check: &booking.Check{Booking: b, Problems: []string{"Too old"}}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "NotFound",
			path:       "/" + b.ID.String() + "/check",
			svc:        &fakeService{err: booking.ErrNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "InvalidID",
			path:       "/nope/check",
			svc:        &fakeService{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(tt.svc, &recordingPublisher{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	t.Run("EncodesEmptyWarnings", func(t *testing.T) {
		svc := &fakeService{check: &booking.Check{Booking: b, Problems: []string{"Too old"}}}
		rec := httptest.NewRecorder()
		newRouter(svc, &recordingPublisher{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+b.ID.String()+"/check", nil))

		var body struct {
			Problems []string `json:"problems"`
			Warnings []string `json:"warnings"`
		}

		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, []string{"Too old"}, body.Problems)
		assert.NotNil(t, body.Warnings)
		assert.Empty(t, body.Warnings)
	})
}

func TestHandler_BookBasket(t *testing.T) {
	b := sampleBooking()
	path := "/basket/" + b.AccountID.String()

	tests := []struct {
		name          string
		svc           *fakeService
		wantStatus    int
		wantPublished int
	}{
		{
			name: "Booked",
			svc: &fakeService{basket: &booking.BasketResult{
				Booked:        []*booking.Booking{b},
				Notifications: []notify.Notification{{Kind: notify.KindPlaceConfirmed}},
			}},
			wantStatus:    http.StatusOK,
			wantPublished: 1,
		},
		{
			name: "Problems",
			svc: &fakeService{basket: &booking.BasketResult{
				Problems: map[uuid.UUID][]string{b.ID: {"No places left"}},
			}},
			wantStatus: http.StatusConflict,
		},
		{name: "Busy", svc: &fakeService{err: booking.ErrBusy}, wantStatus: http.StatusServiceUnavailable},
		{name: "EmptyBasket", svc: &fakeService{err: booking.ErrEmptyBasket}, wantStatus: http.StatusUnprocessableEntity},
		{name: "Failure", svc: &fakeService{err: errors.New("db down")}, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			rec := httptest.NewRecorder()
			newRouter(tt.svc, pub).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Len(t, pub.published, tt.wantPublished)
		})
	}
}

func TestHandler_AdminUpdate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		priceType  pricing.PriceType
		wantStatus int
		check      func(t *testing.T, b *booking.Booking)
	}{
		{
			name:       "CancelWithHalfRefund",
			body:       `{"state":"cancelled_half_refund"}`,
			priceType:  pricing.TypeFull,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, b *booking.Booking) {
				assert.Equal(t, booking.StateCancelledHalfRefund, b.State)
				assert.Nil(t, b.BookingExpires)
			},
		},
		{
			name:       "CustomAmount",
			body:       `{"amount_due":"42.50"}`,
			priceType:  pricing.TypeCustom,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, b *booking.Booking) {
				assert.Equal(t, "42.50", b.AmountDue.StringFixed(2))
			},
		},
		{
			name:       "AmountOnStandardPrice",
			body:       `{"amount_due":"42.50"}`,
			priceType:  pricing.TypeFull,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownState",
			body:       `{"state":"lost"}`,
			priceType:  pricing.TypeFull,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sampleBooking()
			b.PriceType = tt.priceType
			svc := &fakeService{booking: b}

			req := httptest.NewRequest(http.MethodPatch, "/"+b.ID.String(), strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			newRouter(svc, &recordingPublisher{}).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.check != nil {
				require.NotNil(t, svc.updated)
				tt.check(t, svc.updated)
			} else {
				assert.Nil(t, svc.updated)
			}
		})
	}
}
