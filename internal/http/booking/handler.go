package booking

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	"github.com/MrJamesThe3rd/campbooking/internal/notify"
	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

var validate = validator.New()

type service interface {
	Get(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	Check(ctx context.Context, id uuid.UUID, now time.Time) (*booking.Check, error)
	BookBasketNow(ctx context.Context, accountID uuid.UUID, now time.Time) (*booking.BasketResult, error)
	AdminUpdate(ctx context.Context, b *booking.Booking) error
}

type Handler struct {
	svc       service
	publisher notify.Publisher
	now       func() time.Time
}

func NewHandler(svc service, publisher notify.Publisher) *Handler {
	return &Handler{svc: svc, publisher: publisher, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}/check", h.check)
	r.Patch("/{id}", h.adminUpdate)
	r.Post("/basket/{accountID}", h.bookBasket)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Check(r.Context(), id, h.now())
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}

		slog.Error("failed to check booking", "booking_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toCheckResponse(c))
}

func (h *Handler) bookBasket(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	result, err := h.svc.BookBasketNow(r.Context(), accountID, h.now())
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBusy):
			w.Header().Set("Retry-After", "1")
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		case errors.Is(err, booking.ErrEmptyBasket):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			slog.Error("failed to book basket", "account_id", accountID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	if !result.OK() {
		writeJSON(w, http.StatusConflict, basketResponse{Booked: []bookingResponse{}, Problems: result.Problems})
		return
	}

	if err := h.publisher.Publish(r.Context(), result.Notifications); err != nil {
		slog.Error("failed to publish notifications", "account_id", accountID, "error", err)
	}

	writeJSON(w, http.StatusOK, basketResponse{Booked: toResponseList(result.Booked)})
}

type adminUpdateRequest struct {
	State             *booking.State     `json:"state" validate:"omitempty,oneof=info_complete approved booked cancelled_deposit_kept cancelled_half_refund cancelled_full_refund"`
	PriceType         *pricing.PriceType `json:"price_type" validate:"omitempty,oneof=full 2nd_child 3rd_child custom"`
	AmountDue         *decimal.Decimal   `json:"amount_due"`
	EarlyBirdDiscount *bool              `json:"early_bird_discount"`
	Shelved           *bool              `json:"shelved"`
	// ClearExpiry marks a booked place as confirmed regardless of payment.
	ClearExpiry bool `json:"clear_expiry"`
}

func (h *Handler) adminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req adminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if req.State != nil {
		b.State = *req.State
		if b.State != booking.StateBooked {
			b.BookingExpires = nil
		}
	}

	if req.PriceType != nil {
		b.PriceType = *req.PriceType
	}

	if req.AmountDue != nil {
		if b.PriceType != pricing.TypeCustom {
			http.Error(w, "amount_due can only be set on custom price bookings", http.StatusBadRequest)
			return
		}

		b.AmountDue = *req.AmountDue
	}

	if req.EarlyBirdDiscount != nil {
		b.EarlyBirdDiscount = *req.EarlyBirdDiscount
	}

	if req.Shelved != nil {
		b.Shelved = *req.Shelved
	}

	if req.ClearExpiry {
		b.BookingExpires = nil
	}

	if err := h.svc.AdminUpdate(r.Context(), b); err != nil {
		if errors.Is(err, pricing.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		slog.Error("failed to update booking", "booking_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toResponse(b))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
