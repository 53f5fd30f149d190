package account

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

	"github.com/MrJamesThe3rd/campbooking/internal/ledger"
	"github.com/MrJamesThe3rd/campbooking/internal/notify"
	"github.com/MrJamesThe3rd/campbooking/internal/token"
)

var validate = validator.New()

type service interface {
	Account(ctx context.Context, id uuid.UUID) (*ledger.Account, error)
	EnsureAccount(ctx context.Context, email string, now time.Time) (*ledger.Account, bool, error)
	BalanceFull(ctx context.Context, accountID uuid.UUID, now time.Time) (decimal.Decimal, error)
	BalanceDueNow(ctx context.Context, accountID uuid.UUID, now time.Time) (decimal.Decimal, error)
	BalanceConfirmed(ctx context.Context, accountID uuid.UUID, now time.Time) (decimal.Decimal, error)
	PendingTotal(ctx context.Context, accountID uuid.UUID, now time.Time) (decimal.Decimal, error)
}

type signer interface {
	Issue(email string, now time.Time) (string, error)
	Verify(raw string, now time.Time) (string, error)
}

type Handler struct {
	svc       service
	signer    signer
	publisher notify.Publisher
	now       func() time.Time
}

func NewHandler(svc service, signer signer, publisher notify.Publisher) *Handler {
	return &Handler{svc: svc, signer: signer, publisher: publisher, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/verify", h.verify)
	r.Get("/{id}", h.get)
	r.Get("/{id}/balance", h.balance)
}

type accountResponse struct {
	ID            uuid.UUID       `json:"id"`
	Email         *string         `json:"email,omitempty"`
	Name          string          `json:"name"`
	PaymentRef    string          `json:"payment_ref"`
	TotalReceived decimal.Decimal `json:"total_received"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toResponse(a *ledger.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		Email:         a.Email,
		Name:          a.Name,
		PaymentRef:    a.PaymentRef,
		TotalReceived: a.TotalReceived,
		CreatedAt:     a.CreatedAt,
	}
}

type registerRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// register sends a verification link; the account is only created once the
// link comes back.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := h.now()

	signed, err := h.signer.Issue(req.Email, now)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	err = h.publisher.Publish(r.Context(), []notify.Notification{{
		Kind:      notify.KindVerifyEmail,
		Audience:  notify.AudienceAccount,
		Email:     req.Email,
		Reference: signed,
		CreatedAt: now,
	}})
	if err != nil {
		slog.Error("failed to publish verification", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusAccepted)
}

type verifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type verifyResponse struct {
	Account accountResponse `json:"account"`
	Created bool            `json:"created"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := h.now()

	email, err := h.signer.Verify(req.Token, now)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			// The address is still known, so the client can offer to resend.
			writeJSON(w, http.StatusGone, map[string]string{"error": "token expired", "email": email})
		default:
			http.Error(w, "invalid token", http.StatusBadRequest)
		}

		return
	}

	a, created, err := h.svc.EnsureAccount(r.Context(), email, now)
	if err != nil {
		slog.Error("failed to ensure account", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	writeJSON(w, status, verifyResponse{Account: toResponse(a), Created: created})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	a, err := h.svc.Account(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toResponse(a))
}

type balanceResponse struct {
	Full      decimal.Decimal `json:"full"`
	DueNow    decimal.Decimal `json:"due_now"`
	Confirmed decimal.Decimal `json:"confirmed"`
	Pending   decimal.Decimal `json:"pending"`
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var (
		ctx  = r.Context()
		now  = h.now()
		resp balanceResponse
	)

	steps := []struct {
		dst *decimal.Decimal
		fn  func(context.Context, uuid.UUID, time.Time) (decimal.Decimal, error)
	}{
		{&resp.Full, h.svc.BalanceFull},
		{&resp.DueNow, h.svc.BalanceDueNow},
		{&resp.Confirmed, h.svc.BalanceConfirmed},
		{&resp.Pending, h.svc.PendingTotal},
	}

	for _, step := range steps {
		v, err := step.fn(ctx, id, now)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				http.Error(w, "account not found", http.StatusNotFound)
				return
			}

			slog.Error("failed to compute balance", "account_id", id, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)

			return
		}

		*step.dst = v
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
