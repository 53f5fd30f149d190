package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/campbooking/internal/importer"
	"github.com/MrJamesThe3rd/campbooking/internal/ledger"
	"github.com/MrJamesThe3rd/campbooking/internal/notify"
)

var validate = validator.New()

type service interface {
	Record(ctx context.Context, p *ledger.Payment, now time.Time) (*ledger.Result, error)
	Delete(ctx context.Context, id uuid.UUID) (*ledger.Payment, error)
	Amend(ctx context.Context, id uuid.UUID, amount decimal.Decimal, note string) error
	ProcessIPN(ctx context.Context, n ledger.IPN, now time.Time) (*ledger.Result, error)
	ImportStatement(ctx context.Context, lines []importer.Line, now time.Time) (*ledger.ImportResult, error)
}

type parser interface {
	Parse(r io.Reader) ([]importer.Line, error)
}

type Handler struct {
	svc       service
	parser    parser
	publisher notify.Publisher
	now       func() time.Time
}

func NewHandler(svc service, parser parser, publisher notify.Publisher) *Handler {
	return &Handler{svc: svc, parser: parser, publisher: publisher, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}", h.amend)
	r.Post("/ipn", h.ipn)
	r.Post("/statement", h.importStatement)
}

type createPaymentRequest struct {
	Kind          ledger.Kind     `json:"kind" validate:"required,oneof=manual refund transfer"`
	AccountID     uuid.UUID       `json:"account_id" validate:"required"`
	FromAccountID *uuid.UUID      `json:"from_account_id" validate:"required_if=Kind transfer"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note" validate:"max=500"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.Record(r.Context(), &ledger.Payment{
		Kind:          req.Kind,
		AccountID:     req.AccountID,
		FromAccountID: req.FromAccountID,
		Amount:        req.Amount,
		Note:          req.Note,
	}, h.now())
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidPayment):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ledger.ErrNotFound):
			http.Error(w, "account not found", http.StatusNotFound)
		default:
			slog.Error("failed to record payment", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	h.publish(r.Context(), res.Notifications)

	writeJSON(w, http.StatusCreated, toResultResponse(res))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			http.Error(w, "payment not found", http.StatusNotFound)
			return
		}

		slog.Error("failed to delete payment", "payment_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type amendPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note" validate:"max=500"`
}

func (h *Handler) amend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req amendPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Amend(r.Context(), id, req.Amount, req.Note); err != nil {
		switch {
		case errors.Is(err, ledger.ErrPaymentImmutable):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ledger.ErrNotFound):
			http.Error(w, "payment not found", http.StatusNotFound)
		default:
			slog.Error("failed to amend payment", "payment_id", id, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ipn receives form-encoded gateway notifications. The gateway retries until
// it sees a 200, so only storage failures return an error status.
func (h *Handler) ipn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	n := ledger.IPN{
		TxnID:       r.PostForm.Get("txn_id"),
		ParentTxnID: r.PostForm.Get("parent_txn_id"),
		Status:      ledger.IPNStatus(r.PostForm.Get("payment_status")),
		Custom:      r.PostForm.Get("custom"),
		PayerEmail:  r.PostForm.Get("payer_email"),
	}

	if n.TxnID == "" {
		http.Error(w, "txn_id is required", http.StatusBadRequest)
		return
	}

	gross, err := decimal.NewFromString(r.PostForm.Get("mc_gross"))
	if err != nil {
		http.Error(w, "invalid mc_gross", http.StatusBadRequest)
		return
	}

	n.Gross = gross

	res, err := h.svc.ProcessIPN(r.Context(), n, h.now())
	if err != nil {
		slog.Error("failed to process payment notification", "txn_id", n.TxnID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	h.publish(r.Context(), res.Notifications)

	w.WriteHeader(http.StatusOK)
}

type importResponse struct {
	Recorded     []paymentResponse `json:"recorded"`
	Duplicates   int               `json:"duplicates"`
	Unrecognised int               `json:"unrecognised"`
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	lines, err := h.parser.Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.ImportStatement(r.Context(), lines, h.now())
	if err != nil {
		// Lines before the failure are recorded; a retry skips them as duplicates.
		slog.Error("failed to import statement", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	h.publish(r.Context(), res.Notifications)

	recorded := make([]paymentResponse, len(res.Recorded))
	for i, p := range res.Recorded {
		recorded[i] = toPaymentResponse(p)
	}

	writeJSON(w, http.StatusCreated, importResponse{
		Recorded:     recorded,
		Duplicates:   res.Duplicates,
		Unrecognised: res.Unrecognised,
	})
}

// publish logs failures only: the ledger change has already been committed.
func (h *Handler) publish(ctx context.Context, ns []notify.Notification) {
	if len(ns) == 0 {
		return
	}

	if err := h.publisher.Publish(ctx, ns); err != nil {
		slog.Error("failed to publish notifications", "count", len(ns), "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
