package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	bookingstore "github.com/MrJamesThe3rd/campbooking/internal/booking/store"
	"github.com/MrJamesThe3rd/campbooking/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectAccountColumns = `
	id, email, name, address, payment_ref, total_received, last_payment_reminder, created_at
`

func scanAccount(s scanner) (*ledger.Account, error) {
	var (
		a     ledger.Account
		email sql.NullString
	)

	if err := s.Scan(
		&a.ID, &email, &a.Name, &a.Address, &a.PaymentRef,
		&a.TotalReceived, &a.LastPaymentReminder, &a.CreatedAt,
	); err != nil {
		return nil, err
	}

	if email.Valid {
		a.Email = &email.String
	}

	return &a, nil
}

func getAccount(ctx context.Context, q bookingstore.Querier, query string, args ...any) (*ledger.Account, error) {
	a, err := scanAccount(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	return getAccount(ctx, s.db, `SELECT `+selectAccountColumns+` FROM accounts WHERE id = $1`, id)
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*ledger.Account, error) {
	return getAccount(ctx, s.db, `SELECT `+selectAccountColumns+` FROM accounts WHERE LOWER(email) = LOWER($1)`, email)
}

// FindAccountByReference prefers the longest reference when several match.
func (s *Store) FindAccountByReference(ctx context.Context, text string) (*ledger.Account, error) {
	query := `SELECT ` + selectAccountColumns + `
		FROM accounts
		WHERE payment_ref <> '' AND $1 ILIKE '%' || payment_ref || '%'
		ORDER BY LENGTH(payment_ref) DESC, created_at
		LIMIT 1`

	return getAccount(ctx, s.db, query, text)
}

func (s *Store) CreateAccount(ctx context.Context, a *ledger.Account) error {
	query := `
		INSERT INTO accounts (email, name, address, payment_ref, total_received, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
		RETURNING id, total_received
	`

	err := s.db.QueryRowContext(ctx, query,
		a.Email,
		a.Name,
		a.Address,
		a.PaymentRef,
		a.CreatedAt,
	).Scan(&a.ID, &a.TotalReceived)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

const selectPaymentColumns = `
	id, kind, account_id, from_account_id, amount, txn_id, parent_txn_id, note, created_at
`

func scanPayment(s scanner) (*ledger.Payment, error) {
	var (
		p      ledger.Payment
		kind   string
		txnID  sql.NullString
		parent sql.NullString
	)

	if err := s.Scan(
		&p.ID, &kind, &p.AccountID, &p.FromAccountID, &p.Amount,
		&txnID, &parent, &p.Note, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	p.Kind = ledger.Kind(kind)
	p.TxnID = txnID.String
	p.ParentTxnID = parent.String

	return &p, nil
}

func (s *Store) getPayment(ctx context.Context, query string, args ...any) (*ledger.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	return p, nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	return s.getPayment(ctx, `SELECT `+selectPaymentColumns+` FROM payments WHERE id = $1`, id)
}

func (s *Store) FindPaymentByTxn(ctx context.Context, txnID string) (*ledger.Payment, error) {
	if txnID == "" {
		return nil, ledger.ErrNotFound
	}

	return s.getPayment(ctx, `SELECT `+selectPaymentColumns+` FROM payments WHERE txn_id = $1`, txnID)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// applyEntries adjusts account totals by the payment's entries. sign is 1 on
// create and -1 on delete.
func applyEntries(ctx context.Context, tx *sql.Tx, p *ledger.Payment, sign int64) error {
	query := `
		UPDATE accounts
		SET total_received = total_received + $1
		WHERE id = $2
	`

	for _, e := range p.Entries() {
		amount := e.Amount
		if sign < 0 {
			amount = amount.Neg()
		}

		res, err := tx.ExecContext(ctx, query, amount, e.AccountID)
		if err != nil {
			return fmt.Errorf("updating total for %s: %w", e.AccountID, err)
		}

		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("updating total for %s: %w", e.AccountID, ledger.ErrNotFound)
		}
	}

	return nil
}

func (s *Store) CreatePayment(ctx context.Context, p *ledger.Payment) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO payments (kind, account_id, from_account_id, amount, txn_id, parent_txn_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err = dbTx.QueryRowContext(ctx, query,
		p.Kind,
		p.AccountID,
		p.FromAccountID,
		p.Amount,
		nullString(p.TxnID),
		nullString(p.ParentTxnID),
		p.Note,
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}

	if err := applyEntries(ctx, dbTx, p, 1); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) DeletePayment(ctx context.Context, p *ledger.Payment) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, p.ID)
	if err != nil {
		return fmt.Errorf("deleting payment: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrNotFound
	}

	if err := applyEntries(ctx, dbTx, p, -1); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) UpdatePaymentNote(ctx context.Context, id uuid.UUID, note string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE payments SET note = $1 WHERE id = $2`, note, id)
	if err != nil {
		return fmt.Errorf("updating payment note: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (s *Store) ListPending(ctx context.Context, accountID uuid.UUID) ([]ledger.PendingPayment, error) {
	query := `
		SELECT id, account_id, txn_id, amount, created_at, resolved
		FROM pending_payments
		WHERE account_id = $1 AND NOT resolved
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing pending payments: %w", err)
	}
	defer rows.Close()

	var ps []ledger.PendingPayment

	for rows.Next() {
		var p ledger.PendingPayment
		if err := rows.Scan(&p.ID, &p.AccountID, &p.TxnID, &p.Amount, &p.CreatedAt, &p.Resolved); err != nil {
			return nil, fmt.Errorf("scanning pending payment: %w", err)
		}

		ps = append(ps, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending payment rows: %w", err)
	}

	return ps, nil
}

// SavePending keeps the first seen creation time when the gateway repeats a
// pending notification.
func (s *Store) SavePending(ctx context.Context, p *ledger.PendingPayment) error {
	query := `
		INSERT INTO pending_payments (account_id, txn_id, amount, created_at, resolved)
		VALUES ($1, $2, $3, $4, FALSE)
		ON CONFLICT (txn_id) DO UPDATE SET amount = EXCLUDED.amount
		RETURNING id, created_at, resolved
	`

	err := s.db.QueryRowContext(ctx, query, p.AccountID, p.TxnID, p.Amount, p.CreatedAt).
		Scan(&p.ID, &p.CreatedAt, &p.Resolved)
	if err != nil {
		return fmt.Errorf("saving pending payment: %w", err)
	}

	return nil
}

func (s *Store) ResolvePending(ctx context.Context, txnID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE pending_payments SET resolved = TRUE WHERE txn_id = $1`, txnID)
	if err != nil {
		return fmt.Errorf("resolving pending payment: %w", err)
	}

	return nil
}

func listAccountBookings(ctx context.Context, q bookingstore.Querier, accountID uuid.UUID) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingstore.SelectColumns + bookingstore.From + `
		WHERE b.account_id = $1
		ORDER BY b.created_at, b.id`

	bs, err := bookingstore.List(ctx, q, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing account bookings: %w", err)
	}

	return bs, nil
}

func (s *Store) ListAccountBookings(ctx context.Context, accountID uuid.UUID) ([]*booking.Booking, error) {
	return listAccountBookings(ctx, s.db, accountID)
}

type allocationTx struct {
	tx *sql.Tx
}

func (s *Store) BeginAllocation(ctx context.Context) (ledger.AllocationTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning allocation tx: %w", err)
	}

	return &allocationTx{tx: dbTx}, nil
}

func (atx *allocationTx) Commit() error   { return atx.tx.Commit() }
func (atx *allocationTx) Rollback() error { return atx.tx.Rollback() }

// LockAccount serialises allocations for one account until the transaction ends.
func (atx *allocationTx) LockAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	return getAccount(ctx, atx.tx, `SELECT `+selectAccountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
}

func (atx *allocationTx) ListAccountBookings(ctx context.Context, accountID uuid.UUID) ([]*booking.Booking, error) {
	return listAccountBookings(ctx, atx.tx, accountID)
}

func (atx *allocationTx) ConfirmBookings(ctx context.Context, ids []uuid.UUID) error {
	query := `
		UPDATE bookings
		SET booking_expires = NULL, expiry_warning_sent = FALSE, updated_at = NOW()
		WHERE id = ANY($1::uuid[]) AND state = $2
	`

	if _, err := atx.tx.ExecContext(ctx, query, bookingstore.UUIDArray(ids), booking.StateBooked); err != nil {
		return fmt.Errorf("confirming bookings: %w", err)
	}

	return nil
}
