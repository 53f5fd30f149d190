package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/campbooking/internal/booking"
	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

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

// SelectColumns lists booking columns in the order scanBooking expects.
// Queries must alias bookings as b, camps as c and accounts as a.
const SelectColumns = `
	b.id, b.account_id, a.name, COALESCE(a.email, ''),
	b.camp_id, c.name, c.year, c.start_date, c.end_date, c.minimum_age, c.maximum_age,
	c.max_campers, c.max_male_campers, c.max_female_campers, c.last_booking_date,
	b.first_name, b.last_name, b.sex, b.date_of_birth, b.south_wales_transport, b.serious_illness,
	array_to_string(b.agreements_checked, ','),
	b.price_type, b.amount_due, b.early_bird_discount, b.state, b.shelved,
	b.booking_expires, b.expiry_warning_sent, b.created_at, b.updated_at
`

// From joins bookings to their camp and account.
const From = `
	FROM bookings b
	JOIN camps c ON c.id = b.camp_id
	JOIN accounts a ON a.id = b.account_id
`

func scanBooking(s scanner) (*booking.Booking, error) {
	var (
		b          booking.Booking
		camp       booking.Camp
		sex        string
		agreements string
		priceType  string
		state      string
	)

	if err := s.Scan(
		&b.ID, &b.AccountID, &b.Account.Name, &b.Account.Email,
		&b.CampID, &camp.Name, &camp.Year, &camp.StartDate, &camp.EndDate, &camp.MinimumAge, &camp.MaximumAge,
		&camp.MaxCampers, &camp.MaxMaleCampers, &camp.MaxFemaleCampers, &camp.LastBookingDate,
		&b.FirstName, &b.LastName, &sex, &b.DateOfBirth, &b.SouthWalesTransport, &b.SeriousIllness,
		&agreements,
		&priceType, &b.AmountDue, &b.EarlyBirdDiscount, &state, &b.Shelved,
		&b.BookingExpires, &b.ExpiryWarningSent, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	camp.ID = b.CampID
	b.Camp = &camp
	b.Account.ID = b.AccountID
	b.Sex = booking.Sex(sex)
	b.PriceType = pricing.PriceType(priceType)
	b.State = booking.State(state)

	ids, err := parseUUIDs(agreements)
	if err != nil {
		return nil, fmt.Errorf("parsing agreements checked: %w", err)
	}

	b.AgreementsChecked = ids

	return &b, nil
}

func parseUUIDs(s string) ([]uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]uuid.UUID, 0, len(parts))

	for _, p := range parts {
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// UUIDArray renders ids as a Postgres array literal, for a $n::uuid[] parameter.
func UUIDArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}

	return "{" + strings.Join(parts, ",") + "}"
}

// List runs a booking query built from SelectColumns and From.
func List(ctx context.Context, q Querier, query string, args ...any) ([]*booking.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bs []*booking.Booking

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}

		bs = append(bs, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating booking rows: %w", err)
	}

	return bs, nil
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	query := `SELECT ` + SelectColumns + From + `WHERE b.id = $1`

	b, err := scanBooking(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}

		return nil, fmt.Errorf("getting booking: %w", err)
	}

	return b, nil
}

func (s *Store) ListAccountBookings(ctx context.Context, accountID uuid.UUID, year int) ([]*booking.Booking, error) {
	return listAccountBookings(ctx, s.db, accountID, year)
}

func (s *Store) CountBookedPlaces(ctx context.Context, campID uuid.UUID) (booking.Places, error) {
	return countBookedPlaces(ctx, s.db, campID)
}

func (s *Store) ListAgreements(ctx context.Context, year int) ([]booking.Agreement, error) {
	return listAgreements(ctx, s.db, year)
}

func (s *Store) UpdateBooking(ctx context.Context, b *booking.Booking) error {
	return updateBooking(ctx, s.db, b)
}

// ExpireBooking only touches the row while it is still a booked place whose
// deadline has passed, so a payment confirmed since the sweep read it wins.
func (s *Store) ExpireBooking(ctx context.Context, b *booking.Booking, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET state = $1, booking_expires = NULL, early_bird_discount = FALSE,
			expiry_warning_sent = FALSE, amount_due = $2, updated_at = NOW()
		WHERE id = $3 AND state = $4 AND booking_expires IS NOT NULL AND booking_expires <= $5
	`

	res, err := s.db.ExecContext(ctx, query, booking.StateInfoComplete, b.AmountDue, b.ID, booking.StateBooked, now)
	if err != nil {
		return false, fmt.Errorf("expiring booking: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("expiring booking: %w", err)
	}

	return n > 0, nil
}

func (s *Store) MarkExpiryWarned(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET expiry_warning_sent = TRUE, updated_at = NOW()
		WHERE id = $1 AND state = $2 AND booking_expires IS NOT NULL AND NOT expiry_warning_sent
	`

	res, err := s.db.ExecContext(ctx, query, id, booking.StateBooked)
	if err != nil {
		return false, fmt.Errorf("marking expiry warning: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking expiry warning: %w", err)
	}

	return n > 0, nil
}

func (s *Store) ListUnconfirmed(ctx context.Context) ([]*booking.Booking, error) {
	query := `SELECT ` + SelectColumns + From + `
		WHERE b.state = $1 AND b.booking_expires IS NOT NULL
		ORDER BY b.account_id, b.created_at`

	bs, err := List(ctx, s.db, query, booking.StateBooked)
	if err != nil {
		return nil, fmt.Errorf("listing unconfirmed bookings: %w", err)
	}

	return bs, nil
}

func listAccountBookings(ctx context.Context, q Querier, accountID uuid.UUID, year int) ([]*booking.Booking, error) {
	query := `SELECT ` + SelectColumns + From + `
		WHERE b.account_id = $1 AND c.year = $2
		ORDER BY b.created_at, b.id`

	bs, err := List(ctx, q, query, accountID, year)
	if err != nil {
		return nil, fmt.Errorf("listing account bookings: %w", err)
	}

	return bs, nil
}

func countBookedPlaces(ctx context.Context, q Querier, campID uuid.UUID) (booking.Places, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE sex = $2),
			COUNT(*) FILTER (WHERE sex = $3)
		FROM bookings
		WHERE camp_id = $1 AND state = $4
	`

	var p booking.Places

	err := q.QueryRowContext(ctx, query, campID, booking.SexMale, booking.SexFemale, booking.StateBooked).
		Scan(&p.Total, &p.Male, &p.Female)
	if err != nil {
		return p, fmt.Errorf("counting booked places: %w", err)
	}

	return p, nil
}

func listAgreements(ctx context.Context, q Querier, year int) ([]booking.Agreement, error) {
	query := `
		SELECT id, name, year, camp_id, active
		FROM agreements
		WHERE year = $1 AND active
		ORDER BY name
	`

	rows, err := q.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("listing agreements: %w", err)
	}
	defer rows.Close()

	var as []booking.Agreement

	for rows.Next() {
		var a booking.Agreement
		if err := rows.Scan(&a.ID, &a.Name, &a.Year, &a.CampID, &a.Active); err != nil {
			return nil, fmt.Errorf("scanning agreement: %w", err)
		}

		as = append(as, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating agreement rows: %w", err)
	}

	return as, nil
}

func updateBooking(ctx context.Context, q Querier, b *booking.Booking) error {
	query := `
		UPDATE bookings
		SET first_name = $1, last_name = $2, sex = $3, date_of_birth = $4,
			south_wales_transport = $5, serious_illness = $6, agreements_checked = $7::uuid[],
			price_type = $8, amount_due = $9, early_bird_discount = $10, state = $11, shelved = $12,
			booking_expires = $13, expiry_warning_sent = $14, updated_at = NOW()
		WHERE id = $15
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query,
		b.FirstName,
		b.LastName,
		b.Sex,
		b.DateOfBirth,
		b.SouthWalesTransport,
		b.SeriousIllness,
		UUIDArray(b.AgreementsChecked),
		b.PriceType,
		b.AmountDue,
		b.EarlyBirdDiscount,
		b.State,
		b.Shelved,
		b.BookingExpires,
		b.ExpiryWarningSent,
		b.ID,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.ErrNotFound
		}

		return fmt.Errorf("updating booking: %w", err)
	}

	return nil
}

type basketTx struct {
	tx *sql.Tx
}

func (s *Store) BeginBasket(ctx context.Context) (booking.BasketTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning basket tx: %w", err)
	}

	return &basketTx{tx: dbTx}, nil
}

func (btx *basketTx) Commit() error   { return btx.tx.Commit() }
func (btx *basketTx) Rollback() error { return btx.tx.Rollback() }

func (btx *basketTx) ListAccountBookings(ctx context.Context, accountID uuid.UUID, year int) ([]*booking.Booking, error) {
	return listAccountBookings(ctx, btx.tx, accountID, year)
}

func (btx *basketTx) CountBookedPlaces(ctx context.Context, campID uuid.UUID) (booking.Places, error) {
	return countBookedPlaces(ctx, btx.tx, campID)
}

func (btx *basketTx) ListAgreements(ctx context.Context, year int) ([]booking.Agreement, error) {
	return listAgreements(ctx, btx.tx, year)
}

// ListBasket locks the account's basket rows for the rest of the transaction.
func (btx *basketTx) ListBasket(ctx context.Context, accountID uuid.UUID) ([]*booking.Booking, error) {
	query := `SELECT ` + SelectColumns + From + `
		WHERE b.account_id = $1 AND NOT b.shelved AND b.state IN ($2, $3)
		ORDER BY b.created_at, b.id
		FOR UPDATE OF b`

	bs, err := List(ctx, btx.tx, query, accountID, booking.StateInfoComplete, booking.StateApproved)
	if err != nil {
		return nil, fmt.Errorf("listing basket: %w", err)
	}

	return bs, nil
}

func (btx *basketTx) UpdateBookings(ctx context.Context, bs []*booking.Booking) error {
	for _, b := range bs {
		if err := updateBooking(ctx, btx.tx, b); err != nil {
			return fmt.Errorf("updating booking %s: %w", b.ID, err)
		}
	}

	return nil
}
