package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/campbooking/internal/pricing"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListPrices(ctx context.Context, year int) ([]pricing.Price, error) {
	query := `
		SELECT year, price_type, price
		FROM prices
		WHERE year = $1
	`

	rows, err := s.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("listing prices: %w", err)
	}
	defer rows.Close()

	var prices []pricing.Price

	for rows.Next() {
		var (
			p  pricing.Price
			pt string
		)

		if err := rows.Scan(&p.Year, &pt, &p.Price); err != nil {
			return nil, fmt.Errorf("scanning price: %w", err)
		}

		p.Type = pricing.PriceType(pt)
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating price rows: %w", err)
	}

	return prices, nil
}
