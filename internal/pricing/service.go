package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=pricing
type Repository interface {
	ListPrices(ctx context.Context, year int) ([]Price, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Table loads every published price for year. A year with no rows yields an
// empty table rather than an error; callers check Complete.
func (s *Service) Table(ctx context.Context, year int) (*Table, error) {
	prices, err := s.repo.ListPrices(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("listing prices for %d: %w", year, err)
	}

	return NewTable(year, prices), nil
}

func (s *Service) PriceFor(ctx context.Context, year int, pt PriceType) (decimal.Decimal, error) {
	t, err := s.Table(ctx, year)
	if err != nil {
		return decimal.Zero, err
	}

	return t.PriceFor(pt)
}

// Source is anything that can load a year's table; *Service is one.
type Source interface {
	Table(ctx context.Context, year int) (*Table, error)
}

// Checker memoises tables for the lifetime of a single unit of work, so a
// balance or eligibility pass over many bookings reads each year once.
type Checker struct {
	src    Source
	tables map[int]*Table
}

func NewChecker(src Source) *Checker {
	return &Checker{src: src, tables: make(map[int]*Table)}
}

func (c *Checker) Table(ctx context.Context, year int) (*Table, error) {
	if t, ok := c.tables[year]; ok {
		return t, nil
	}

	t, err := c.src.Table(ctx, year)
	if err != nil {
		return nil, err
	}

	c.tables[year] = t

	return t, nil
}
