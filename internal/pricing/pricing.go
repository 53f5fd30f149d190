package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("price not found")

// PriceType identifies a row in the yearly price table.
type PriceType string

const (
	TypeFull                PriceType = "full"
	TypeSecondChild         PriceType = "2nd_child"
	TypeThirdChild          PriceType = "3rd_child"
	TypeCustom              PriceType = "custom"
	TypeDeposit             PriceType = "deposit"
	TypeEarlyBirdDiscount   PriceType = "early_bird_discount"
	TypeSouthWalesTransport PriceType = "south_wales_transport"
)

// requiredTypes must all be present before any booking for the year is accepted.
var requiredTypes = []PriceType{TypeFull, TypeSecondChild, TypeThirdChild, TypeDeposit}

// Price is one row of the price table, unique per (Year, Type).
type Price struct {
	Year  int
	Type  PriceType
	Price decimal.Decimal
}

// Table holds every price published for a single year.
type Table struct {
	Year   int
	prices map[PriceType]decimal.Decimal
}

func NewTable(year int, prices []Price) *Table {
	t := &Table{Year: year, prices: make(map[PriceType]decimal.Decimal, len(prices))}
	for _, p := range prices {
		if p.Year != year {
			continue
		}

		t.prices[p.Type] = p.Price
	}

	return t
}

// Get returns the price for the given type, if published.
func (t *Table) Get(pt PriceType) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Zero, false
	}

	p, ok := t.prices[pt]

	return p, ok
}

// PriceFor is Get with a sentinel error for a missing row.
func (t *Table) PriceFor(pt PriceType) (decimal.Decimal, error) {
	p, ok := t.Get(pt)
	if !ok {
		return decimal.Zero, ErrNotFound
	}

	return p, nil
}

// Complete reports whether all prices required for booking are published.
func (t *Table) Complete() bool {
	for _, pt := range requiredTypes {
		if _, ok := t.Get(pt); !ok {
			return false
		}
	}

	return true
}
