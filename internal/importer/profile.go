package importer

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Amount" with value "-10.00").
	amountSingle amountMode = iota
	// amountSplit means separate money-out and money-in columns.
	amountSplit
)

// Profile describes the column layout of a bank statement export. Column
// names are matched case-insensitively.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string // amountSingle
	OutCol     string // amountSplit
	InCol      string // amountSplit
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.OutCol, p.InCol)
	}

	return cols
}

// profiles are tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:       "debit-credit",
		DateCol:    "transaction date",
		DescCol:    "transaction description",
		AmountMode: amountSplit,
		OutCol:     "debit amount",
		InCol:      "credit amount",
	},
	{
		Name:       "paid-in-out",
		DateCol:    "date",
		DescCol:    "description",
		AmountMode: amountSplit,
		OutCol:     "paid out",
		InCol:      "paid in",
	},
	{
		Name:       "money-in-out",
		DateCol:    "date",
		DescCol:    "description",
		AmountMode: amountSplit,
		OutCol:     "money out",
		InCol:      "money in",
	},
	{
		Name:       "single",
		DateCol:    "date",
		DescCol:    "description",
		AmountMode: amountSingle,
		AmountCol:  "amount",
	},
}
