// Package importer reads bank statement exports into statement lines.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/campbooking/internal/encoding"
)

// Line is one movement on a bank statement.
type Line struct {
	Date        time.Time
	Description string
	// Amount is signed: positive is money into the account.
	Amount decimal.Decimal
	// TxnID identifies the line across imports of overlapping statements.
	TxnID string
}

// Parser reads bank CSV exports. It auto-detects the layout by matching
// column headers against known profiles, and the delimiter and character
// encoding from the content.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]Line, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching statement format found: expected Date, Description and Amount (or Paid in/Paid out) columns")
	}

	lines, err := parseRows(profile, colMap, rows[headerIdx+1:], headerIdx)
	if err != nil {
		return nil, err
	}

	assignTxnIDs(lines)

	return lines, nil
}

// sniffDelimiter picks ';' for exports that use it, otherwise ','.
func sniffDelimiter(data []byte) rune {
	if bytes.Count(data, []byte(";")) > bytes.Count(data, []byte(",")) {
		return ';'
	}

	return ','
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts statement lines using the matched profile.
// headerIdx is the 0-based index of the header in the file, for error messages.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerIdx int) ([]Line, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var lines []Line

	for i, row := range rows {
		rowNum := headerIdx + i + 2 // 1-based

		date, ok := parseDate(row, dateIdx)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, ok := rowAmount(p, cols, row)
		if !ok {
			continue
		}

		lines = append(lines, Line{Date: date, Description: desc, Amount: amount})
	}

	return lines, nil
}

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"02 Jan 2006",
	"2 Jan 2006",
}

// parseDate returns false for empty cells and footer rows.
func parseDate(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func rowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, bool) {
	switch p.AmountMode {
	case amountSingle:
		return cellAmount(row, cols[p.AmountCol])
	case amountSplit:
		if out, ok := cellAmount(row, cols[p.OutCol]); ok {
			return out.Abs().Neg(), true
		}

		if in, ok := cellAmount(row, cols[p.InCol]); ok {
			return in.Abs(), true
		}
	}

	return decimal.Zero, false
}

// cellAmount parses a non-zero amount from the cell.
func cellAmount(row []string, idx int) (decimal.Decimal, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// assignTxnIDs derives a stable id from each line's content. Identical lines
// in one statement are told apart by their occurrence.
func assignTxnIDs(lines []Line) {
	seen := make(map[string]int)

	for i := range lines {
		l := &lines[i]
		key := l.Date.Format("2006-01-02") + "\x00" + l.Amount.StringFixed(2) + "\x00" + strings.ToLower(l.Description)

		n := seen[key]
		seen[key] = n + 1

		h := fnv.New64a()
		h.Write([]byte(key))
		h.Write([]byte{0, byte(n)})

		l.TxnID = "stmt-" + hex.EncodeToString(h.Sum(nil))
	}
}
