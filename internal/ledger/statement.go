package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/campbooking/internal/importer"
	"github.com/MrJamesThe3rd/campbooking/internal/notify"
)

type ImportResult struct {
	Recorded      []*Payment
	Duplicates    int
	Unrecognised  int
	Notifications []notify.Notification
}

// ImportStatement records a manual payment for every incoming statement line
// whose description quotes an account's payment reference. Lines already
// imported are skipped; unmatched lines are reported to operators.
func (s *Service) ImportStatement(ctx context.Context, lines []importer.Line, now time.Time) (*ImportResult, error) {
	res := &ImportResult{}

	for _, l := range lines {
		if !l.Amount.IsPositive() {
			continue
		}

		if _, err := s.repo.FindPaymentByTxn(ctx, l.TxnID); err == nil {
			res.Duplicates++
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return res, fmt.Errorf("finding statement line %s: %w", l.TxnID, err)
		}

		acct, err := s.repo.FindAccountByReference(ctx, l.Description)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return res, fmt.Errorf("matching statement line: %w", err)
			}

			res.Unrecognised++
			res.Notifications = append(res.Notifications, notify.Notification{
				Kind:      notify.KindUnrecognisedPayment,
				Audience:  notify.AudienceOperators,
				Amount:    l.Amount,
				Reference: l.Description,
				Reason:    "no payment reference on bank statement line " + l.Date.Format("2006-01-02"),
				CreatedAt: now,
			})

			continue
		}

		r, err := s.Record(ctx, &Payment{
			Kind:      KindManual,
			AccountID: acct.ID,
			Amount:    l.Amount,
			TxnID:     l.TxnID,
			Note:      l.Description,
		}, now)
		if err != nil {
			return res, err
		}

		res.Recorded = append(res.Recorded, r.Payment)
		res.Notifications = append(res.Notifications, r.Notifications...)
	}

	slog.Info("statement imported",
		"lines", len(lines),
		"recorded", len(res.Recorded),
		"duplicates", res.Duplicates,
		"unrecognised", res.Unrecognised,
	)

	return res, nil
}
