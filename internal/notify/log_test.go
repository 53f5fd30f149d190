package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/campbooking/internal/notify"
)

func TestLog_Publish(t *testing.T) {
	var buf bytes.Buffer

	pub := notify.NewLog(slog.New(slog.NewJSONHandler(&buf, nil)))

	accountID := uuid.New()
	err := pub.Publish(context.Background(), []notify.Notification{
		{
			Kind:      notify.KindPlaceConfirmed,
			Audience:  notify.AudienceAccount,
			AccountID: accountID,
			Email:     "a@b.com",
			Places:    []notify.Place{{BookingID: uuid.New(), CamperName: "Amy Smith"}},
			Amount:    decimal.RequireFromString("20"),
		},
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "notification due", line["msg"])
	assert.Equal(t, string(notify.KindPlaceConfirmed), line["kind"])
	assert.Equal(t, accountID.String(), line["account_id"])
	assert.Equal(t, "20.00", line["amount"])
	assert.EqualValues(t, 1, line["places"])
}
