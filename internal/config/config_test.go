package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/campbooking/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Booking.ExpiryWindow)
	assert.Equal(t, 12*time.Hour, cfg.Booking.WarningLead)
	assert.Equal(t, 30*24*time.Hour, cfg.Booking.LateBookingThreshold)
	assert.Equal(t, 90*24*time.Hour, cfg.Booking.FullPaymentDue)
	assert.Equal(t, 3, cfg.Booking.PendingAbandonMonths)
	assert.Equal(t, "postgres", cfg.Lock.Backend)
	assert.Equal(t, []string{"*"}, cfg.App.AllowedOrigins)
	assert.Equal(t, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC), cfg.EarlyBirdCutoff(2026))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOCK_BACKEND", "redis")
	t.Setenv("BOOKING_EARLY_BIRD_MONTH", "4")
	t.Setenv("BOOKING_EARLY_BIRD_DAY", "15")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DB_HOST", "db")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Lock.Backend)
	assert.Equal(t, time.Date(2027, time.April, 15, 0, 0, 0, 0, time.UTC), cfg.EarlyBirdCutoff(2027))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:@db:5432/campbooking?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_UnknownLockBackend(t *testing.T) {
	t.Setenv("LOCK_BACKEND", "zookeeper")

	_, err := config.Load()
	assert.Error(t, err)
}
