package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name           string   `envconfig:"APP_NAME" default:"Camp Bookings"`
		Port           int      `envconfig:"PORT" default:"8080"`
		AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"campbooking"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		Password string `envconfig:"REDIS_PASSWORD" default:""`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	AMQP struct {
		// Empty URL disables the broker and notifications are only logged.
		URL   string `envconfig:"AMQP_URL"`
		Queue string `envconfig:"AMQP_QUEUE" default:"camp.notifications"`
	}

	Lock struct {
		Backend string        `envconfig:"LOCK_BACKEND" default:"postgres"`
		Timeout time.Duration `envconfig:"LOCK_TIMEOUT" default:"5s"`
		Retry   time.Duration `envconfig:"LOCK_RETRY" default:"100ms"`
		TTL     time.Duration `envconfig:"LOCK_TTL" default:"30s"`
	}

	Booking struct {
		ExpiryWindow         time.Duration `envconfig:"BOOKING_EXPIRY_WINDOW" default:"24h"`
		WarningLead          time.Duration `envconfig:"BOOKING_EXPIRY_WARNING_LEAD" default:"12h"`
		LateBookingThreshold time.Duration `envconfig:"BOOKING_LATE_THRESHOLD" default:"720h"`
		FullPaymentDue       time.Duration `envconfig:"BOOKING_FULL_PAYMENT_DUE" default:"2160h"`
		EarlyBirdMonth       int           `envconfig:"BOOKING_EARLY_BIRD_MONTH" default:"5"`
		EarlyBirdDay         int           `envconfig:"BOOKING_EARLY_BIRD_DAY" default:"1"`
		PendingAbandonMonths int           `envconfig:"BOOKING_PENDING_ABANDON_MONTHS" default:"3"`
	}

	Token struct {
		Secret string        `envconfig:"TOKEN_SECRET" default:"change-me"`
		TTL    time.Duration `envconfig:"TOKEN_TTL" default:"72h"`
	}

	Sweeper struct {
		Schedule string `envconfig:"SWEEPER_SCHEDULE" default:"@every 15m"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// EarlyBirdCutoff returns the instant early-bird pricing stops for camps in year.
func (c *Config) EarlyBirdCutoff(year int) time.Time {
	return time.Date(year, time.Month(c.Booking.EarlyBirdMonth), c.Booking.EarlyBirdDay, 0, 0, 0, 0, time.UTC)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Lock.Backend {
	case "postgres", "redis", "local":
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Lock.Backend)
	}

	return &cfg, nil
}
