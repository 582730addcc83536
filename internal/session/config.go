package session

import (
	"os"
	"strings"
	"time"

	"salespoint/internal/checkout"
)

// Config carries the session policy knobs.
//
//	SALESPOINT_REQUIRE_CUSTOMER: true|false (default true)
//	SALESPOINT_ALLOW_GUEST: true|false (default true)
//	SALESPOINT_PAYMENT_DELAY: Go duration, e.g. 2s (default 2s)
type Config struct {
	RequireCustomer bool
	AllowGuest      bool
	PaymentDelay    time.Duration
}

// DefaultConfig mirrors the shipped terminal behavior: named customer
// required, guest fallback permitted, two second payment simulation.
func DefaultConfig() Config {
	return Config{
		RequireCustomer: true,
		AllowGuest:      true,
		PaymentDelay:    checkout.DefaultPaymentDelay,
	}
}

// FromEnv reads the SALESPOINT_* policy variables on top of DefaultConfig.
func FromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("SALESPOINT_REQUIRE_CUSTOMER"); v != "" {
		cfg.RequireCustomer = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SALESPOINT_ALLOW_GUEST"); v != "" {
		cfg.AllowGuest = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SALESPOINT_PAYMENT_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PaymentDelay = d
		}
	}
	return cfg
}

func (c Config) checkout() checkout.Config {
	return checkout.Config{
		RequireCustomer: c.RequireCustomer,
		AllowGuest:      c.AllowGuest,
		PaymentDelay:    c.PaymentDelay,
	}
}
