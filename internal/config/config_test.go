package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ConsistencyTransactional, cfg.Billing.Consistency)
	assert.True(t, cfg.Billing.AllowNegativeTotal)
	assert.True(t, cfg.Billing.AllowZeroPayment)
	assert.Equal(t, "INV", cfg.Billing.InvoicePrefix)
	assert.Equal(t, 120*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 32, cfg.Printer.Width)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("INVOICE_CONSISTENCY", "sequential")
	t.Setenv("BILLING_ALLOW_ZERO_PAYMENT", "false")
	t.Setenv("SESSION_TTL_MINUTES", "5")

	cfg := Load()

	assert.Equal(t, ConsistencySequential, cfg.Billing.Consistency)
	assert.False(t, cfg.Billing.AllowZeroPayment)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
}

func TestUnknownConsistencyFallsBack(t *testing.T) {
	t.Setenv("INVOICE_CONSISTENCY", "eventual")

	cfg := Load()

	assert.Equal(t, ConsistencyTransactional, cfg.Billing.Consistency)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "salon", Port: "5432", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=salon port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}
