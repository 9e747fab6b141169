package config

import (
	"github.com/andrew-solarstorm/go-packages/common"
)

type CheckoutConfig struct {
	// JournalDBPath is the path to the BoltDB file for attempt journaling.
	// Default: "./data/checkout.db"
	JournalDBPath string

	// JournalEnabled controls whether terminal attempt outcomes are persisted.
	// Default: true
	JournalEnabled bool
}

func (c *CheckoutConfig) Key() string {
	return CHECKOUT_CONFIG_KEY
}

func (c *CheckoutConfig) Load() error {
	c.JournalDBPath = common.GetEnvOrDefault("CHECKOUT_DB_PATH", "./data/checkout.db")
	c.JournalEnabled = common.GetEnvOrDefault("CHECKOUT_JOURNAL_ENABLED", "true") == "true"
	return nil
}

func (c *CheckoutConfig) Validate() error {
	return nil
}
