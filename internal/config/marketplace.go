package config

import (
	"errors"
	"os"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
)

type MarketplaceConfig struct {
	// BaseURL is the marketplace REST API root.
	// Default: "https://api-mainnet.magiceden.dev/v2"
	BaseURL string

	// APIKey is the bearer token for authenticated endpoints (buy_now).
	APIKey string

	// RequestTimeout bounds a single marketplace HTTP round trip.
	RequestTimeout time.Duration
}

func (c *MarketplaceConfig) Key() string {
	return MARKETPLACE_CONFIG_KEY
}

func (c *MarketplaceConfig) Load() error {
	c.BaseURL = common.GetEnvOrDefault("MARKETPLACE_BASE_URL", "https://api-mainnet.magiceden.dev/v2")
	c.APIKey = os.Getenv("MARKETPLACE_API_KEY")
	c.RequestTimeout = time.Duration(common.GetEnvOrDefaultInt("MARKETPLACE_TIMEOUT_MS", 10000)) * time.Millisecond
	return nil
}

func (c *MarketplaceConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("invalid marketplace config")
	}
	return nil
}
