package config

import (
	"errors"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
)

// JupiterConfig points at the lite-api endpoint set. Earlier revisions of the
// frontend mixed quote-api.jup.ag and lite-api.jup.ag; lite-api is canonical.
type JupiterConfig struct {
	// SwapBaseURL serves /quote and /swap.
	// Default: "https://lite-api.jup.ag/swap/v1"
	SwapBaseURL string

	// PriceBaseURL serves the display-only price oracle.
	// Default: "https://lite-api.jup.ag/price/v2"
	PriceBaseURL string

	// SlippageBps is the input-side slippage tolerance for ExactOut quotes.
	SlippageBps uint16

	// RequestTimeout bounds a single Jupiter HTTP round trip.
	RequestTimeout time.Duration
}

func (c *JupiterConfig) Key() string {
	return JUPITER_CONFIG_KEY
}

func (c *JupiterConfig) Load() error {
	c.SwapBaseURL = common.GetEnvOrDefault("JUPITER_SWAP_BASE_URL", "https://lite-api.jup.ag/swap/v1")
	c.PriceBaseURL = common.GetEnvOrDefault("JUPITER_PRICE_BASE_URL", "https://lite-api.jup.ag/price/v2")
	c.SlippageBps = uint16(common.GetEnvOrDefaultInt("JUPITER_SLIPPAGE_BPS", 100))
	c.RequestTimeout = time.Duration(common.GetEnvOrDefaultInt("JUPITER_TIMEOUT_MS", 10000)) * time.Millisecond
	return nil
}

func (c *JupiterConfig) Validate() error {
	if c.SwapBaseURL == "" || c.PriceBaseURL == "" {
		return errors.New("invalid jupiter config")
	}
	if c.SlippageBps == 0 {
		return errors.New("slippage must be non-zero for exact-out swaps")
	}
	return nil
}
