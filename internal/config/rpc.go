package config

import (
	"errors"
	"os"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
)

type RPCConfig struct {
	RPCUrl string

	// Commitment used for submission preflight and confirmation polling.
	Commitment string

	// ConfirmPollInterval is how often signature statuses are polled while
	// waiting for a transaction to land.
	ConfirmPollInterval time.Duration

	// BlockhashRefreshInterval controls the cached blockhash refresh ticker.
	BlockhashRefreshInterval time.Duration
}

func (r *RPCConfig) Key() string {
	return RPC_CONFIG_KEY
}

func (r *RPCConfig) Load() error {
	r.RPCUrl = os.Getenv("RPC_URL")
	r.Commitment = common.GetEnvOrDefault("RPC_COMMITMENT", "confirmed")
	r.ConfirmPollInterval = time.Duration(common.GetEnvOrDefaultInt("CONFIRM_POLL_MS", 700)) * time.Millisecond
	r.BlockhashRefreshInterval = time.Duration(common.GetEnvOrDefaultInt("BLOCKHASH_REFRESH_MS", 2000)) * time.Millisecond
	return nil
}

func (r *RPCConfig) Validate() error {
	if r.RPCUrl == "" {
		return errors.New("invalid rpc config")
	}
	return nil
}
