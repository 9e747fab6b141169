package chain

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/nft-checkout/internal/domain"
	"github.com/hxuan190/nft-checkout/internal/metrics"
)

// Confirmer waits for a submitted transaction inside its blockhash validity
// window. Expiry is height-based, not wall-clock: chain time is measured in
// blocks, and a transaction referencing an expired blockhash can never land.
type Confirmer struct {
	client       Client
	pollInterval time.Duration

	// heightEvery controls how many status polls pass between block-height
	// checks; the status poll is the cheap one.
	heightEvery int
}

func NewConfirmer(client Client, pollInterval time.Duration) *Confirmer {
	if pollInterval <= 0 {
		pollInterval = 700 * time.Millisecond
	}
	return &Confirmer{client: client, pollInterval: pollInterval, heightEvery: 4}
}

// Confirm blocks until the signature confirms, the chain reports a failure,
// or the validity window expires.
//
// Returns nil on confirmation, *domain.TransactionError on chain-reported
// failure, and *domain.AmbiguousError once the chain height passes
// lastValidBlockHeight with no recorded status — the transaction may still
// land, so the caller must treat the outcome as unknown, never retry.
func (c *Confirmer) Confirm(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	polls := 0
	for {
		select {
		case <-ctx.Done():
			// Already submitted: cancellation cannot unsend it.
			return &domain.AmbiguousError{Signature: sig, LastValidBlockHeight: lastValidBlockHeight}
		case <-ticker.C:
		}

		metrics.ConfirmationPolls.Inc()
		status, err := c.client.SignatureStatus(ctx, sig)
		if err == nil && status != nil {
			if status.Err != "" {
				return &domain.TransactionError{Signature: sig, Detail: status.Err}
			}
			if status.Confirmed {
				return nil
			}
		}

		polls++
		if polls%c.heightEvery != 0 {
			continue
		}

		height, err := c.client.BlockHeight(ctx)
		if err != nil {
			continue
		}
		if height > lastValidBlockHeight {
			return &domain.AmbiguousError{Signature: sig, LastValidBlockHeight: lastValidBlockHeight}
		}
	}
}
