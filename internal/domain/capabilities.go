package domain

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Signer is the wallet capability: presented a transaction, it either signs
// it in place or reports rejection with ErrUserRejected. The pipeline never
// sees key material.
type Signer interface {
	Sign(ctx context.Context, tx *solana.Transaction) error
}

// Reporter receives pipeline transition notifications. Implementations drive
// user-facing progress (toasts, CLI output); the state machine itself stays
// pure. Calls must not block.
type Reporter interface {
	StageChanged(stage Stage, detail string)
}

// NopReporter discards all transitions.
type NopReporter struct{}

func (NopReporter) StageChanged(Stage, string) {}
