package purchase

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/nft-checkout/internal/chain"
	"github.com/hxuan190/nft-checkout/internal/domain"
)

// Executor signs, submits and confirms an assembled purchase transaction.
type Executor struct {
	client    chain.Client
	confirmer *chain.Confirmer
}

func NewExecutor(client chain.Client, confirmer *chain.Confirmer) *Executor {
	return &Executor{client: client, confirmer: confirmer}
}

// Execute runs the assembled purchase through approval, submission and
// confirmation. The returned signature is set as soon as the transaction is
// submitted, even when confirmation later fails or turns ambiguous. A
// declined approval is reported as domain.ErrUserRejected and nothing is
// sent. No retries: an expired or ambiguous purchase is surfaced, never
// replayed.
func (e *Executor) Execute(ctx context.Context, signer domain.Signer, reporter domain.Reporter, assembled *Assembled) (solana.Signature, error) {
	reporter.StageChanged(domain.StageAwaitBuyApproval, "")
	if err := signer.Sign(ctx, assembled.Tx); err != nil {
		return solana.Signature{}, err
	}

	sig, err := e.client.SendTransaction(ctx, assembled.Tx)
	if err != nil {
		return solana.Signature{}, &domain.TransactionError{Detail: err.Error()}
	}

	log.Info().
		Str("signature", sig.String()).
		Uint64("lastValidBlockHeight", assembled.LastValidBlockHeight).
		Msg("[purchaseExecutor] purchase submitted")

	reporter.StageChanged(domain.StageConfirmPurchase, sig.String())
	if err := e.confirmer.Confirm(ctx, sig, assembled.LastValidBlockHeight); err != nil {
		return sig, err
	}
	return sig, nil
}
