package swap

import (
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/nft-checkout/internal/chain"
	"github.com/hxuan190/nft-checkout/internal/common"
	"github.com/hxuan190/nft-checkout/internal/domain"
)

// Executor runs one conversion attempt to settlement: quote, build, buyer
// approval, submission, confirmation. No step retries automatically — a
// failed or ambiguous swap must never silently trigger a second one.
type Executor struct {
	quoter    *Quoter
	builder   *Builder
	client    chain.Client
	confirmer *chain.Confirmer
}

func NewExecutor(quoter *Quoter, builder *Builder, client chain.Client, confirmer *chain.Confirmer) *Executor {
	return &Executor{
		quoter:    quoter,
		builder:   builder,
		client:    client,
		confirmer: confirmer,
	}
}

// Params describes one conversion: buyer swaps inputMint into exactly
// OutAmount of outputMint.
type Params struct {
	InputMint  string
	OutputMint string
	OutAmount  uint64
	Buyer      solana.PublicKey
}

// Execute runs the conversion and blocks until it settles or terminally
// fails. The returned signature is set from the moment of submission, so an
// ambiguous outcome still carries the reference needed for manual
// verification.
func (e *Executor) Execute(ctx context.Context, signer domain.Signer, reporter domain.Reporter, p Params) (solana.Signature, error) {
	reporter.StageChanged(domain.StageQuoteSwap, fmt.Sprintf("quoting %d base units of %s", p.OutAmount, p.OutputMint))
	quote, err := e.quoter.QuoteExactOut(ctx, p.InputMint, p.OutputMint, p.OutAmount, p.Buyer.String())
	if err != nil {
		return solana.Signature{}, err
	}

	reporter.StageChanged(domain.StageBuildSwap, "building swap transaction")
	build, err := e.builder.Build(ctx, quote, p.Buyer.String())
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(build.TransactionBytes))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("decode swap transaction: %w", err)
	}

	window := build.LastValidBlockHeight
	if window == 0 {
		// Builds occasionally omit the validity window; derive one from the
		// current height so confirmation does not expire on the first poll.
		height, err := e.client.BlockHeight(ctx)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("derive confirmation window: %w", err)
		}
		window = height + common.BlockhashValidityMargin
	}

	reporter.StageChanged(domain.StageAwaitSwapApproval, "awaiting swap approval")
	if err := signer.Sign(ctx, tx); err != nil {
		if errors.Is(err, domain.ErrUserRejected) {
			return solana.Signature{}, err
		}
		return solana.Signature{}, fmt.Errorf("sign swap transaction: %w", err)
	}

	sig, err := e.client.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, &domain.TransactionError{Detail: err.Error()}
	}

	log.Info().
		Str("signature", sig.String()).
		Str("inputMint", p.InputMint).
		Str("inAmount", quote.InAmount).
		Uint64("outAmount", p.OutAmount).
		Msg("[swapExecutor] swap submitted")

	reporter.StageChanged(domain.StageConfirmSwap, sig.String())
	if err := e.confirmer.Confirm(ctx, sig, window); err != nil {
		return sig, err
	}

	log.Info().Str("signature", sig.String()).Msg("[swapExecutor] swap settled")
	return sig, nil
}
