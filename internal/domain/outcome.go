package domain

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Stage identifies where in the pipeline an attempt currently is, or where it
// terminally stopped.
type Stage string

const (
	StageResolveListing    Stage = "resolve_listing"
	StageQuoteSwap         Stage = "quote_swap"
	StageBuildSwap         Stage = "build_swap"
	StageAwaitSwapApproval Stage = "await_swap_approval"
	StageConfirmSwap       Stage = "confirm_swap"
	StageAssemblePurchase  Stage = "assemble_purchase"
	StageAwaitBuyApproval  Stage = "await_buy_approval"
	StageConfirmPurchase   Stage = "confirm_purchase"
	StageSettled           Stage = "settled"
)

// OutcomeKind is the discriminant a caller branches on.
type OutcomeKind string

const (
	OutcomeSettled                   OutcomeKind = "Settled"
	OutcomeNotListed                 OutcomeKind = "NotListed"
	OutcomeIncompleteListing         OutcomeKind = "IncompleteListing"
	OutcomeQuoteUnavailable          OutcomeKind = "QuoteUnavailable"
	OutcomeSimulationFailed          OutcomeKind = "SimulationFailed"
	OutcomeUserRejected              OutcomeKind = "UserRejected"
	OutcomeTransactionFailed         OutcomeKind = "TransactionFailed"
	OutcomeAmbiguous                 OutcomeKind = "AmbiguousOutcome"
	OutcomeSwapSettledPurchaseFailed OutcomeKind = "SwapSettledPurchaseFailed"
)

// Outcome is the terminal result of one purchase attempt. SwapSettled is the
// single most important field: whether the buyer's funds moved before the
// attempt stopped.
type Outcome struct {
	Kind  OutcomeKind `json:"kind"`
	Stage Stage       `json:"stage"`

	// SwapSettled reports whether a pre-purchase conversion confirmed
	// on-chain. False when no swap was needed or the swap never landed.
	SwapSettled bool `json:"swapSettled"`

	// SwapSignature is set once a swap transaction was submitted.
	SwapSignature string `json:"swapSignature,omitempty"`

	// PurchaseSignature is set once a purchase transaction was submitted.
	// On AmbiguousOutcome it is the reference for manual verification.
	PurchaseSignature string `json:"purchaseSignature,omitempty"`

	Detail string `json:"detail,omitempty"`
}

// ErrUserRejected is the terminal, non-retryable outcome of a buyer declining
// a signature prompt.
var ErrUserRejected = errors.New("user rejected signing")

var (
	// ErrMalformedInstructionSet means the marketplace response lacked the
	// expected signed-transaction payload.
	ErrMalformedInstructionSet = errors.New("missing instruction data")

	// ErrPartialLookupFailure means at least one referenced address lookup
	// table could not be resolved. Decompiling with missing tables would
	// produce an invalid transaction, so assembly aborts.
	ErrPartialLookupFailure = errors.New("unresolved address lookup table")
)

// TransactionError is a chain-rejected execution: the transaction landed and
// failed, or submission itself was refused.
type TransactionError struct {
	Signature solana.Signature
	Detail    string
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed: %s", e.Detail)
}

// AmbiguousError means the confirmation window elapsed with no status: the
// transaction may still land. Explicitly distinct from failure; retrying
// risks a double spend, so callers surface it for manual verification.
type AmbiguousError struct {
	Signature            solana.Signature
	LastValidBlockHeight uint64
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("confirmation window elapsed at height %d, outcome unknown for %s",
		e.LastValidBlockHeight, e.Signature)
}
