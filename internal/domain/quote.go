package domain

import (
	"encoding/json"
	"errors"
)

var (
	// ErrQuoteUnavailable means the routing service could not produce an
	// executable quote. Recoverable by user retry.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrSimulationFailed means the swap build pre-flight simulation failed.
	// The transaction is never presented for signing.
	ErrSimulationFailed = errors.New("swap simulation failed")
)

// SwapQuote is an executable exact-output conversion route. A quote is a
// snapshot: it is consumed promptly within one swap attempt or re-fetched.
type SwapQuote struct {
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`

	// InAmount is the concrete input the buyer must provide, in base units.
	InAmount string `json:"inAmount"`

	// OutAmount matches the requested amount exactly in ExactOut mode.
	OutAmount string `json:"outAmount"`

	OtherAmountThreshold string `json:"otherAmountThreshold"`
	SwapMode             string `json:"swapMode"`
	SlippageBps          uint16 `json:"slippageBps"`

	// Raw is the untouched quote response, forwarded verbatim to the swap
	// build endpoint. The route inside is opaque and never interpreted.
	Raw json.RawMessage `json:"-"`
}

// SwapBuild is a buyer-pending swap transaction produced from a quote.
type SwapBuild struct {
	// TransactionBytes is the decoded transaction payload, single-use and
	// bound to the blockhash the routing service compiled it against.
	TransactionBytes []byte

	// LastValidBlockHeight bounds confirmation for that blockhash.
	LastValidBlockHeight uint64
}
