// Package common contains common constants and variables used across services
package common

import "github.com/gagliardetto/solana-go"

var (
	// WrappedSOLMint is the reference currency for every marketplace listing.
	WrappedSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

const (
	LamportsPerSOL = 1_000_000_000

	// BlockhashValidityMargin is the block-height margin applied when a
	// collaborator reports a blockhash without its own validity window.
	// A blockhash stays valid for ~150 blocks after it is produced.
	BlockhashValidityMargin = 150
)
