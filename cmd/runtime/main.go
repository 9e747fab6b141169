package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/nft-checkout/internal/chain"
	"github.com/hxuan190/nft-checkout/internal/checkout"
	"github.com/hxuan190/nft-checkout/internal/config"
	"github.com/hxuan190/nft-checkout/internal/http"
)

// @title NFT Checkout API
// @version 1.0
// @description Purchase pipeline for marketplace-listed Solana NFTs with any-token payment.
// @description
// @description ## - Features
// @description - **Listing Resolution**: Fresh sale terms per request, never cached across attempts
// @description - **Any-Token Payment**: Exact-output conversion into the listing currency via aggregator routing
// @description - **Transaction Rebuild**: Marketplace purchase envelopes recompiled against a fresh blockhash with the buyer as fee payer
// @description - **Height-Based Expiry**: Confirmation windows measured in block height, never wall-clock time
// @description - **No Automatic Retries**: Failed or ambiguous attempts surface for the buyer to decide
// @description
// @description ## - Usage Tips
// @description - Amounts are in smallest units (lamports; 1 SOL = 1,000,000,000 lamports)
// @description - Transactions returned by /buy are single-use; rebuild once lastValidBlockHeight passes
// @description - Ambiguous attempts are not failures: verify the recorded signature before retrying
// @description - Rate limit: 10 requests/second (burst: 20)
// @host localhost:8080
// @BasePath /
// @schemes http https
// @tag.name listings
// @tag.description Resolve current sale terms for a mint
// @tag.name collections
// @tag.description Browse marketplace collections
// @tag.name price
// @tag.description Display-only price conversion
// @tag.name quote
// @tag.description Exact-output conversion quotes
// @tag.name buy
// @tag.description Build unsigned purchase transactions ready for signing and submission
// @tag.name attempts
// @tag.description Journaled terminal outcomes of purchase attempts

func main() {
	// load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.RPCConfig{},
		&config.MarketplaceConfig{},
		&config.JupiterConfig{},
		&config.CheckoutConfig{},
	)

	// di container
	dic, err := container.New(
		conf,

		&chain.BlockhashService{},
		&checkout.Service{},
		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
