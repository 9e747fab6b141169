// Command checkout runs one purchase attempt from the terminal, signing with
// a local keypair file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/nft-checkout/internal/chain"
	"github.com/hxuan190/nft-checkout/internal/checkout"
	"github.com/hxuan190/nft-checkout/internal/config"
	"github.com/hxuan190/nft-checkout/internal/domain"
	"github.com/hxuan190/nft-checkout/internal/marketplace"
	"github.com/hxuan190/nft-checkout/internal/purchase"
	"github.com/hxuan190/nft-checkout/internal/swap"
)

// keypairSigner signs with a local keypair. PartialSign because rebuilt
// purchase transactions can reference signer accounts the buyer does not
// hold.
type keypairSigner struct {
	key solana.PrivateKey
}

func (s keypairSigner) Sign(_ context.Context, tx *solana.Transaction) error {
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	return err
}

// stageReporter prints pipeline transitions to the console.
type stageReporter struct{}

func (stageReporter) StageChanged(stage domain.Stage, detail string) {
	if detail != "" {
		fmt.Printf("  -> %s (%s)\n", stage, detail)
		return
	}
	fmt.Printf("  -> %s\n", stage)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	mint := flag.String("mint", "", "token mint of the asset to buy")
	paymentMint := flag.String("payment-mint", "", "mint of the asset to pay with (empty = SOL)")
	keypairPath := flag.String("keypair", "", "path to a solana-keygen keypair file")
	flag.Parse()

	if *mint == "" || *keypairPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	rpcConf := &config.RPCConfig{}
	marketConf := &config.MarketplaceConfig{}
	jupConf := &config.JupiterConfig{}
	for _, c := range []interface {
		Load() error
		Validate() error
	}{rpcConf, marketConf, jupConf} {
		if err := c.Load(); err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
		if err := c.Validate(); err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
	}

	key, err := solana.PrivateKeyFromSolanaKeygenFile(*keypairPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *keypairPath).Msg("failed to load keypair")
	}

	client := chain.NewRPCClient(rpcConf.RPCUrl, rpcConf.Commitment)
	confirmer := chain.NewConfirmer(client, rpcConf.ConfirmPollInterval)
	market := marketplace.New(marketConf)

	orchestrator := checkout.NewOrchestrator(checkout.Options{
		Listings:  market,
		Swaps:     swap.NewExecutor(swap.NewQuoter(jupConf), swap.NewBuilder(jupConf), client, confirmer),
		Assembler: purchase.NewAssembler(market, client, chain.DirectBlockhash{Client: client}),
		Purchases: purchase.NewExecutor(client, confirmer),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("buying %s as %s\n", *mint, key.PublicKey())
	outcome := orchestrator.Execute(ctx, checkout.Request{
		Buyer:       key.PublicKey(),
		Mint:        *mint,
		PaymentMint: *paymentMint,
		Signer:      keypairSigner{key: key},
		Reporter:    stageReporter{},
	})

	out, err := sonic.MarshalIndent(outcome, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to render outcome")
	}
	fmt.Println(string(out))

	if outcome.Kind != domain.OutcomeSettled {
		os.Exit(1)
	}
}
