package checkout

import (
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/nft-checkout/internal/adapters/persistence"
	"github.com/hxuan190/nft-checkout/internal/chain"
	"github.com/hxuan190/nft-checkout/internal/config"
	"github.com/hxuan190/nft-checkout/internal/marketplace"
	"github.com/hxuan190/nft-checkout/internal/pricing"
	"github.com/hxuan190/nft-checkout/internal/purchase"
	"github.com/hxuan190/nft-checkout/internal/swap"
)

const CHECKOUT_SERVICE = "checkout-svc"

// Service wires the purchase pipeline and exposes it to the HTTP layer.
type Service struct {
	container.BaseDIInstance

	marketplace  *marketplace.Client
	converter    *pricing.Converter
	quoter       *swap.Quoter
	assembler    *purchase.Assembler
	orchestrator *Orchestrator
	journal      *persistence.Journal
}

func (svc *Service) ID() string {
	return CHECKOUT_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	rpcConf := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	marketConf := c.GetConfig(config.MARKETPLACE_CONFIG_KEY).(*config.MarketplaceConfig)
	jupConf := c.GetConfig(config.JUPITER_CONFIG_KEY).(*config.JupiterConfig)
	checkoutConf := c.GetConfig(config.CHECKOUT_CONFIG_KEY).(*config.CheckoutConfig)

	blockhashes := c.Instance(chain.BLOCKHASH_SERVICE).(*chain.BlockhashService)
	client := blockhashes.Client()
	confirmer := chain.NewConfirmer(client, rpcConf.ConfirmPollInterval)

	svc.marketplace = marketplace.New(marketConf)
	svc.converter = pricing.NewConverter(jupConf)
	svc.quoter = swap.NewQuoter(jupConf)
	svc.assembler = purchase.NewAssembler(svc.marketplace, client, blockhashes)

	if checkoutConf.JournalEnabled {
		journal, err := persistence.NewJournal(checkoutConf.JournalDBPath)
		if err != nil {
			return err
		}
		svc.journal = journal
	}

	opts := Options{
		Listings:  svc.marketplace,
		Swaps:     swap.NewExecutor(svc.quoter, swap.NewBuilder(jupConf), client, confirmer),
		Assembler: svc.assembler,
		Purchases: purchase.NewExecutor(client, confirmer),
	}
	if svc.journal != nil {
		opts.Journal = svc.journal
	}
	svc.orchestrator = NewOrchestrator(opts)
	return nil
}

func (svc *Service) Start() error {
	log.Info().Msg("[CheckoutService] started")
	return nil
}

func (svc *Service) Stop() error {
	if svc.journal != nil {
		return svc.journal.Close()
	}
	return nil
}

func (svc *Service) Marketplace() *marketplace.Client { return svc.marketplace }
func (svc *Service) Converter() *pricing.Converter    { return svc.converter }
func (svc *Service) Quoter() *swap.Quoter             { return svc.quoter }
func (svc *Service) Assembler() *purchase.Assembler   { return svc.assembler }
func (svc *Service) Orchestrator() *Orchestrator      { return svc.orchestrator }
func (svc *Service) Journal() *persistence.Journal    { return svc.journal }
