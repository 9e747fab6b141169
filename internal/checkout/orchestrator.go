// Package checkout drives one purchase attempt end to end: listing
// resolution, the optional pre-purchase conversion, assembly, execution and
// the terminal outcome.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/nft-checkout/internal/common"
	"github.com/hxuan190/nft-checkout/internal/domain"
	"github.com/hxuan190/nft-checkout/internal/metrics"
	"github.com/hxuan190/nft-checkout/internal/purchase"
	"github.com/hxuan190/nft-checkout/internal/swap"
)

type ListingResolver interface {
	ResolveListing(ctx context.Context, mint string) (*domain.Listing, error)
}

type SwapRunner interface {
	Execute(ctx context.Context, signer domain.Signer, reporter domain.Reporter, p swap.Params) (solana.Signature, error)
}

type PurchaseAssembler interface {
	Assemble(ctx context.Context, buyer solana.PublicKey, listing *domain.Listing) (*purchase.Assembled, error)
}

type PurchaseRunner interface {
	Execute(ctx context.Context, signer domain.Signer, reporter domain.Reporter, assembled *purchase.Assembled) (solana.Signature, error)
}

// Journal persists terminal attempt records. Optional.
type Journal interface {
	Record(attempt *domain.AttemptRecord) error
}

type Options struct {
	Listings  ListingResolver
	Swaps     SwapRunner
	Assembler PurchaseAssembler
	Purchases PurchaseRunner
	Journal   Journal
}

// Request is one buyer-initiated purchase. PaymentMint selects the asset the
// buyer pays with; empty or the wrapped reference mint means no conversion.
type Request struct {
	Buyer       solana.PublicKey
	Mint        string
	PaymentMint string
	Signer      domain.Signer
	Reporter    domain.Reporter
}

// Orchestrator runs the two-phase pipeline. It owns outcome classification
// and the one invariant everything else hangs off: once the conversion
// settles, no later failure may be reported as an ordinary failure.
type Orchestrator struct {
	listings  ListingResolver
	swaps     SwapRunner
	assembler PurchaseAssembler
	purchases PurchaseRunner
	journal   Journal
}

func NewOrchestrator(opts Options) *Orchestrator {
	return &Orchestrator{
		listings:  opts.Listings,
		swaps:     opts.Swaps,
		assembler: opts.Assembler,
		purchases: opts.Purchases,
		journal:   opts.Journal,
	}
}

// Execute runs one attempt to its terminal outcome. It never retries any
// stage and never returns an error: every way the pipeline can stop is an
// Outcome. The attempt is journaled exactly once, after the outcome is
// known.
func (o *Orchestrator) Execute(ctx context.Context, req Request) domain.Outcome {
	started := time.Now()
	reporter := req.Reporter
	if reporter == nil {
		reporter = domain.NopReporter{}
	}

	outcome := o.run(ctx, req, reporter)

	metrics.CheckoutAttempts.WithLabelValues(string(outcome.Kind)).Inc()
	metrics.CheckoutDuration.WithLabelValues(string(outcome.Kind)).Observe(time.Since(started).Seconds())
	if outcome.Kind == domain.OutcomeAmbiguous {
		metrics.AmbiguousOutcomes.WithLabelValues(string(outcome.Stage)).Inc()
	}

	log.Info().
		Str("mint", req.Mint).
		Str("buyer", req.Buyer.String()).
		Str("outcome", string(outcome.Kind)).
		Str("stage", string(outcome.Stage)).
		Bool("swapSettled", outcome.SwapSettled).
		Msg("[checkoutOrchestrator] attempt finished")

	o.record(req, outcome, started)
	return outcome
}

func (o *Orchestrator) run(ctx context.Context, req Request, reporter domain.Reporter) domain.Outcome {
	reporter.StageChanged(domain.StageResolveListing, req.Mint)
	resolveStart := time.Now()
	listing, err := o.listings.ResolveListing(ctx, req.Mint)
	metrics.StageDuration.WithLabelValues(string(domain.StageResolveListing)).Observe(time.Since(resolveStart).Seconds())
	if err != nil {
		metrics.ListingResolutions.WithLabelValues("error").Inc()
		return classify(err, domain.StageResolveListing, false)
	}
	metrics.ListingResolutions.WithLabelValues("ok").Inc()

	swapSettled := false
	var swapSig solana.Signature
	if needsConversion(req.PaymentMint) {
		swapStart := time.Now()
		swapSig, err = o.swaps.Execute(ctx, req.Signer, reporter, swap.Params{
			InputMint:  req.PaymentMint,
			OutputMint: common.WrappedSOLMint.String(),
			OutAmount:  listing.PriceLamports,
			Buyer:      req.Buyer,
		})
		metrics.StageDuration.WithLabelValues(string(domain.StageConfirmSwap)).Observe(time.Since(swapStart).Seconds())
		if err != nil {
			out := classify(err, domain.StageConfirmSwap, false)
			out.SwapSignature = swapSig.String()
			if swapSig.IsZero() {
				out.SwapSignature = ""
			}
			return out
		}
		swapSettled = true
		metrics.SwapsSettled.Inc()
	}

	reporter.StageChanged(domain.StageAssemblePurchase, req.Mint)
	assembleStart := time.Now()
	assembled, err := o.assembler.Assemble(ctx, req.Buyer, listing)
	metrics.StageDuration.WithLabelValues(string(domain.StageAssemblePurchase)).Observe(time.Since(assembleStart).Seconds())
	if err != nil {
		return withSwap(classify(err, domain.StageAssemblePurchase, swapSettled), swapSettled, swapSig)
	}

	purchaseStart := time.Now()
	purchaseSig, err := o.purchases.Execute(ctx, req.Signer, reporter, assembled)
	metrics.StageDuration.WithLabelValues(string(domain.StageConfirmPurchase)).Observe(time.Since(purchaseStart).Seconds())
	if err != nil {
		out := withSwap(classify(err, domain.StageConfirmPurchase, swapSettled), swapSettled, swapSig)
		if !purchaseSig.IsZero() {
			out.PurchaseSignature = purchaseSig.String()
		}
		return out
	}

	reporter.StageChanged(domain.StageSettled, purchaseSig.String())
	out := domain.Outcome{
		Kind:              domain.OutcomeSettled,
		Stage:             domain.StageSettled,
		SwapSettled:       swapSettled,
		PurchaseSignature: purchaseSig.String(),
	}
	if swapSettled {
		out.SwapSignature = swapSig.String()
	}
	return out
}

func (o *Orchestrator) record(req Request, outcome domain.Outcome, started time.Time) {
	if o.journal == nil {
		return
	}
	attempt := &domain.AttemptRecord{
		ID:          attemptID(started, req.Mint),
		Mint:        req.Mint,
		Buyer:       req.Buyer.String(),
		PaymentMint: req.PaymentMint,
		Outcome:     outcome,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}
	if err := o.journal.Record(attempt); err != nil {
		log.Error().Err(err).Str("id", attempt.ID).Msg("[checkoutOrchestrator] failed to journal attempt")
	}
}

func attemptID(started time.Time, mint string) string {
	return fmt.Sprintf("%d-%s", started.UnixNano(), mint)
}

// needsConversion: empty payment mint and the wrapped reference mint both
// mean the buyer already pays in the listing currency.
func needsConversion(paymentMint string) bool {
	return paymentMint != "" && paymentMint != common.WrappedSOLMint.String()
}

// classify maps a stage error onto the outcome taxonomy. swapSettled flips
// ordinary post-conversion failures into SwapSettledPurchaseFailed;
// rejection and ambiguity keep their own kinds because they demand different
// operator responses than "the purchase failed after funds moved".
func classify(err error, stage domain.Stage, swapSettled bool) domain.Outcome {
	out := domain.Outcome{Stage: stage, SwapSettled: swapSettled, Detail: err.Error()}

	var txErr *domain.TransactionError
	var ambErr *domain.AmbiguousError

	switch {
	case errors.Is(err, domain.ErrNotListed):
		out.Kind = domain.OutcomeNotListed
	case errors.Is(err, domain.ErrIncompleteListing):
		out.Kind = domain.OutcomeIncompleteListing
	case errors.Is(err, domain.ErrQuoteUnavailable):
		out.Kind = domain.OutcomeQuoteUnavailable
	case errors.Is(err, domain.ErrSimulationFailed):
		out.Kind = domain.OutcomeSimulationFailed
	case errors.Is(err, domain.ErrUserRejected):
		out.Kind = domain.OutcomeUserRejected
	case errors.As(err, &ambErr):
		out.Kind = domain.OutcomeAmbiguous
	case errors.As(err, &txErr):
		out.Kind = domain.OutcomeTransactionFailed
		if !txErr.Signature.IsZero() {
			if stage == domain.StageConfirmSwap {
				out.SwapSignature = txErr.Signature.String()
			} else {
				out.PurchaseSignature = txErr.Signature.String()
			}
		}
	default:
		out.Kind = domain.OutcomeTransactionFailed
	}

	if swapSettled {
		switch out.Kind {
		case domain.OutcomeUserRejected, domain.OutcomeAmbiguous:
			// Keep as-is: the buyer declining a second prompt or an unknown
			// purchase status are not purchase failures.
		default:
			out.Kind = domain.OutcomeSwapSettledPurchaseFailed
		}
	}
	return out
}

func withSwap(out domain.Outcome, swapSettled bool, swapSig solana.Signature) domain.Outcome {
	if swapSettled && !swapSig.IsZero() {
		out.SwapSignature = swapSig.String()
	}
	return out
}
