// Package swap obtains and executes the pre-purchase currency conversion
// through the Jupiter aggregator.
package swap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/hxuan190/nft-checkout/internal/config"
	"github.com/hxuan190/nft-checkout/internal/domain"
	"github.com/hxuan190/nft-checkout/internal/metrics"
)

// Quoter requests exact-output conversion routes. Exact output because the
// caller needs precisely the listing price in the reference currency;
// slippage tolerance lands on the input side so the purchase is never
// short-funded.
type Quoter struct {
	baseURL     string
	slippageBps uint16
	http        *http.Client
}

func NewQuoter(cfg *config.JupiterConfig) *Quoter {
	return &Quoter{
		baseURL:     cfg.SwapBaseURL,
		slippageBps: cfg.SlippageBps,
		http:        &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// QuoteExactOut requests a route delivering exactly outAmount of outputMint.
// Identity pairs must be handled by the caller; asking the router to convert
// a token into itself is a bug.
func (q *Quoter) QuoteExactOut(ctx context.Context, inputMint, outputMint string, outAmount uint64, buyer string) (quote *domain.SwapQuote, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.QuoteRequests.WithLabelValues(status).Inc()
		metrics.QuoteDuration.Observe(time.Since(start).Seconds())
	}()

	if inputMint == outputMint {
		return nil, fmt.Errorf("%w: identity pair %s", domain.ErrQuoteUnavailable, inputMint)
	}

	params := url.Values{}
	params.Set("inputMint", inputMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", strconv.FormatUint(outAmount, 10))
	params.Set("swapMode", "ExactOut")
	params.Set("slippageBps", strconv.Itoa(int(q.slippageBps)))
	params.Set("onlyDirectRoutes", "false")
	params.Set("asLegacyTransaction", "false")
	params.Set("userPublicKey", buyer)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.baseURL+"/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := q.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrQuoteUnavailable, resp.StatusCode)
	}

	var parsed domain.SwapQuote
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	if parsed.InAmount == "" || parsed.OutAmount == "" {
		return nil, fmt.Errorf("%w: incomplete quote", domain.ErrQuoteUnavailable)
	}
	// The purchase needs the listing price to the lamport; a route that
	// rounds the output is not executable for this flow.
	if parsed.OutAmount != strconv.FormatUint(outAmount, 10) {
		return nil, fmt.Errorf("%w: route output %s does not match requested %d",
			domain.ErrQuoteUnavailable, parsed.OutAmount, outAmount)
	}

	parsed.Raw = body
	return &parsed, nil
}
