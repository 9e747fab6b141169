// Package pricing converts listing prices into a buyer's chosen payment
// asset for display. Advisory only: the executed input amount always comes
// from the swap quoter, never from here, so a stale displayed price can
// never become the executed price.
package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/hxuan190/nft-checkout/internal/common"
	"github.com/hxuan190/nft-checkout/internal/config"
)

type Converter struct {
	baseURL string
	http    *http.Client
}

func NewConverter(cfg *config.JupiterConfig) *Converter {
	return &Converter{
		baseURL: cfg.PriceBaseURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type priceResponse struct {
	Data map[string]struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	} `json:"data"`
}

// Convert returns priceLamports expressed in targetMint units, or nil when
// the oracle has no quote for the pair. The identity case never touches the
// network.
func (c *Converter) Convert(ctx context.Context, priceLamports uint64, targetMint string) (*decimal.Decimal, error) {
	sol := decimal.New(int64(priceLamports), 0).Div(decimal.New(common.LamportsPerSOL, 0))

	if targetMint == common.WrappedSOLMint.String() {
		return &sol, nil
	}

	params := url.Values{}
	params.Set("ids", common.WrappedSOLMint.String())
	params.Set("vsToken", targetMint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price oracle request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("price oracle response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price oracle status %d", resp.StatusCode)
	}

	var parsed priceResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("price oracle decode: %w", err)
	}

	entry, ok := parsed.Data[common.WrappedSOLMint.String()]
	if !ok || entry.Price == "" {
		return nil, nil
	}

	rate, err := decimal.NewFromString(entry.Price)
	if err != nil {
		return nil, fmt.Errorf("price oracle decode: bad price %q: %w", entry.Price, err)
	}

	converted := sol.Mul(rate)
	return &converted, nil
}
