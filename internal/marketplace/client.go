// Package marketplace is the REST client for the Magic Eden v2 API: listing
// resolution, buy-now instruction fetch, and the collection browse
// passthroughs.
package marketplace

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/hxuan190/nft-checkout/internal/common"
	"github.com/hxuan190/nft-checkout/internal/config"
	"github.com/hxuan190/nft-checkout/internal/domain"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(cfg *config.MarketplaceConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// listingRecord mirrors the marketplace wire shape; price arrives in SOL.
// Price stays a json.Number: a float64 round trip can land a lamport below
// the quoted price.
type listingRecord struct {
	Seller       string      `json:"seller"`
	AuctionHouse string      `json:"auctionHouse"`
	TokenAddress string      `json:"tokenAddress"`
	Price        json.Number `json:"price"`
	Expiry       *int64      `json:"expiry"`
}

// ResolveListing fetches the current sale terms for a mint. One fetch per
// call, no retries: availability failures and data-quality failures are kept
// distinct per the Listing contract.
func (c *Client) ResolveListing(ctx context.Context, mint string) (*domain.Listing, error) {
	var records []listingRecord
	if err := c.getJSON(ctx, fmt.Sprintf("%s/tokens/%s/listings", c.baseURL, mint), nil, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNotListed
	}

	rec := records[0]
	listing := &domain.Listing{
		Mint:          mint,
		Seller:        rec.Seller,
		AuctionHouse:  rec.AuctionHouse,
		TokenATA:      rec.TokenAddress,
		PriceLamports: lamportsFromSOL(rec.Price.String()),
		PriceSOL:      rec.Price.String(),
		Expiry:        domain.NoExpiry,
	}
	if rec.Expiry != nil {
		listing.Expiry = *rec.Expiry
	}

	if err := listing.Validate(); err != nil {
		return nil, err
	}
	return listing, nil
}

// BuyNowParams keys the purchase instruction fetch. Everything comes from a
// freshly resolved listing plus the buyer.
type BuyNowParams struct {
	Buyer   string
	Listing *domain.Listing
}

// BuyNowTransaction fetches the marketplace-signed purchase envelope and
// returns its raw transaction bytes. The envelope is time-sensitive: the
// caller recompiles it against a fresh blockhash before submission.
func (c *Client) BuyNowTransaction(ctx context.Context, p BuyNowParams) ([]byte, error) {
	listing := p.Listing
	if err := listing.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("buyer", p.Buyer)
	params.Set("seller", listing.Seller)
	params.Set("auctionHouseAddress", listing.AuctionHouse)
	params.Set("tokenMint", listing.Mint)
	params.Set("tokenATA", listing.TokenATA)
	price := listing.PriceSOL
	if price == "" {
		price = decimal.New(int64(listing.PriceLamports), -9).String()
	}
	params.Set("price", price)
	// 0 shows up in older listing data with the same meaning as -1.
	if listing.Expiry != domain.NoExpiry && listing.Expiry != 0 {
		params.Set("sellerExpiry", strconv.FormatInt(listing.Expiry, 10))
	}

	var envelope struct {
		TxSigned struct {
			Data string `json:"data"`
		} `json:"txSigned"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/instructions/buy_now", params, &envelope); err != nil {
		return nil, err
	}
	if envelope.TxSigned.Data == "" {
		return nil, domain.ErrMalformedInstructionSet
	}

	raw, err := base64.StdEncoding.DecodeString(envelope.TxSigned.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable payload: %v", domain.ErrMalformedInstructionSet, err)
	}
	return raw, nil
}

// Collections is a browse passthrough; the payload is presentational and
// returned untouched.
func (c *Client) Collections(ctx context.Context, offset, limit int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))

	var out json.RawMessage
	if err := c.getJSON(ctx, c.baseURL+"/collections", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CollectionStats(ctx context.Context, symbol string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.getJSON(ctx, fmt.Sprintf("%s/collections/%s/stats", c.baseURL, symbol), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CollectionListings(ctx context.Context, symbol string, offset, limit int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))

	var out json.RawMessage
	if err := c.getJSON(ctx, fmt.Sprintf("%s/collections/%s/listings", c.baseURL, symbol), params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, out interface{}) error {
	if params != nil {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("marketplace request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("marketplace response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return common.HTTPErrorUnauthorized("marketplace rejected the API key")
	}
	if resp.StatusCode != http.StatusOK {
		return common.HTTPErrorBadGateway(fmt.Sprintf("marketplace status %d: %s", resp.StatusCode, truncate(body, 256)))
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("marketplace decode: %w", err)
	}
	return nil
}

// lamportsFromSOL converts the marketplace's decimal SOL price. Uses exact
// decimal arithmetic with round-half-up; flooring a float product can undercut
// the quoted price by a lamport.
func lamportsFromSOL(price string) uint64 {
	d, err := decimal.NewFromString(price)
	if err != nil || d.Sign() <= 0 {
		return 0
	}
	lamports := d.Shift(9).Round(0).BigInt()
	if !lamports.IsUint64() {
		return 0
	}
	return lamports.Uint64()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
