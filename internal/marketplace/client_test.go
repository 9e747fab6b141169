package marketplace

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/hxuan190/nft-checkout/internal/config"
	"github.com/hxuan190/nft-checkout/internal/domain"
)

func testClient(srv *httptest.Server) *Client {
	return New(&config.MarketplaceConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
	})
}

func TestResolveListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokens/mintA/listings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"seller":"sellerA","auctionHouse":"houseA","tokenAddress":"ataA","price":1.5}]`))
	}))
	defer srv.Close()

	listing, err := testClient(srv).ResolveListing(context.Background(), "mintA")
	if err != nil {
		t.Fatalf("ResolveListing: %v", err)
	}
	if listing.PriceLamports != 1_500_000_000 {
		t.Errorf("PriceLamports = %d, want 1500000000", listing.PriceLamports)
	}
	if listing.Seller != "sellerA" || listing.TokenATA != "ataA" {
		t.Errorf("unexpected listing %+v", listing)
	}
	if listing.PriceSOL != "1.5" {
		t.Errorf("PriceSOL = %q, want 1.5", listing.PriceSOL)
	}
	if listing.Expiry != domain.NoExpiry {
		t.Errorf("Expiry = %d, want %d", listing.Expiry, domain.NoExpiry)
	}
}

// A price like 1.015 has no exact float64 representation; the resolved
// listing must still carry the full lamport amount and forward the
// marketplace's own decimal string on the instruction fetch.
func TestResolveListingPriceRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tokens/mintA/listings":
			w.Write([]byte(`[{"seller":"sellerA","auctionHouse":"houseA","tokenAddress":"ataA","price":1.015}]`))
		case "/instructions/buy_now":
			if got := r.URL.Query().Get("price"); got != "1.015" {
				t.Errorf("price = %q, want 1.015", got)
			}
			w.Write([]byte(`{"txSigned":{"data":"AA=="}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := testClient(srv)
	listing, err := client.ResolveListing(context.Background(), "mintA")
	if err != nil {
		t.Fatalf("ResolveListing: %v", err)
	}
	if listing.PriceLamports != 1_015_000_000 {
		t.Errorf("PriceLamports = %d, want 1015000000", listing.PriceLamports)
	}
	if _, err := client.BuyNowTransaction(context.Background(), BuyNowParams{Buyer: "buyerA", Listing: listing}); err != nil {
		t.Fatalf("BuyNowTransaction: %v", err)
	}
}

func TestResolveListingNotListed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := testClient(srv).ResolveListing(context.Background(), "mintA")
	if !errors.Is(err, domain.ErrNotListed) {
		t.Fatalf("err = %v, want ErrNotListed", err)
	}
}

func TestResolveListingIncomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"auctionHouse":"houseA","tokenAddress":"ataA","price":1.5}]`))
	}))
	defer srv.Close()

	_, err := testClient(srv).ResolveListing(context.Background(), "mintA")
	if !errors.Is(err, domain.ErrIncompleteListing) {
		t.Fatalf("err = %v, want ErrIncompleteListing", err)
	}
}

func TestBuyNowTransaction(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/instructions/buy_now" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"txSigned":{"data":"` + base64.StdEncoding.EncodeToString(payload) + `"}}`))
	}))
	defer srv.Close()

	listing := &domain.Listing{
		Mint:          "mintA",
		Seller:        "sellerA",
		AuctionHouse:  "houseA",
		TokenATA:      "ataA",
		PriceLamports: 1_500_000_000,
		PriceSOL:      "1.5",
		Expiry:        1900000000,
	}
	raw, err := testClient(srv).BuyNowTransaction(context.Background(), BuyNowParams{Buyer: "buyerA", Listing: listing})
	if err != nil {
		t.Fatalf("BuyNowTransaction: %v", err)
	}
	if string(raw) != string(payload) {
		t.Errorf("raw = %x, want %x", raw, payload)
	}
	if got := gotQuery.Get("price"); got != "1.5" {
		t.Errorf("price = %q, want 1.5", got)
	}
	if got := gotQuery.Get("sellerExpiry"); got != "1900000000" {
		t.Errorf("sellerExpiry = %q, want 1900000000", got)
	}
	if got := gotQuery.Get("buyer"); got != "buyerA" {
		t.Errorf("buyer = %q", got)
	}
}

func TestBuyNowTransactionOmitsAbsentExpiry(t *testing.T) {
	for _, expiry := range []int64{domain.NoExpiry, 0} {
		var gotQuery url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			w.Write([]byte(`{"txSigned":{"data":"AA=="}}`))
		}))

		listing := &domain.Listing{
			Mint: "mintA", Seller: "sellerA", AuctionHouse: "houseA",
			TokenATA: "ataA", PriceLamports: 1, Expiry: expiry,
		}
		if _, err := testClient(srv).BuyNowTransaction(context.Background(), BuyNowParams{Buyer: "buyerA", Listing: listing}); err != nil {
			t.Fatalf("expiry %d: %v", expiry, err)
		}
		if _, present := gotQuery["sellerExpiry"]; present {
			t.Errorf("sellerExpiry sent for expiry %d", expiry)
		}
		srv.Close()
	}
}

func TestBuyNowTransactionMissingPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	listing := &domain.Listing{
		Mint: "mintA", Seller: "sellerA", AuctionHouse: "houseA",
		TokenATA: "ataA", PriceLamports: 1,
	}
	_, err := testClient(srv).BuyNowTransaction(context.Background(), BuyNowParams{Buyer: "buyerA", Listing: listing})
	if !errors.Is(err, domain.ErrMalformedInstructionSet) {
		t.Fatalf("err = %v, want ErrMalformedInstructionSet", err)
	}
}

func TestLamportsFromSOL(t *testing.T) {
	cases := []struct {
		sol  string
		want uint64
	}{
		{"1.5", 1_500_000_000},
		{"1.015", 1_015_000_000},
		{"1.014999999", 1_014_999_999},
		{"0", 0},
		{"-2", 0},
		{"0.000000001", 1},
		{"not-a-price", 0},
	}
	for _, tc := range cases {
		if got := lamportsFromSOL(tc.sol); got != tc.want {
			t.Errorf("lamportsFromSOL(%q) = %d, want %d", tc.sol, got, tc.want)
		}
	}
}
