package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hxuan190/nft-checkout/internal/common"
	"github.com/hxuan190/nft-checkout/internal/config"
)

func testConverter(baseURL string) *Converter {
	return NewConverter(&config.JupiterConfig{
		PriceBaseURL:   baseURL,
		RequestTimeout: 5 * time.Second,
	})
}

func TestConvertIdentitySkipsOracle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("oracle must not be called for the identity pair")
	}))
	defer srv.Close()

	got, err := testConverter(srv.URL).Convert(context.Background(), 1_500_000_000, common.WrappedSOLMint.String())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got == nil || got.String() != "1.5" {
		t.Errorf("converted = %v, want 1.5", got)
	}
}

func TestConvert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("vsToken"); got != "usdcMint" {
			t.Errorf("vsToken = %q", got)
		}
		w.Write([]byte(`{"data":{"` + common.WrappedSOLMint.String() + `":{"id":"` + common.WrappedSOLMint.String() + `","price":"150.25"}}}`))
	}))
	defer srv.Close()

	got, err := testConverter(srv.URL).Convert(context.Background(), 2_000_000_000, "usdcMint")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got == nil || got.String() != "300.5" {
		t.Errorf("converted = %v, want 300.5", got)
	}
}

func TestConvertUnknownPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	got, err := testConverter(srv.URL).Convert(context.Background(), 1_000_000_000, "unknownMint")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got != nil {
		t.Errorf("converted = %v, want nil for unknown pair", got)
	}
}
