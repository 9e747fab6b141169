package swap

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/hxuan190/nft-checkout/internal/config"
	"github.com/hxuan190/nft-checkout/internal/domain"
)

// Builder turns a quote into a buyer-pending transaction via the routing
// service's swap endpoint.
type Builder struct {
	baseURL string
	http    *http.Client
}

func NewBuilder(cfg *config.JupiterConfig) *Builder {
	return &Builder{
		baseURL: cfg.SwapBaseURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type buildRequest struct {
	QuoteResponse             json.RawMessage `json:"quoteResponse"`
	UserPublicKey             string          `json:"userPublicKey"`
	WrapAndUnwrapSol          bool            `json:"wrapAndUnwrapSol"`
	DynamicComputeUnitLimit   bool            `json:"dynamicComputeUnitLimit"`
	PrioritizationFeeLamports string          `json:"prioritizationFeeLamports"`
}

type buildResponse struct {
	SwapTransaction      string          `json:"swapTransaction"`
	LastValidBlockHeight uint64          `json:"lastValidBlockHeight"`
	SimulationError      json.RawMessage `json:"simulationError"`
}

// Build requests the swap transaction for a quote. If the service reports a
// pre-flight simulation error the build fails with ErrSimulationFailed and
// the transaction is never surfaced: the buyer must not be asked to approve
// a transaction already known to fail.
func (b *Builder) Build(ctx context.Context, quote *domain.SwapQuote, buyer string) (*domain.SwapBuild, error) {
	payload, err := sonic.Marshal(buildRequest{
		QuoteResponse:             quote.Raw,
		UserPublicKey:             buyer,
		WrapAndUnwrapSol:          true,
		DynamicComputeUnitLimit:   true,
		PrioritizationFeeLamports: "auto",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/swap", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("swap build request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("swap build response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("swap build status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var parsed buildResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("swap build decode: %w", err)
	}

	if simErr := simulationErrorDetail(parsed.SimulationError); simErr != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrSimulationFailed, simErr)
	}
	if parsed.SwapTransaction == "" {
		return nil, fmt.Errorf("swap build decode: missing transaction payload")
	}

	raw, err := base64.StdEncoding.DecodeString(parsed.SwapTransaction)
	if err != nil {
		return nil, fmt.Errorf("swap build decode: %w", err)
	}

	return &domain.SwapBuild{
		TransactionBytes:     raw,
		LastValidBlockHeight: parsed.LastValidBlockHeight,
	}, nil
}

// simulationErrorDetail normalizes the service's simulationError field, which
// is sometimes a string and sometimes a structured object.
func simulationErrorDetail(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := sonic.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
