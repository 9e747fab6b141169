package swap

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/nft-checkout/internal/chain"
	"github.com/hxuan190/nft-checkout/internal/config"
	"github.com/hxuan190/nft-checkout/internal/domain"
)

type scriptedClient struct {
	status    *chain.SignatureStatus
	statuses  []*chain.SignatureStatus
	statusIdx int
	height    uint64
	sentTxs   []*solana.Transaction
	sendErr   error
	sendSig   solana.Signature
}

func (f *scriptedClient) LatestBlockhash(ctx context.Context) (chain.Blockhash, error) {
	return chain.Blockhash{}, nil
}

func (f *scriptedClient) BlockHeight(ctx context.Context) (uint64, error) {
	return f.height, nil
}

func (f *scriptedClient) AccountData(ctx context.Context, keys []solana.PublicKey) ([][]byte, error) {
	return make([][]byte, len(keys)), nil
}

func (f *scriptedClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	f.sentTxs = append(f.sentTxs, tx)
	return f.sendSig, nil
}

func (f *scriptedClient) SignatureStatus(ctx context.Context, sig solana.Signature) (*chain.SignatureStatus, error) {
	if len(f.statuses) > 0 {
		status := f.statuses[f.statusIdx]
		if f.statusIdx < len(f.statuses)-1 {
			f.statusIdx++
		}
		return status, nil
	}
	return f.status, nil
}

type signerFunc func(ctx context.Context, tx *solana.Transaction) error

func (f signerFunc) Sign(ctx context.Context, tx *solana.Transaction) error {
	return f(ctx, tx)
}

func swapTxBase64(t *testing.T) string {
	t.Helper()
	wallet := solana.NewWallet()
	inst := solana.NewInstruction(solana.NewWallet().PublicKey(), solana.AccountMetaSlice{
		{PublicKey: wallet.PublicKey(), IsSigner: true, IsWritable: true},
	}, []byte{0x01})
	tx, err := solana.NewTransaction([]solana.Instruction{inst}, solana.Hash{}, solana.TransactionPayer(wallet.PublicKey()))
	if err != nil {
		t.Fatalf("build tx: %v", err)
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal tx: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// routerServer serves both /quote and /swap for an outAmount of 1500000000.
func routerServer(t *testing.T, swapBody string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			w.Write([]byte(`{"inputMint":"usdcMint","outputMint":"solMint","inAmount":"231400500","outAmount":"1500000000","otherAmountThreshold":"233714505","swapMode":"ExactOut","slippageBps":100}`))
		case "/swap":
			w.Write([]byte(swapBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

func testExecutor(baseURL string, client chain.Client) *Executor {
	cfg := &config.JupiterConfig{SwapBaseURL: baseURL, SlippageBps: 100, RequestTimeout: 5 * time.Second}
	return NewExecutor(NewQuoter(cfg), NewBuilder(cfg), client, chain.NewConfirmer(client, time.Millisecond))
}

func testParams() Params {
	return Params{
		InputMint:  "usdcMint",
		OutputMint: "solMint",
		OutAmount:  1_500_000_000,
		Buyer:      solana.NewWallet().PublicKey(),
	}
}

func TestExecuteSettles(t *testing.T) {
	srv := routerServer(t, `{"swapTransaction":"`+swapTxBase64(t)+`","lastValidBlockHeight":200}`)
	defer srv.Close()

	client := &scriptedClient{
		status:  &chain.SignatureStatus{Confirmed: true},
		height:  100,
		sendSig: solana.Signature{7},
	}

	signed := false
	sig, err := testExecutor(srv.URL, client).Execute(context.Background(), signerFunc(func(ctx context.Context, tx *solana.Transaction) error {
		signed = true
		return nil
	}), domain.NopReporter{}, testParams())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !signed {
		t.Error("transaction was not presented for signing")
	}
	if sig != (solana.Signature{7}) {
		t.Errorf("sig = %s", sig)
	}
	if len(client.sentTxs) != 1 {
		t.Errorf("sent %d transactions, want 1", len(client.sentTxs))
	}
}

func TestExecuteSimulationFailureNeverPrompts(t *testing.T) {
	srv := routerServer(t, `{"swapTransaction":"`+swapTxBase64(t)+`","lastValidBlockHeight":200,"simulationError":"InstructionError"}`)
	defer srv.Close()

	client := &scriptedClient{}
	_, err := testExecutor(srv.URL, client).Execute(context.Background(), signerFunc(func(ctx context.Context, tx *solana.Transaction) error {
		t.Error("signer must not be called after a simulation failure")
		return nil
	}), domain.NopReporter{}, testParams())
	if !errors.Is(err, domain.ErrSimulationFailed) {
		t.Fatalf("err = %v, want ErrSimulationFailed", err)
	}
	if len(client.sentTxs) != 0 {
		t.Error("transaction must not be submitted")
	}
}

func TestExecuteRejectionStopsBeforeSubmission(t *testing.T) {
	srv := routerServer(t, `{"swapTransaction":"`+swapTxBase64(t)+`","lastValidBlockHeight":200}`)
	defer srv.Close()

	client := &scriptedClient{}
	_, err := testExecutor(srv.URL, client).Execute(context.Background(), signerFunc(func(ctx context.Context, tx *solana.Transaction) error {
		return domain.ErrUserRejected
	}), domain.NopReporter{}, testParams())
	if !errors.Is(err, domain.ErrUserRejected) {
		t.Fatalf("err = %v, want ErrUserRejected", err)
	}
	if len(client.sentTxs) != 0 {
		t.Error("rejected transaction must not be submitted")
	}
}

func TestExecuteMissingWindowFallsBackToMargin(t *testing.T) {
	// Build response without lastValidBlockHeight: the confirmation window is
	// derived from the current height plus the blockhash validity margin
	// instead of expiring on the first poll.
	srv := routerServer(t, `{"swapTransaction":"`+swapTxBase64(t)+`"}`)
	defer srv.Close()

	// Confirmation arrives only after a block-height check has already run; a
	// zero window would have expired there.
	client := &scriptedClient{
		statuses: []*chain.SignatureStatus{nil, nil, nil, nil, nil, {Confirmed: true}},
		height:   100,
		sendSig:  solana.Signature{4},
	}

	sig, err := testExecutor(srv.URL, client).Execute(context.Background(), signerFunc(func(ctx context.Context, tx *solana.Transaction) error {
		return nil
	}), domain.NopReporter{}, testParams())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sig != (solana.Signature{4}) {
		t.Errorf("sig = %s", sig)
	}
}

func TestExecuteAmbiguousStillReturnsSignature(t *testing.T) {
	srv := routerServer(t, `{"swapTransaction":"`+swapTxBase64(t)+`","lastValidBlockHeight":50}`)
	defer srv.Close()

	// Height already past the validity window, no status ever recorded.
	client := &scriptedClient{height: 100, sendSig: solana.Signature{9}}

	sig, err := testExecutor(srv.URL, client).Execute(context.Background(), signerFunc(func(ctx context.Context, tx *solana.Transaction) error {
		return nil
	}), domain.NopReporter{}, testParams())

	var ambErr *domain.AmbiguousError
	if !errors.As(err, &ambErr) {
		t.Fatalf("err = %v, want AmbiguousError", err)
	}
	if sig != (solana.Signature{9}) {
		t.Errorf("sig = %s, want the submitted signature", sig)
	}
}
