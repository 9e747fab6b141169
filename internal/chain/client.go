// Package chain wraps the Solana RPC surface the checkout pipeline depends
// on. Components take the Client interface so tests can script chain state.
package chain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Blockhash pairs a recent blockhash with the height window it stays valid in.
type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

// SignatureStatus is the observed state of a submitted transaction.
// Err is the chain-reported failure detail, empty on success.
type SignatureStatus struct {
	Confirmed bool
	Err       string
}

type Client interface {
	LatestBlockhash(ctx context.Context) (Blockhash, error)
	BlockHeight(ctx context.Context) (uint64, error)

	// AccountData returns raw account data aligned with keys; a nil entry
	// means the account does not exist.
	AccountData(ctx context.Context, keys []solana.PublicKey) ([][]byte, error)

	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)

	// SignatureStatus returns nil when the cluster has no record of the
	// signature yet.
	SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error)
}

// RPCClient implements Client over a JSON-RPC endpoint.
type RPCClient struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

func NewRPCClient(rpcURL string, commitment string) *RPCClient {
	return &RPCClient{
		rpc:        rpc.New(rpcURL),
		commitment: CommitmentFromString(commitment),
	}
}

func CommitmentFromString(commitment string) rpc.CommitmentType {
	switch commitment {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

func (c *RPCClient) LatestBlockhash(ctx context.Context) (Blockhash, error) {
	res, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return Blockhash{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	return Blockhash{
		Hash:                 res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
	}, nil
}

func (c *RPCClient) BlockHeight(ctx context.Context) (uint64, error) {
	height, err := c.rpc.GetBlockHeight(ctx, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("get block height: %w", err)
	}
	return height, nil
}

func (c *RPCClient) AccountData(ctx context.Context, keys []solana.PublicKey) ([][]byte, error) {
	res, err := c.rpc.GetMultipleAccounts(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("get multiple accounts: %w", err)
	}

	out := make([][]byte, len(keys))
	for i, acc := range res.Value {
		if acc == nil || acc.Data == nil {
			continue
		}
		out[i] = acc.Data.GetBinary()
	}
	return out, nil
}

func (c *RPCClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}

func (c *RPCClient) SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error) {
	res, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("get signature statuses: %w", err)
	}
	if len(res.Value) == 0 || res.Value[0] == nil {
		return nil, nil
	}

	status := res.Value[0]
	out := &SignatureStatus{}
	if status.Err != nil {
		out.Err = fmt.Sprintf("%v", status.Err)
	}
	if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
		out.Confirmed = true
	}
	return out, nil
}
