// Package purchase turns a resolved listing into a submittable purchase
// transaction and executes it.
package purchase

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/nft-checkout/internal/chain"
	"github.com/hxuan190/nft-checkout/internal/domain"
	"github.com/hxuan190/nft-checkout/internal/marketplace"
)

// InstructionSource fetches the marketplace's signed purchase envelope.
type InstructionSource interface {
	BuyNowTransaction(ctx context.Context, p marketplace.BuyNowParams) ([]byte, error)
}

// BlockhashProvider supplies the blockhash rebuilt transactions compile
// against. The runtime backs it with the cached blockhash service so assembly
// does not pay an extra RPC round trip on the request path.
type BlockhashProvider interface {
	Get(ctx context.Context) (chain.Blockhash, error)
}

// Assembled is a purchase transaction recompiled against fresh chain state,
// ready for buyer signature. Single-use: once LastValidBlockHeight passes,
// it must be thrown away and reassembled.
type Assembled struct {
	Tx                   *solana.Transaction
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// Assembler rebuilds marketplace purchase envelopes. The marketplace signs
// its envelope against a blockhash that may already be stale by the time the
// buyer approves, and may compile it with a different fee payer;
// recompilation guarantees freshness and correct fee-payer assignment
// without altering the economic instructions.
type Assembler struct {
	source      InstructionSource
	client      chain.Client
	blockhashes BlockhashProvider
}

func NewAssembler(source InstructionSource, client chain.Client, blockhashes BlockhashProvider) *Assembler {
	return &Assembler{source: source, client: client, blockhashes: blockhashes}
}

// Assemble fetches the purchase instruction set for a freshly resolved
// listing and recompiles it with buyer as fee payer against a fresh
// blockhash, resolving whatever address lookup tables the envelope depends
// on.
func (a *Assembler) Assemble(ctx context.Context, buyer solana.PublicKey, listing *domain.Listing) (*Assembled, error) {
	if err := listing.Validate(); err != nil {
		return nil, err
	}

	raw, err := a.source.BuyNowTransaction(ctx, marketplace.BuyNowParams{
		Buyer:   buyer.String(),
		Listing: listing,
	})
	if err != nil {
		return nil, err
	}

	envelope, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInstructionSet, err)
	}
	msg := &envelope.Message

	lookupKeys := make([]solana.PublicKey, 0, len(msg.AddressTableLookups))
	for _, lookup := range msg.AddressTableLookups {
		lookupKeys = append(lookupKeys, lookup.AccountKey)
	}
	tables, err := chain.ResolveLookupTables(ctx, a.client, lookupKeys)
	if err != nil {
		return nil, err
	}

	instructions, err := decompileInstructions(msg, tables)
	if err != nil {
		return nil, err
	}

	recent, err := a.blockhashes.Get(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Hash,
		solana.TransactionPayer(buyer),
		solana.TransactionAddressTables(tables),
	)
	if err != nil {
		return nil, fmt.Errorf("recompile purchase transaction: %w", err)
	}

	log.Info().
		Str("mint", listing.Mint).
		Str("buyer", buyer.String()).
		Int("instructions", len(instructions)).
		Int("lookupTables", len(tables)).
		Msg("[purchaseAssembler] purchase transaction assembled")

	return &Assembled{
		Tx:                   tx,
		Blockhash:            recent.Hash,
		LastValidBlockHeight: recent.LastValidBlockHeight,
	}, nil
}

// decompileInstructions expands a compiled message back into full
// instructions. Account ordering follows the wire layout: static keys, then
// table-loaded writable keys, then table-loaded readonly keys, in lookup
// declaration order. Every referenced table must be present in tables —
// dropping one would drop the accounts it loads and produce an invalid
// transaction.
func decompileInstructions(msg *solana.Message, tables map[solana.PublicKey]solana.PublicKeySlice) ([]solana.Instruction, error) {
	metas := make(solana.AccountMetaSlice, 0, len(msg.AccountKeys))

	numRequired := int(msg.Header.NumRequiredSignatures)
	numReadonlySigned := int(msg.Header.NumReadonlySignedAccounts)
	numReadonlyUnsigned := int(msg.Header.NumReadonlyUnsignedAccounts)

	for i, key := range msg.AccountKeys {
		signer := i < numRequired
		var writable bool
		if signer {
			writable = i < numRequired-numReadonlySigned
		} else {
			writable = i < len(msg.AccountKeys)-numReadonlyUnsigned
		}
		metas = append(metas, &solana.AccountMeta{PublicKey: key, IsSigner: signer, IsWritable: writable})
	}

	appendLoaded := func(indexes []uint8, lookup solana.MessageAddressTableLookup, writable bool) error {
		table, ok := tables[lookup.AccountKey]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrPartialLookupFailure, lookup.AccountKey)
		}
		for _, idx := range indexes {
			if int(idx) >= len(table) {
				return fmt.Errorf("%w: index %d out of range for %s", domain.ErrPartialLookupFailure, idx, lookup.AccountKey)
			}
			metas = append(metas, &solana.AccountMeta{PublicKey: table[idx], IsWritable: writable})
		}
		return nil
	}

	for _, lookup := range msg.AddressTableLookups {
		if err := appendLoaded(lookup.WritableIndexes, lookup, true); err != nil {
			return nil, err
		}
	}
	for _, lookup := range msg.AddressTableLookups {
		if err := appendLoaded(lookup.ReadonlyIndexes, lookup, false); err != nil {
			return nil, err
		}
	}

	instructions := make([]solana.Instruction, 0, len(msg.Instructions))
	for _, compiled := range msg.Instructions {
		if int(compiled.ProgramIDIndex) >= len(metas) {
			return nil, fmt.Errorf("%w: program index %d out of range", domain.ErrMalformedInstructionSet, compiled.ProgramIDIndex)
		}
		accounts := make(solana.AccountMetaSlice, 0, len(compiled.Accounts))
		for _, idx := range compiled.Accounts {
			if int(idx) >= len(metas) {
				return nil, fmt.Errorf("%w: account index %d out of range", domain.ErrMalformedInstructionSet, idx)
			}
			meta := *metas[idx]
			accounts = append(accounts, &meta)
		}
		instructions = append(instructions, solana.NewInstruction(
			metas[compiled.ProgramIDIndex].PublicKey,
			accounts,
			compiled.Data,
		))
	}
	return instructions, nil
}
