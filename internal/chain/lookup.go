package chain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"

	"github.com/hxuan190/nft-checkout/internal/domain"
)

// ResolveLookupTables fetches and decodes the given address lookup tables in
// one batch. Fetched fresh per assembly, never cached: table contents gate
// how compressed account references decompile, and stale contents silently
// corrupt the rebuilt transaction.
//
// Any table that is missing or undecodable aborts the whole resolution with
// domain.ErrPartialLookupFailure: dropping a referenced table would drop the
// accounts it loads.
func ResolveLookupTables(ctx context.Context, client Client, keys []solana.PublicKey) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(keys))
	if len(keys) == 0 {
		return tables, nil
	}

	accounts, err := client.AccountData(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch lookup tables: %w", err)
	}

	for i, data := range accounts {
		if data == nil {
			return nil, fmt.Errorf("%w: %s not found", domain.ErrPartialLookupFailure, keys[i])
		}
		state, err := addresslookuptable.DecodeAddressLookupTableState(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrPartialLookupFailure, keys[i], err)
		}
		tables[keys[i]] = state.Addresses
	}
	return tables, nil
}
