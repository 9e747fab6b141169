package domain

import (
	"errors"
	"fmt"
)

// NoExpiry marks a listing without a seller expiry.
const NoExpiry int64 = -1

var (
	// ErrNotListed means the marketplace returned no listing for the asset.
	// An availability condition, not a data-quality one.
	ErrNotListed = errors.New("not listed")

	// ErrIncompleteListing means the marketplace returned a listing missing
	// critical fields (price, seller, token account). Surfaces a marketplace
	// data-quality problem.
	ErrIncompleteListing = errors.New("incomplete listing")
)

// Listing is the current sale terms for a mint, fetched from the marketplace
// at purchase time. Never cached across attempts: price and seller can change.
type Listing struct {
	Mint         string
	Seller       string
	AuctionHouse string

	// TokenATA is the seller's token account holding the asset.
	TokenATA string

	// PriceLamports is the listing price in lamports.
	PriceLamports uint64

	// PriceSOL is the marketplace's own decimal price string, forwarded
	// untouched on instruction fetches so the quoted price never shifts
	// through a numeric round trip.
	PriceSOL string

	// Expiry is the seller-side expiry unix timestamp, NoExpiry when absent.
	Expiry int64
}

// Validate rejects listings unusable for purchase assembly. A listing that
// passes here still carries no availability guarantee.
func (l *Listing) Validate() error {
	switch {
	case l.PriceLamports == 0:
		return fmt.Errorf("%w: missing or non-positive price", ErrIncompleteListing)
	case l.Seller == "":
		return fmt.Errorf("%w: missing seller", ErrIncompleteListing)
	case l.TokenATA == "":
		return fmt.Errorf("%w: missing token account", ErrIncompleteListing)
	}
	return nil
}
