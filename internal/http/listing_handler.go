package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/nft-checkout/internal/checkout"
	"github.com/hxuan190/nft-checkout/internal/domain"
	"github.com/hxuan190/nft-checkout/internal/http/httputil"
)

type ListingHandler struct {
	checkoutSvc *checkout.Service
}

func NewListingHandler(checkoutSvc *checkout.Service) *ListingHandler {
	return &ListingHandler{checkoutSvc: checkoutSvc}
}

func (h *ListingHandler) Root() string {
	return "/listings"
}

func (h *ListingHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/:mint", h.getListing)
}

// ListingResponse is the resolved sale terms for a mint.
type ListingResponse struct {
	// Mint is the asset's token mint address
	Mint string `json:"mint" example:"F9Lw3ki3hJ7PF9HQXsBzoY8GyE6sPoEZZdXJBsTTD2rk"`

	// Seller wallet address
	Seller string `json:"seller" example:"CkXr4xB4dY5pSXk5vV1dGKDnCNcXGfY1W8yDkZfNqGeT"`

	// AuctionHouse escrow program address the listing lives under
	AuctionHouse string `json:"auctionHouse" example:"E8cU1WiRWjanGxmn96ewBgk9vPTcL6AEZ1t6F6fkgUWe"`

	// TokenATA is the seller's token account holding the asset
	TokenATA string `json:"tokenATA" example:"7c9dHLGSmAjNsLbjm3kfZpMd6sQ9K2sPr5bAUxTWvJfQ"`

	// PriceLamports is the listing price in lamports
	PriceLamports uint64 `json:"priceLamports" example:"1500000000"`

	// Expiry is the seller-side expiry unix timestamp, -1 when absent
	Expiry int64 `json:"expiry" example:"-1"`
}

// getListing godoc
// @Summary Resolve the current listing for a mint
// @Description Fetches the asset's active listing from the marketplace. Listings are resolved fresh on every call, never cached.
// @Tags listings
// @Produce json
// @Param mint path string true "Token mint address"
// @Success 200 {object} httputil.Response{data=ListingResponse}
// @Failure 404 {object} httputil.Response "No active listing"
// @Failure 502 {object} httputil.Response "Marketplace unavailable or returned an unusable listing"
// @Router /api/v1/listings/{mint} [get]
func (h *ListingHandler) getListing(c *gin.Context) {
	mint := c.Param("mint")
	if mint == "" {
		httputil.BadRequest(c, "mint is required")
		return
	}

	listing, err := h.checkoutSvc.Marketplace().ResolveListing(c.Request.Context(), mint)
	if err != nil {
		if errors.Is(err, domain.ErrNotListed) {
			httputil.NotFound(c, "not listed")
			return
		}
		httputil.FromError(c, err)
		return
	}

	httputil.Success(c, ListingResponse{
		Mint:          listing.Mint,
		Seller:        listing.Seller,
		AuctionHouse:  listing.AuctionHouse,
		TokenATA:      listing.TokenATA,
		PriceLamports: listing.PriceLamports,
		Expiry:        listing.Expiry,
	})
}
