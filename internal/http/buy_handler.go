package http

import (
	"encoding/base64"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/nft-checkout/internal/checkout"
	"github.com/hxuan190/nft-checkout/internal/domain"
	"github.com/hxuan190/nft-checkout/internal/http/httputil"
)

type BuyHandler struct {
	checkoutSvc *checkout.Service
}

func NewBuyHandler(checkoutSvc *checkout.Service) *BuyHandler {
	return &BuyHandler{checkoutSvc: checkoutSvc}
}

func (h *BuyHandler) Root() string {
	return "/buy"
}

func (h *BuyHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.buildPurchase)
}

// BuyRequest identifies the asset and the buyer wallet.
type BuyRequest struct {
	// Mint is the asset's token mint address
	Mint string `json:"mint" binding:"required" example:"F9Lw3ki3hJ7PF9HQXsBzoY8GyE6sPoEZZdXJBsTTD2rk"`

	// Buyer wallet address; becomes the fee payer of the rebuilt transaction
	Buyer string `json:"buyer" binding:"required" example:"CkXr4xB4dY5pSXk5vV1dGKDnCNcXGfY1W8yDkZfNqGeT"`
}

// BuyResponse carries the rebuilt purchase transaction. Single-use: once the
// chain passes lastValidBlockHeight the payload is dead and a new call is
// required.
type BuyResponse struct {
	// Transaction is the unsigned purchase transaction, base64
	Transaction string `json:"transaction"`

	// Blockhash the transaction was compiled against
	Blockhash string `json:"blockhash" example:"9sHcv6xwn9YkB8nxTUGKDwPwNnmqfp5hDdxSLJKvRuak"`

	// LastValidBlockHeight bounds confirmation for that blockhash
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight" example:"285113640"`

	Listing ListingResponse `json:"listing"`
}

// buildPurchase godoc
// @Summary Build a purchase transaction
// @Description Resolves the listing, fetches the marketplace purchase envelope and rebuilds it against a fresh blockhash with the buyer as fee payer. The caller signs and submits the returned transaction.
// @Tags buy
// @Accept json
// @Produce json
// @Param request body BuyRequest true "Purchase request"
// @Success 200 {object} httputil.Response{data=BuyResponse}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response "No active listing"
// @Failure 502 {object} httputil.Response "Marketplace or chain state unavailable"
// @Router /api/v1/buy [post]
func (h *BuyHandler) buildPurchase(c *gin.Context) {
	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	buyer, err := solana.PublicKeyFromBase58(req.Buyer)
	if err != nil {
		httputil.BadRequest(c, "invalid buyer address")
		return
	}

	listing, err := h.checkoutSvc.Marketplace().ResolveListing(c.Request.Context(), req.Mint)
	if err != nil {
		if errors.Is(err, domain.ErrNotListed) {
			httputil.NotFound(c, "not listed")
			return
		}
		httputil.FromError(c, err)
		return
	}

	assembled, err := h.checkoutSvc.Assembler().Assemble(c.Request.Context(), buyer, listing)
	if err != nil {
		httputil.FromError(c, err)
		return
	}

	raw, err := assembled.Tx.MarshalBinary()
	if err != nil {
		httputil.InternalError(c, err.Error())
		return
	}

	httputil.Success(c, BuyResponse{
		Transaction:          base64.StdEncoding.EncodeToString(raw),
		Blockhash:            assembled.Blockhash.String(),
		LastValidBlockHeight: assembled.LastValidBlockHeight,
		Listing: ListingResponse{
			Mint:          listing.Mint,
			Seller:        listing.Seller,
			AuctionHouse:  listing.AuctionHouse,
			TokenATA:      listing.TokenATA,
			PriceLamports: listing.PriceLamports,
			Expiry:        listing.Expiry,
		},
	})
}
