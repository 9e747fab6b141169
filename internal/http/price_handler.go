package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/nft-checkout/internal/checkout"
	"github.com/hxuan190/nft-checkout/internal/http/httputil"
)

type PriceHandler struct {
	checkoutSvc *checkout.Service
}

func NewPriceHandler(checkoutSvc *checkout.Service) *PriceHandler {
	return &PriceHandler{checkoutSvc: checkoutSvc}
}

func (h *PriceHandler) Root() string {
	return "/price"
}

func (h *PriceHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getPrice)
}

// PriceRequest asks for a listing price displayed in another asset.
type PriceRequest struct {
	// PriceLamports is the listing price in lamports
	PriceLamports uint64 `form:"priceLamports" binding:"required" example:"1500000000"`

	// TargetMint is the asset to display the price in
	TargetMint string `form:"targetMint" binding:"required" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`
}

// PriceResponse carries the converted display price. Display-only: executable
// amounts always come from a swap quote, never from here.
type PriceResponse struct {
	PriceLamports uint64 `json:"priceLamports" example:"1500000000"`
	TargetMint    string `json:"targetMint" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`

	// Converted is the price in the target asset, null when the oracle has
	// no rate for the pair.
	Converted *string `json:"converted" example:"231.4005"`
}

// getPrice godoc
// @Summary Convert a listing price for display
// @Description Converts lamports into the target asset using the price oracle. Indicative only; never used to size a swap.
// @Tags price
// @Produce json
// @Param priceLamports query int true "Listing price in lamports"
// @Param targetMint query string true "Display asset mint"
// @Success 200 {object} httputil.Response{data=PriceResponse}
// @Failure 400 {object} httputil.Response
// @Failure 502 {object} httputil.Response
// @Router /api/v1/price [get]
func (h *PriceHandler) getPrice(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	converted, err := h.checkoutSvc.Converter().Convert(c.Request.Context(), req.PriceLamports, req.TargetMint)
	if err != nil {
		httputil.FromError(c, err)
		return
	}

	resp := PriceResponse{
		PriceLamports: req.PriceLamports,
		TargetMint:    req.TargetMint,
	}
	if converted != nil {
		s := converted.String()
		resp.Converted = &s
	}
	httputil.Success(c, resp)
}
