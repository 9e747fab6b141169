package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/nft-checkout/internal/checkout"
	"github.com/hxuan190/nft-checkout/internal/domain"
	"github.com/hxuan190/nft-checkout/internal/http/httputil"
)

type QuoteHandler struct {
	checkoutSvc *checkout.Service
}

func NewQuoteHandler(checkoutSvc *checkout.Service) *QuoteHandler {
	return &QuoteHandler{checkoutSvc: checkoutSvc}
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

// QuoteRequest asks the aggregator what a conversion into an exact output
// amount would cost.
type QuoteRequest struct {
	// InputMint is the asset the buyer pays with
	InputMint string `form:"inputMint" binding:"required" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`

	// OutputMint is the asset the listing is denominated in
	OutputMint string `form:"outputMint" binding:"required" example:"So11111111111111111111111111111111111111112"`

	// OutAmount is the exact output required, in base units
	OutAmount uint64 `form:"outAmount" binding:"required" example:"1500000000"`

	// Buyer wallet address
	Buyer string `form:"buyer" binding:"required" example:"CkXr4xB4dY5pSXk5vV1dGKDnCNcXGfY1W8yDkZfNqGeT"`
}

// QuoteResponse is the executable conversion cost for an exact-output route.
type QuoteResponse struct {
	InputMint  string `json:"inputMint" example:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`
	OutputMint string `json:"outputMint" example:"So11111111111111111111111111111111111111112"`

	// InAmount is the estimated input cost in base units
	InAmount string `json:"inAmount" example:"231400500"`

	// OutAmount equals the requested output exactly
	OutAmount string `json:"outAmount" example:"1500000000"`

	// OtherAmountThreshold is the worst-case input after slippage
	OtherAmountThreshold string `json:"otherAmountThreshold" example:"233714505"`

	SlippageBps uint16 `json:"slippageBps" example:"100"`
}

// getQuote godoc
// @Summary Quote an exact-output conversion
// @Description Returns the input cost of acquiring exactly outAmount of the output asset. Slippage tolerance lands on the input side.
// @Tags quote
// @Produce json
// @Param inputMint query string true "Payment asset mint"
// @Param outputMint query string true "Listing asset mint"
// @Param outAmount query int true "Exact output in base units"
// @Param buyer query string true "Buyer wallet address"
// @Success 200 {object} httputil.Response{data=QuoteResponse}
// @Failure 400 {object} httputil.Response
// @Failure 502 {object} httputil.Response "No executable route"
// @Router /api/v1/quote [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	quote, err := h.checkoutSvc.Quoter().QuoteExactOut(c.Request.Context(), req.InputMint, req.OutputMint, req.OutAmount, req.Buyer)
	if err != nil {
		if errors.Is(err, domain.ErrQuoteUnavailable) {
			httputil.FromError(c, err)
			return
		}
		httputil.InternalError(c, err.Error())
		return
	}

	httputil.Success(c, QuoteResponse{
		InputMint:            quote.InputMint,
		OutputMint:           quote.OutputMint,
		InAmount:             quote.InAmount,
		OutAmount:            quote.OutAmount,
		OtherAmountThreshold: quote.OtherAmountThreshold,
		SlippageBps:          quote.SlippageBps,
	})
}
